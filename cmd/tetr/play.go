package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tetrlang/internal/platform/tui"
	"github.com/vovakirdan/tetrlang/internal/render"
)

var (
	flagPlaySpeed  string
	flagPlayNoSave bool
)

var playCmd = &cobra.Command{
	Use:   "play [program]",
	Short: "Replay a program in the terminal",
	Long: `Simulate a program and replay its frames in the terminal.
Without a program, a prompt asks for one.

Controls:
  Space      - Pause / resume
  Left/Right - Step one frame
  Home/End   - First / last frame
  R          - Restart
  Q/Esc      - Quit (back to the prompt when started without a program)

Examples:
  tetr play '2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;'
  tetr play ':TIO:|r;;]' --speed slow
  tetr play`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlaySpeed, "speed", "", "Speed preset: slow, normal, fast")
	playCmd.Flags().BoolVar(&flagPlayNoSave, "no-save", false, "Do not record runs in the history")
}

func runPlay(cmd *cobra.Command, args []string) error {
	renderCfg, err := renderConfig(flagPlaySpeed)
	if err != nil {
		return err
	}
	renderer := render.New(renderCfg)

	// Warn early when the frames will not fit
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		fw, fh := renderer.Size()
		if w < fw || h < fh+4 {
			logger.Warn("terminal is smaller than a frame", "terminal", [2]int{w, h}, "frame", [2]int{fw, fh + 4})
		}
	}

	if len(args) == 0 {
		opts := tui.SessionOptions{
			Limits:   cfg.Limits,
			Renderer: renderer,
			Logger:   logger,
			Source:   "cli",
		}
		if !flagPlayNoSave {
			opts.Store = openStore()
			if opts.Store != nil {
				defer opts.Store.Close()
			}
		}
		return tui.RunSession(cmd.Context(), opts, "")
	}

	program := args[0]
	res, err := simulate(program)
	if err != nil {
		return err
	}
	if !flagPlayNoSave {
		saveRun(program, res)
	}
	return tui.RunReplay(cmd.Context(), program, res, renderer)
}

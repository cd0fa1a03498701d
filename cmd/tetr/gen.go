package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tetrlang/internal/config"
	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/platform/tui"
	"github.com/vovakirdan/tetrlang/internal/render"
	"github.com/vovakirdan/tetrlang/internal/storage"
)

var (
	flagGenFormat string
	flagGenOutput string
	flagGenColor  bool
	flagGenAll    bool
	flagGenSpeed  string
	flagGenNoSave bool
)

var genCmd = &cobra.Command{
	Use:   "gen <program>",
	Short: "Simulate a program and print the result",
	Long: `Simulate a program and print every frame, the raw states, or a summary.

Formats:
  text     - rendered frames with their tag and delay (default)
  json     - outcome, summary and every state
  summary  - outcome and lock statistics only

Frames with no delay (such as the initial board) are skipped unless --all is set.
The run is recorded in the history unless --no-save is set.

Examples:
  tetr gen ':TI:[;]'
  tetr gen ':TI:[;]' --format json --output run.json
  tetr gen '8-,:O:]' --format summary
  tetr gen ':TI:[;]' --color --speed fast`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringVarP(&flagGenFormat, "format", "f", "text", "Output format: text, json, summary")
	genCmd.Flags().StringVarP(&flagGenOutput, "output", "o", "", "Write to file instead of stdout")
	genCmd.Flags().BoolVar(&flagGenColor, "color", false, "Colorize text frames (default: when stdout is a terminal)")
	genCmd.Flags().BoolVar(&flagGenAll, "all", false, "Include frames with no delay")
	genCmd.Flags().StringVar(&flagGenSpeed, "speed", "", "Speed preset: slow, normal, fast")
	genCmd.Flags().BoolVar(&flagGenNoSave, "no-save", false, "Do not record the run in the history")
}

func runGen(cmd *cobra.Command, args []string) error {
	program := args[0]

	renderCfg, err := renderConfig(flagGenSpeed)
	if err != nil {
		return err
	}

	res, err := simulate(program)
	if err != nil {
		return err
	}
	if !flagGenNoSave {
		saveRun(program, res)
	}

	w := cmd.OutOrStdout()
	color := flagGenColor
	if flagGenOutput != "" {
		f, err := os.Create(flagGenOutput)
		if err != nil {
			return fmt.Errorf("cannot create output: %w", err)
		}
		defer f.Close()
		w = f
	} else if !cmd.Flags().Changed("color") {
		color = term.IsTerminal(int(os.Stdout.Fd()))
	}

	switch flagGenFormat {
	case "text":
		return writeFrames(cmd, w, render.New(renderCfg), res, color)
	case "json":
		return writeStates(w, res)
	case "summary":
		return writeSummary(w, res)
	default:
		return fmt.Errorf("unknown format %q (want text, json or summary)", flagGenFormat)
	}
}

// renderConfig returns the configured render settings with a speed preset applied.
func renderConfig(speed string) (config.RenderConfig, error) {
	r := cfg.Render
	preset, err := config.ParseSpeedPreset(speed)
	if err != nil {
		return r, err
	}
	config.ApplySpeedPreset(&r, preset)
	return r, nil
}

// simulate runs a program and logs how it ended.
func simulate(program string) (engine.Result, error) {
	res, err := engine.Play(program, cfg.Limits)
	if err != nil {
		return engine.Result{}, describeCompileError(program, err)
	}
	logger.Info("simulated", "states", len(res.States), "outcome", res.Outcome)
	if res.Outcome == engine.OutcomeGameOver {
		logger.Warn("game over", "reason", res.Reason)
	}
	return res, nil
}

// saveRun records a CLI run; failures only warn.
func saveRun(program string, res engine.Result) {
	store := openStore()
	if store == nil {
		return
	}
	defer store.Close()
	if _, err := store.SaveRun(storage.NewRun(program, "cli", res)); err != nil {
		logger.Warn("could not save run", "error", err)
	}
}

func writeFrames(cmd *cobra.Command, w io.Writer, r *render.Renderer, res engine.Result, color bool) error {
	frames, err := r.RenderAll(cmd.Context(), res.States)
	if err != nil {
		return err
	}
	if !flagGenAll {
		frames = render.Playable(frames)
	}

	for _, f := range frames {
		fmt.Fprintf(w, "--- frame %d [%s] %dms ---\n", f.Index, f.Tag, f.Delay.Milliseconds())
		if color {
			fmt.Fprintln(w, tui.RenderScreen(f.Screen))
		} else {
			fmt.Fprintln(w, f.String())
		}
	}
	return writeSummary(w, res)
}

func writeStates(w io.Writer, res engine.Result) error {
	out := struct {
		Outcome engine.Outcome     `json:"outcome"`
		Reason  string             `json:"reason,omitempty"`
		Summary engine.Summary     `json:"summary"`
		States  []engine.StateView `json:"states"`
	}{
		Outcome: res.Outcome,
		Reason:  res.Reason,
		Summary: res.Summary,
		States:  make([]engine.StateView, len(res.States)),
	}
	for i, s := range res.States {
		out.States[i] = s.View()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeSummary(w io.Writer, res engine.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome:        %s\n", res.Outcome)
	if res.Reason != "" {
		fmt.Fprintf(&b, "Reason:         %s\n", res.Reason)
	}
	s := res.Summary
	fmt.Fprintf(&b, "States:         %d\n", len(res.States))
	fmt.Fprintf(&b, "Operations:     %d\n", s.Operations)
	fmt.Fprintf(&b, "Locks:          %d\n", s.Locks)
	fmt.Fprintf(&b, "Lines:          %d\n", s.Lines)
	fmt.Fprintf(&b, "Spins:          %d\n", s.Spins)
	fmt.Fprintf(&b, "Perfect clears: %d\n", s.PerfectClears)
	fmt.Fprintf(&b, "Max combo:      %d\n", s.MaxCombo)
	fmt.Fprintf(&b, "Max B2B:        %d\n", s.MaxB2B)
	_, err := io.WriteString(w, b.String())
	return err
}

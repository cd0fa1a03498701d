package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetrlang/internal/platform/tui"
	"github.com/vovakirdan/tetrlang/internal/render"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tetr SSH server",
	Long: `Start an SSH server that replays programs for connected users.

The SSH command is the program to replay; without one, each session
gets a prompt. Runs are recorded in the shared history.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.tetr/host_key

Examples:
  tetr serve                           # Listen on the configured address
  tetr serve --ssh :2222               # Listen on port 2222
  tetr serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 2323
  ssh -t localhost -p 2323 ':TIO:|r;;]'`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	serverCfg := cfg.Server
	if flagSSHAddr != "" {
		serverCfg.SSHAddress = flagSSHAddr
	}
	if flagHostKey != "" {
		serverCfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		serverCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(serverCfg, tui.SessionOptions{
		Limits:   cfg.Limits,
		Renderer: render.New(cfg.Render),
		Store:    store,
		Logger:   logger.WithPrefix("tetr-ssh"),
		Source:   "ssh",
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting tetr SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(ctx)
}

// tetr compiles and simulates Tetrlang programs: compact descriptions of a
// Tetris board, a piece queue and a sequence of moves.
//
// Usage:
//
//	tetr debug <program>     - Print the compiled program
//	tetr gen <program>       - Simulate and print frames, states or a summary
//	tetr play [program]      - Replay a program in the terminal
//	tetr serve               - Start SSH server for remote replays
//	tetr api                 - Start the HTTP API
//	tetr history             - Show past runs
//	tetr syntax              - Show the language reference
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.tetr/config.yaml)
//	--db <path>         - Run history database (default: ~/.tetr/runs.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetrlang/internal/config"
	"github.com/vovakirdan/tetrlang/internal/logging"
	"github.com/vovakirdan/tetrlang/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string

	// Loaded in PersistentPreRunE
	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetr",
	Short: "Tetrlang - simulate Tetris move sequences from text",
	Long: `Tetrlang turns a compact text notation into a verified sequence of
Tetris states and replays it in your terminal.

A program has three sections separated by ':':
  board : order : operations

Available commands:
  debug    - Print the compiled program
  gen      - Simulate and print the result
  play     - Replay a program in the terminal
  serve    - Start SSH server for remote replays
  api      - Start the HTTP API
  history  - Show past runs
  syntax   - Show the language reference

Examples:
  tetr debug '2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;'
  tetr gen ':TIO:|r;;]' --format summary
  tetr play '2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;'
  tetr serve --ssh :2323
  tetr history`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run history database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(syntaxCmd)
}

// setup loads the configuration and creates the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	logger, err = logging.New(cfg.Log.Level, "tetr")
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "command", cmd.Name(), "db", cfg.Storage.Path)
	return nil
}

// openStore opens the run history. A failure is logged and yields nil, so
// commands keep working without history.
func openStore() *storage.Store {
	if cfg.Storage.Path == "" {
		return nil
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open run history", "error", err)
		return nil
	}
	return store
}

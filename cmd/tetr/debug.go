package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

var flagDebugFormat string

var debugCmd = &cobra.Command{
	Use:   "debug <program>",
	Short: "Print the compiled program",
	Long: `Compile a program and print its board, piece order and operations
without simulating it. Compile errors report the offending position.

Examples:
  tetr debug '2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;'
  tetr debug ':T|IJLO:|r;;>' --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runDebug,
}

func init() {
	debugCmd.Flags().StringVarP(&flagDebugFormat, "format", "f", "yaml", "Output format: yaml, json")
}

func runDebug(cmd *cobra.Command, args []string) error {
	program := args[0]
	c, err := compile(program, cfg.Limits)
	if err != nil {
		return describeCompileError(program, err)
	}
	return writeCompiled(cmd.OutOrStdout(), c, flagDebugFormat)
}

// compile checks limits around tetrlang.Compile.
func compile(program string, limits engine.Limits) (*tetrlang.Compiled, error) {
	if err := limits.CheckSource(program); err != nil {
		return nil, err
	}
	c, err := tetrlang.Compile(program)
	if err != nil {
		return nil, err
	}
	if err := limits.Check(c); err != nil {
		return nil, err
	}
	return c, nil
}

func writeCompiled(w io.Writer, c *tetrlang.Compiled, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("cannot encode program: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}

package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

//go:embed syntax.md
var syntaxReference string

var flagSyntaxRaw bool

var syntaxCmd = &cobra.Command{
	Use:   "syntax",
	Short: "Show the language reference",
	Long: `Print the Tetrlang reference. In a terminal it is rendered as styled
markdown; use --raw for the markdown source.`,
	Args: cobra.NoArgs,
	RunE: runSyntax,
}

func init() {
	syntaxCmd.Flags().BoolVar(&flagSyntaxRaw, "raw", false, "Print the markdown source")
}

func runSyntax(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if flagSyntaxRaw || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := fmt.Fprint(out, syntaxReference)
		return err
	}

	rendered, err := renderMarkdown(syntaxReference)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// renderMarkdown styles markdown for the terminal.
func renderMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("cannot create markdown renderer: %w", err)
	}
	return r.Render(markdown)
}

// Package logging builds the charmbracelet loggers shared by the tetr commands and servers.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New returns a stderr logger with timestamps at the given level.
func New(level, prefix string) (*log.Logger, error) {
	return NewWriter(os.Stderr, level, prefix)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, level, prefix string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	}), nil
}

// ParseLevel accepts debug, info, warn or error. Empty means info.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}
	return lvl, nil
}

// Discard returns a logger that writes nothing. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

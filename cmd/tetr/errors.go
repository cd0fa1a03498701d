package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// describeCompileError adds the program and a caret under the offending
// character to positioned compile errors.
func describeCompileError(program string, err error) error {
	var perr *tetrlang.Error
	if !errors.As(err, &perr) || perr.Pos < 0 {
		return err
	}
	col := min(perr.Pos, len([]rune(program)))
	return fmt.Errorf("%w\n  %s\n  %s^", err, program, strings.Repeat(" ", col))
}

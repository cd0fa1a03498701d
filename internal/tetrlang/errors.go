package tetrlang

import "fmt"

// Code classifies a compile error.
type Code string

const (
	CodeInvalidColumn    Code = "INVALID_COLUMN"
	CodeInvalidRange     Code = "INVALID_RANGE"
	CodeEmptyFirstRow    Code = "EMPTY_FIRST_ROW"
	CodeInvalidPiece     Code = "INVALID_PIECE"
	CodeInvalidToken     Code = "INVALID_TOKEN"
	CodeQueueTooShort    Code = "QUEUE_TOO_SHORT"
	CodeMalformedOrder   Code = "MALFORMED_ORDER"
	CodeMalformedProgram Code = "MALFORMED_PROGRAM"
)

// Error is a compile-time failure. Pos is the character offset in the source
// of the offending character, or -1 when the error is not tied to one.
type Error struct {
	Code    Code
	Pos     int
	Char    rune
	Message string
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("[%s] %s (at %d)", e.Code, e.Message, e.Pos)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches another *Error by code, so callers can test against a bare code value:
//
//	errors.Is(err, &tetrlang.Error{Code: tetrlang.CodeInvalidPiece})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func errorAt(code Code, pos int, char rune, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Char: char, Message: fmt.Sprintf(format, args...)}
}

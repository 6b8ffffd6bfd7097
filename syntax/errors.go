package syntax

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("FML syntax error")

// SyntaxError reports malformed markup. File is empty
// until the caller that knows the source path fills it
// in with WithFile.
type SyntaxError struct {
	File string
	Msg  string
	Line int
	Col  int
}

func (se *SyntaxError) Error() string {
	msg := se.Msg
	if se.Line > 0 {
		msg = fmt.Sprintf(
			"%s at line %d, column %d",
			msg, se.Line, se.Col,
		)
	}

	if se.File == "" {
		return "FML syntax error: " + msg
	}

	return fmt.Sprintf(
		"FML syntax error in %s: %s", se.File, msg,
	)
}

// Is reports whether target is ErrSyntax.
func (se *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// WithFile returns a copy of se naming file as its
// source.
func (se *SyntaxError) WithFile(file string) *SyntaxError {
	cp := *se
	cp.File = file

	return &cp
}

func newSyntaxError(pos Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Msg:  fmt.Sprintf(format, args...),
		Line: pos.Line,
		Col:  pos.Col,
	}
}

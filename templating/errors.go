package templating

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors below.
var (
	ErrUndefinedVariable = errors.New("FML undefined variable")
	ErrFileNotFound      = errors.New("FML file not found")
	ErrIncludeCycle      = errors.New("FML include cycle")
)

// UndefinedVariableError reports a placeholder whose path
// does not resolve in the render context.
type UndefinedVariableError struct {
	Variable string
	File     string
	Line     int
	Col      int
	Err      error
}

func (ue *UndefinedVariableError) Error() string {
	msg := fmt.Sprintf("%s %q in %s", ErrUndefinedVariable, ue.Variable, ue.File)
	if ue.Line > 0 {
		msg += fmt.Sprintf(" at line %d, column %d", ue.Line, ue.Col)
	}

	if ue.Err != nil {
		msg += ": " + ue.Err.Error()
	}

	return msg
}

// Is reports whether target is ErrUndefinedVariable.
func (ue *UndefinedVariableError) Is(target error) bool {
	return target == ErrUndefinedVariable
}

func (ue *UndefinedVariableError) Unwrap() error {
	return ue.Err
}

// FileNotFoundError reports a template or include that the
// loader could not find. From names the including file and
// is empty for the top-level template.
type FileNotFoundError struct {
	Path string
	From string
	Err  error
}

func (fe *FileNotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrFileNotFound, fe.Path)
	if fe.From != "" {
		msg += fmt.Sprintf(" (included from %s)", fe.From)
	}

	return msg
}

// Is reports whether target is ErrFileNotFound.
func (fe *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

func (fe *FileNotFoundError) Unwrap() error {
	return fe.Err
}

// IncludeCycleError reports a file that includes itself,
// directly or through other files. Chain lists the files
// from the outermost one to the repeated one.
type IncludeCycleError struct {
	Chain []string
}

func (ce *IncludeCycleError) Error() string {
	return fmt.Sprintf(
		"%s: %s", ErrIncludeCycle, strings.Join(ce.Chain, " -> "),
	)
}

// Is reports whether target is ErrIncludeCycle.
func (ce *IncludeCycleError) Is(target error) bool {
	return target == ErrIncludeCycle
}

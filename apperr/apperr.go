// Package apperr defines the error taxonomy shared by every pipeline stage.
//
// Each stage wraps its failure in an *Error tagged with a Kind so the top
// level can report which stage failed and pick an exit code, while the
// underlying driver, filesystem or SMTP diagnostic stays reachable through
// errors.Unwrap.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the pipeline stage an error originated from.
type Kind int

const (
	KindUnknown Kind = iota
	KindArgument
	KindConfiguration
	KindDataAccess
	KindExport
	KindDispatch
)

func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "ArgumentError"
	case KindConfiguration:
		return "ConfigurationError"
	case KindDataAccess:
		return "DataAccessError"
	case KindExport:
		return "ExportError"
	case KindDispatch:
		return "DispatchError"
	default:
		return "Error"
	}
}

// ExitCode returns the process exit status used for errors of this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindArgument:
		return 2
	case KindConfiguration:
		return 3
	case KindDataAccess:
		return 4
	case KindExport:
		return 5
	case KindDispatch:
		return 6
	default:
		return 1
	}
}

// Error is a stage failure. Op is a short description of what was being
// attempted ("open connection", "write workbook", ...).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match for another *Error with the same Kind, so callers can
// write errors.Is(err, apperr.DataAccess) style checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	Argument      = &Error{Kind: KindArgument}
	Configuration = &Error{Kind: KindConfiguration}
	DataAccess    = &Error{Kind: KindDataAccess}
	Export        = &Error{Kind: KindExport}
	Dispatch      = &Error{Kind: KindDispatch}
)

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NewArgument(op string, err error) error      { return newError(KindArgument, op, err) }
func NewConfiguration(op string, err error) error { return newError(KindConfiguration, op, err) }
func NewDataAccess(op string, err error) error    { return newError(KindDataAccess, op, err) }
func NewExport(op string, err error) error        { return newError(KindExport, op, err) }
func NewDispatch(op string, err error) error      { return newError(KindDispatch, op, err) }

// KindOf returns the Kind of the outermost *Error in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

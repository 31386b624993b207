// Package errs defines the error taxonomy shared by every efyj-go package.
//
// Every exported operation in this module that can fail returns a plain Go
// error; callers that need the structured kind/line/column information
// described in spec section 7 type-assert to *Error (or use errors.As).
// Sentinel kinds below are compared with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure without pinning it to a concrete Go type.
type Kind int

const (
	// KindUnknown is the zero value; never constructed on purpose.
	KindUnknown Kind = iota
	// KindFileAccess: cannot open an input or output file.
	KindFileAccess
	// KindParseModel: a model-file (DEXi/XML) failure; carries Line/Column.
	KindParseModel
	// KindParseOptions: an options-file (CSV) failure; carries Line/Column.
	KindParseOptions
	// KindNumericCast: an integer would not fit the narrower target type.
	KindNumericCast
	// KindEvaluatorInvariantViolation: the stack evaluator detected an
	// internal inconsistency (stack underflow/overflow, bad row index).
	KindEvaluatorInvariantViolation
	// KindOptionsInconsistent: parallel-vector lengths disagree, or a
	// required subdataset is empty.
	KindOptionsInconsistent
	// KindBudgetExceeded: the caller-requested modifier-count limit was
	// reached; reported as a terminal status, not strictly an error.
	KindBudgetExceeded
	// KindCancelled: the cancellation flag was observed.
	KindCancelled
)

// String renders the kind the way the CLI prints it: the bare kind name.
func (k Kind) String() string {
	switch k {
	case KindFileAccess:
		return "FileAccess"
	case KindParseModel:
		return "ParseModel"
	case KindParseOptions:
		return "ParseOptions"
	case KindNumericCast:
		return "NumericCast"
	case KindEvaluatorInvariantViolation:
		return "EvaluatorInvariantViolation"
	case KindOptionsInconsistent:
		return "OptionsInconsistent"
	case KindBudgetExceeded:
		return "BudgetExceeded"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error carries a Kind plus whatever location information applies.
//
// Message may quote offending input values (for example an unknown scale
// value name, formatted with %q); for a wrapped cause it is the cause's own
// text, which can include a file path.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "xmlmodel.Read"
	Message string
	Source  string // file path, when relevant
	Line    int    // 1-based; 0 when not applicable
	Column  int    // 1-based; 0 when not applicable
	Size    int    // offending size, when applicable (e.g. ScaleTooBig)
	err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s: %s (%s:%d:%d)", e.Kind, e.Message, e.Source, e.Line, e.Column)
	case e.Source != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Source)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As keep working.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target names the same Kind, so callers can write
// errors.Is(err, errs.ParseModel) style checks via the sentinel values below.
func (e *Error) Is(target error) bool {
	var ke *kindSentinel
	if errors.As(target, &ke) {
		return e.Kind == ke.kind
	}
	return false
}

// kindSentinel lets package users probe for a Kind with errors.Is without
// constructing a full *Error.
type kindSentinel struct{ kind Kind }

func (k *kindSentinel) Error() string { return k.kind.String() }

// Sentinel values usable with errors.Is(err, errs.FileAccess) etc.
var (
	FileAccess                   = &kindSentinel{KindFileAccess}
	ParseModel                   = &kindSentinel{KindParseModel}
	ParseOptions                 = &kindSentinel{KindParseOptions}
	NumericCast                  = &kindSentinel{KindNumericCast}
	EvaluatorInvariantViolation  = &kindSentinel{KindEvaluatorInvariantViolation}
	OptionsInconsistent          = &kindSentinel{KindOptionsInconsistent}
	BudgetExceeded               = &kindSentinel{KindBudgetExceeded}
	Cancelled                    = &kindSentinel{KindCancelled}
)

// New builds a plain *Error with no location information.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds a *Error around a lower-level cause, mirroring the
// matrixErrorf helper the teacher package uses to attach operation context
// to sentinel errors without losing errors.Is/As compatibility.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: err.Error(), err: err}
}

// AtLine attaches source/line/column information and returns the receiver,
// for fluent construction: errs.New(...).AtLine(path, line, col).
func (e *Error) AtLine(source string, line, col int) *Error {
	e.Source = source
	e.Line = line
	e.Column = col
	return e
}

// WithSize attaches a Size field (e.g. an oversized scale) and returns the receiver.
func (e *Error) WithSize(size int) *Error {
	e.Size = size
	return e
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/quesnel/efyj-go/internal/errs"
)

// exitCode prints the §7 "single line to the error stream with the kind
// name, the source file (when relevant), and the (line, column)
// coordinates" and returns a non-zero status distinguishing the error kind.
func exitCode(err error) int {
	var e *errs.Error
	if !errors.As(err, &e) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch {
	case e.Line > 0 && e.Column > 0:
		fmt.Fprintf(os.Stderr, "%s: %s (%s:%d:%d)\n", e.Kind, e.Message, e.Source, e.Line, e.Column)
	case e.Source != "":
		fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", e.Kind, e.Message, e.Source)
	default:
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Kind, e.Message)
	}

	switch e.Kind {
	case errs.KindFileAccess:
		return 2
	case errs.KindParseModel:
		return 3
	case errs.KindParseOptions:
		return 4
	case errs.KindNumericCast:
		return 5
	case errs.KindEvaluatorInvariantViolation:
		return 6
	case errs.KindOptionsInconsistent:
		return 7
	case errs.KindBudgetExceeded:
		return 8
	case errs.KindCancelled:
		return 9
	default:
		return 1
	}
}

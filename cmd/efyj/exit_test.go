package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quesnel/efyj-go/internal/errs"
)

func TestExitCodeMapsKnownKinds(t *testing.T) {
	require.Equal(t, 2, exitCode(errs.New(errs.KindFileAccess, "op", "boom")))
	require.Equal(t, 3, exitCode(errs.New(errs.KindParseModel, "op", "boom")))
	require.Equal(t, 7, exitCode(errs.New(errs.KindOptionsInconsistent, "op", "boom")))
}

func TestExitCodeFallsBackToOneForPlainErrors(t *testing.T) {
	require.Equal(t, 1, exitCode(errors.New("not a kind error")))
}

package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitError(t *testing.T) {
	base := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "open snapshot database", base)

	assert.Equal(t, "open snapshot database: disk full", err.Error())
	assert.ErrorIs(t, err, base)

	plain := NewExitError(ExitFailure, "%d of %d failed", 1, 2)
	assert.Equal(t, "1 of 2 failed", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "x")))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitFailure, "inner"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hadron-dev/hadron/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, []string{"version"}))
	assert.Equal(t, "hadron "+version+"\n", out.String())
}

func TestRunRejectsWrongArgumentCount(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"440"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestRunUnknownFlagIsUsageError(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"--no-such-flag", "440", "game.exe"})
	require.Error(t, err)

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %T", err)
	assert.Equal(t, 2, exitErr.Code)
}

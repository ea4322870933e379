package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmd_Version(t *testing.T) {
	cmd := newCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "loupgarou dev\n", out.String())
}

func TestCmd_RejectsInvalidConfig(t *testing.T) {
	cmd := newCmd()
	cmd.SetArgs([]string{"--env-file", "", "--log-format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
}

func TestCmd_EnvVariableApplied(t *testing.T) {
	t.Setenv("LOUPGAROU_ROOM_RETENTION", "-1s")

	cmd := newCmd()
	cmd.SetArgs([]string{"--env-file", ""})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retention")
}

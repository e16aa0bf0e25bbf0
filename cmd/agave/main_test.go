package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/agavesunset/agave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "agave version "+strings.TrimSpace(agave.Version)+"\n", out)
}

func TestEvalCommand(t *testing.T) {
	out, err := execute(t, "eval", "--set", "a=2", "--set", "b=5", "a ** b")
	require.NoError(t, err)
	assert.Equal(t, "32\n", out)
}

func TestNodesCommand_JSON(t *testing.T) {
	out, err := execute(t, "nodes", "--json", "MathAgaveSunset")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "MathAgaveSunset")
}

func TestRunCommand_InvalidCache(t *testing.T) {
	_, err := execute(t, "run", "--cache", "disk", "MathAgaveSunset")
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doorYAML = `id: door
root: open
nodes:
  - id: open
    kind: retry
    config: {attempts: 2}
    children: [push]
  - id: push
    kind: succeed
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDoor(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doorYAML), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "canopy version 0.1.0")
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", writeDoor(t))
	require.NoError(t, err)
	assert.Contains(t, out, `Tree "door" is valid (2 nodes)`)

	_, err = runCLI(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGraphCommand(t *testing.T) {
	out, err := runCLI(t, "graph", writeDoor(t))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "push")
}

func TestDescribeCommand(t *testing.T) {
	out, err := runCLI(t, "describe", writeDoor(t))
	require.NoError(t, err)
	assert.Contains(t, out, "door")
	assert.Contains(t, out, "retry")
}

func TestRunCommand(t *testing.T) {
	out, err := runCLI(t, "run", writeDoor(t), "--json", "--agents", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"agent-2":"success"`)
}

func TestPushCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "push", writeDoor(t), "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `Tree "door" pushed`)
	assert.FileExists(t, filepath.Join(dir, "door.yaml"))
}

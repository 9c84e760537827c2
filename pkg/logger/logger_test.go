package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput_LevelsAndDebugToggle(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	defer Close()

	Info("session %s created", "abc")
	Debug("hidden %d", 1)
	Warn("slow poll")
	Error("boom")

	out := buf.String()
	assert.Contains(t, out, "session abc created")
	assert.Contains(t, out, "slow poll")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "WARN")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	SetOutput(&buf, true)
	Debug("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, Init(path, false))

	Info("hello %s", "file")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestInit_BadPath(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "missing", "dir", "run.log"), false)
	assert.Error(t, err)
}

func TestClose_Silences(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	Close()

	Info("after close")
	assert.Empty(t, buf.String())
}

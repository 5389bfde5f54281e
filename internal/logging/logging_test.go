package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.WithField("module", "main").Info("hidden")
	l.WithField("module", "main").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "module=main")
	assert.Empty(t, l.FilePath())
}

func TestDebugFile(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	l, err := New(Options{Console: &buf, Dir: dir})
	require.NoError(t, err)

	l.WithField("id", "abc").Debug("details")
	l.Info("summary")
	require.NoError(t, l.Close())

	assert.NotContains(t, buf.String(), "details", "console stays at info")
	assert.Contains(t, buf.String(), "summary")

	data, err := os.ReadFile(l.FilePath())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "details", first["msg"])
	assert.Equal(t, "abc", first["id"])
	assert.Equal(t, "debug", first["level"])
}

func TestBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regform/internal/pubsub"
)

func TestWrite_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatSubmit, "Registration accepted", "id", "abc", "course", "cs")

	out := buf.String()
	require.Contains(t, out, "[INFO] [submit] Registration accepted")
	require.Contains(t, out, "id=abc")
	require.Contains(t, out, "course=cs")
}

func TestWrite_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Warn(CatForm, "odd", "orphan")
	require.Contains(t, buf.String(), "orphan=<missing>")
}

func TestErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ErrorErr(CatForm, "reset after close", errors.New("closed"))
	ErrorErr(CatForm, "nil error", nil)

	require.Contains(t, buf.String(), "[ERROR] [form] reset after close error=closed")
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestMinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Debug(CatUI, "hidden")
	Info(CatUI, "hidden too")
	Error(CatUI, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatUI, "muted")
	require.Empty(t, buf.String())
}

func TestNoLoggerIsSafe(t *testing.T) {
	Reset()
	Info(CatConfig, "dropped")
	require.Nil(t, NewListener(context.Background()))
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(Reset)

	Info(CatConfig, "Loaded config", "path", "x.yaml")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Loaded config path=x.yaml")
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "dir", "debug.log"))
	require.Error(t, err)
}

func TestListener_ReceivesEntries(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(ctx)
	require.NotNil(t, l)

	Info(CatOptions, "Reloaded options")
	msg := l.Listen()()
	event, ok := msg.(pubsub.Event[string])
	require.True(t, ok)
	require.Equal(t, pubsub.LoggedEvent, event.Type)
	require.Contains(t, event.Payload, "Reloaded options")
}

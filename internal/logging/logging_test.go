package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebugfSilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.Debugf("hello %d", 1)
	require.Empty(t, buf.String())
}

func TestDebugfWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.SetDebug(true)
	l.Debugf("hello %d", 1)
	require.Contains(t, buf.String(), "hello 1")
}

func TestTracefIncludesSender(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.SetDebug(true)
	l.Tracef("eval", "executed %s", "stmt")
	require.Contains(t, buf.String(), "[eval] executed stmt")
}

func TestErrorfAlwaysWrites(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	l.Errorf("boom %d", 42)
	require.Contains(t, buf.String(), "boom 42")
}

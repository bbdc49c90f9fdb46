package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		" warn": slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "info", "xml")
	require.ErrorContains(t, err, "unknown log format")
}

func TestWhatsAppBridge(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	wa := WhatsApp(log, "Client").Sub("Socket")
	wa.Warnf("frame %d dropped", 7)
	wa.Debugf("hidden? %v", false)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "frame 7 dropped", rec["msg"])
	assert.Equal(t, "Client/Socket", rec["module"])
}

func TestWhatsAppBridgeHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "error", "text")
	require.NoError(t, err)

	WhatsApp(log, "Database").Infof("upgrading schema")
	assert.Zero(t, buf.Len())
}

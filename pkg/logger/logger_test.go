package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestInfoCarriesServiceName(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	logg.Info(context.Background(), "server started")

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "server started", entry["message"])
}

func TestWithFieldsFlowThroughContext(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"request_id": "req-1",
		"user_id":    "user-1",
	})
	logg.Info(ctx, "handled")

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
}

func TestErrorIncludesErrAndStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	logg.Error(context.Background(), "request.error", errors.New("boom"))

	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
	assert.NotEmpty(t, entry["stack"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
}

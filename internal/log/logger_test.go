package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentQuery})

	logger.WithComponent(ComponentDataset).Info("fetched", FieldRecords, 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched", entry["msg"])
	assert.Equal(t, ComponentDataset, entry[FieldComponent])
	assert.Equal(t, 3.0, entry[FieldRecords])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestMiddlewareStoresLogger(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}, Component: "test"})
	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, logger, got)

	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/statistics?month=March", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusInternalServerError, 12, "10.0.0.1")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"component":"http"`)

	buf.Reset()
	sl.LogError(context.Background(), "fetch failed", errors.New("boom"), OpStatistics, NewFields().WithQuery("March", "", 0, 0))
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"month":"March"`)
	assert.NotContains(t, buf.String(), FieldPage)
}

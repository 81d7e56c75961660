package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/core/logger"
)

type ctxKey struct{}

func requestID(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_ProductionJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithProduction("mailkit"), logger.WithOutput(&buf))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("mail sent", logger.Component("mail"), logger.Recipients(2), logger.Error(nil))
	entry := decode(t, &buf)
	assert.Equal(t, "mail sent", entry["msg"])
	assert.Equal(t, "mailkit", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "mail", entry["component"])
	assert.Equal(t, float64(2), entry["recipients"])
	assert.NotContains(t, entry, "error")
}

func TestNew_DevelopmentText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithDevelopment("mailkit"), logger.WithOutput(&buf))

	log.Debug("rendering", logger.Template("welcome_mail.html"))
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "template=welcome_mail.html")
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithOutput(&buf),
		logger.WithContextExtractors(requestID),
	).With(logger.Component("dispatcher"))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-123")
	log.ErrorContext(ctx, "send failed", logger.Error(errors.New("smtp down")))

	entry := decode(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.Equal(t, "smtp down", entry["error"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))

	attr := logger.Errors(nil, errors.New("a"))
	assert.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 1)
	assert.Equal(t, "1", attr.Value.Group()[0].Key)
}

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitializeWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("info", "json", &buf)

	Debug("hidden")
	Info("rent created", "rent_id", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"rent created"`)
	assert.Contains(t, out, `"rent_id":42`)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("info", "text", &buf)

	assert.Same(t, Get(), FromContext(context.Background()))

	scoped := Get().With("request_id", "abc")
	ctx := NewContext(context.Background(), scoped)
	InfoContext(ctx, "handled")

	assert.Contains(t, buf.String(), "request_id=abc")
}

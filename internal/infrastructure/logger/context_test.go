package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newCaptureLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "msg",
		LevelKey:   "level",
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	return zap.New(core), &buf
}

func TestWithContextAndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)
	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContextMissingReturnsNop(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx := WithContext(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	L(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestWithUserAndEntityID(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")
	ctx = WithEntityID(ctx, "entity-1")

	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "entity-1", GetEntityID(ctx))
}

func TestContextLoggerEnrichment(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, UserIDKey, "user-9")
	ctx = context.WithValue(ctx, EntityIDKey, "entity-9")

	L(ctx).Info("posted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, "user-9", entry["user_id"])
	assert.Equal(t, "entity-9", entry["entity_id"])
}

func TestContextLoggerWithNilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	// must not panic
	cl.Info("no-op")
}

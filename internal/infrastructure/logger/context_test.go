package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// memoryLogger returns a logger writing JSON entries into buf
func memoryLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.NotNil(t, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())

	// Should return a no-op logger
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := memoryLogger(&buf)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")
	enriched.Info("issuing")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestWithInvoiceNumber(t *testing.T) {
	var buf bytes.Buffer
	logger := memoryLogger(&buf)

	ctx, enriched := WithInvoiceNumber(context.Background(), logger, "ABCD00000001")
	enriched.Info("voiding")

	assert.Equal(t, "ABCD00000001", GetInvoiceNumber(ctx))
	assert.Contains(t, buf.String(), `"invoice_number":"ABCD00000001"`)
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
	assert.Equal(t, "", GetInvoiceNumber(context.Background()))
}

func TestContextLogger(t *testing.T) {
	t.Run("injects context fields into entries", func(t *testing.T) {
		var buf bytes.Buffer
		base := memoryLogger(&buf)

		ctx := WithContext(context.Background(), base)
		ctx = context.WithValue(ctx, RequestIDKey, "req-9")
		ctx = context.WithValue(ctx, InvoiceNumberKey, "ABCD00000042")

		L(ctx).Info("allocated")

		out := buf.String()
		assert.Contains(t, out, `"request_id":"req-9"`)
		assert.Contains(t, out, `"invoice_number":"ABCD00000042"`)
		assert.Contains(t, out, "allocated")
	})

	t.Run("survives a bare context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			L(context.Background()).Info("no logger attached")
		})
	})

	t.Run("With adds fields to children", func(t *testing.T) {
		var buf bytes.Buffer
		base := memoryLogger(&buf)

		cl := WithLogger(context.Background(), base).With(zap.String("component", "allocator"))
		cl.Warn("pool low")

		assert.Contains(t, buf.String(), `"component":"allocator"`)
	})

	t.Run("Zap returns a usable logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := memoryLogger(&buf)

		zl := WithLogger(context.Background(), base).Zap()
		zl.Info("direct")
		assert.Contains(t, buf.String(), "direct")
	})
}

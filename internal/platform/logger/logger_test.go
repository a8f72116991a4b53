package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("returns default when context has no logger", func(t *testing.T) {
		log := FromContext(context.Background())
		assert.Equal(t, slog.Default(), log)
	})

	t.Run("returns logger stored in context", func(t *testing.T) {
		stored := slog.Default().With("component", "test")
		ctx := WithLogger(context.Background(), stored)

		assert.Equal(t, stored, FromContext(ctx))
	})
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.Default().With("component", "fallback")

	t.Run("prefers context logger", func(t *testing.T) {
		stored := slog.Default().With("component", "stored")
		ctx := WithLogger(context.Background(), stored)

		assert.Equal(t, stored, FromContextOrDefault(ctx, fallback))
	})

	t.Run("falls back to provided logger", func(t *testing.T) {
		assert.Equal(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("falls back to default when fallback is nil", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})
}

func TestSetupLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log := Setup(level)
		assert.NotNil(t, log, "level %q", level)
	}
}

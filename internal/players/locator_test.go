package players

import (
	"context"
	"testing"

	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocator(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocator()

	_, err := l.Position(ctx, "Alice")
	assert.ErrorIs(t, err, ErrNoSuchPlayer)

	require.NoError(t, l.Update(ctx, "Alice", vec.Vec3Float{X: 10, Y: 20, Z: 30}))
	pos, err := l.Position(ctx, "  alice ")
	require.NoError(t, err, "имена регистронезависимы")
	assert.Equal(t, vec.Vec3Float{X: 10, Y: 20, Z: 30}, pos)
	assert.Equal(t, 1, l.Count())

	l.Remove("ALICE")
	_, err = l.Position(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoSuchPlayer)

	assert.Error(t, l.Update(ctx, " ", vec.Vec3Float{}))
}

func TestMemoryLocatorHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewMemoryLocator()
	assert.ErrorIs(t, l.Update(ctx, "bob", vec.Vec3Float{}), context.Canceled)
	_, err := l.Position(ctx, "bob")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLocatorUnreachable(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1"
	_, err := NewRedisLocator(context.Background(), cfg)
	assert.Error(t, err, "без Redis конструктор должен вернуть ошибку")
}

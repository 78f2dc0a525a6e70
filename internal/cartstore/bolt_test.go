package cartstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBolt(t *testing.T) *BoltBackend {
	t.Helper()
	b, err := NewBoltBackend(filepath.Join(t.TempDir(), "cart.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBolt_RoundTrip(t *testing.T) {
	b := newTestBolt(t)
	ctx := context.Background()

	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, b.Set(ctx, "k", []byte("one")))
	require.NoError(t, b.Set(ctx, "k", []byte("two")))

	data, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))
	_, err = b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestBolt_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	b, err := NewBoltBackend(path)
	require.NoError(t, err)
	store := NewCartStore(b, zap.NewNop())
	store.Save(ctx, "s1", sampleCart(t))
	require.NoError(t, b.Close())

	b, err = NewBoltBackend(path)
	require.NoError(t, err)
	defer b.Close()

	c := NewCartStore(b, zap.NewNop()).Load(ctx, "s1")
	assert.Equal(t, 2, c.Count())
}

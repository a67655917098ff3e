package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_Deterministic(t *testing.T) {
	b := NewBackend(64)
	ctx := context.Background()

	v1, err := b.Generate(ctx, "the same text")
	require.NoError(t, err)
	v2, err := b.Generate(ctx, "the same text")
	require.NoError(t, err)

	assert.Equal(t, v1, v2, "identical text must produce bit-identical vectors")
	assert.Len(t, v1, 64)
}

func TestBackend_DifferentTextsDiffer(t *testing.T) {
	b := NewBackend(32)
	ctx := context.Background()

	v1, err := b.Generate(ctx, "first text")
	require.NoError(t, err)
	v2, err := b.Generate(ctx, "second text")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
}

func TestBackend_UnitNorm(t *testing.T) {
	b := NewBackend(384)
	ctx := context.Background()

	vec, err := b.Generate(ctx, "normalize me")
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-5)
}

func TestBackend_ComponentsBounded(t *testing.T) {
	b := NewBackend(128)

	vec, err := b.Generate(context.Background(), "bounded components")
	require.NoError(t, err)

	for i, v := range vec {
		assert.False(t, math.IsNaN(float64(v)), "component %d is NaN", i)
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestBackend_Metadata(t *testing.T) {
	b := NewBackend(1536)

	assert.Equal(t, "mock-embedding", b.ModelName())
	assert.Equal(t, 1536, b.Dimensions())
}

func TestBackend_ConcurrentGenerate(t *testing.T) {
	b := NewBackend(16)

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := b.Generate(context.Background(), "text "+string(rune('a'+n)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, goroutines, b.CallCount())
}

func TestBackend_InjectedBehavior(t *testing.T) {
	b := NewBackend(8)
	wantErr := errors.New("boom")
	b.GenerateFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	_, err := b.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, b.CallCount())

	b.Reset()
	assert.Zero(t, b.CallCount())
	vec, err := b.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
}

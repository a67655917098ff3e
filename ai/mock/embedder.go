package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"
	"sync"

	"github.com/poiesic/docent/ai"
)

const modelName = "mock-embedding"

// Backend is a deterministic ai.EmbeddingBackend that derives vectors from a
// cryptographic digest of the input text. It makes no network calls and is a
// pure function of (text, dimensions): identical text always yields an
// identical unit-norm vector, different text yields a different vector with
// overwhelming probability.
//
// Custom behavior can be injected via GenerateFunc for error-path tests.
type Backend struct {
	dimensions int

	// GenerateFunc is called by Generate if set.
	// If nil, the default deterministic behavior is used.
	GenerateFunc func(ctx context.Context, text string) ([]float32, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.EmbeddingBackend = (*Backend)(nil)

// NewBackend creates a deterministic mock backend with the given output
// dimensionality. Returns the concrete type to allow test assertions.
func NewBackend(dimensions int) *Backend {
	return &Backend{dimensions: dimensions}
}

// Generate derives a deterministic unit-norm vector from the text digest.
func (b *Backend) Generate(ctx context.Context, text string) ([]float32, error) {
	b.mu.Lock()
	b.callCount++
	fn := b.GenerateFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}

	return deterministicVector(text, b.dimensions), nil
}

// ModelName returns the fixed mock model identifier.
func (b *Backend) ModelName() string {
	return modelName
}

// Dimensions returns the configured output dimensionality.
func (b *Backend) Dimensions() int {
	return b.dimensions
}

// CallCount returns the number of times Generate was called.
func (b *Backend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.callCount
}

// Reset clears the call count and any injected behavior.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callCount = 0
	b.GenerateFunc = nil
}

// deterministicVector derives one pseudo-random component per dimension from
// a SHA-256 digest of the text and the dimension index, clamps each to
// [-1, 1], then L2-normalizes the whole vector.
func deterministicVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		sum := sha256.Sum256([]byte(text + "-" + strconv.Itoa(i)))
		val := math.Float32frombits(binary.LittleEndian.Uint32(sum[:4]))
		val /= 1e38
		switch {
		case math.IsNaN(float64(val)):
			val = 0
		case val > 1:
			val = 1
		case val < -1:
			val = -1
		}
		vector[i] = val
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sumSquares); norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}
	return vector
}

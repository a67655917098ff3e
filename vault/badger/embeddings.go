package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/vault"
)

// HasEmbedding reports whether any embedding is stored for the document,
// regardless of model.
func (s *Store) HasEmbedding(ctx context.Context, id string) (bool, error) {
	found := false

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEmbeddingKey(id)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		found = iter.Valid()
		return nil
	}, false)

	return found, err
}

// StoreEmbedding stores a vector keyed by (document id, model name).
// Vectors whose length differs from the configured dimensionality are
// rejected with vault.ErrDimensionMismatch before anything is written.
func (s *Store) StoreEmbedding(ctx context.Context, id string, vector []float32, modelName string) error {
	if len(vector) != s.embeddingDim {
		return vault.ErrDimensionMismatch
	}

	rec := &vault.EmbeddingRecord{
		DocID:     id,
		ModelName: modelName,
		Vector:    vector,
		CreatedAt: time.Now().UTC(),
	}

	err := s.withTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(id, modelName), vault.MarshalEmbeddingRecord(rec)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("stored embedding", "id", id, "model", modelName)
	return nil
}

// SearchSemantic scans every stored embedding, computes cosine distance to
// the query vector, and returns up to limit matches ascending by distance.
// A document embedded under several models contributes its nearest match.
func (s *Store) SearchSemantic(ctx context.Context, vector []float32, limit int) ([]vault.SemanticMatch, error) {
	best := make(map[string]float32)

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec *vault.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				rec, err = vault.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			dist := cosineDistance(vector, rec.Vector)
			if prev, ok := best[rec.DocID]; !ok || dist < prev {
				best[rec.DocID] = dist
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	results := make([]vault.SemanticMatch, 0, len(best))
	for id, dist := range best {
		results = append(results, vault.SemanticMatch{ID: id, Distance: dist})
	}

	// Ascending by distance, ID as a deterministic tie-break
	slices.SortFunc(results, func(a, b vault.SemanticMatch) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return cmpString(a.ID, b.ID)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cosineDistance returns 1 - cosine similarity. Zero-norm vectors are
// treated as maximally distant.
func cosineDistance(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return float32(1 - sim)
}

package confidence

import (
	"testing"

	"github.com/poiesic/docent/core"
	"github.com/stretchr/testify/assert"
)

func TestScorer_HighTrustInput(t *testing.T) {
	s := NewScorer()

	breakdown := s.Score(Input{
		Source:             "human",
		Precision:          "exact",
		HasBody:            true,
		HasTags:            true,
		HasLinks:           true,
		HasObservedAt:      true,
		CorroborationCount: 5,
	})

	assert.GreaterOrEqual(t, breakdown.FinalScore, 0.9)
	assert.Equal(t, 1.0, breakdown.SourceScore)
	assert.Equal(t, 1.0, breakdown.PrecisionScore)
	assert.Equal(t, 1.0, breakdown.CompletenessScore)
	assert.Equal(t, 1.0, breakdown.CorroborationBonus)
}

func TestScorer_LowTrustInput(t *testing.T) {
	s := NewScorer()

	breakdown := s.Score(Input{
		Source:        "ai",
		Precision:     "approximate",
		HasBody:       true,
		HasObservedAt: true,
	})

	assert.Less(t, breakdown.FinalScore, 0.7)
}

func TestScorer_SourceWeights(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		source string
		want   float64
	}{
		{"human", 1.0},
		{"manual", 1.0},
		{"import", 0.9},
		{"api", 0.85},
		{"ai", 0.7},
		{"ai-generated", 0.7},
		{"inferred", 0.5},
		{"unknown", 0.6},
		{"", 0.6},          // empty falls back to unknown
		{"telepathy", 0.6}, // unmatched falls back to unknown
		{"HUMAN", 1.0},     // case-insensitive
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			breakdown := s.Score(Input{Source: tt.source, Precision: "day"})
			assert.Equal(t, tt.want, breakdown.SourceScore)
		})
	}
}

func TestScorer_PrecisionWeights(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		precision string
		want      float64
	}{
		{"exact", 1.0},
		{"day", 0.95},
		{"week", 0.85},
		{"month", 0.75},
		{"quarter", 0.65},
		{"approximate", 0.5},
		{"inferred", 0.4},
		{"fuzzy", 0.5}, // unmatched falls back to approximate
		{"Day", 0.95},  // case-insensitive
	}

	for _, tt := range tests {
		t.Run(tt.precision, func(t *testing.T) {
			breakdown := s.Score(Input{Precision: tt.precision})
			assert.Equal(t, tt.want, breakdown.PrecisionScore)
		})
	}
}

func TestScorer_Completeness(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 0.0, s.Score(Input{Precision: "day"}).CompletenessScore)
	assert.Equal(t, 0.25, s.Score(Input{Precision: "day", HasBody: true}).CompletenessScore)
	assert.Equal(t, 0.5, s.Score(Input{Precision: "day", HasBody: true, HasTags: true}).CompletenessScore)
	assert.Equal(t, 1.0, s.Score(Input{
		Precision: "day", HasBody: true, HasTags: true, HasLinks: true, HasObservedAt: true,
	}).CompletenessScore)
}

func TestScorer_CorroborationMonotonicAndBounded(t *testing.T) {
	s := NewScorer()

	prev := -1.0
	for count := 0; count <= 20; count++ {
		in := DefaultInput()
		in.Source = "human"
		in.HasBody = true
		in.CorroborationCount = count
		got := s.Score(in).FinalScore

		assert.GreaterOrEqual(t, got, prev, "count %d decreased the score", count)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
}

func TestScorer_CorroborationSaturatesAtFive(t *testing.T) {
	s := NewScorer()

	at5 := s.Score(Input{Precision: "day", CorroborationCount: 5})
	at9 := s.Score(Input{Precision: "day", CorroborationCount: 9})
	assert.Equal(t, 1.0, at5.CorroborationBonus)
	assert.Equal(t, at5.FinalScore, at9.FinalScore)
}

func TestScorer_OverweightedConfigStillClamped(t *testing.T) {
	// Weights summing above 1 can push the weighted sum past 1 before the
	// final clamp.
	s := NewScorer(
		WithSourceWeight(1.0),
		WithPrecisionWeight(1.0),
		WithCompletenessWeight(1.0),
		WithCorroborationWeight(1.0),
	)

	breakdown := s.Score(Input{
		Source:             "human",
		Precision:          "exact",
		HasBody:            true,
		HasTags:            true,
		HasLinks:           true,
		HasObservedAt:      true,
		CorroborationCount: 5,
	})
	assert.Equal(t, 1.0, breakdown.FinalScore)
}

func TestScorer_RoundedToThreeDecimals(t *testing.T) {
	s := NewScorer()

	breakdown := s.Score(Input{Source: "api", Precision: "day", HasBody: true, HasObservedAt: true})
	// 0.3*0.85 + 0.2*0.95 + 0.3*0.5 + 0.2*0 = 0.595
	assert.Equal(t, 0.595, breakdown.FinalScore)
	assert.Equal(t, 0.5, breakdown.CompletenessScore)
}

func TestDefaultInput(t *testing.T) {
	in := DefaultInput()
	assert.Equal(t, "day", in.Precision)
	assert.True(t, in.HasObservedAt)
	assert.False(t, in.HasBody)
	assert.Zero(t, in.CorroborationCount)
}

func TestScoreDocument(t *testing.T) {
	doc := &core.Document{
		Type:       "document",
		Title:      "Notes",
		ObservedAt: "2025-01-01T00:00:00Z",
		Body:       "content",
		Tags:       []string{"person:alice"},
	}

	got := ScoreDocument(doc, 0)
	// 0.3*0.6 + 0.2*0.95 + 0.3*0.75 + 0.2*0 = 0.595
	assert.Equal(t, 0.595, got)
}

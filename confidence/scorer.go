package confidence

import (
	"math"
	"strings"

	"github.com/poiesic/docent/core"
)

// Source type weights. Unmatched sources score as "unknown".
var sourceWeights = map[string]float64{
	"human":        1.0,
	"manual":       1.0,
	"import":       0.9,
	"api":          0.85,
	"ai":           0.7,
	"ai-generated": 0.7,
	"inferred":     0.5,
	"unknown":      0.6,
}

// Temporal precision weights. Unmatched labels score as "approximate".
var precisionWeights = map[string]float64{
	"exact":       1.0,
	"day":         0.95,
	"week":        0.85,
	"month":       0.75,
	"quarter":     0.65,
	"approximate": 0.5,
	"inferred":    0.4,
}

const (
	defaultSourceScore    = 0.6
	defaultPrecisionScore = 0.5
)

// Input carries the signals a score is computed from. DefaultInput returns
// the contract defaults; a zero-value Input scores everything as absent.
type Input struct {
	// Source is the origin label of the record ("human", "import", "ai", ...).
	// Matched case-insensitively; empty scores as "unknown".
	Source string
	// Precision labels how precisely the observed-at timestamp is known.
	Precision string
	// Completeness signals.
	HasBody       bool
	HasTags       bool
	HasLinks      bool
	HasObservedAt bool
	// CorroborationCount is the number of independent sources asserting the
	// same fact. The bonus saturates at 5.
	CorroborationCount int
}

// DefaultInput returns an Input with the contract defaults: day precision,
// observed-at present, everything else absent.
func DefaultInput() Input {
	return Input{
		Precision:     "day",
		HasObservedAt: true,
	}
}

// Scorer computes confidence scores from weighted sub-scores.
//
// The four weights should sum to 1.0 for the final score to stay naturally
// bounded; this is not enforced, but the final score is clamped to 1.0
// regardless.
type Scorer struct {
	sourceWeight        float64
	precisionWeight     float64
	completenessWeight  float64
	corroborationWeight float64
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithSourceWeight sets the weight of the source sub-score. Default 0.3.
func WithSourceWeight(w float64) Option {
	return func(s *Scorer) { s.sourceWeight = w }
}

// WithPrecisionWeight sets the weight of the precision sub-score. Default 0.2.
func WithPrecisionWeight(w float64) Option {
	return func(s *Scorer) { s.precisionWeight = w }
}

// WithCompletenessWeight sets the weight of the completeness sub-score. Default 0.3.
func WithCompletenessWeight(w float64) Option {
	return func(s *Scorer) { s.completenessWeight = w }
}

// WithCorroborationWeight sets the weight of the corroboration bonus. Default 0.2.
func WithCorroborationWeight(w float64) Option {
	return func(s *Scorer) { s.corroborationWeight = w }
}

// NewScorer creates a scorer with the default weights, applying any options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		sourceWeight:        0.3,
		precisionWeight:     0.2,
		completenessWeight:  0.3,
		corroborationWeight: 0.2,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes a confidence score with its full per-factor breakdown.
// It never fails; unknown labels fall back to their documented defaults.
func (s *Scorer) Score(in Input) core.ScoreBreakdown {
	src := strings.ToLower(in.Source)
	if src == "" {
		src = "unknown"
	}
	sourceScore, ok := sourceWeights[src]
	if !ok {
		sourceScore = defaultSourceScore
	}

	precisionScore, ok := precisionWeights[strings.ToLower(in.Precision)]
	if !ok {
		precisionScore = defaultPrecisionScore
	}

	completeness := 0
	for _, present := range []bool{in.HasObservedAt, in.HasBody, in.HasTags, in.HasLinks} {
		if present {
			completeness++
		}
	}
	completenessScore := float64(completeness) / 4.0

	corroborationBonus := math.Min(1.0, float64(in.CorroborationCount)*0.2)

	final := s.sourceWeight*sourceScore +
		s.precisionWeight*precisionScore +
		s.completenessWeight*completenessScore +
		s.corroborationWeight*corroborationBonus

	return core.ScoreBreakdown{
		SourceScore:        round3(sourceScore),
		PrecisionScore:     round3(precisionScore),
		CompletenessScore:  round3(completenessScore),
		CorroborationBonus: round3(corroborationBonus),
		FinalScore:         round3(math.Min(1.0, final)),
	}
}

// ScoreDocument scores a vault document with default weights, returning only
// the final score. Link presence is not checked in this path.
func ScoreDocument(doc *core.Document, corroborationCount int) float64 {
	scorer := NewScorer()
	breakdown := scorer.Score(Input{
		Source:             "unknown",
		Precision:          "day",
		HasBody:            doc.Body != "",
		HasTags:            len(doc.Tags) > 0,
		HasLinks:           false,
		HasObservedAt:      doc.ObservedAt != "",
		CorroborationCount: corroborationCount,
	})
	return breakdown.FinalScore
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

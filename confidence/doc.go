// Package confidence assigns trustworthiness scores to documents.
//
// A score combines four factors: source type (human-authored beats
// AI-generated beats inferred), temporal precision, field completeness, and
// corroboration by independent sources. Scoring never fails; unknown source
// or precision labels fall back to documented defaults.
package confidence

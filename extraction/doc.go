// Package extraction provides rule-based extraction of dates and named
// entities from unstructured text.
//
// Extraction is pattern-driven; no model calls are involved. Extractors are
// pure functions of their inputs, never return errors, and are safe for
// concurrent use. Candidate matches that fail calendar validation are
// dropped silently rather than surfaced.
package extraction

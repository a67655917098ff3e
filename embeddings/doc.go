// Package embeddings generates and stores vector embeddings for documents.
//
// The Generator type reads documents from a vault, folds each one into a
// single composite text (title, body, tags), and sends it to a configured
// embedding backend. Resulting vectors are stored back in the vault keyed
// by document ID and model name.
//
// Embedding is idempotent: documents that already have a stored embedding
// are skipped on subsequent passes. The package also exposes semantic
// search, which embeds a query string and ranks documents by cosine
// distance.
package embeddings

// Package ingestion turns free text and tabular records into enriched vault
// documents.
//
// The Pipeline type handles free text: it derives a title, extracts date
// references and named entities, scores the record's confidence, and commits
// a document, optionally embedding it immediately. File and directory
// ingestion and a non-mutating dry-run mode build on the same path.
//
// The CSVAdapter maps spreadsheet rows to documents, inferring which columns
// carry the title, the observed-at date, and the body unless an explicit
// ColumnMapping overrides detection.
package ingestion

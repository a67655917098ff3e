// Package mock provides a deterministic embedding backend for tests and
// offline pipelines. No network calls are made; vectors are pure functions
// of the input text and the configured dimensionality.
package mock

package ingestion

import "errors"

var (
	// ErrVaultRequired is returned when a vault is not provided.
	ErrVaultRequired = errors.New("vault required")
)

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
//
//   - ErrNotFound: entity does not exist in store (or is inactive)
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidState: entity in wrong lifecycle state for the requested mutation
//   - ErrUnavailable: backing resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

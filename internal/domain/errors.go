package domain

import "errors"

// Sentinel errors shared by the domain, the service layer, and adapters.
// Callers wrap them with context and match with errors.Is.
var (
	// ErrInvalidInput reports malformed or out-of-range input. Nothing is
	// computed or persisted when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports that a referenced road does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports that a road with the same name already exists.
	ErrConflict = errors.New("already exists")

	// ErrUpstreamUnavailable reports that the risk-prediction collaborator
	// could not produce a probability.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

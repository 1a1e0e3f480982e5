package storage

import "errors"

// Common client storage errors
var (
	// ErrDocNotFound indicates that a document does not exist in a collection
	ErrDocNotFound = errors.New("document not found")

	// ErrChangeNotFound indicates that no matching outbox row exists
	ErrChangeNotFound = errors.New("change not found")

	// ErrMetadataNotFound indicates that a metadata key has never been written
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrMissingID indicates that a document lacks the reserved "id" key
	ErrMissingID = errors.New("document has no id")
)

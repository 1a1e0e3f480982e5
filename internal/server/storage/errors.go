package storage

import "errors"

// Common storage errors
var (
	// ErrDocumentNotFound indicates that the document does not exist
	ErrDocumentNotFound = errors.New("document not found")
)

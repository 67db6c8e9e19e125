package docx

import "errors"

// Sentinel errors for document operations.
var (
	// ErrOpen wraps every failure to open or parse a package.
	ErrOpen = errors.New("failed to open document")

	// ErrMissingPart indicates a required package part is absent.
	ErrMissingPart = errors.New("document part missing")

	// ErrDocumentLocked indicates another handle already holds the path.
	ErrDocumentLocked = errors.New("document is already open")

	// ErrClosed indicates an operation on a closed handle.
	ErrClosed = errors.New("document is closed")

	// ErrReadOnly indicates Save on a handle opened with OpenReadOnly.
	ErrReadOnly = errors.New("document opened read-only")

	// ErrSave wraps failures while writing the package back.
	ErrSave = errors.New("failed to save document")
)

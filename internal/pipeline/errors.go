package pipeline

import "errors"

// Sentinel errors for document mutations.
var (
	// ErrUnsupportedImageFormat indicates an image extension other than
	// jpg, jpeg, png, gif or bmp.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")

	// ErrImageNotFound indicates the image file does not exist.
	ErrImageNotFound = errors.New("image file not found")

	// ErrBookmarkNotFound is returned in strict mode when a bookmark has no
	// start marker or no matching end marker.
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

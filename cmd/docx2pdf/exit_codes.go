package main

import (
	"errors"
	"os"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/config"
)

// Exit codes for docx2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful run
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or request
	ExitIO       = 3 // File not found, permission denied
	ExitRenderer = 4 // LibreOffice errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Renderer errors (exit 4)
	if errors.Is(err, docx2pdf.ErrRendererNotFound) ||
		errors.Is(err, docx2pdf.ErrRendererTimeout) ||
		errors.Is(err, docx2pdf.ErrRendererExit) ||
		errors.Is(err, docx2pdf.ErrRendererCrashed) ||
		errors.Is(err, docx2pdf.ErrRendererOutputMissing) {
		return ExitRenderer
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, docx2pdf.ErrTemplateNotFound) ||
		errors.Is(err, docx2pdf.ErrImageNotFound) ||
		errors.Is(err, docx2pdf.ErrDocumentOpen) ||
		errors.Is(err, docx2pdf.ErrDocumentSave) ||
		errors.Is(err, ErrWritePDF) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, docx2pdf.ErrInvalidTemplateName) ||
		errors.Is(err, docx2pdf.ErrUnsupportedImageFormat) ||
		errors.Is(err, docx2pdf.ErrBookmarkNotFound) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

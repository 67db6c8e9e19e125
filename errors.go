package docx2pdf

import (
	"errors"

	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Template errors.
	ErrTemplateNotFound    = errors.New("template not found")
	ErrInvalidTemplateName = errors.New("invalid template name")

	// Document errors.
	ErrDocumentOpen     = docx.ErrOpen
	ErrDocumentLocked   = docx.ErrDocumentLocked
	ErrDocumentSave     = docx.ErrSave
	ErrBookmarkNotFound = pipeline.ErrBookmarkNotFound

	// Image errors.
	ErrUnsupportedImageFormat = pipeline.ErrUnsupportedImageFormat
	ErrImageNotFound          = pipeline.ErrImageNotFound

	// Renderer errors.
	ErrRendererNotFound      = errors.New("LibreOffice not found")
	ErrRendererTimeout       = errors.New("LibreOffice conversion timed out")
	ErrRendererExit          = errors.New("LibreOffice conversion failed")
	ErrRendererCrashed       = errors.New("LibreOffice process crashed")
	ErrRendererOutputMissing = errors.New("generated PDF not found")

	// Pool errors.
	ErrPoolClosed = errors.New("converter pool is closed")
)

package pipeline

import (
	"io"

	"github.com/beevik/etree"

	"github.com/alnah/go-docx2pdf/internal/docx"
)

// Document is the subset of an open DOCX package the text mutations need.
type Document interface {
	Body() *etree.Element
	Headers() []*etree.Element
	Footers() []*etree.Element
}

// MediaDocument is a Document that can also embed media parts.
type MediaDocument interface {
	Document
	AddImage(ext, contentType string, r io.Reader) (string, error)
	NextDrawingID() int
	EnsureNamespace(prefix, uri string)
}

// Compile-time interface check.
var _ MediaDocument = (*docx.Document)(nil)

// textScopes returns the body followed by every header and every footer.
func textScopes(doc Document) []*etree.Element {
	scopes := make([]*etree.Element, 0, 1+len(doc.Headers())+len(doc.Footers()))
	if body := doc.Body(); body != nil {
		scopes = append(scopes, body)
	}
	scopes = append(scopes, doc.Headers()...)
	return append(scopes, doc.Footers()...)
}

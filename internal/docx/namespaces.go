package docx

// XML namespaces used by WordprocessingML and DrawingML parts.
const (
	NamespaceW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	namespacePackageRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	namespaceContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types.
const (
	RelTypeHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RelTypeFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RelTypeImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Package part names.
const (
	PartMainDocument = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartContentTypes = "[Content_Types].xml"
)

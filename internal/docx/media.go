package docx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// relationships returns the Relationship elements of word/_rels/document.xml.rels.
func (d *Document) relationships() []*etree.Element {
	if d.rels == nil || d.rels.Root() == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range d.rels.Root().ChildElements() {
		if c.Tag == "Relationship" {
			out = append(out, c)
		}
	}
	return out
}

// newRelationshipsDocument builds an empty relationships part.
func newRelationshipsDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", namespacePackageRels)
	return doc
}

// nextRelationshipID returns rIdN with N one past the highest numeric id in use.
func (d *Document) nextRelationshipID() string {
	maxID := 0
	for _, rel := range d.relationships() {
		id := rel.SelectAttrValue("Id", "")
		if !strings.HasPrefix(id, "rId") {
			continue
		}
		if n, err := strconv.Atoi(id[3:]); err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

// nextMediaName returns an unused word/media/imageN.ext part name.
func (d *Document) nextMediaName(ext string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("word/media/image%d.%s", n, ext)
		if !d.HasPart(name) {
			return name
		}
	}
}

// AddImage stores the image stream as a new media part, relates it to the
// main document and registers the extension's content type when missing.
// ext is the part extension without dot ("png"), contentType its MIME type.
// Returns the relationship id to reference from a:blip r:embed.
func (d *Document) AddImage(ext, contentType string, r io.Reader) (string, error) {
	if d.closed {
		return "", ErrClosed
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}

	name := d.nextMediaName(ext)
	d.addEntry(name, data)

	relID := d.nextRelationshipID()
	rel := d.rels.Root().CreateElement("Relationship")
	rel.CreateAttr("Id", relID)
	rel.CreateAttr("Type", RelTypeImage)
	rel.CreateAttr("Target", strings.TrimPrefix(name, "word/"))

	d.ensureDefaultContentType(ext, contentType)
	return relID, nil
}

// ensureDefaultContentType adds <Default Extension=ext ContentType=ct/> if absent.
func (d *Document) ensureDefaultContentType(ext, contentType string) {
	root := d.contentTypes.Root()
	for _, c := range root.ChildElements() {
		if c.Tag == "Default" && strings.EqualFold(c.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}

	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)

	// Defaults precede Overrides by convention.
	for i, tok := range root.Child {
		if el, ok := tok.(*etree.Element); ok && el.Tag == "Override" {
			root.InsertChildAt(i, def)
			return
		}
	}
	root.AddChild(def)
}

// NextDrawingID returns one past the highest wp:docPr id in the main part,
// headers and footers. Word rejects duplicate drawing ids.
func (d *Document) NextDrawingID() int {
	maxID := 0
	scopes := append([]*etree.Element{d.main.Root()}, d.headers...)
	scopes = append(scopes, d.footers...)
	for _, scope := range scopes {
		for _, pr := range Descendants(scope, NamespaceWP, "docPr") {
			if n, err := strconv.Atoi(pr.SelectAttrValue("id", "")); err == nil && n > maxID {
				maxID = n
			}
		}
	}
	return maxID + 1
}

// EnsureNamespace declares xmlns:prefix=uri on the main document root
// unless the prefix is already declared.
func (d *Document) EnsureNamespace(prefix, uri string) {
	root := d.main.Root()
	if root.SelectAttr("xmlns:"+prefix) != nil {
		return
	}
	root.CreateAttr("xmlns:"+prefix, uri)
}

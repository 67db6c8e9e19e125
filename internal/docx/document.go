package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// entry is one file of the zip package, in original order.
type entry struct {
	name string
	file *zip.File // nil for parts created after Open
	data []byte    // content of created parts
}

// Document is an open .docx package.
type Document struct {
	path     string
	readOnly bool
	release  func()
	closed   bool

	entries []*entry
	index   map[string]*entry
	parsed  map[string]*etree.Document // XML parts re-serialized on Save

	main         *etree.Document
	body         *etree.Element
	rels         *etree.Document
	contentTypes *etree.Document
	headers      []*etree.Element
	footers      []*etree.Element
}

// Open opens the package at path for mutation.
// The caller must Close the handle; Save persists changes.
func Open(path string) (*Document, error) {
	return open(path, false)
}

// OpenReadOnly opens the package at path for inspection. Save fails.
func OpenReadOnly(path string) (*Document, error) {
	return open(path, true)
}

func open(filePath string, readOnly bool) (*Document, error) {
	release, err := acquirePath(filePath)
	if err != nil {
		return nil, err
	}

	d, err := load(filePath)
	if err != nil {
		release()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, filePath, err)
	}
	d.readOnly = readOnly
	d.release = release
	return d, nil
}

// load reads the whole package into memory and parses the parts the pipeline edits.
func load(filePath string) (*Document, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- caller-provided document path
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("reading zip: %w", err)
	}

	d := &Document{
		path:   filePath,
		index:  make(map[string]*entry, len(zr.File)),
		parsed: make(map[string]*etree.Document),
	}
	for _, f := range zr.File {
		e := &entry{name: f.Name, file: f}
		d.entries = append(d.entries, e)
		d.index[f.Name] = e
	}

	if d.main, err = d.parsePart(PartMainDocument); err != nil {
		return nil, err
	}
	d.body = findChild(d.main.Root(), NamespaceW, "body")
	if d.body == nil {
		return nil, fmt.Errorf("%w: w:body in %s", ErrMissingPart, PartMainDocument)
	}

	if d.contentTypes, err = d.parsePart(PartContentTypes); err != nil {
		return nil, err
	}

	if _, ok := d.index[PartDocumentRels]; ok {
		if d.rels, err = d.parsePart(PartDocumentRels); err != nil {
			return nil, err
		}
	} else {
		d.rels = newRelationshipsDocument()
		d.parsed[PartDocumentRels] = d.rels
		d.addEntry(PartDocumentRels, nil)
	}

	if err := d.loadHeadersFooters(); err != nil {
		return nil, err
	}
	return d, nil
}

// loadHeadersFooters parses header and footer parts in relationship order.
func (d *Document) loadHeadersFooters() error {
	for _, rel := range d.relationships() {
		typ := rel.SelectAttrValue("Type", "")
		if typ != RelTypeHeader && typ != RelTypeFooter {
			continue
		}
		if rel.SelectAttrValue("TargetMode", "") == "External" {
			continue
		}

		name := resolveTarget(rel.SelectAttrValue("Target", ""))
		part, err := d.parsePart(name)
		if err != nil {
			return err
		}

		if typ == RelTypeHeader {
			d.headers = append(d.headers, part.Root())
		} else {
			d.footers = append(d.footers, part.Root())
		}
	}
	return nil
}

// parsePart parses the named XML part and registers it for Save.
func (d *Document) parsePart(name string) (*etree.Document, error) {
	if doc, ok := d.parsed[name]; ok {
		return doc, nil
	}

	raw, err := d.readEntry(name)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s has no root element", ErrMissingPart, name)
	}

	d.parsed[name] = doc
	return doc, nil
}

// readEntry returns the raw bytes of a package entry.
func (d *Document) readEntry(name string) ([]byte, error) {
	e, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	if e.file == nil {
		return e.data, nil
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return raw, nil
}

// addEntry appends a new package entry.
func (d *Document) addEntry(name string, data []byte) {
	e := &entry{name: name, data: data}
	d.entries = append(d.entries, e)
	d.index[name] = e
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// Body returns the w:body element of the main part.
func (d *Document) Body() *etree.Element { return d.body }

// Headers returns the root (w:hdr) of every header part.
func (d *Document) Headers() []*etree.Element { return d.headers }

// Footers returns the root (w:ftr) of every footer part.
func (d *Document) Footers() []*etree.Element { return d.footers }

// HasPart reports whether the package contains the named entry.
func (d *Document) HasPart(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Save writes the package back to its path.
// The new package is written to a temporary file in the same directory and
// renamed over the original, so readers never observe a partial file.
func (d *Document) Save() error {
	if d.closed {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".docx2pdf-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	tmpPath := tmp.Name()

	if err := d.writeTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}

// writeTo serializes every entry into a zip stream.
func (d *Document) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, e := range d.entries {
		if doc, ok := d.parsed[e.name]; ok {
			raw, err := doc.WriteToBytes()
			if err != nil {
				return fmt.Errorf("serializing %s: %w", e.name, err)
			}
			if err := writeEntry(zw, e.name, raw); err != nil {
				return err
			}
			continue
		}

		if e.file != nil {
			if err := zw.Copy(e.file); err != nil {
				return fmt.Errorf("copying %s: %w", e.name, err)
			}
			continue
		}

		if err := writeEntry(zw, e.name, e.data); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Close releases the path lock. Unsaved changes are discarded.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.release != nil {
		d.release()
	}
	return nil
}

// resolveTarget turns a relationship target of word/document.xml into a part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("word", target)
}

// findChild returns the first direct child of parent with the given namespace and local name.
func findChild(parent *etree.Element, ns, local string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, c := range parent.ChildElements() {
		if Is(c, ns, local) {
			return c
		}
	}
	return nil
}

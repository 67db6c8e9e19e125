// Package docxtest builds minimal .docx packages for tests.
package docxtest

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Namespace declarations placed on every generated root element.
const rootNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"`

// Fixture describes the content of a generated package.
// Body, Headers and Footers hold inner XML using the w: prefix.
type Fixture struct {
	Body    string
	Headers []string
	Footers []string
}

// Paragraph returns a w:p holding one run per text.
func Paragraph(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, t := range texts {
		b.WriteString(Run(t))
	}
	b.WriteString("</w:p>")
	return b.String()
}

// Run returns <w:r><w:t>text</w:t></w:r>.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`
}

// BookmarkStart returns a w:bookmarkStart element.
func BookmarkStart(id int, name string) string {
	return fmt.Sprintf(`<w:bookmarkStart w:id="%d" w:name="%s"/>`, id, escape(name))
}

// BookmarkEnd returns a w:bookmarkEnd element.
func BookmarkEnd(id int) string {
	return fmt.Sprintf(`<w:bookmarkEnd w:id="%d"/>`, id)
}

// Write builds the package described by f at dir/name and returns its path.
func Write(tb testing.TB, dir, name string, f Fixture) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	out, err := os.Create(path) // #nosec G304 -- test path
	if err != nil {
		tb.Fatalf("creating fixture: %v", err)
	}
	defer out.Close()

	if err := Build(out, f); err != nil {
		tb.Fatalf("building fixture: %v", err)
	}
	return path
}

// Build writes the package described by f to w.
func Build(w io.Writer, f Fixture) error {
	zw := zip.NewWriter(w)

	var rels, overrides strings.Builder
	relID := 1
	for i := range f.Headers {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header%d.xml"/>`, relID, i+1)
		fmt.Fprintf(&overrides, `<Override PartName="/word/header%d.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`, i+1)
		relID++
	}
	for i := range f.Footers {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer%d.xml"/>`, relID, i+1)
		fmt.Fprintf(&overrides, `<Override PartName="/word/footer%d.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`, i+1)
		relID++
	}

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", xmlHeader +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			overrides.String() +
			`</Types>`},
		{"_rels/.rels", xmlHeader +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{"word/document.xml", xmlHeader +
			`<w:document ` + rootNamespaces + `><w:body>` + f.Body + `</w:body></w:document>`},
		{"word/_rels/document.xml.rels", xmlHeader +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			rels.String() +
			`</Relationships>`},
	}
	for i, h := range f.Headers {
		parts = append(parts, struct{ name, content string }{
			fmt.Sprintf("word/header%d.xml", i+1),
			xmlHeader + `<w:hdr ` + rootNamespaces + `>` + h + `</w:hdr>`,
		})
	}
	for i, ft := range f.Footers {
		parts = append(parts, struct{ name, content string }{
			fmt.Sprintf("word/footer%d.xml", i+1),
			xmlHeader + `<w:ftr ` + rootNamespaces + `>` + ft + `</w:ftr>`,
		})
	}

	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(fw, p.content); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadPart returns the raw content of a package entry.
func ReadPart(tb testing.TB, path, part string) string {
	tb.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		tb.Fatalf("opening %s: %v", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("opening part %s: %v", part, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			tb.Fatalf("reading part %s: %v", part, err)
		}
		return string(data)
	}
	tb.Fatalf("part %s not found in %s", part, path)
	return ""
}

// PartNames lists the entries of the package at path.
func PartNames(tb testing.TB, path string) []string {
	tb.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		tb.Fatalf("opening %s: %v", path, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

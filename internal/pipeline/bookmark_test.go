package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/docx/docxtest"
)

// bookmarked returns a paragraph holding a bookmark around content runs.
func bookmarked(id int, name string, content ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	b.WriteString(docxtest.BookmarkStart(id, name))
	for _, c := range content {
		b.WriteString(docxtest.Run(c))
	}
	b.WriteString(docxtest.BookmarkEnd(id))
	b.WriteString("</w:p>")
	return b.String()
}

// textAfterStart returns the concatenated text of the run following the start marker.
func textAfterStart(t *testing.T, doc Document, name string) string {
	t.Helper()

	start, _ := docx.FindBookmark(doc.Body(), name)
	if start == nil {
		t.Fatalf("bookmark %q not found", name)
	}
	next := start.Parent().ChildElements()
	for i, c := range next {
		if c == start && i+1 < len(next) {
			var s strings.Builder
			for _, leaf := range docx.Descendants(next[i+1], docx.NamespaceW, "t") {
				s.WriteString(leaf.Text())
			}
			return s.String()
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// TestReplaceBookmarks - Content replacement between markers
// ---------------------------------------------------------------------------

func TestReplaceBookmarks(t *testing.T) {
	t.Parallel()

	t.Run("replaces interior and keeps markers", func(t *testing.T) {
		t.Parallel()

		doc, path := openFixture(t, docxtest.Fixture{
			Body: bookmarked(1, "CustomerName", "old", " text"),
		})

		got, err := ReplaceBookmarks(doc, map[string]string{"CustomerName": "  Ada Lovelace "}, false)
		if err != nil {
			t.Fatalf("ReplaceBookmarks() error = %v", err)
		}
		if len(got) != 1 || got[0] != "CustomerName" {
			t.Errorf("replaced = %v, want [CustomerName]", got)
		}

		if text := textAfterStart(t, doc, "CustomerName"); text != "  Ada Lovelace " {
			t.Errorf("text after start = %q, want %q", text, "  Ada Lovelace ")
		}
		if names := ListBookmarks(doc); len(names) != 1 || names[0] != "CustomerName" {
			t.Errorf("ListBookmarks() = %v", names)
		}

		xml := saveAndRead(t, doc, path, docx.PartMainDocument)
		if strings.Contains(xml, "old") {
			t.Errorf("old content survived:\n%s", xml)
		}
		if !strings.Contains(xml, `xml:space="preserve">  Ada Lovelace </w:t>`) {
			t.Errorf("value not preserved verbatim:\n%s", xml)
		}
		if !strings.Contains(xml, "bookmarkEnd") {
			t.Errorf("end marker removed:\n%s", xml)
		}
	})

	t.Run("unmatched bookmarks untouched", func(t *testing.T) {
		t.Parallel()

		doc, _ := openFixture(t, docxtest.Fixture{
			Body: bookmarked(1, "Keep", "original") + bookmarked(2, "Change", "x"),
		})

		if _, err := ReplaceBookmarks(doc, map[string]string{"Change": "y"}, false); err != nil {
			t.Fatalf("ReplaceBookmarks() error = %v", err)
		}
		if text := textAfterStart(t, doc, "Keep"); text != "original" {
			t.Errorf("Keep content = %q, want original", text)
		}
		if text := textAfterStart(t, doc, "Change"); text != "y" {
			t.Errorf("Change content = %q, want y", text)
		}
	})

	t.Run("first start with a duplicated name wins", func(t *testing.T) {
		t.Parallel()

		doc, _ := openFixture(t, docxtest.Fixture{
			Body: bookmarked(1, "dup", "first") + bookmarked(2, "dup", "second"),
		})

		if _, err := ReplaceBookmarks(doc, map[string]string{"dup": "new"}, false); err != nil {
			t.Fatalf("ReplaceBookmarks() error = %v", err)
		}
		var texts []string
		for _, leaf := range docx.TextLeaves(doc.Body()) {
			texts = append(texts, leaf.Text())
		}
		if strings.Join(texts, ",") != "new,second" {
			t.Errorf("texts = %v, want [new second]", texts)
		}
	})

	t.Run("missing end is skipped when lenient", func(t *testing.T) {
		t.Parallel()

		doc, _ := openFixture(t, docxtest.Fixture{
			Body: "<w:p>" + docxtest.BookmarkStart(1, "open") + docxtest.Run("stay") + "</w:p>",
		})

		got, err := ReplaceBookmarks(doc, map[string]string{"open": "x", "absent": "y"}, false)
		if err != nil {
			t.Fatalf("ReplaceBookmarks() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("replaced = %v, want none", got)
		}
		if text := textAfterStart(t, doc, "open"); text != "stay" {
			t.Errorf("content = %q, want stay", text)
		}
	})

	t.Run("strict mode reports missing bookmarks", func(t *testing.T) {
		t.Parallel()

		doc, _ := openFixture(t, docxtest.Fixture{Body: bookmarked(1, "present", "x")})

		_, err := ReplaceBookmarks(doc, map[string]string{"present": "y", "absent": "z"}, true)
		if !errors.Is(err, ErrBookmarkNotFound) {
			t.Errorf("error = %v, want ErrBookmarkNotFound", err)
		}
	})

	t.Run("strict mode reports missing end", func(t *testing.T) {
		t.Parallel()

		doc, _ := openFixture(t, docxtest.Fixture{
			Body: "<w:p>" + docxtest.BookmarkStart(1, "open") + "</w:p>",
		})

		_, err := ReplaceBookmarks(doc, map[string]string{"open": "x"}, true)
		if !errors.Is(err, ErrBookmarkNotFound) {
			t.Errorf("error = %v, want ErrBookmarkNotFound", err)
		}
	})

	t.Run("block level bookmark gets its own paragraph", func(t *testing.T) {
		t.Parallel()

		body := docxtest.BookmarkStart(1, "Block") + docxtest.Paragraph("old") + docxtest.BookmarkEnd(1)
		doc, path := openFixture(t, docxtest.Fixture{Body: body})

		if _, err := ReplaceBookmarks(doc, map[string]string{"Block": "new"}, false); err != nil {
			t.Fatalf("ReplaceBookmarks() error = %v", err)
		}

		children := doc.Body().ChildElements()
		if len(children) != 3 {
			t.Fatalf("body children = %d, want 3", len(children))
		}
		if !docx.Is(children[1], docx.NamespaceW, "p") {
			t.Fatalf("second child = %s, want w:p", children[1].Tag)
		}
		runs := docx.Descendants(children[1], docx.NamespaceW, "r")
		if len(runs) != 1 {
			t.Fatalf("runs in new paragraph = %d, want 1", len(runs))
		}
		if text := textAfterStart(t, doc, "Block"); text != "new" {
			t.Errorf("text after start = %q, want new", text)
		}

		xml := saveAndRead(t, doc, path, docx.PartMainDocument)
		if strings.Contains(xml, "old") {
			t.Errorf("old paragraph survived:\n%s", xml)
		}
	})

	t.Run("empty map", func(t *testing.T) {
		t.Parallel()

		doc, _ := openFixture(t, docxtest.Fixture{Body: bookmarked(1, "a", "x")})
		got, err := ReplaceBookmarks(doc, nil, true)
		if err != nil || got != nil {
			t.Errorf("ReplaceBookmarks(nil) = %v, %v", got, err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestListBookmarks - Read-only listing
// ---------------------------------------------------------------------------

func TestListBookmarks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "document order",
			body: bookmarked(5, "Zeta", "z") + bookmarked(1, "Alpha", "a"),
			want: []string{"Zeta", "Alpha"},
		},
		{
			name: "empty names skipped",
			body: bookmarked(1, "", "x") + bookmarked(2, "Named", "y"),
			want: []string{"Named"},
		},
		{
			name: "none",
			body: docxtest.Paragraph("plain"),
			want: []string{},
		},
		{
			name: "nested in table",
			body: `<w:tbl><w:tr><w:tc>` + bookmarked(3, "Cell", "c") + `</w:tc></w:tr></w:tbl>`,
			want: []string{"Cell"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, _ := openFixture(t, docxtest.Fixture{Body: tt.body})
			got := ListBookmarks(doc)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || len(got) != len(tt.want) {
				t.Errorf("ListBookmarks() = %v, want %v", got, tt.want)
			}
		})
	}
}

package pipeline

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/alnah/go-docx2pdf/internal/docx"
)

// ReplaceBookmarks replaces the content of each named bookmark of the
// document body with the mapped text. The content strictly between the start
// and end markers is removed and a single run holding the value is inserted
// right after the start marker; both markers stay in place.
//
// A name with no start marker, or whose start has no end with the same id,
// is skipped unless strict is set, in which case ErrBookmarkNotFound is
// returned and the remaining names are not processed.
//
// Returns the replaced names in document order.
func ReplaceBookmarks(doc Document, values map[string]string, strict bool) ([]string, error) {
	body := doc.Body()
	if body == nil || len(values) == 0 {
		return nil, nil
	}

	// Walk bookmarks in document order so results do not depend on map order.
	var replaced []string
	done := make(map[string]bool, len(values))
	for _, bm := range docx.Bookmarks(body) {
		value, ok := values[bm.Name]
		if !ok || done[bm.Name] {
			continue
		}
		done[bm.Name] = true

		start, end := docx.FindBookmark(body, bm.Name)
		if end == nil {
			if strict {
				return replaced, fmt.Errorf("%w: %q has no end marker", ErrBookmarkNotFound, bm.Name)
			}
			continue
		}

		docx.RemoveBetween(start, end)
		insertRunAfter(start, docx.NewTextRun(value))
		replaced = append(replaced, bm.Name)
	}

	if strict {
		for name := range values {
			if !done[name] {
				return replaced, fmt.Errorf("%w: %q", ErrBookmarkNotFound, name)
			}
		}
	}
	return replaced, nil
}

// ListBookmarks returns the names of all bookmark starts in the document
// body, in document order. Starts with an empty name are skipped.
func ListBookmarks(doc Document) []string {
	body := doc.Body()
	if body == nil {
		return []string{}
	}

	names := []string{}
	for _, bm := range docx.Bookmarks(body) {
		if bm.Name != "" {
			names = append(names, bm.Name)
		}
	}
	return names
}

// insertRunAfter places run right after the bookmark start marker. Runs are
// only valid inside a paragraph, so a marker at block level (body, table
// cell) gets a new w:p holding the run.
func insertRunAfter(start, run *etree.Element) {
	if docx.Is(start.Parent(), docx.NamespaceW, "p") {
		docx.InsertAfter(start, run)
		return
	}
	p := etree.NewElement("w:p")
	p.CreateElement("w:pPr")
	p.AddChild(run)
	docx.InsertAfter(start, p)
}

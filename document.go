package docx2pdf

import (
	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/pipeline"
)

// ReplaceVariables replaces every occurrence of each key of vars with its
// value in the body, headers and footers of the document at path, then saves
// it. Returns the number of text runs changed.
//
// Keys are matched as literal substrings inside a single text run. With
// overlapping keys ("{{A}}" and "{{A}}X") the result depends on map order.
func ReplaceVariables(path string, vars map[string]string) (int, error) {
	var changed int
	err := editDocument(path, func(doc *docx.Document) (bool, error) {
		changed = pipeline.SubstituteVariables(doc, vars)
		return changed > 0, nil
	})
	return changed, err
}

// ReplaceBookmarks replaces the content of each named bookmark with its
// value as a single text run and saves the document. Bookmarks absent from
// the document are skipped unless strict is set, in which case the document
// is left unchanged and ErrBookmarkNotFound is returned.
// Returns the replaced names in document order.
func ReplaceBookmarks(path string, values map[string]string, strict bool) ([]string, error) {
	var replaced []string
	err := editDocument(path, func(doc *docx.Document) (bool, error) {
		var err error
		replaced, err = pipeline.ReplaceBookmarks(doc, values, strict)
		return len(replaced) > 0, err
	})
	return replaced, err
}

// ReplaceImage replaces the content of the named bookmark with a 2x2 inch
// floating picture of imagePath and saves the document.
//
// The image format (JPEG, PNG, GIF or BMP) and existence are checked before
// the document is opened. A missing bookmark leaves the document untouched;
// the returned bool reports whether the image was placed.
func ReplaceImage(path, bookmark, imagePath string, strict bool) (bool, error) {
	if _, err := pipeline.CheckImage(imagePath); err != nil {
		return false, err
	}

	var injected bool
	err := editDocument(path, func(doc *docx.Document) (bool, error) {
		var err error
		injected, err = pipeline.InjectImage(doc, bookmark, imagePath, strict)
		return injected, err
	})
	return injected, err
}

// Bookmarks returns the bookmark names of the document body in document
// order, without modifying the file. Empty names are skipped.
func Bookmarks(path string) ([]string, error) {
	doc, err := docx.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return pipeline.ListBookmarks(doc), nil
}

// editDocument opens path, applies edit and saves once when edit reports a
// change. An error from edit discards every change.
func editDocument(path string, edit func(*docx.Document) (bool, error)) error {
	doc, err := docx.Open(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	changed, err := edit(doc)
	if err != nil || !changed {
		return err
	}
	return doc.Save()
}

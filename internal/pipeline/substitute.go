package pipeline

import (
	"strings"

	"github.com/alnah/go-docx2pdf/internal/docx"
)

// SubstituteVariables replaces every literal occurrence of each key of vars
// with its value, leaf by leaf, in the body, headers and footers of doc.
// A key split across two text leaves is not matched. When keys overlap the
// result depends on map iteration order.
// Returns the number of text leaves that changed.
func SubstituteVariables(doc Document, vars map[string]string) int {
	if len(vars) == 0 {
		return 0
	}

	changed := 0
	for _, scope := range textScopes(doc) {
		for _, leaf := range docx.TextLeaves(scope) {
			text := leaf.Text()
			updated := text
			for key, value := range vars {
				if key == "" {
					continue
				}
				if strings.Contains(updated, key) {
					updated = strings.ReplaceAll(updated, key, value)
				}
			}
			if updated != text {
				docx.SetLeafText(leaf, updated)
				changed++
			}
		}
	}
	return changed
}

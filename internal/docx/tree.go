package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Bookmark is a named w:bookmarkStart found in a content tree.
type Bookmark struct {
	Name  string
	ID    string
	Start *etree.Element
}

// Is reports whether e has the given namespace URI and local name.
func Is(e *etree.Element, ns, local string) bool {
	return e != nil && e.Tag == local && e.NamespaceURI() == ns
}

// AttrValue returns the value of the attribute with namespace ns and key, or "".
func AttrValue(e *etree.Element, ns, key string) string {
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Key == key && a.NamespaceURI() == ns {
			return a.Value
		}
	}
	return ""
}

// Descendants returns every element below root matching ns and local,
// in document order. root itself is not included.
func Descendants(root *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	walk(root, func(e *etree.Element) {
		if e != root && Is(e, ns, local) {
			out = append(out, e)
		}
	})
	return out
}

// walk visits root and its descendants in pre-order.
func walk(root *etree.Element, visit func(*etree.Element)) {
	if root == nil {
		return
	}
	visit(root)
	for _, c := range root.ChildElements() {
		walk(c, visit)
	}
}

// TextLeaves returns the w:t elements reachable as paragraph → run → text
// under scope. Order is paragraphs in document order, then runs within a
// paragraph, then text leaves within a run. Leaves reachable through nested
// paragraphs (text boxes) are returned once, at their first position.
func TextLeaves(scope *etree.Element) []*etree.Element {
	seen := make(map[*etree.Element]struct{})
	var leaves []*etree.Element

	for _, p := range Descendants(scope, NamespaceW, "p") {
		for _, r := range Descendants(p, NamespaceW, "r") {
			for _, t := range Descendants(r, NamespaceW, "t") {
				if _, dup := seen[t]; dup {
					continue
				}
				seen[t] = struct{}{}
				leaves = append(leaves, t)
			}
		}
	}
	return leaves
}

// Bookmarks returns every bookmark start under scope in document order,
// including ones with an empty name.
func Bookmarks(scope *etree.Element) []Bookmark {
	starts := Descendants(scope, NamespaceW, "bookmarkStart")
	out := make([]Bookmark, 0, len(starts))
	for _, s := range starts {
		out = append(out, Bookmark{
			Name:  AttrValue(s, NamespaceW, "name"),
			ID:    AttrValue(s, NamespaceW, "id"),
			Start: s,
		})
	}
	return out
}

// FindBookmark returns the first start named name and the first end sharing
// its id. Either result is nil when absent.
func FindBookmark(scope *etree.Element, name string) (start, end *etree.Element) {
	for _, b := range Bookmarks(scope) {
		if b.Name == name {
			start = b.Start
			break
		}
	}
	if start == nil {
		return nil, nil
	}

	id := AttrValue(start, NamespaceW, "id")
	for _, e := range Descendants(scope, NamespaceW, "bookmarkEnd") {
		if AttrValue(e, NamespaceW, "id") == id {
			return start, e
		}
	}
	return start, nil
}

// RemoveBetween detaches every sibling token following start up to, but not
// including, end. When end is not a sibling of start the removal runs to the
// end of start's parent. Returns the number of elements removed.
func RemoveBetween(start, end *etree.Element) int {
	parent := start.Parent()
	if parent == nil {
		return 0
	}

	removed := 0
	i := start.Index() + 1
	for i < len(parent.Child) {
		tok := parent.Child[i]
		if el, ok := tok.(*etree.Element); ok {
			if el == end {
				break
			}
			removed++
		}
		parent.RemoveChildAt(i)
	}
	return removed
}

// InsertAfter places el immediately after ref under ref's parent.
func InsertAfter(ref, el *etree.Element) {
	parent := ref.Parent()
	if parent == nil {
		return
	}
	parent.InsertChildAt(ref.Index()+1, el)
}

// NewTextRun builds <w:r><w:t xml:space="preserve">text</w:t></w:r>.
func NewTextRun(text string) *etree.Element {
	r := etree.NewElement("w:r")
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return r
}

// SetLeafText replaces the text of a w:t element. Leading or trailing
// whitespace in the new value gets xml:space="preserve" so renderers keep it.
func SetLeafText(t *etree.Element, text string) {
	t.SetText(text)
	if text == "" || t.SelectAttr("xml:space") != nil {
		return
	}
	if hasOuterSpace(text) {
		t.CreateAttr("xml:space", "preserve")
	}
}

func hasOuterSpace(s string) bool {
	return strings.TrimSpace(s) != s
}

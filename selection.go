package vcedit

import (
	"fmt"

	"golang.org/x/net/html"
)

// Point addresses a caret position: a paragraph index and an offset inside it.
type Point struct {
	Paragraph int `json:"paragraph"`
	Offset    int `json:"offset"`
}

// Compare orders points in document order.
func (p Point) Compare(o Point) int {
	switch {
	case p.Paragraph != o.Paragraph:
		return p.Paragraph - o.Paragraph
	default:
		return p.Offset - o.Offset
	}
}

// Selection is a pair of points. It has no direction of its own: End may
// precede Start, in which case the selection is backwards.
type Selection struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Collapse returns a collapsed selection at p.
func Collapse(p Point) Selection {
	return Selection{Start: p, End: p}
}

// Backwards reports whether End precedes Start.
func (s Selection) Backwards() bool {
	return s.End.Compare(s.Start) < 0
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Normalize returns the selection with Start before End.
func (s Selection) Normalize() Selection {
	if s.Backwards() {
		return Selection{Start: s.End, End: s.Start}
	}
	return s
}

// Caret is a position in the tree: a text node and a grapheme offset in its
// text, or an element and a child index.
type Caret struct {
	Node   *html.Node
	Offset int
	Path   NodePath
}

// Caret maps a point of the model onto the tree.
func (t *Tree) Caret(p Point) (Caret, error) {
	leaf, err := t.leafAt(p.Paragraph)
	if err != nil {
		return Caret{}, err
	}
	typ, err := t.typeOf(leaf)
	if err != nil {
		return Caret{}, err
	}
	_, spans := readLeaf(leaf, typ, t.schema)

	c := Caret{Node: leaf, Offset: 0}
	found := false
	for _, s := range spans {
		if s.node.Type == html.TextNode {
			if p.Offset >= s.start && p.Offset <= s.end {
				c = Caret{Node: s.node, Offset: p.Offset - s.start}
				found = true
				break
			}
			continue
		}
		// caret right before a line break
		if p.Offset == s.start {
			c = Caret{Node: s.node.Parent, Offset: getChildIndex(s.node.Parent, s.node)}
			found = true
			break
		}
	}
	if !found && len(spans) > 0 && p.Offset > 0 {
		last := spans[len(spans)-1]
		if last.node.Type == html.TextNode {
			c = Caret{Node: last.node, Offset: last.end - last.start}
		} else {
			c = Caret{Node: last.node.Parent, Offset: getChildIndex(last.node.Parent, last.node) + 1}
		}
	}

	path, err := GetPath(t.root, c.Node)
	if err != nil {
		return Caret{}, fmt.Errorf("%w: %v", ErrTreeOutOfSync, err)
	}
	c.Path = path
	return c, nil
}

// PointAt maps a tree position back onto the model. For a text node offset
// counts grapheme clusters; for an element it is a child index.
func (t *Tree) PointAt(node *html.Node, offset int) (Point, error) {
	leaf := t.leafOf(node)
	if leaf == nil {
		return Point{}, fmt.Errorf("%w: position is not inside a paragraph", ErrTreeOutOfSync)
	}
	index, err := t.IndexOf(leaf)
	if err != nil {
		return Point{}, err
	}
	typ, err := t.typeOf(leaf)
	if err != nil {
		return Point{}, err
	}
	p, spans := readLeaf(leaf, typ, t.schema)

	pos := 0
	if node.Type == html.TextNode {
		for _, s := range spans {
			if s.node == node {
				pos = s.start + min(max(offset, 0), s.end-s.start)
				break
			}
		}
	} else {
		// everything read before the boundary between child offset-1 and
		// child offset of node
		order := make(map[*html.Node]int)
		preorder(leaf, order)
		for _, s := range spans {
			before := order[s.node] < order[node]
			if idx := childIndexContaining(node, s.node); idx >= 0 {
				before = idx < offset
			}
			if before {
				pos = s.end
			}
		}
	}
	return Point{Paragraph: index, Offset: min(pos, p.Len())}, nil
}

// childIndexContaining returns the index of the child of parent that is n or
// an ancestor of n, or -1 when n is not below parent.
func childIndexContaining(parent, n *html.Node) int {
	for ; n != nil; n = n.Parent {
		if n.Parent == parent {
			return getChildIndex(parent, n)
		}
	}
	return -1
}

func preorder(n *html.Node, order map[*html.Node]int) {
	order[n] = len(order)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		preorder(c, order)
	}
}

package vcedit

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// htmlSpace is the set of characters HTML collapses.
const htmlSpace = " \t\n\f\r"

const nbsp = "\u00a0"

// fillLeaf replaces the content of leaf with the inline rendering of p.
//
// Markups become nested inline elements, "\n" becomes <br>, and spaces that
// HTML would collapse are written as non-breaking spaces. A leaf whose text is
// empty or ends in a line break gets a trailing placeholder <br> so that it
// keeps a line box; void block types get no content at all.
func fillLeaf(leaf *html.Node, p Paragraph, s *Schema) {
	for c := leaf.FirstChild; c != nil; c = leaf.FirstChild {
		leaf.RemoveChild(c)
	}
	if s.isVoid(p.Type()) {
		return
	}

	gs := displayGraphemes(p.Text())
	n := len(gs)

	points := []int{0, n}
	for _, m := range p.markups {
		points = append(points, m.Start, m.End)
	}
	slices.Sort(points)
	points = slices.Compact(points)

	type open struct {
		m    Markup
		node *html.Node
	}
	var stack []open
	parent := func() *html.Node {
		if len(stack) == 0 {
			return leaf
		}
		return stack[len(stack)-1].node
	}

	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if a >= b || a < 0 || b > n {
			continue
		}

		var active []Markup
		for _, m := range p.markups {
			if m.Start <= a && m.End >= b {
				active = append(active, m)
			}
		}
		// earlier and longer markups wrap the others
		slices.SortStableFunc(active, func(x, y Markup) int {
			return cmp.Or(cmp.Compare(x.Start, y.Start), cmp.Compare(y.End, x.End), compareMarkups(x, y))
		})

		keep := 0
		for keep < len(stack) && keep < len(active) && stack[keep].m == active[keep] {
			keep++
		}
		stack = stack[:keep]
		for _, m := range active[keep:] {
			el := newElement(m.Type)
			if m.Href != "" {
				setAttr(el, "href", m.Href)
			}
			parent().AppendChild(el)
			stack = append(stack, open{m: m, node: el})
		}

		appendInline(parent(), gs[a:b])
	}

	if n == 0 || gs[n-1] == "\n" {
		leaf.AppendChild(newElement("br"))
	}
}

// appendInline appends graphemes to parent as text nodes, turning "\n" into <br>.
func appendInline(parent *html.Node, gs []string) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			parent.AppendChild(newText(buf.String()))
			buf.Reset()
		}
	}
	for _, g := range gs {
		if g == "\n" {
			flush()
			parent.AppendChild(newElement("br"))
			continue
		}
		buf.WriteString(g)
	}
	flush()
}

// displayGraphemes splits text into grapheme clusters and replaces every space
// HTML would collapse by a non-breaking space: spaces at the start or end of a
// line, and every second space of a run.
func displayGraphemes(text string) []string {
	var gs []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		gs = append(gs, g.Str())
	}

	prevSpace := true // line start
	for i, c := range gs {
		switch {
		case c == "\n":
			prevSpace = true
		case c == " ":
			lineEnd := i+1 == len(gs) || gs[i+1] == "\n"
			if prevSpace || lineEnd {
				gs[i] = nbsp
				prevSpace = false
			} else {
				prevSpace = true
			}
		default:
			prevSpace = false
		}
	}
	return gs
}

// span records the paragraph offsets [start, end) contributed by one text
// node or <br> of a leaf.
type span struct {
	node       *html.Node
	start, end int
}

// leafReader turns leaf content back into paragraph text and markups,
// following the HTML whitespace rules a browser applies when displaying it.
type leafReader struct {
	schema *Schema
	pre    bool

	buf     strings.Builder
	n       int
	markups []Markup
	spans   []span

	pendingSpace bool
	lineStart    bool
	lastBr       bool
}

// readLeaf reads the paragraph of type typ held by leaf.
func readLeaf(leaf *html.Node, typ string, s *Schema) (Paragraph, []span) {
	if s.isVoid(typ) {
		return FromText("", typ), nil
	}
	r := &leafReader{schema: s, pre: leaf.Data == "pre", lineStart: true}
	r.walk(leaf)

	text := r.buf.String()
	if r.lastBr {
		// placeholder line break
		text = strings.TrimSuffix(text, "\n")
	}
	return NewParagraph(typ, text, r.markups...).MergeAdjacent(), r.spans
}

func (r *leafReader) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			r.text(c)
		case html.ElementNode:
			if c.Data == "br" {
				r.pendingSpace = false
				r.emit(c, "\n")
				r.lineStart = true
				r.lastBr = true
				continue
			}
			typ, ok := r.schema.markupType(c.Data)
			if !ok {
				r.walk(c)
				continue
			}
			r.flushSpace()
			start := r.n
			r.walk(c)
			r.flushSpace()
			r.markups = append(r.markups, Markup{Type: typ, Start: start, End: r.n, Href: getAttr(c, "href")})
		}
	}
}

func (r *leafReader) text(c *html.Node) {
	var piece strings.Builder
	if r.pre {
		piece.WriteString(c.Data)
	} else {
		for _, ch := range c.Data {
			if strings.ContainsRune(htmlSpace, ch) {
				r.pendingSpace = true
				continue
			}
			if r.pendingSpace && !r.lineStart {
				piece.WriteByte(' ')
			}
			r.pendingSpace = false
			r.lineStart = false
			piece.WriteRune(ch)
		}
	}
	s := strings.ReplaceAll(piece.String(), nbsp, " ")
	if s == "" {
		r.spans = append(r.spans, span{node: c, start: r.n, end: r.n})
		return
	}
	r.emit(c, norm.NFC.String(s))
	r.lineStart = false
	r.lastBr = false
}

// flushSpace writes a collapsed space that is still pending, so that it lands
// on the correct side of a markup boundary. It belongs to the last text node.
func (r *leafReader) flushSpace() {
	if !r.pendingSpace || r.lineStart {
		return
	}
	r.pendingSpace = false
	r.buf.WriteByte(' ')
	r.n++
	if k := len(r.spans) - 1; k >= 0 && r.spans[k].node.Type == html.TextNode {
		r.spans[k].end++
	}
}

func (r *leafReader) emit(node *html.Node, s string) {
	start := r.n
	r.buf.WriteString(s)
	r.n += uniseg.GraphemeClusterCount(s)
	r.spans = append(r.spans, span{node: node, start: start, end: r.n})
}

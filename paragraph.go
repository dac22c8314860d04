package vcedit

import (
	"slices"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// DefaultType is the block type of a paragraph created without one.
const DefaultType = "p"

// Paragraph is one block of the document: its block type, its text and the
// inline markups over it. Paragraph is an immutable value; every method that
// changes it returns a new Paragraph.
//
// Offsets count grapheme clusters, so Len may be smaller than len(Text()).
// A "\n" in the text is a forced line break and counts as one offset.
type Paragraph struct {
	typ     string
	text    string
	markups []Markup
}

// FromText creates a paragraph of the given type (DefaultType when omitted)
// with no markups. The text is normalized the way it reads back from a tree;
// see normalizeText.
func FromText(text string, typ ...string) Paragraph {
	t := DefaultType
	if len(typ) > 0 && typ[0] != "" {
		t = typ[0]
	}
	return Paragraph{typ: t, text: normalizeText(text)}
}

var textReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
	"\f", " ",
	nbsp, " ",
)

// normalizeText puts paragraph text in canonical form: carriage returns become
// "\n", tabs, form feeds and non-breaking spaces become plain spaces, and the
// result is NFC. Non-breaking spaces are how a leaf keeps runs of spaces, so a
// paragraph cannot tell them apart from spaces.
func normalizeText(s string) string {
	return norm.NFC.String(textReplacer.Replace(s))
}

// NewParagraph creates a paragraph with markups. Markups are clipped to the
// text and sorted; they are not coalesced.
func NewParagraph(typ, text string, markups ...Markup) Paragraph {
	p := FromText(text, typ)
	p.markups = normalizeMarkups(markups, p.Len())
	return p
}

// Type returns the block type, e.g. "p", "h2" or "ol".
func (p Paragraph) Type() string {
	if p.typ == "" {
		return DefaultType
	}
	return p.typ
}

// Text returns the paragraph text.
func (p Paragraph) Text() string {
	return p.text
}

// Len returns the number of addressable offsets in the paragraph.
func (p Paragraph) Len() int {
	return uniseg.GraphemeClusterCount(p.text)
}

// Markups returns a copy of the paragraph markups, ordered by type then start.
func (p Paragraph) Markups() []Markup {
	return slices.Clone(p.markups)
}

// WithType returns a copy of p with another block type.
func (p Paragraph) WithType(typ string) Paragraph {
	p.typ = typ
	return p
}

// Substring returns the paragraph between offsets start and end.
// A negative end means the end of the paragraph. Markups are clipped and shifted.
func (p Paragraph) Substring(start, end int) Paragraph {
	bounds := graphemeBounds(p.text)
	n := len(bounds) - 1
	if end < 0 || end > n {
		end = n
	}
	start = min(max(start, 0), end)

	out := Paragraph{typ: p.typ, text: p.text[bounds[start]:bounds[end]]}
	for _, m := range p.markups {
		s, e := max(m.Start, start), min(m.End, end)
		if s >= e {
			continue
		}
		m.Start, m.End = s-start, e-start
		out.markups = append(out.markups, m)
	}
	return out
}

// Append returns p followed by other. The block type of p is kept.
func (p Paragraph) Append(other Paragraph) Paragraph {
	shift := p.Len()
	out := Paragraph{typ: p.typ, text: normalizeText(p.text + other.text)}
	out.markups = slices.Clone(p.markups)
	for _, m := range other.markups {
		m.Start += shift
		m.End += shift
		out.markups = append(out.markups, m)
	}
	out.markups = coalesceMarkups(normalizeMarkups(out.markups, out.Len()))
	return out
}

// Equals reports whether p and other have the same type, text and markups.
func (p Paragraph) Equals(other Paragraph) bool {
	return p.Type() == other.Type() && p.text == other.text && slices.Equal(p.markups, other.markups)
}

// AddMarkups returns a copy of p with the markups added.
func (p Paragraph) AddMarkups(ms ...Markup) Paragraph {
	all := append(slices.Clone(p.markups), ms...)
	p.markups = normalizeMarkups(all, p.Len())
	return p
}

// RemoveMarkup returns a copy of p with the range of m removed from every
// markup of the same type. Markups that only partly overlap are split.
func (p Paragraph) RemoveMarkup(m Markup) Paragraph {
	p.markups = normalizeMarkups(subtractMarkup(p.markups, m), p.Len())
	return p
}

// MergeAdjacent returns a copy of p where overlapping or touching markups of
// identical type and href are coalesced.
func (p Paragraph) MergeAdjacent() Paragraph {
	p.markups = coalesceMarkups(p.markups)
	return p
}

// graphemeBounds returns the byte offset of every grapheme cluster boundary in
// s, including 0 and len(s).
func graphemeBounds(s string) []int {
	bounds := []int{0}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		_, to := g.Positions()
		bounds = append(bounds, to)
	}
	return bounds
}

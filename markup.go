package vcedit

import (
	"cmp"
	"slices"
)

// Markup is an inline formatting range over paragraph offsets, [Start, End).
// Href is only meaningful for links.
type Markup struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Href  string `json:"href,omitempty"`
}

// Empty reports whether the markup covers no offsets.
func (m Markup) Empty() bool {
	return m.End <= m.Start
}

// sameKind reports whether a and b format text identically and may be coalesced.
func (m Markup) sameKind(o Markup) bool {
	return m.Type == o.Type && m.Href == o.Href
}

func compareMarkups(a, b Markup) int {
	return cmp.Or(
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.Start, b.Start),
		cmp.Compare(a.End, b.End),
		cmp.Compare(a.Href, b.Href),
	)
}

// normalizeMarkups clips every markup to [0, length], drops empty ranges and
// sorts the rest by type then start. The input slice is not modified.
func normalizeMarkups(ms []Markup, length int) []Markup {
	if len(ms) == 0 {
		return nil
	}
	out := make([]Markup, 0, len(ms))
	for _, m := range ms {
		m.Start = max(m.Start, 0)
		m.End = min(m.End, length)
		if m.Empty() {
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	slices.SortFunc(out, compareMarkups)
	return out
}

// coalesceMarkups merges overlapping or touching markups of the same kind.
// ms must already be normalized.
func coalesceMarkups(ms []Markup) []Markup {
	if len(ms) < 2 {
		return ms
	}
	// same-kind markups are not necessarily contiguous when hrefs differ
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(a, b Markup) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Href, b.Href), cmp.Compare(a.Start, b.Start))
	})

	out := []Markup{sorted[0]}
	for _, m := range sorted[1:] {
		last := &out[len(out)-1]
		if last.sameKind(m) && m.Start <= last.End {
			last.End = max(last.End, m.End)
			continue
		}
		out = append(out, m)
	}
	slices.SortFunc(out, compareMarkups)
	return out
}

// subtractMarkup removes [cut.Start, cut.End) from every markup of cut's type.
// An empty Href on cut matches markups of that type regardless of href.
func subtractMarkup(ms []Markup, cut Markup) []Markup {
	var out []Markup
	for _, m := range ms {
		if m.Type != cut.Type || (cut.Href != "" && m.Href != cut.Href) || m.End <= cut.Start || m.Start >= cut.End {
			out = append(out, m)
			continue
		}
		if m.Start < cut.Start {
			left := m
			left.End = cut.Start
			out = append(out, left)
		}
		if m.End > cut.End {
			right := m
			right.Start = cut.End
			out = append(out, right)
		}
	}
	return out
}

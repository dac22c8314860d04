package vcedit

import (
	"errors"
	"slices"
	"testing"

	"golang.org/x/net/html"
)

const caretDoc = `<section><hr><p>ab<strong>cd</strong></p><p><br></p><ol><li>x<br>y</li></ol></section>`

func TestCaret(t *testing.T) {
	tree, _ := loadTree(t, caretDoc)
	root := tree.Root()
	sec := root.FirstChild
	p0 := sec.FirstChild.NextSibling
	ab, cd := p0.FirstChild, p0.LastChild.FirstChild
	p1 := p0.NextSibling
	li := p1.NextSibling.FirstChild
	x, y := li.FirstChild, li.LastChild

	tests := []struct {
		name   string
		point  Point
		node   *html.Node
		offset int
	}{
		{"paragraph start", Point{0, 0}, ab, 0},
		{"node boundary prefers the earlier node", Point{0, 2}, ab, 2},
		{"inside markup", Point{0, 3}, cd, 1},
		{"paragraph end", Point{0, 4}, cd, 2},
		{"past the end clamps", Point{0, 9}, cd, 2},
		{"empty paragraph", Point{1, 0}, p1, 0},
		{"before a line break", Point{2, 1}, x, 1},
		{"after a line break", Point{2, 2}, y, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tree.Caret(tt.point)
			if err != nil {
				t.Fatalf("Caret(%+v): %v", tt.point, err)
			}
			if c.Node != tt.node || c.Offset != tt.offset {
				t.Errorf("Caret(%+v) = (%s, %d), want (%s, %d)", tt.point, c.Node.Data, c.Offset, tt.node.Data, tt.offset)
			}
			want, _ := GetPath(root, tt.node)
			if !slices.Equal(c.Path, want) {
				t.Errorf("Path = %v, want %v", c.Path, want)
			}
		})
	}

	if _, err := tree.Caret(Point{3, 0}); !errors.Is(err, ErrTreeOutOfSync) {
		t.Errorf("Caret past the last paragraph error = %v", err)
	}
}

func TestPointAt(t *testing.T) {
	tree, _ := loadTree(t, caretDoc)
	sec := tree.Root().FirstChild
	hr := sec.FirstChild
	p0 := hr.NextSibling
	strong := p0.LastChild
	li := p0.NextSibling.NextSibling.FirstChild

	tests := []struct {
		name   string
		node   *html.Node
		offset int
		want   Point
	}{
		{"text node", strong.FirstChild, 1, Point{0, 3}},
		{"text offset clamps", p0.FirstChild, 10, Point{0, 2}},
		{"leaf child index", p0, 1, Point{0, 2}},
		{"leaf end", p0, 2, Point{0, 4}},
		{"inline element start", strong, 0, Point{0, 2}},
		{"empty paragraph", p0.NextSibling, 0, Point{1, 0}},
		{"before line break", li, 1, Point{2, 1}},
		{"after line break", li, 2, Point{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tree.PointAt(tt.node, tt.offset)
			if err != nil {
				t.Fatalf("PointAt: %v", err)
			}
			if got != tt.want {
				t.Errorf("PointAt = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := tree.PointAt(hr, 0); !errors.Is(err, ErrTreeOutOfSync) {
		t.Errorf("PointAt(separator) error = %v", err)
	}
}

func TestCaretRoundTrip(t *testing.T) {
	tree, m := loadTree(t, caretDoc)
	for i, p := range m.Paragraphs() {
		for off := 0; off <= p.Len(); off++ {
			pt := Point{i, off}
			c, err := tree.Caret(pt)
			if err != nil {
				t.Fatalf("Caret(%+v): %v", pt, err)
			}
			back, err := tree.PointAt(c.Node, c.Offset)
			if err != nil {
				t.Fatalf("PointAt: %v", err)
			}
			if back != pt {
				t.Errorf("Caret(%+v) maps back to %+v", pt, back)
			}
		}
	}
}

func TestSelection(t *testing.T) {
	s := Selection{Start: Point{2, 1}, End: Point{0, 4}}
	if !s.Backwards() {
		t.Error("Backwards = false for an end before the start")
	}
	if n := s.Normalize(); n.Start != s.End || n.End != s.Start || n.Backwards() {
		t.Errorf("Normalize = %+v", n)
	}
	if s.Collapsed() || !Collapse(Point{1, 1}).Collapsed() {
		t.Error("Collapsed disagrees with the points")
	}
}

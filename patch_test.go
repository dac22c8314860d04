package vcedit

import (
	"errors"
	"testing"

	"github.com/sanity-io/litter"
)

func TestTreeApply(t *testing.T) {
	tests := []struct {
		name    string
		oldHTML string
		deltas  []Delta
		newHTML string
	}{
		{
			name:    "Insert after paragraph",
			oldHTML: `<section><hr><p>One</p></section>`,
			deltas:  []Delta{InsertParagraph(1, FromText("Two"))},
			newHTML: `<section><hr><p>One</p><p>Two</p></section>`,
		},
		{
			name:    "Insert paragraph splits a list",
			oldHTML: `<section><hr><ol><li>One</li><li>Three</li></ol></section>`,
			deltas:  []Delta{InsertParagraph(1, FromText("Two"))},
			newHTML: `<section><hr><ol><li>One</li></ol><p>Two</p><ol><li>Three</li></ol></section>`,
		},
		{
			name:    "Delete section merges into the previous one",
			oldHTML: `<section><hr><p>One</p></section><section><hr><p>Two</p></section>`,
			deltas:  []Delta{DeleteSection(1)},
			newHTML: `<section><hr><p>One</p><p>Two</p></section>`,
		},
		{
			name:    "Update list item to paragraph splits the list",
			oldHTML: `<section><hr><ol><li>One</li><li>Two</li><li>Three</li></ol></section>`,
			deltas:  []Delta{UpdateParagraph(1, FromText("Two"))},
			newHTML: `<section><hr><ol><li>One</li></ol><p>Two</p><ol><li>Three</li></ol></section>`,
		},
		{
			name:    "Update paragraph to list item joins the lists",
			oldHTML: `<section><hr><ol><li>One</li></ol><p>Two</p><ol><li>Three</li></ol></section>`,
			deltas:  []Delta{UpdateParagraph(1, FromText("Two", "ol"))},
			newHTML: `<section><hr><ol><li>One</li><li>Two</li><li>Three</li></ol></section>`,
		},
		{
			name:    "Update text in place",
			oldHTML: `<section><hr><ul><li>One</li><li>Two</li></ul></section>`,
			deltas:  []Delta{UpdateParagraph(1, NewParagraph("ul", "Deux", Markup{Type: "em", Start: 0, End: 4}))},
			newHTML: `<section><hr><ul><li>One</li><li><em>Deux</em></li></ul></section>`,
		},
		{
			name:    "Update between list kinds",
			oldHTML: `<section><hr><ol><li>One</li><li>Two</li></ol></section>`,
			deltas:  []Delta{UpdateParagraph(1, FromText("Two", "ul"))},
			newHTML: `<section><hr><ol><li>One</li></ol><ul><li>Two</li></ul></section>`,
		},
		{
			name:    "Update to a decorated variant does not merge",
			oldHTML: `<section><hr><ul class="checklist"><li>One</li></ul><ul><li>Two</li></ul></section>`,
			deltas:  []Delta{UpdateParagraph(0, FromText("One", "ul"))},
			newHTML: `<section><hr><ul><li>One</li><li>Two</li></ul></section>`,
		},
		{
			name:    "Pullquote and blockquote are different leaves",
			oldHTML: `<section><hr><blockquote>Q</blockquote></section>`,
			deltas:  []Delta{UpdateParagraph(0, FromText("Q", "pullquote"))},
			newHTML: `<section><hr><blockquote class="pullquote">Q</blockquote></section>`,
		},
		{
			name:    "Insert list item continues the previous list",
			oldHTML: `<section><hr><ol><li>One</li></ol><p>End</p></section>`,
			deltas:  []Delta{InsertParagraph(1, FromText("Two", "ol"))},
			newHTML: `<section><hr><ol><li>One</li><li>Two</li></ol><p>End</p></section>`,
		},
		{
			name:    "Insert list item joins the following list",
			oldHTML: `<section><hr><p>Start</p><ol><li>Two</li></ol></section>`,
			deltas:  []Delta{InsertParagraph(1, FromText("One", "ol"))},
			newHTML: `<section><hr><p>Start</p><ol><li>One</li><li>Two</li></ol></section>`,
		},
		{
			name:    "Insert empty paragraph gets a line break",
			oldHTML: `<section><hr><p>One</p></section>`,
			deltas:  []Delta{InsertParagraph(1, FromText(""))},
			newHTML: `<section><hr><p>One</p><p><br></p></section>`,
		},
		{
			name:    "Insert rule stays empty",
			oldHTML: `<section><hr><p>One</p></section>`,
			deltas:  []Delta{InsertParagraph(1, FromText("", "hr"))},
			newHTML: `<section><hr><p>One</p><hr></section>`,
		},
		{
			name:    "Delete paragraph between lists merges them",
			oldHTML: `<section><hr><ol><li>One</li></ol><p>Two</p><ol><li>Three</li></ol></section>`,
			deltas:  []Delta{DeleteParagraph(1)},
			newHTML: `<section><hr><ol><li>One</li><li>Three</li></ol></section>`,
		},
		{
			name:    "Delete last item removes the list",
			oldHTML: `<section><hr><p>One</p><ol><li>Two</li></ol><p>Three</p></section>`,
			deltas:  []Delta{DeleteParagraph(1)},
			newHTML: `<section><hr><p>One</p><p>Three</p></section>`,
		},
		{
			name:    "Delete first paragraph of a section",
			oldHTML: `<section><hr><p>One</p><p>Two</p></section>`,
			deltas:  []Delta{DeleteParagraph(0)},
			newHTML: `<section><hr><p>Two</p></section>`,
		},
		{
			name:    "Insert section splits a list",
			oldHTML: `<section><hr><ol><li>One</li><li>Two</li><li>Three</li></ol></section>`,
			deltas:  []Delta{InsertSection(1, Section{Class: "wide"})},
			newHTML: `<section><hr><ol><li>One</li></ol></section><section class="wide"><hr><ol><li>Two</li><li>Three</li></ol></section>`,
		},
		{
			name:    "Delete section merges lists across the boundary",
			oldHTML: `<section><hr><ol><li>One</li></ol></section><section><hr><ol><li>Two</li></ol><p>Three</p></section>`,
			deltas:  []Delta{DeleteSection(1)},
			newHTML: `<section><hr><ol><li>One</li><li>Two</li></ol><p>Three</p></section>`,
		},
		{
			name:    "Update section class",
			oldHTML: `<section><hr><p>One</p></section><section class="a"><hr><p>Two</p></section>`,
			deltas:  []Delta{UpdateSection(1, Section{Class: "b"}), UpdateSection(0, Section{Class: "top"})},
			newHTML: `<section class="top"><hr><p>One</p></section><section class="b"><hr><p>Two</p></section>`,
		},
		{
			name:    "Clear section class",
			oldHTML: `<section class="a"><hr><p>One</p></section>`,
			deltas:  []Delta{UpdateSection(0, Section{})},
			newHTML: `<section><hr><p>One</p></section>`,
		},
		{
			name:    "Split a paragraph into a list",
			oldHTML: `<section><hr><p>One Two</p></section>`,
			deltas: []Delta{
				UpdateParagraph(0, FromText("One", "ul")),
				InsertParagraph(1, FromText("Two", "ul")),
			},
			newHTML: `<section><hr><ul><li>One</li><li>Two</li></ul></section>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, m := loadTree(t, tt.oldHTML)
			for _, d := range tt.deltas {
				if err := m.Apply(d); err != nil {
					t.Fatalf("model rejected %s: %v", d, err)
				}
				if err := tree.Apply(d); err != nil {
					t.Fatalf("Apply(%s) error = %v", d, err)
				}
			}

			want := normalize(t, tt.newHTML)
			if got := treeHTML(t, tree); got != want {
				t.Errorf("Patch mismatch.\nWant: %s\nGot:  %s", want, got)
			}

			// the tree must describe the same document as the model
			read, err := tree.Model()
			if err != nil {
				t.Fatalf("Model() error = %v", err)
			}
			if !sameModel(read, m) {
				t.Errorf("tree and model disagree.\nTree:  %s\nModel: %s", litter.Sdump(read), litter.Sdump(m))
			}
		})
	}
}

func TestTreeApplyOutOfSync(t *testing.T) {
	tests := []struct {
		name  string
		delta Delta
	}{
		{"update past the last leaf", UpdateParagraph(5, FromText("x"))},
		{"insert at 0", InsertParagraph(0, FromText("x"))},
		{"delete only paragraph", DeleteParagraph(0)},
		{"section where one starts", InsertSection(0, Section{})},
		{"delete missing section", DeleteSection(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := loadTree(t, `<section><hr><p>One</p></section>`)
			err := tree.Apply(tt.delta)
			var terr *TreeError
			if !errors.As(err, &terr) || !errors.Is(err, ErrTreeOutOfSync) {
				t.Errorf("Apply(%s) error = %v, want TreeError wrapping ErrTreeOutOfSync", tt.delta, err)
			}
		})
	}
}

func TestTreeApplyUnknownType(t *testing.T) {
	tree, _ := loadTree(t, `<section><hr><p>One</p></section>`)
	err := tree.Apply(InsertParagraph(1, FromText("x", "marquee")))
	if !errors.Is(err, ErrSchema) {
		t.Errorf("Apply error = %v, want ErrSchema", err)
	}
}

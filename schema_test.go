package vcedit

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadSchema(t *testing.T) {
	const config = `
section: article
separator: ""
blocks:
  p: [{tag: p}]
  todo:
    - {tag: ul, class: "todo compact"}
    - {tag: li}
  callout:
    - {tag: aside, class: callout}
    - {tag: p}
markups: [strong, em]
decorations: [data-level]
`
	s, err := LoadSchema(strings.NewReader(config))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if s.Section != "article" {
		t.Errorf("Section = %q, want article", s.Section)
	}
	if s.Separator != "" {
		t.Errorf("Separator = %q, want it turned off", s.Separator)
	}
	if typ, ok := s.typeOf([]Step{{Tag: "ul", Class: "compact todo"}, {Tag: "li"}}); !ok || typ != "todo" {
		t.Errorf("typeOf(ul.compact.todo>li) = %q, %v", typ, ok)
	}
	if !s.isContainer("aside") || s.isContainer("p") || !s.isLeaf("p") {
		t.Error("container and leaf tags not derived from the chains")
	}
	if typ, ok := s.markupType("b"); !ok || typ != "strong" {
		t.Errorf("markupType(b) = %q, %v; default aliases should apply", typ, ok)
	}
	if _, ok := s.markupType("code"); ok {
		t.Error("markupType(code) should not be known to this schema")
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"not yaml", "blocks: [unclosed"},
		{"no blocks", "section: section"},
		{"empty document", ""},
		{"empty chain", "blocks:\n  p: []"},
		{"step without tag", "blocks:\n  p: [{class: x}]"},
		{"duplicate chain", "blocks:\n  a: [{tag: p}]\n  b: [{tag: p}]"},
		{"tag is container and leaf", "blocks:\n  a: [{tag: div}, {tag: p}]\n  b: [{tag: div}]"},
		{"section tag used by a block", "section: p\nblocks:\n  p: [{tag: p}]"},
		{"separator is a container", "separator: ol\nblocks:\n  ol: [{tag: ol}, {tag: li}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchema(strings.NewReader(tt.config))
			if !errors.Is(err, ErrSchema) {
				t.Errorf("LoadSchema error = %v, want ErrSchema", err)
			}
		})
	}
}

func TestCustomSchemaTree(t *testing.T) {
	s, err := LoadSchema(strings.NewReader(`
section: article
separator: ""
blocks:
  p: [{tag: p}]
  callout: [{tag: aside, class: callout}, {tag: p}]
decorations: [data-level]
`))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}

	root, _ := ParseHTML(`<article><aside class="callout" data-level="1"><p>a</p></aside><aside class="callout" data-level="2"><p>b</p></aside><p>c</p></article>`)
	tree, m, err := LoadTree(root, s)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}

	// asides with different levels must not merge when the paragraph between goes away
	if err := tree.Apply(DeleteParagraph(2)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := tree.Apply(InsertParagraph(1, FromText("mid"))); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := tree.Apply(DeleteParagraph(1)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := normalize(t, `<article><aside class="callout" data-level="1"><p>a</p></aside><aside class="callout" data-level="2"><p>b</p></aside></article>`)
	if got := treeHTML(t, tree); got != want {
		t.Errorf("Want: %s\nGot:  %s", want, got)
	}
}

package vcedit

import (
	"testing"

	"golang.org/x/net/html"
)

func TestPathing(t *testing.T) {
	root, err := ParseHTML(`<section><hr><ol><li>One</li><li>Two</li></ol></section>`)
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}

	// root -> section (0) -> ol (1) -> li (1) -> text "Two" (0)
	targetPath := NodePath{0, 1, 1, 0}

	node, err := GetNode(root, targetPath)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if node.Type != html.TextNode {
		t.Errorf("Expected TextNode, got %d", node.Type)
	}
	if node.Data != "Two" {
		t.Errorf("Expected node data 'Two', got '%s'", node.Data)
	}

	path, err := GetPath(root, node)
	if err != nil {
		t.Fatalf("GetPath failed: %v", err)
	}
	if len(path) != len(targetPath) {
		t.Fatalf("Path length mismatch. Got %v, want %v", path, targetPath)
	}
	for i := range path {
		if path[i] != targetPath[i] {
			t.Errorf("Path mismatch at index %d. Got %d, want %d", i, path[i], targetPath[i])
		}
	}

	if _, err := GetNode(root, NodePath{0, 5}); err == nil {
		t.Error("GetNode should fail past the last child")
	}
	if _, err := GetPath(root, newElement("p")); err == nil {
		t.Error("GetPath should fail for a detached node")
	}
}

func TestSplitAndMerge(t *testing.T) {
	root, _ := ParseHTML(`<ol><li>A</li><li>B</li><li>C</li></ol>`)
	tree := &Tree{root: root, schema: DefaultSchema()}
	ol := root.FirstChild
	b := ol.FirstChild.NextSibling
	chain := []*html.Node{ol, b}

	splitAfter(chain, 0)
	splitBefore(chain, 0)
	got, _ := RenderChildren(root)
	want := `<ol><li>A</li></ol><ol><li>B</li></ol><ol><li>C</li></ol>`
	if got != want {
		t.Fatalf("split mismatch.\nWant: %s\nGot:  %s", want, got)
	}

	tree.mergeAround(ol)
	got, _ = RenderChildren(root)
	want = `<ol><li>A</li><li>B</li><li>C</li></ol>`
	if got != want {
		t.Errorf("merge mismatch.\nWant: %s\nGot:  %s", want, got)
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same list", `<ol></ol>`, `<ol></ol>`, true},
		{"different tags", `<ol></ol>`, `<ul></ul>`, false},
		{"class order ignored", `<ul class="checklist dense"></ul>`, `<ul class="dense checklist"></ul>`, true},
		{"decoration differs", `<ul class="checklist"></ul>`, `<ul></ul>`, false},
		{"leaves never merge", `<p></p>`, `<p></p>`, false},
	}
	tree := &Tree{schema: DefaultSchema()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := ParseHTML(tt.a)
			b, _ := ParseHTML(tt.b)
			if got := tree.compatible(a.FirstChild, b.FirstChild); got != tt.want {
				t.Errorf("compatible(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

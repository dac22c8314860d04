package vcedit

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"
)

// compatible is the merge-compatibility predicate: a and b are containers of
// the same tag with the same decoration. Decoration is the class list,
// compared as a set, plus every attribute the schema lists as decoration.
// Paragraph leaves are never compatible; each one is its own paragraph.
func (t *Tree) compatible(a, b *html.Node) bool {
	if a == nil || b == nil || a.Type != html.ElementNode || b.Type != html.ElementNode {
		return false
	}
	if a.Data != b.Data || !t.schema.isContainer(a.Data) {
		return false
	}
	if !classSet(a).Equal(classSet(b)) {
		return false
	}
	for _, key := range t.schema.Decorations {
		if getAttr(a, key) != getAttr(b, key) {
			return false
		}
	}
	return true
}

func classSet(n *html.Node) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(strings.Fields(getAttr(n, "class"))...)
}

// divergence returns the depth of the first level at which the chains stop
// agreeing. Only container levels are compared, so the result always indexes
// a node of both chains.
func (t *Tree) divergence(a, b []*html.Node) int {
	d := 0
	for d < len(a)-1 && d < len(b)-1 && t.compatible(a[d], b[d]) {
		d++
	}
	return d
}

// splitAfter splits the containers of chain, from the deepest one up to depth
// d, so that nothing follows chain[k+1] inside chain[k]. The trailing content
// moves into shallow clones inserted right after each container.
func splitAfter(chain []*html.Node, d int) {
	for k := len(chain) - 2; k >= d; k-- {
		node, child := chain[k], chain[k+1]
		if child.NextSibling == nil {
			continue
		}
		clone := cloneShallow(node)
		moveSiblingsAfter(child, clone)
		insertAfter(node, clone)
	}
}

// splitBefore is the mirror of splitAfter: afterwards nothing precedes
// chain[k+1] inside chain[k] for every k >= d.
func splitBefore(chain []*html.Node, d int) {
	for k := len(chain) - 2; k >= d; k-- {
		node, child := chain[k], chain[k+1]
		if child.PrevSibling == nil {
			continue
		}
		clone := cloneShallow(node)
		moveSiblingsBefore(child, clone)
		node.Parent.InsertBefore(clone, node)
	}
}

// merge moves the children of b into a and removes b, then merges the two
// nodes that became adjacent at the junction if they are compatible too.
func (t *Tree) merge(a, b *html.Node) {
	left, right := lastElementChild(a), firstElementChild(b)
	moveChildren(b, a)
	b.Parent.RemoveChild(b)
	t.tryMerge(left, right)
}

// tryMerge merges adjacent siblings a and b when they are compatible.
func (t *Tree) tryMerge(a, b *html.Node) bool {
	if a == nil || b == nil || a.Parent == nil || a.Parent != b.Parent || nextElement(a) != b {
		return false
	}
	if !t.compatible(a, b) {
		return false
	}
	t.merge(a, b)
	return true
}

// mergeAround merges n with its previous and next siblings where compatible.
func (t *Tree) mergeAround(n *html.Node) {
	if prev := previousElement(n); t.tryMerge(prev, n) {
		n = prev
	}
	t.tryMerge(n, nextElement(n))
}

// prune removes leaf and every ancestor it leaves empty, up to but not
// including the section. It returns the siblings that surrounded the highest
// removed node.
func (t *Tree) prune(leaf *html.Node) (prev, next *html.Node) {
	chain := t.chain(leaf)
	top := chain[len(chain)-1]
	for k := len(chain) - 2; k >= 0; k-- {
		if firstElementChild(chain[k]) != top || nextElement(top) != nil {
			break
		}
		top = chain[k]
	}
	prev, next = previousElement(top), nextElement(top)
	top.Parent.RemoveChild(top)
	return prev, next
}

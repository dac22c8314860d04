package vcedit

import (
	"fmt"

	"golang.org/x/net/html"
)

// Apply applies a validated delta to the tree. It relies on the tree alone:
// paragraph positions are counted over the leaves, so the model may already
// be ahead of the tree while a batch is pending.
func (t *Tree) Apply(d Delta) error {
	if err := t.applyDelta(d); err != nil {
		return &TreeError{Delta: d, Err: err}
	}
	return nil
}

func (t *Tree) applyDelta(d Delta) error {
	if err := d.checkPayload(); err != nil {
		return err
	}
	switch d.Kind {
	case KindParagraphInsert:
		return t.insertParagraph(d.Index, *d.Paragraph)
	case KindParagraphUpdate:
		return t.updateParagraph(d.Index, *d.Paragraph)
	case KindParagraphDelete:
		return t.deleteParagraph(d.Index)
	case KindSectionInsert:
		return t.insertSection(d.Index, *d.Section)
	case KindSectionUpdate:
		return t.updateSection(d.Index, *d.Section)
	case KindSectionDelete:
		return t.deleteSection(d.Index)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, d.Kind)
	}
}

// insertParagraph grafts p right after leaf index-1. The new chain enters the
// neighbour's containers as deep as they are compatible; deeper containers of
// the neighbour that continue past it are split first.
func (t *Tree) insertParagraph(index int, p Paragraph) error {
	if index <= 0 {
		return fmt.Errorf("%w: paragraph insert needs a previous paragraph", ErrTreeOutOfSync)
	}
	prev, err := t.leafAt(index - 1)
	if err != nil {
		return err
	}
	nodes, err := t.build(p)
	if err != nil {
		return err
	}

	prevChain := t.chain(prev)
	d := t.divergence(nodes, prevChain)
	splitAfter(prevChain, d)
	insertAfter(prevChain[d], detach(nodes[d]))
	t.mergeAround(nodes[d])
	return nil
}

// updateParagraph replaces leaf index with p. When the chains agree all the
// way down the leaf is refilled in place; otherwise the old chain is isolated
// below the divergence depth and swapped for the new one.
func (t *Tree) updateParagraph(index int, p Paragraph) error {
	old, err := t.leafAt(index)
	if err != nil {
		return err
	}
	nodes, err := t.build(p)
	if err != nil {
		return err
	}

	oldChain := t.chain(old)
	d := t.divergence(nodes, oldChain)
	leaf := nodes[len(nodes)-1]
	if d == len(oldChain)-1 && d == len(nodes)-1 && old.Data == leaf.Data && classSet(old).Equal(classSet(leaf)) {
		fillLeaf(old, p, t.schema)
		return nil
	}

	splitAfter(oldChain, d)
	splitBefore(oldChain, d)
	target := oldChain[d]
	target.Parent.InsertBefore(detach(nodes[d]), target)
	target.Parent.RemoveChild(target)
	t.mergeAround(nodes[d])
	return nil
}

// deleteParagraph removes leaf index together with the containers it leaves
// empty, then merges the chains that became adjacent.
func (t *Tree) deleteParagraph(index int) error {
	leaf, err := t.leafAt(index)
	if err != nil {
		return err
	}
	if len(t.sectionLeaves(t.sectionOf(leaf))) == 1 {
		return fmt.Errorf("%w: paragraph %d is the only one of its section", ErrTreeOutOfSync, index)
	}
	prev, next := t.prune(leaf)
	t.tryMerge(prev, next)
	return nil
}

// insertSection splits the tree before leaf index up to the section and moves
// the remainder of the section into a new section placed after it.
func (t *Tree) insertSection(index int, desc Section) error {
	leaf, err := t.leafAt(index)
	if err != nil {
		return err
	}
	sec := t.sectionOf(leaf)
	if t.isSectionStart(sec, leaf) {
		return fmt.Errorf("%w: a section already starts at %d", ErrTreeOutOfSync, index)
	}

	chain := t.chain(leaf)
	splitBefore(chain, 0)

	next := t.newSection(desc)
	for c := chain[0]; c != nil; {
		following := c.NextSibling
		sec.RemoveChild(c)
		next.AppendChild(c)
		c = following
	}
	insertAfter(sec, next)
	return nil
}

// updateSection writes the section descriptor onto the section element.
func (t *Tree) updateSection(index int, desc Section) error {
	sec, err := t.sectionStartingAt(index)
	if err != nil {
		return err
	}
	if desc.Class == "" {
		removeAttr(sec, "class")
	} else {
		setAttr(sec, "class", desc.Class)
	}
	return nil
}

// deleteSection moves the blocks of the section starting at index to the end
// of the previous section, removes the emptied section and merges the
// containers that meet at the former boundary.
func (t *Tree) deleteSection(index int) error {
	sec, err := t.sectionStartingAt(index)
	if err != nil {
		return err
	}
	prevSec := previousElement(sec)
	if !isElement(prevSec, t.schema.Section) {
		return fmt.Errorf("%w: no section before paragraph %d", ErrTreeOutOfSync, index)
	}

	boundary := lastElementChild(prevSec)
	for c := t.firstBlock(sec); c != nil; {
		following := c.NextSibling
		sec.RemoveChild(c)
		prevSec.AppendChild(c)
		c = following
	}
	sec.Parent.RemoveChild(sec)
	t.tryMerge(boundary, nextElement(boundary))
	return nil
}

// sectionStartingAt returns the section element whose first leaf is leaf index.
func (t *Tree) sectionStartingAt(index int) (*html.Node, error) {
	leaf, err := t.leafAt(index)
	if err != nil {
		return nil, err
	}
	sec := t.sectionOf(leaf)
	if !t.isSectionStart(sec, leaf) {
		return nil, fmt.Errorf("%w: no section starts at %d", ErrTreeOutOfSync, index)
	}
	return sec, nil
}

// isSectionStart reports whether leaf is the first leaf of sec.
func (t *Tree) isSectionStart(sec, leaf *html.Node) bool {
	leaves := t.sectionLeaves(sec)
	return len(leaves) > 0 && leaves[0] == leaf
}

package vcedit

import (
	"fmt"

	"golang.org/x/net/html"
)

// Tree is the live nested representation of the document. The root element
// holds section elements; each section holds an optional separator followed by
// blocks, and each block is either a paragraph leaf or a container chain ending
// in paragraph leaves, as declared by the schema.
type Tree struct {
	root   *html.Node
	schema *Schema
}

// LoadTree takes ownership of root, checks that it satisfies the document
// structure, and returns the tree together with the model read from it.
// Whitespace-only text between blocks is removed; any other stray node, a
// section without paragraphs, or a block whose chain the schema does not know
// is reported as ErrMalformed.
func LoadTree(root *html.Node, schema *Schema) (*Tree, *Model, error) {
	if schema == nil {
		schema = DefaultSchema()
	}
	if root == nil || root.Type != html.ElementNode {
		return nil, nil, fmt.Errorf("%w: root must be an element", ErrMalformed)
	}
	t := &Tree{root: root, schema: schema}

	if err := stripBlank(root); err != nil {
		return nil, nil, err
	}
	if root.FirstChild == nil {
		return nil, nil, fmt.Errorf("%w: no sections", ErrMalformed)
	}
	for sec := root.FirstChild; sec != nil; sec = sec.NextSibling {
		if err := t.loadSection(sec); err != nil {
			return nil, nil, err
		}
	}

	m, err := t.Model()
	if err != nil {
		return nil, nil, err
	}
	return t, m, nil
}

// NewTree renders a model into a fresh editor root.
func NewTree(m *Model, schema *Schema) (*Tree, error) {
	if schema == nil {
		schema = DefaultSchema()
	}
	t := &Tree{root: newElement("div"), schema: schema}
	if err := t.Render(m); err != nil {
		return nil, err
	}
	return t, nil
}

// stripBlank removes whitespace-only text and comments from the children of n
// and rejects any other non-element child.
func stripBlank(n *html.Node) error {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode, isBlankText(c):
			n.RemoveChild(c)
		case c.Type != html.ElementNode:
			return fmt.Errorf("%w: stray %q inside <%s>", ErrMalformed, c.Data, n.Data)
		}
		c = next
	}
	return nil
}

func (t *Tree) loadSection(sec *html.Node) error {
	if !isElement(sec, t.schema.Section) {
		return fmt.Errorf("%w: <%s> where <%s> expected", ErrMalformed, sec.Data, t.schema.Section)
	}
	if err := stripBlank(sec); err != nil {
		return err
	}
	block := sec.FirstChild
	if t.schema.Separator != "" {
		if !isElement(block, t.schema.Separator) {
			return fmt.Errorf("%w: section without <%s> separator", ErrMalformed, t.schema.Separator)
		}
		block = block.NextSibling
	}
	if block == nil {
		return fmt.Errorf("%w: section without paragraphs", ErrMalformed)
	}
	for ; block != nil; block = block.NextSibling {
		if err := t.loadBlock(block); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) loadBlock(n *html.Node) error {
	if !t.schema.isContainer(n.Data) {
		if _, err := t.typeOf(n); err != nil {
			return err
		}
		return nil
	}
	if err := stripBlank(n); err != nil {
		return err
	}
	if n.FirstChild == nil {
		return fmt.Errorf("%w: empty <%s> container", ErrMalformed, n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := t.loadBlock(c); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the editor root element.
func (t *Tree) Root() *html.Node {
	return t.root
}

// Schema returns the schema the tree follows.
func (t *Tree) Schema() *Schema {
	return t.schema
}

// HTML renders the content of the editor root.
func (t *Tree) HTML() (string, error) {
	return RenderChildren(t.root)
}

// sections returns the section elements in order.
func (t *Tree) sections() []*html.Node {
	var out []*html.Node
	for c := t.root.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, t.schema.Section) {
			out = append(out, c)
		}
	}
	return out
}

// firstBlock returns the first block of a section, skipping its separator.
func (t *Tree) firstBlock(sec *html.Node) *html.Node {
	c := sec.FirstChild
	for c != nil && c.Type != html.ElementNode {
		c = c.NextSibling
	}
	if c != nil && t.schema.Separator != "" && isElement(c, t.schema.Separator) {
		c = nextElement(c)
	}
	return c
}

// sectionLeaves returns the paragraph leaves of one section in order.
func (t *Tree) sectionLeaves(sec *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if !t.schema.isContainer(n.Data) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				walk(c)
			}
		}
	}
	for b := t.firstBlock(sec); b != nil; b = nextElement(b) {
		walk(b)
	}
	return out
}

// leaves returns every paragraph leaf of the document in order.
func (t *Tree) leaves() []*html.Node {
	var out []*html.Node
	for _, sec := range t.sections() {
		out = append(out, t.sectionLeaves(sec)...)
	}
	return out
}

// Len returns the number of paragraph leaves.
func (t *Tree) Len() int {
	return len(t.leaves())
}

func (t *Tree) leafAt(i int) (*html.Node, error) {
	leaves := t.leaves()
	if i < 0 || i >= len(leaves) {
		return nil, fmt.Errorf("%w: no paragraph %d (tree has %d)", ErrTreeOutOfSync, i, len(leaves))
	}
	return leaves[i], nil
}

// IndexOf returns the paragraph index of the leaf that is n or contains n.
func (t *Tree) IndexOf(n *html.Node) (int, error) {
	leaf := t.leafOf(n)
	if leaf == nil {
		return -1, fmt.Errorf("%w: node is not inside a paragraph", ErrTreeOutOfSync)
	}
	for i, l := range t.leaves() {
		if l == leaf {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: paragraph is not attached to the root", ErrTreeOutOfSync)
}

// leafOf returns the paragraph leaf that is n or one of its ancestors.
func (t *Tree) leafOf(n *html.Node) *html.Node {
	for ; n != nil && n != t.root; n = n.Parent {
		p := n.Parent
		if n.Type != html.ElementNode || p == nil || t.schema.isContainer(n.Data) {
			continue
		}
		switch {
		case isElement(p, t.schema.Section):
			if n == t.separatorOf(p) {
				return nil
			}
			return n
		case p.Type == html.ElementNode && t.schema.isContainer(p.Data):
			return n
		}
	}
	return nil
}

func (t *Tree) separatorOf(sec *html.Node) *html.Node {
	if t.schema.Separator == "" {
		return nil
	}
	for c := sec.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if isElement(c, t.schema.Separator) {
				return c
			}
			return nil
		}
	}
	return nil
}

// chain returns the ancestor chain of a leaf: the nodes from just below the
// section down to the leaf itself.
func (t *Tree) chain(leaf *html.Node) []*html.Node {
	var rev []*html.Node
	for n := leaf; n != nil && !isElement(n, t.schema.Section); n = n.Parent {
		rev = append(rev, n)
	}
	out := make([]*html.Node, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

// sectionOf returns the section element that contains n.
func (t *Tree) sectionOf(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Parent == t.root {
			return n
		}
	}
	return nil
}

// typeOf returns the block type of a leaf, derived from its ancestor chain.
func (t *Tree) typeOf(leaf *html.Node) (string, error) {
	nodes := t.chain(leaf)
	steps := make([]Step, len(nodes))
	for i, n := range nodes {
		steps[i] = Step{Tag: n.Data, Class: getAttr(n, "class")}
	}
	typ, ok := t.schema.typeOf(steps)
	if !ok {
		return "", fmt.Errorf("%w: unknown block chain %s", ErrMalformed, chainKey(steps))
	}
	return typ, nil
}

// Paragraph reads the paragraph value of leaf i from the tree.
func (t *Tree) Paragraph(i int) (Paragraph, error) {
	leaf, err := t.leafAt(i)
	if err != nil {
		return Paragraph{}, err
	}
	return t.read(leaf)
}

func (t *Tree) read(leaf *html.Node) (Paragraph, error) {
	typ, err := t.typeOf(leaf)
	if err != nil {
		return Paragraph{}, err
	}
	p, _ := readLeaf(leaf, typ, t.schema)
	return p, nil
}

// Model reads a complete model from the tree.
func (t *Tree) Model() (*Model, error) {
	var paragraphs []Paragraph
	var sections []Section
	for _, sec := range t.sections() {
		leaves := t.sectionLeaves(sec)
		if len(leaves) == 0 {
			return nil, fmt.Errorf("%w: section without paragraphs", ErrMalformed)
		}
		sections = append(sections, Section{Start: len(paragraphs), Class: getAttr(sec, "class")})
		for _, leaf := range leaves {
			p, err := t.read(leaf)
			if err != nil {
				return nil, err
			}
			paragraphs = append(paragraphs, p)
		}
	}
	m, err := NewModel(paragraphs, sections)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}

// Render replaces the whole content of the tree with the rendering of m.
func (t *Tree) Render(m *Model) error {
	for c := t.root.FirstChild; c != nil; c = t.root.FirstChild {
		t.root.RemoveChild(c)
	}
	for s, desc := range m.sections {
		sec := t.newSection(desc)
		t.root.AppendChild(sec)
		start, end := m.SectionBounds(s)
		for _, p := range m.paragraphs[start:end] {
			if err := t.appendParagraph(sec, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) newSection(desc Section) *html.Node {
	sec := newElement(t.schema.Section)
	if desc.Class != "" {
		setAttr(sec, "class", desc.Class)
	}
	if t.schema.Separator != "" {
		sec.AppendChild(newElement(t.schema.Separator))
	}
	return sec
}

// appendParagraph appends p at the end of sec, entering the trailing
// containers of sec as deep as they are compatible with p's chain.
func (t *Tree) appendParagraph(sec *html.Node, p Paragraph) error {
	nodes, err := t.build(p)
	if err != nil {
		return err
	}
	parent, d := sec, 0
	for d < len(nodes)-1 {
		last := lastElementChild(parent)
		if last == nil || !t.compatible(last, nodes[d]) {
			break
		}
		parent = last
		d++
	}
	parent.AppendChild(detach(nodes[d]))
	return nil
}

// build creates the detached ancestor chain for p, each node nested in the
// previous one, with the leaf filled with p's content.
func (t *Tree) build(p Paragraph) ([]*html.Node, error) {
	steps, ok := t.schema.Chain(p.Type())
	if !ok {
		return nil, fmt.Errorf("%w: unknown block type %q", ErrSchema, p.Type())
	}
	nodes := make([]*html.Node, len(steps))
	for i, st := range steps {
		n := newElement(st.Tag)
		if st.Class != "" {
			setAttr(n, "class", st.Class)
		}
		if i > 0 {
			nodes[i-1].AppendChild(n)
		}
		nodes[i] = n
	}
	fillLeaf(nodes[len(nodes)-1], p, t.schema)
	return nodes, nil
}

func lastElementChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// detach removes n from its parent, if any, and returns it.
func detach(n *html.Node) *html.Node {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

package vcedit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses an HTML fragment and returns an editor root element
// (a <div>) holding the parsed nodes.
func ParseHTML(content string) (*html.Node, error) {
	// parse in <body> context so that block elements are not moved around
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}
	root := newElement("div")
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// RenderNode converts a node tree back to a string.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren renders the children of n, without n itself.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// GetNode traverses the tree using the provided path to find a specific node.
// The path indices refer to positions in the child list, text nodes included.
func GetNode(root *html.Node, path NodePath) (*html.Node, error) {
	current := root
	for i, index := range path {
		child := getChildAtIndex(current, index)
		if child == nil {
			return nil, fmt.Errorf("node not found at path %v (failed at index %d, step %d)", path, index, i)
		}
		current = child
	}
	return current, nil
}

// getChildAtIndex finds the Nth child of a node.
// Note: html.Node's children are a linked list (FirstChild, NextSibling).
func getChildAtIndex(parent *html.Node, index int) *html.Node {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if count == index {
			return c
		}
		count++
	}
	return nil
}

// GetPath finds the path from root to the target node.
func GetPath(root, target *html.Node) (NodePath, error) {
	var path NodePath

	// We build the path backwards from target to root
	current := target
	for current != root {
		parent := current.Parent
		if parent == nil {
			return nil, errors.New("target node is not a descendant of root")
		}

		index := getChildIndex(parent, current)
		if index == -1 {
			return nil, errors.New("integrity error: child not found in parent's list")
		}

		path = append(NodePath{index}, path...)
		current = parent
	}
	return path, nil
}

// getChildIndex returns the index of child within parent.
func getChildIndex(parent, child *html.Node) int {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c == child {
			return count
		}
		count++
	}
	return -1
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func newElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// cloneShallow copies an element and its attributes, without children.
func cloneShallow(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, Data: n.Data, DataAtom: n.DataAtom, Namespace: n.Namespace}
	c.Attr = append([]html.Attribute(nil), n.Attr...)
	return c
}

// insertAfter inserts child into ref's parent right after ref.
func insertAfter(ref, child *html.Node) {
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(child, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(child)
	}
}

// moveSiblingsAfter moves every sibling following ref to the end of dst.
func moveSiblingsAfter(ref, dst *html.Node) {
	for c := ref.NextSibling; c != nil; {
		next := c.NextSibling
		ref.Parent.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// moveSiblingsBefore moves every sibling preceding ref, in order, to the end of dst.
func moveSiblingsBefore(ref, dst *html.Node) {
	for c := ref.Parent.FirstChild; c != nil && c != ref; {
		next := c.NextSibling
		ref.Parent.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// moveChildren moves every child of src to the end of dst.
func moveChildren(src, dst *html.Node) {
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// isBlankText reports whether n is a text node made of HTML whitespace only.
func isBlankText(n *html.Node) bool {
	return n.Type == html.TextNode && strings.Trim(n.Data, htmlSpace) == ""
}

// previousElement returns the closest preceding element sibling of n.
func previousElement(n *html.Node) *html.Node {
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// nextElement returns the closest following element sibling of n.
func nextElement(n *html.Node) *html.Node {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

package vcedit

import (
	"errors"
	"fmt"
)

// NodePath represents the traversal steps from the editor root to a target node.
// Example: [0, 1, 3] means root -> child[0] -> child[1] -> child[3]
type NodePath []int

// Kind identifies one of the six delta operations. The numeric order is
// significant: it is the order used when deltas are compared or reduced.
type Kind int

const (
	KindParagraphInsert Kind = iota // Insert a paragraph before Index
	KindParagraphUpdate             // Replace the paragraph at Index
	KindParagraphDelete             // Remove the paragraph at Index
	KindSectionInsert               // Start a new section at paragraph Index
	KindSectionUpdate               // Replace the descriptor of the section starting at Index
	KindSectionDelete               // Remove the section starting at Index
)

var kindNames = [...]string{
	KindParagraphInsert: "paragraph-insert",
	KindParagraphUpdate: "paragraph-update",
	KindParagraphDelete: "paragraph-delete",
	KindSectionInsert:   "section-insert",
	KindSectionUpdate:   "section-update",
	KindSectionDelete:   "section-delete",
}

var kindByName map[string]Kind

func init() {
	kindByName = make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		kindByName[name] = Kind(k)
	}
}

// ParseKind returns the Kind for its name, e.g. "paragraph-insert".
func ParseKind(name string) (Kind, error) {
	k, ok := kindByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsSection reports whether k operates on sections rather than paragraphs.
func (k Kind) IsSection() bool {
	return k >= KindSectionInsert && k <= KindSectionDelete
}

// HasPayload reports whether deltas of this kind carry a payload.
func (k Kind) HasPayload() bool {
	switch k {
	case KindParagraphInsert, KindParagraphUpdate, KindSectionInsert, KindSectionUpdate:
		return true
	}
	return false
}

// Section describes one section of the document. Start is the index of its
// first paragraph.
type Section struct {
	Start int    `json:"start"`
	Class string `json:"class,omitempty"`
}

// Delta is a single edit to the document.
// Exactly one of Paragraph and Section is set for insert and update kinds;
// both are nil for delete kinds.
type Delta struct {
	Kind      Kind
	Index     int
	Paragraph *Paragraph
	Section   *Section
}

func (d Delta) String() string {
	switch {
	case d.Paragraph != nil:
		return fmt.Sprintf("%s(%d, %s %q)", d.Kind, d.Index, d.Paragraph.Type(), d.Paragraph.Text())
	case d.Section != nil:
		return fmt.Sprintf("%s(%d, %+v)", d.Kind, d.Index, *d.Section)
	}
	return fmt.Sprintf("%s(%d)", d.Kind, d.Index)
}

// Sentinel errors. Validation failures wrap one of the first four; failures
// while mutating the tree wrap ErrTreeOutOfSync.
var (
	// ErrOutOfRange is returned when a delta index is outside the bounds allowed for its kind.
	ErrOutOfRange = errors.New("index out of range")

	// ErrStructure is returned when a delta would break a document invariant.
	ErrStructure = errors.New("document structure violation")

	// ErrUnknownKind is returned for a delta kind outside the known set.
	ErrUnknownKind = errors.New("unknown delta kind")

	// ErrPayload is returned when a delta payload is missing, extra, or of the wrong type.
	ErrPayload = errors.New("invalid delta payload")

	// ErrMalformed is returned when an initial tree does not satisfy the document invariants.
	ErrMalformed = errors.New("malformed document tree")

	// ErrTreeOutOfSync is returned when the live tree does not match what a delta expects.
	ErrTreeOutOfSync = errors.New("tree out of sync with model")

	// ErrSchema is returned for an invalid schema configuration.
	ErrSchema = errors.New("invalid schema")

	// ErrListenerPanic is reported through EventError when a listener panics.
	ErrListenerPanic = errors.New("event listener panicked")
)

// ValidationError reports a delta rejected by the validator.
type ValidationError struct {
	Delta  Delta
	Err    error
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Delta, e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TreeError reports a delta that could not be applied to the tree.
type TreeError struct {
	Delta Delta
	Err   error
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("apply %s to tree: %v", e.Delta, e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

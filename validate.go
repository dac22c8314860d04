package vcedit

import (
	"errors"
	"fmt"
)

// Validate reports whether d may be applied to the model in its current state.
// It never modifies the model. Rejections are *ValidationError values that wrap
// ErrOutOfRange, ErrStructure, ErrUnknownKind or ErrPayload.
func (m *Model) Validate(d Delta) error {
	if err := d.checkPayload(); err != nil {
		return &ValidationError{Delta: d, Err: unwrapSentinel(err), Reason: err.Error()}
	}

	n := len(m.paragraphs)
	reject := func(sentinel error, format string, args ...any) error {
		return &ValidationError{Delta: d, Err: sentinel, Reason: fmt.Sprintf(format, args...)}
	}

	switch d.Kind {
	case KindParagraphInsert:
		// index 0 always belongs to the existing first paragraph
		if d.Index <= 0 || d.Index > n {
			return reject(ErrOutOfRange, "insert index must be in (0, %d]", n)
		}
	case KindParagraphUpdate:
		if d.Index < 0 || d.Index >= n {
			return reject(ErrOutOfRange, "update index must be in [0, %d)", n)
		}
	case KindParagraphDelete:
		if d.Index < 0 || d.Index >= n {
			return reject(ErrOutOfRange, "delete index must be in [0, %d)", n)
		}
		if m.IsSectionStart(d.Index) && (d.Index+1 == n || m.IsSectionStart(d.Index+1)) {
			return reject(ErrStructure, "paragraph %d is the only paragraph of its section", d.Index)
		}
	case KindSectionInsert:
		if d.Index < 0 || d.Index >= n {
			return reject(ErrOutOfRange, "section insert index must be in [0, %d)", n)
		}
		if m.IsSectionStart(d.Index) {
			return reject(ErrStructure, "a section already starts at %d", d.Index)
		}
	case KindSectionUpdate:
		if !m.IsSectionStart(d.Index) {
			return reject(ErrStructure, "no section starts at %d", d.Index)
		}
	case KindSectionDelete:
		if d.Index == 0 {
			return reject(ErrStructure, "the first section cannot be deleted")
		}
		if !m.IsSectionStart(d.Index) {
			return reject(ErrStructure, "no section starts at %d", d.Index)
		}
	default:
		return reject(ErrUnknownKind, "kind %d", int(d.Kind))
	}
	return nil
}

// unwrapSentinel returns the innermost wrapped error.
func unwrapSentinel(err error) error {
	for u := errors.Unwrap(err); u != nil; u = errors.Unwrap(err) {
		err = u
	}
	return err
}

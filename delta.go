package vcedit

import "fmt"

// InsertParagraph returns a delta inserting p before the paragraph at index.
func InsertParagraph(index int, p Paragraph) Delta {
	return Delta{Kind: KindParagraphInsert, Index: index, Paragraph: &p}
}

// UpdateParagraph returns a delta replacing the paragraph at index with p.
func UpdateParagraph(index int, p Paragraph) Delta {
	return Delta{Kind: KindParagraphUpdate, Index: index, Paragraph: &p}
}

// DeleteParagraph returns a delta removing the paragraph at index.
func DeleteParagraph(index int) Delta {
	return Delta{Kind: KindParagraphDelete, Index: index}
}

// InsertSection returns a delta starting a new section at paragraph index.
func InsertSection(index int, s Section) Delta {
	s.Start = index
	return Delta{Kind: KindSectionInsert, Index: index, Section: &s}
}

// UpdateSection returns a delta replacing the section that starts at index.
func UpdateSection(index int, s Section) Delta {
	s.Start = index
	return Delta{Kind: KindSectionUpdate, Index: index, Section: &s}
}

// DeleteSection returns a delta removing the section that starts at index.
func DeleteSection(index int) Delta {
	return Delta{Kind: KindSectionDelete, Index: index}
}

// NewDelta builds a delta from a kind given as a Kind, an int or a kind name.
// The payload must be a Paragraph for paragraph inserts and updates, a Section
// for section inserts and updates, and nil for deletes.
func NewDelta(kind any, index int, payload any) (Delta, error) {
	k, err := toKind(kind)
	if err != nil {
		return Delta{}, err
	}

	d := Delta{Kind: k, Index: index}
	switch v := payload.(type) {
	case nil:
	case Paragraph:
		d.Paragraph = &v
	case *Paragraph:
		d.Paragraph = v
	case Section:
		v.Start = index
		d.Section = &v
	case *Section:
		if v != nil {
			s := *v
			s.Start = index
			d.Section = &s
		}
	default:
		return Delta{}, fmt.Errorf("%w: unsupported payload %T", ErrPayload, payload)
	}
	if err := d.checkPayload(); err != nil {
		return Delta{}, err
	}
	return d, nil
}

func toKind(kind any) (Kind, error) {
	var k Kind
	switch v := kind.(type) {
	case Kind:
		k = v
	case int:
		k = Kind(v)
	case string:
		return ParseKind(v)
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnknownKind, kind)
	}
	if !k.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return k, nil
}

// checkPayload verifies that the payload matches the kind.
func (d Delta) checkPayload() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(d.Kind))
	}
	switch {
	case !d.Kind.HasPayload():
		if d.Paragraph != nil || d.Section != nil {
			return fmt.Errorf("%w: %s takes no payload", ErrPayload, d.Kind)
		}
	case d.Kind.IsSection():
		if d.Section == nil || d.Paragraph != nil {
			return fmt.Errorf("%w: %s requires a section payload", ErrPayload, d.Kind)
		}
	default:
		if d.Paragraph == nil || d.Section != nil {
			return fmt.Errorf("%w: %s requires a paragraph payload", ErrPayload, d.Kind)
		}
	}
	return nil
}

// Reduce collapses a queue of deltas into an equivalent shorter one.
// A paragraph update folds into the entry right before it when that entry is
// an insert or update of the same index; the later payload wins. Everything
// else is kept in order. The input slice is not modified.
func Reduce(deltas []Delta) []Delta {
	out := make([]Delta, 0, len(deltas))
	for _, d := range deltas {
		if n := len(out); n > 0 && d.Kind == KindParagraphUpdate {
			last := &out[n-1]
			if last.Index == d.Index && (last.Kind == KindParagraphInsert || last.Kind == KindParagraphUpdate) {
				last.Paragraph = d.Paragraph
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

package vcedit

import (
	"errors"
	"testing"

	"github.com/sanity-io/litter"
)

func sameDeltas(a, b []Delta) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Index != b[i].Index {
			return false
		}
		switch {
		case (a[i].Paragraph == nil) != (b[i].Paragraph == nil):
			return false
		case a[i].Paragraph != nil && !a[i].Paragraph.Equals(*b[i].Paragraph):
			return false
		case (a[i].Section == nil) != (b[i].Section == nil):
			return false
		case a[i].Section != nil && *a[i].Section != *b[i].Section:
			return false
		}
	}
	return true
}

func TestReduce(t *testing.T) {
	upd := func(i int, s string) Delta { return UpdateParagraph(i, FromText(s)) }
	ins := func(i int, s string) Delta { return InsertParagraph(i, FromText(s)) }

	tests := []struct {
		name  string
		input []Delta
		want  []Delta
	}{
		{
			name:  "updates of one paragraph collapse",
			input: []Delta{upd(2, "1"), upd(2, "2"), upd(2, "3"), upd(4, "foo")},
			want:  []Delta{upd(2, "3"), upd(4, "foo")},
		},
		{
			name:  "updates fold into the insert",
			input: []Delta{upd(2, "foo"), ins(4, "1"), upd(4, "2"), upd(4, "3"), upd(3, "bar")},
			want:  []Delta{upd(2, "foo"), ins(4, "3"), upd(3, "bar")},
		},
		{
			name:  "separated updates stay apart",
			input: []Delta{upd(1, "a"), upd(2, "b"), upd(1, "c")},
			want:  []Delta{upd(1, "a"), upd(2, "b"), upd(1, "c")},
		},
		{
			name:  "delete is never folded",
			input: []Delta{upd(1, "a"), DeleteParagraph(1), upd(1, "b")},
			want:  []Delta{upd(1, "a"), DeleteParagraph(1), upd(1, "b")},
		},
		{
			name:  "insert is not folded into an update",
			input: []Delta{upd(1, "a"), ins(1, "b")},
			want:  []Delta{upd(1, "a"), ins(1, "b")},
		},
		{
			name:  "section deltas pass through",
			input: []Delta{InsertSection(1, Section{}), upd(1, "a"), upd(1, "b")},
			want:  []Delta{InsertSection(1, Section{}), upd(1, "b")},
		},
		{
			name:  "empty",
			input: nil,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := litter.Sdump(tt.input)
			got := Reduce(tt.input)
			if !sameDeltas(got, tt.want) {
				t.Errorf("Reduce\nWant: %v\nGot:  %v", tt.want, got)
			}
			if after := litter.Sdump(tt.input); after != before {
				t.Errorf("Reduce modified its input:\n%s", after)
			}
		})
	}
}

func TestNewDelta(t *testing.T) {
	p := FromText("x")
	byName, err := NewDelta("paragraph-update", 3, p)
	if err != nil {
		t.Fatalf("NewDelta by name: %v", err)
	}
	byNumber, err := NewDelta(int(KindParagraphUpdate), 3, &p)
	if err != nil {
		t.Fatalf("NewDelta by number: %v", err)
	}
	if !sameDeltas([]Delta{byName}, []Delta{byNumber}) {
		t.Errorf("name and number disagree: %v vs %v", byName, byNumber)
	}

	sec, err := NewDelta(KindSectionInsert, 2, Section{Start: 9, Class: "wide"})
	if err != nil {
		t.Fatalf("NewDelta section: %v", err)
	}
	if sec.Section.Start != 2 {
		t.Errorf("section start = %d, want the delta index", sec.Section.Start)
	}

	for _, name := range kindNames {
		k, err := ParseKind(name)
		if err != nil || k.String() != name {
			t.Errorf("ParseKind(%q) = %v, %v", name, k, err)
		}
	}
}

func TestNewDeltaErrors(t *testing.T) {
	tests := []struct {
		name    string
		kind    any
		payload any
		want    error
	}{
		{"unknown name", "paragraph-move", nil, ErrUnknownKind},
		{"unknown number", 42, nil, ErrUnknownKind},
		{"unsupported kind type", 1.5, nil, ErrUnknownKind},
		{"missing paragraph", KindParagraphInsert, nil, ErrPayload},
		{"section for a paragraph", KindParagraphUpdate, Section{}, ErrPayload},
		{"paragraph for a section", KindSectionInsert, FromText("x"), ErrPayload},
		{"payload on delete", KindParagraphDelete, FromText("x"), ErrPayload},
		{"nil section pointer", KindSectionUpdate, (*Section)(nil), ErrPayload},
		{"unsupported payload", KindParagraphInsert, "text", ErrPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDelta(tt.kind, 1, tt.payload)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewDelta error = %v, want %v", err, tt.want)
			}
		})
	}
}

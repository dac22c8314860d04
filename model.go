package vcedit

import (
	"fmt"
	"slices"
	"sort"
)

// Model is the flat logical document: an ordered list of paragraphs grouped
// into sections. The first section always starts at paragraph 0 and every
// section holds at least one paragraph.
type Model struct {
	paragraphs []Paragraph
	sections   []Section
}

// NewModel builds a model from its paragraphs and sections. When sections is
// empty a single section covering the whole document is created.
func NewModel(paragraphs []Paragraph, sections []Section) (*Model, error) {
	if len(sections) == 0 {
		sections = []Section{{Start: 0}}
	}
	m := &Model{
		paragraphs: slices.Clone(paragraphs),
		sections:   slices.Clone(sections),
	}
	if err := m.CheckInvariants(); err != nil {
		return nil, err
	}
	return m, nil
}

// Len returns the number of paragraphs.
func (m *Model) Len() int {
	return len(m.paragraphs)
}

// Paragraph returns the paragraph at index i.
func (m *Model) Paragraph(i int) (Paragraph, bool) {
	if i < 0 || i >= len(m.paragraphs) {
		return Paragraph{}, false
	}
	return m.paragraphs[i], true
}

// Paragraphs returns a copy of all paragraphs.
func (m *Model) Paragraphs() []Paragraph {
	return slices.Clone(m.paragraphs)
}

// Sections returns a copy of all section descriptors, ascending by start.
func (m *Model) Sections() []Section {
	return slices.Clone(m.sections)
}

// sectionAt returns the position in m.sections of the section starting at
// index, or -1.
func (m *Model) sectionAt(index int) int {
	i, ok := slices.BinarySearchFunc(m.sections, index, func(s Section, start int) int {
		return s.Start - start
	})
	if !ok {
		return -1
	}
	return i
}

// IsSectionStart reports whether a section starts at paragraph index.
func (m *Model) IsSectionStart(index int) bool {
	return m.sectionAt(index) >= 0
}

// SectionOf returns the position of the section that contains paragraph index.
func (m *Model) SectionOf(index int) int {
	// first section whose start is past index, minus one
	return sort.Search(len(m.sections), func(i int) bool {
		return m.sections[i].Start > index
	}) - 1
}

// SectionBounds returns the paragraph range [start, end) of section s.
func (m *Model) SectionBounds(s int) (start, end int) {
	start = m.sections[s].Start
	end = len(m.paragraphs)
	if s+1 < len(m.sections) {
		end = m.sections[s+1].Start
	}
	return start, end
}

// CheckInvariants verifies the structural invariants of the model.
func (m *Model) CheckInvariants() error {
	if len(m.paragraphs) == 0 {
		return fmt.Errorf("%w: document has no paragraphs", ErrStructure)
	}
	if len(m.sections) == 0 || m.sections[0].Start != 0 {
		return fmt.Errorf("%w: first section must start at 0", ErrStructure)
	}
	for i := 1; i < len(m.sections); i++ {
		if m.sections[i].Start <= m.sections[i-1].Start {
			return fmt.Errorf("%w: section %d start %d not after %d", ErrStructure, i, m.sections[i].Start, m.sections[i-1].Start)
		}
	}
	if last := m.sections[len(m.sections)-1]; last.Start >= len(m.paragraphs) {
		return fmt.Errorf("%w: section start %d has no paragraphs", ErrStructure, last.Start)
	}
	return nil
}

// Clamp returns sel with both points forced into the document bounds.
func (m *Model) Clamp(sel Selection) Selection {
	return Selection{Start: m.clampPoint(sel.Start), End: m.clampPoint(sel.End)}
}

func (m *Model) clampPoint(p Point) Point {
	p.Paragraph = min(max(p.Paragraph, 0), len(m.paragraphs)-1)
	p.Offset = min(max(p.Offset, 0), m.paragraphs[p.Paragraph].Len())
	return p
}

// Contains reports whether both points of sel lie inside the document.
func (m *Model) Contains(sel Selection) bool {
	return m.clampPoint(sel.Start) == sel.Start && m.clampPoint(sel.End) == sel.End
}

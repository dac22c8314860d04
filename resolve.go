package vcedit

import (
	"slices"
	"sort"
)

// Apply validates d and applies it to the model.
func (m *Model) Apply(d Delta) error {
	if err := m.Validate(d); err != nil {
		return err
	}
	m.apply(d)
	return nil
}

// apply mutates the model for an already validated delta.
func (m *Model) apply(d Delta) {
	switch d.Kind {
	case KindParagraphInsert:
		m.paragraphs = slices.Insert(m.paragraphs, d.Index, *d.Paragraph)
		for i := range m.sections {
			if m.sections[i].Start >= d.Index {
				m.sections[i].Start++
			}
		}

	case KindParagraphUpdate:
		m.paragraphs[d.Index] = *d.Paragraph

	case KindParagraphDelete:
		m.paragraphs = slices.Delete(m.paragraphs, d.Index, d.Index+1)
		for i := range m.sections {
			if m.sections[i].Start > d.Index {
				m.sections[i].Start--
			}
		}

	case KindSectionInsert:
		s := *d.Section
		s.Start = d.Index
		at := sort.Search(len(m.sections), func(i int) bool {
			return m.sections[i].Start > d.Index
		})
		m.sections = slices.Insert(m.sections, at, s)

	case KindSectionUpdate:
		if i := m.sectionAt(d.Index); i >= 0 {
			s := *d.Section
			s.Start = d.Index
			m.sections[i] = s
		}

	case KindSectionDelete:
		if i := m.sectionAt(d.Index); i >= 0 {
			m.sections = slices.Delete(m.sections, i, i+1)
		}
	}
}

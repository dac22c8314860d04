package vcedit

// Transform adjusts p, which addresses the document before d, to address the
// same content after d. A point inside a deleted paragraph moves to the start
// of the paragraph that takes its place. Offsets are not clamped.
func (p Point) Transform(d Delta) Point {
	switch d.Kind {
	case KindParagraphInsert:
		// Insertion happens "before Index": the paragraph at Index shifts too.
		if d.Index <= p.Paragraph {
			p.Paragraph++
		}
	case KindParagraphDelete:
		switch {
		case d.Index < p.Paragraph:
			p.Paragraph--
		case d.Index == p.Paragraph:
			p.Offset = 0
		}
	}
	// Updates and section deltas keep paragraph indices stable.
	return p
}

// Transform applies Point.Transform to both ends of s.
func (s Selection) Transform(d Delta) Selection {
	return Selection{Start: s.Start.Transform(d), End: s.End.Transform(d)}
}

// TransformAll adjusts s across deltas applied in order.
func (s Selection) TransformAll(deltas []Delta) Selection {
	for _, d := range deltas {
		s = s.Transform(d)
	}
	return s
}

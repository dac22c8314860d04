package vcedit

// Diff calculates the deltas that turn the model 'before' into 'after'.
// Applied in order, each delta is valid against the model left by the
// previous ones.
//
// Paragraphs are compared position by position after trimming the common
// prefix and suffix. When the paragraph count is unchanged, sections are
// diffed by start; otherwise every section but the first is removed before
// the paragraph edits and the sections of 'after' are inserted afterwards.
func Diff(before, after *Model) []Delta {
	var deltas []Delta
	sameLen := before.Len() == after.Len()

	if !sameLen {
		for i := len(before.sections) - 1; i > 0; i-- {
			deltas = append(deltas, DeleteSection(before.sections[i].Start))
		}
	}

	deltas = append(deltas, diffParagraphs(before.paragraphs, after.paragraphs)...)

	if sameLen {
		deltas = append(deltas, diffSections(before.sections, after.sections)...)
	} else {
		if before.sections[0].Class != after.sections[0].Class {
			deltas = append(deltas, UpdateSection(0, after.sections[0]))
		}
		for _, s := range after.sections[1:] {
			deltas = append(deltas, InsertSection(s.Start, s))
		}
	}
	return deltas
}

// diffParagraphs compares lists of paragraphs. Both lists are non-empty.
func diffParagraphs(prev, next []Paragraph) []Delta {
	var ops []Delta

	prefix := 0
	for prefix < len(prev) && prefix < len(next) && prev[prefix].Equals(next[prefix]) {
		prefix++
	}
	suffix := 0
	for suffix < len(prev)-prefix && suffix < len(next)-prefix &&
		prev[len(prev)-1-suffix].Equals(next[len(next)-1-suffix]) {
		suffix++
	}
	oldMid, newMid := len(prev)-prefix-suffix, len(next)-prefix-suffix

	// nothing may be inserted before paragraph 0: give the changed region a
	// paragraph to update first
	if prefix == 0 && oldMid == 0 && newMid > 0 {
		suffix--
		oldMid++
		newMid++
	}

	common := min(oldMid, newMid)
	for i := 0; i < common; i++ {
		at := prefix + i
		if !prev[at].Equals(next[at]) {
			ops = append(ops, UpdateParagraph(at, next[at]))
		}
	}

	// Handle Deletions (Old has more), from the end to keep indices stable
	for i := oldMid - 1; i >= common; i-- {
		ops = append(ops, DeleteParagraph(prefix+i))
	}

	// Handle Insertions (New has more)
	for i := common; i < newMid; i++ {
		ops = append(ops, InsertParagraph(prefix+i, next[prefix+i]))
	}
	return ops
}

// diffSections compares section lists over the same paragraph count.
func diffSections(prev, next []Section) []Delta {
	var ops []Delta
	byStart := make(map[int]Section, len(next))
	for _, s := range next {
		byStart[s.Start] = s
	}
	kept := make(map[int]bool, len(prev))
	for i := len(prev) - 1; i >= 0; i-- {
		s := prev[i]
		n, ok := byStart[s.Start]
		switch {
		case !ok:
			ops = append(ops, DeleteSection(s.Start))
		case n.Class != s.Class:
			ops = append(ops, UpdateSection(s.Start, n))
			kept[s.Start] = true
		default:
			kept[s.Start] = true
		}
	}
	for _, s := range next {
		if !kept[s.Start] {
			ops = append(ops, InsertSection(s.Start, s))
		}
	}
	return ops
}

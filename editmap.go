package treehouse

// editOffset is how far an edit shifts everything after it: the
// difference between the edit's new and old end byte.
func editOffset(e InputEdit) int {
	return int(e.NewEndByte) - int(e.OldEndByte)
}

// mapInjections re-maps layer's recorded child-injection ranges through a
// batch of edits applied to the parent's own source, so that a later
// RunInjectionQuery pass can tell which children still cover the same
// content (just shifted) versus which were actually edited.
//
// edits must be sorted by ascending StartByte and non-overlapping, the same
// assumption tree-sitter's own Tree.Edit makes; layer's injections are
// already sorted by ascending range, so the whole pass runs in O(N+M).
//
// offset carries forward an already-known shift for layers whose own range
// start moved without an edit touching them directly (a parent injection
// that itself moved); pass nil when layer is the document root.
func (s *Syntax) mapInjections(layer Layer, offset *int, edits []InputEdit) {
	if len(edits) == 0 && (offset == nil || *offset == 0) {
		return
	}

	data := s.store.mustGet(layer)
	injections := data.Injections

	firstRelevant := 0
	if len(edits) > 0 {
		for firstRelevant < len(injections) && injections[firstRelevant].Range.EndByte < edits[0].StartByte {
			firstRelevant++
		}
	}
	if firstRelevant == len(injections) {
		return
	}

	carry := 0
	if offset != nil {
		carry = *offset
		firstEdit := 0
		threshold := int(data.Ranges[0].EndByte) - carry
		for firstEdit < len(edits) && int(edits[firstEdit].OldEndByte) < threshold {
			firstEdit++
		}
		edits = edits[firstEdit:]
	}

	ei := 0
	peekEdit := func() *InputEdit {
		if ei < len(edits) {
			return &edits[ei]
		}
		return nil
	}
	nextEditIf := func(pred func(InputEdit) bool) (InputEdit, bool) {
		e := peekEdit()
		if e == nil || !pred(*e) {
			return InputEdit{}, false
		}
		ei++
		return *e, true
	}

	for i := firstRelevant; i < len(injections); i++ {
		rng := injections[i].Range
		childFlags := &s.store.mustGet(injections[i].Layer).Flags

		for {
			e, ok := nextEditIf(func(e InputEdit) bool { return e.OldEndByte < rng.StartByte })
			if !ok {
				break
			}
			carry += editOffset(e)
		}
		childFlags.Moved = carry != 0

		mappedStart := int(rng.StartByte) + carry
		if e, ok := nextEditIf(func(e InputEdit) bool { return e.OldEndByte <= rng.EndByte }); ok {
			if e.StartByte < rng.StartByte {
				childFlags.Moved = true
				mappedStart = int(e.NewEndByte) + carry
			} else {
				childFlags.Modified = true
			}
			carry += editOffset(e)
			for {
				e2, ok := nextEditIf(func(e InputEdit) bool { return e.OldEndByte <= rng.EndByte })
				if !ok {
					break
				}
				carry += editOffset(e2)
			}
		}

		mappedEnd := int(rng.EndByte) + carry
		if e := peekEdit(); e != nil && e.StartByte <= rng.EndByte {
			childFlags.Modified = true
			if e.StartByte < rng.StartByte {
				mappedStart = int(e.NewEndByte) + carry
				mappedEnd = mappedStart
			}
		}

		injections[i].Range.StartByte = uint(mappedStart)
		injections[i].Range.EndByte = uint(mappedEnd)
	}

	data.Injections = injections
}

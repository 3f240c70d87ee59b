// Package transcript holds the rolling utterance list of one session and the
// phrase-boundary rule that decides when an utterance closes.
package transcript

// Utterance is one merged phrase. Final utterances never change again.
type Utterance struct {
	Index int
	Text  string
	Final bool
}

// Update describes the effect of one Merge.
type Update struct {
	// Current is the open utterance after the merge.
	Current Utterance
	// Appended is true when Current started a new entry rather than replacing one.
	Appended bool
	// Closed is the utterance finalized by this merge's phrase boundary, if any.
	Closed *Utterance
}

// Transcript is an ordered utterance list whose last entry stays replaceable
// until a phrase boundary closes it. It is owned by a single goroutine.
type Transcript struct {
	lines []string
	open  bool
}

// Merge applies one recognition result.
//
// With boundary set, the open utterance is finalized and text starts a new
// entry. Otherwise text replaces the open utterance, or starts the first one.
func (t *Transcript) Merge(text string, boundary bool) Update {
	var closed *Utterance
	if boundary && t.open {
		closed = t.finalize()
	}

	if t.open {
		last := len(t.lines) - 1
		t.lines[last] = text
		return Update{Current: Utterance{Index: last, Text: text}, Closed: closed}
	}

	t.lines = append(t.lines, text)
	t.open = true
	return Update{
		Current:  Utterance{Index: len(t.lines) - 1, Text: text},
		Appended: true,
		Closed:   closed,
	}
}

// Close finalizes the open utterance, if any. Used when the session ends.
func (t *Transcript) Close() *Utterance {
	if !t.open {
		return nil
	}
	return t.finalize()
}

// IsOpen reports whether the last entry may still be replaced.
func (t *Transcript) IsOpen() bool {
	return t.open
}

// Len returns the number of utterances, open or final.
func (t *Transcript) Len() int {
	return len(t.lines)
}

// Lines returns a copy of every utterance text in order.
func (t *Transcript) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *Transcript) finalize() *Utterance {
	t.open = false
	last := len(t.lines) - 1
	return &Utterance{Index: last, Text: t.lines[last], Final: true}
}

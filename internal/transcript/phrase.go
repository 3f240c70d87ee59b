package transcript

import "time"

// DefaultPhraseTimeout is the silence gap between drains that closes a phrase.
const DefaultPhraseTimeout = 3 * time.Second

// PhraseState remembers when audio was last drained.
type PhraseState struct {
	timeout time.Duration
	last    time.Time
	seen    bool
}

// NewPhraseState returns a state with no drain observed yet.
func NewPhraseState(timeout time.Duration) *PhraseState {
	if timeout <= 0 {
		timeout = DefaultPhraseTimeout
	}
	return &PhraseState{timeout: timeout}
}

// Observe records a drain at now and reports whether the gap since the
// previous drain exceeded the timeout. The first drain never completes a phrase.
func (p *PhraseState) Observe(now time.Time) bool {
	complete := p.seen && now.Sub(p.last) > p.timeout
	p.last = now
	p.seen = true
	return complete
}

// LastDrain returns the previous drain instant, if one was observed.
func (p *PhraseState) LastDrain() (time.Time, bool) {
	return p.last, p.seen
}

// Timeout returns the configured phrase timeout.
func (p *PhraseState) Timeout() time.Duration {
	return p.timeout
}

package pipeline

import "github.com/rbright/livescribe/internal/transcript"

// Observer receives transcript events from the assembler goroutine. Calls are
// sequential; implementations must not block for long.
type Observer interface {
	// Preview replaces the displayed text of the open utterance.
	Preview(u transcript.Utterance)
	// Finalize commits an utterance. Called exactly once per utterance.
	Finalize(u transcript.Utterance)
	// Status reports a short user-facing state or warning message.
	Status(message string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Preview(transcript.Utterance)  {}
func (NopObserver) Finalize(transcript.Utterance) {}
func (NopObserver) Status(string)                 {}

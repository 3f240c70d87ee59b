package output

import (
	"github.com/rbright/livescribe/internal/pipeline"
	"github.com/rbright/livescribe/internal/transcript"
)

// Fanout forwards every event to each observer in order.
type Fanout []pipeline.Observer

func (f Fanout) Preview(u transcript.Utterance) {
	for _, o := range f {
		o.Preview(u)
	}
}

func (f Fanout) Finalize(u transcript.Utterance) {
	for _, o := range f {
		o.Finalize(u)
	}
}

func (f Fanout) Status(message string) {
	for _, o := range f {
		o.Status(message)
	}
}

package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/rbright/livescribe/internal/transcript"
)

const clearLine = "\r\033[K"

// Console echoes the transcript to a terminal. With Live set the open
// utterance is redrawn in place; otherwise only final lines are printed.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	live bool
}

// NewConsole writes to w.
func NewConsole(w io.Writer, live bool) *Console {
	return &Console{w: w, live: live}
}

func (c *Console) Preview(u transcript.Utterance) {
	if !c.live {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s%s", clearLine, u.Text)
}

func (c *Console) Finalize(u transcript.Utterance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live {
		io.WriteString(c.w, clearLine)
	}
	fmt.Fprintln(c.w, u.Text)
}

func (c *Console) Status(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live {
		io.WriteString(c.w, clearLine)
	}
	fmt.Fprintf(c.w, "[%s]\n", message)
}

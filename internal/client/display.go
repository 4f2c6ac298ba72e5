package client

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Display is where the client renders. It mirrors the two regions of
// the chat UI: an append-only message log and a roster that is fully
// replaced on every update.
type Display interface {
	// AppendMessage appends one line to the end of the message log.
	// Lines are never mutated or removed once appended.
	AppendMessage(sender, body string)

	// SetRoster replaces the whole roster with the given usernames, in
	// the given order.
	SetRoster(clients []string)
}

// TermDisplay renders the chat to a terminal writer.
type TermDisplay struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTermDisplay creates a display writing to w.
func NewTermDisplay(w io.Writer) *TermDisplay {
	return &TermDisplay{w: w}
}

// AppendMessage implements Display.
func (d *TermDisplay) AppendMessage(sender, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s: %s\n", sender, body)
}

// SetRoster implements Display. A terminal has no panel to rebuild, so
// each replacement is rendered as a single summary line.
func (d *TermDisplay) SetRoster(clients []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "*** online (%d): %s\n", len(clients), strings.Join(clients, ", "))
}

package edureport

import (
	"fmt"
	"io"
	"sync"
)

// Indicator shows that an export is running. Show and Hide are idempotent.
type Indicator interface {
	Show()
	Hide()
}

// progressMessage is displayed while a report is generated.
const progressMessage = "Generating PDF..."

// TerminalIndicator prints a status line to a terminal-like writer.
// Hide clears the line and a later Show redraws it in place. Output that
// shares the writer should go through Write so the status line never
// runs into it.
type TerminalIndicator struct {
	w io.Writer

	mu      sync.Mutex
	visible bool
}

var (
	_ Indicator = (*TerminalIndicator)(nil)
	_ io.Writer = (*TerminalIndicator)(nil)
)

// NewTerminalIndicator creates an indicator writing to w.
func NewTerminalIndicator(w io.Writer) *TerminalIndicator {
	return &TerminalIndicator{w: w}
}

// Show displays the indicator if it is not already visible.
func (t *TerminalIndicator) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.visible {
		return
	}
	t.visible = true
	t.draw()
}

// Hide clears the indicator if it is visible.
func (t *TerminalIndicator) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.visible {
		return
	}
	t.visible = false
	t.clear()
}

// Write writes p on its own lines: a visible status line is cleared
// first and redrawn after p.
func (t *TerminalIndicator) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.visible {
		t.clear()
	}
	n, err := t.w.Write(p)
	if t.visible {
		t.draw()
	}
	return n, err
}

func (t *TerminalIndicator) draw() {
	_, _ = fmt.Fprintf(t.w, "\r%s", progressMessage)
}

func (t *TerminalIndicator) clear() {
	_, _ = fmt.Fprintf(t.w, "\r%*s\r", len(progressMessage), "")
}

// Visible reports whether the indicator is currently shown.
func (t *TerminalIndicator) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// noopIndicator is used when no indicator is configured.
type noopIndicator struct{}

func (noopIndicator) Show() {}
func (noopIndicator) Hide() {}

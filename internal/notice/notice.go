// Package notice shows a transient error banner on a terminal.
//
// The banner is a line written once. Other output may follow it on the
// same stream, so dismissal never rewrites the terminal: it ends the
// banner's lifetime, which Visible and Message report.
package notice

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultDuration is how long a banner stays before it dismisses itself.
const DefaultDuration = 5 * time.Second

// Banner displays one message at a time. A new Show replaces the current
// message and restarts the dismiss timer.
type Banner struct {
	w        io.Writer
	duration time.Duration

	mu      sync.Mutex
	message string
	timer   *time.Timer
	gen     uint64
}

// New creates a Banner writing to w. A zero duration means DefaultDuration.
func New(w io.Writer, duration time.Duration) *Banner {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Banner{w: w, duration: duration}
}

// Show displays message and schedules its dismissal.
func (b *Banner) Show(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.message = message
	_, _ = fmt.Fprintf(b.w, "\r\033[K\033[31mError:\033[0m %s\n", message)
	b.timer = time.AfterFunc(b.duration, func() { b.expire(gen) })
}

// Dismiss ends the current message, if any. Nothing is written.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clear()
}

// Visible reports whether a message is displayed.
func (b *Banner) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message != ""
}

// Message returns the displayed message, or "".
func (b *Banner) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// expire dismisses the message shown at generation gen. A stale timer
// must not hide a newer message.
func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.clear()
}

// clear resets the banner state and writes nothing. It requires b.mu.
func (b *Banner) clear() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.message = ""
}

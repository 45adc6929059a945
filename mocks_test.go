package edureport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Recording document
// ---------------------------------------------------------------------------

// drawOp is one recorded drawing call.
type drawOp struct {
	Page int
	Kind string // "text", "ctext", "line", "image", "addpage"
	X, Y float64
	W, H float64
	Text string
}

// recordingDoc implements Document and records every call.
type recordingDoc struct {
	mu      sync.Mutex
	pages   int
	current int
	ops     []drawOp

	imageErr  error
	outputErr error
}

func newRecordingDoc() *recordingDoc {
	return &recordingDoc{pages: 1, current: 1}
}

func (d *recordingDoc) record(op drawOp) {
	d.mu.Lock()
	defer d.mu.Unlock()
	op.Page = d.current
	d.ops = append(d.ops, op)
}

func (d *recordingDoc) SetFontSize(float64)        {}
func (d *recordingDoc) SetTextColor(int, int, int) {}
func (d *recordingDoc) SetDrawColor(int, int, int) {}
func (d *recordingDoc) Text(x, y float64, s string) {
	d.record(drawOp{Kind: "text", X: x, Y: y, Text: s})
}

func (d *recordingDoc) CenteredText(cx, y float64, s string) {
	d.record(drawOp{Kind: "ctext", X: cx, Y: y, Text: s})
}

func (d *recordingDoc) Line(x1, y1, x2, _ float64) {
	d.record(drawOp{Kind: "line", X: x1, Y: y1, W: x2 - x1})
}

func (d *recordingDoc) Image(_ *CapturedRegion, x, y, w, h float64) error {
	if d.imageErr != nil {
		return d.imageErr
	}
	d.record(drawOp{Kind: "image", X: x, Y: y, W: w, H: h})
	return nil
}

func (d *recordingDoc) AddPage() {
	d.mu.Lock()
	d.pages++
	d.current = d.pages
	d.mu.Unlock()
	d.record(drawOp{Kind: "addpage"})
}

func (d *recordingDoc) SetPage(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = n
}

func (d *recordingDoc) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pages
}

func (d *recordingDoc) Output(w io.Writer) error {
	if d.outputErr != nil {
		return d.outputErr
	}
	_, err := fmt.Fprintf(w, "%%PDF-fake pages=%d", d.PageCount())
	return err
}

// texts returns every text drawn, plain or centred, in order.
func (d *recordingDoc) texts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, op := range d.ops {
		if op.Kind == "text" || op.Kind == "ctext" {
			out = append(out, op.Text)
		}
	}
	return out
}

// find returns the ops whose text equals s.
func (d *recordingDoc) find(s string) []drawOp {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []drawOp
	for _, op := range d.ops {
		if op.Text == s {
			out = append(out, op)
		}
	}
	return out
}

func (d *recordingDoc) count(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, op := range d.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// docFactory hands out recordingDocs and remembers the last one.
type docFactory struct {
	mu   sync.Mutex
	last *recordingDoc
	tune func(*recordingDoc)
}

func (f *docFactory) NewDocument() Document {
	d := newRecordingDoc()
	if f.tune != nil {
		f.tune(d)
	}
	f.mu.Lock()
	f.last = d
	f.mu.Unlock()
	return d
}

func (f *docFactory) doc() *recordingDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// ---------------------------------------------------------------------------
// Capture fakes
// ---------------------------------------------------------------------------

// fakeCapturer returns a fixed image per region id, or an error.
type fakeCapturer struct {
	mu     sync.Mutex
	images map[string]*CapturedRegion
	errs   map[string]error
	calls  []string
}

func (c *fakeCapturer) Capture(_ context.Context, r Region, _ CaptureOptions) (*CapturedRegion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, r.ID())
	if err := c.errs[r.ID()]; err != nil {
		return nil, err
	}
	if img, ok := c.images[r.ID()]; ok {
		return img, nil
	}
	return &CapturedRegion{Width: 800, Height: 400, Format: "jpeg", Data: []byte{0xff}}, nil
}

func (c *fakeCapturer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// countingLoader counts Load calls and can block until released.
type countingLoader struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
}

func (l *countingLoader) Available() bool { return false }

func (l *countingLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.release != nil {
		select {
		case <-l.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return l.err
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// ---------------------------------------------------------------------------
// Surface fixtures
// ---------------------------------------------------------------------------

// failingSurface fails every lookup.
type failingSurface struct{ err error }

func (s failingSurface) Form(context.Context) (FormHandle, error)       { return nil, s.err }
func (s failingSurface) Region(context.Context, string) (Region, error) { return nil, s.err }

var errBoom = errors.New("boom")

func sampleForm() MapForm {
	return MapForm{
		FieldMathScore:           "85",
		FieldScienceScore:        "78",
		FieldReadingScore:        "92",
		FieldLearningStyle:       "0",
		FieldInterestLevel:       "2",
		FieldPreviousPerformance: "1",
	}
}

// fullSurface has a form, visible recommendations and loaded analytics.
func fullSurface() *StaticSurface {
	return &StaticSurface{
		Fields: sampleForm(),
		Regions: map[string]Region{
			RecommendationsID: &StaticRegion{RegionID: RecommendationsID, Content: "Advanced Calculus"},
			AnalyticsID:       &StaticRegion{RegionID: AnalyticsID, Content: "Total Recommendations: 12"},
		},
	}
}

// ---------------------------------------------------------------------------
// Delivery fakes
// ---------------------------------------------------------------------------

type memDownloader struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memDownloader) Save(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = bytes.Clone(data)
	return "mem://" + name, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingDispatcher) Dispatch(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// recordingTracker is a Tracker for Dispatcher tests.
type recordingTracker struct {
	mu     sync.Mutex
	events []Event
	err    error
	block  chan struct{}
}

func (r *recordingTracker) Track(ctx context.Context, e Event) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingTracker) got() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return data
}

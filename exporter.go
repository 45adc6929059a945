package edureport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alnah/go-edureport/internal/api"
	"github.com/alnah/go-edureport/internal/dateutil"
)

// EventDispatcher hands tracking events off without waiting for delivery.
type EventDispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

// Verifier reads back a serialized artifact.
type Verifier interface {
	PageCount(data []byte) (int, error)
}

// HistoryRecorder keeps a record of finished exports.
type HistoryRecorder interface {
	Record(ctx context.Context, r Report) error
}

// SectionReport tells how one section of a report turned out.
type SectionReport struct {
	Name    string
	Outcome Outcome
	Err     error // recovered failure, nil unless Outcome is OutcomePlaceholder
}

// Report describes a finished export.
type Report struct {
	ID        uuid.UUID
	Filename  string
	Path      string
	Pages     int
	Size      int
	Sections  []SectionReport
	Profile   StudentProfile
	CreatedAt time.Time
}

// Section returns the report entry for name.
func (r *Report) Section(name string) (SectionReport, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionReport{}, false
}

// Compile-time interface checks.
var (
	_ EventDispatcher = (*Dispatcher)(nil)
	_ Indicator       = noopIndicator{}
)

// Exporter turns a Surface into a PDF report. One Exporter serves one
// application: it owns the capability registry, so every capability is
// loaded at most once across exports. Exports on the same Exporter do not
// overlap; a second concurrent call fails with ErrExportInProgress.
type Exporter struct {
	capabilities *Registry
	factory      DocumentFactory
	capturer     Capturer
	indicator    Indicator
	downloader   Downloader
	dispatcher   EventDispatcher
	history      HistoryRecorder
	profiles     ProfileSource // nil reads the surface's form
	verifier     Verifier
	logger       zerolog.Logger
	now          func() time.Time
	dateFormat   string
	sections     []section

	// set by options, resolved in NewExporter
	fontPath      string
	drawingLoader CapabilityLoader
	captureLoader CapabilityLoader

	busy atomic.Bool
}

// NewExporter creates an Exporter. Without options it draws with core
// fonts, has no region capturer (regions degrade to placeholders), saves
// into the working directory and does not track usage.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		capabilities: NewRegistry(),
		indicator:    noopIndicator{},
		downloader:   DirDownloader{Dir: "."},
		logger:       zerolog.Nop(),
		now:          time.Now,
		dateFormat:   dateutil.DefaultDateFormat,
		sections:     reportSections(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if _, err := dateutil.Layout(e.dateFormat); err != nil {
		return nil, err
	}

	if e.factory == nil {
		backend := NewDrawingBackend(e.fontPath)
		backend.now = e.now
		e.factory = backend
		if e.drawingLoader == nil {
			e.drawingLoader = backend
		}
	}
	if e.drawingLoader == nil {
		e.drawingLoader = readyLoader{}
	}
	if e.captureLoader == nil {
		e.captureLoader = LoaderFunc(func(context.Context) error {
			return errors.New("no region capturer configured")
		})
	}

	e.capabilities.Register(DocumentDrawing, e.drawingLoader)
	e.capabilities.Register(RegionCapture, e.captureLoader)
	return e, nil
}

// Capabilities exposes the registry, mainly for diagnostics.
func (e *Exporter) Capabilities() *Registry { return e.capabilities }

// Export builds the report from s and delivers it. Section failures are
// recovered and recorded in Report.Sections; only an unavailable drawing
// backend, serialization, verification or delivery failures abort.
func (e *Exporter) Export(ctx context.Context, s Surface) (report *Report, err error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.busy.Store(false)

	defer func() {
		if r := recover(); r != nil {
			report, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	started := e.now()
	id := uuid.New()
	log := e.logger.With().Str("export_id", id.String()).Logger()
	ctx = log.WithContext(ctx)

	e.indicator.Show()
	defer e.indicator.Hide()

	if err := e.capabilities.Ensure(ctx, DocumentDrawing); err != nil {
		log.Error().Err(err).Msg("Error generating PDF")
		return nil, err
	}

	profile := e.readProfile(ctx, s)

	generatedOn, err := dateutil.Format(started, e.dateFormat)
	if err != nil {
		return nil, err
	}

	doc := e.factory.NewDocument()
	rc := &renderContext{
		doc:          doc,
		profile:      profile,
		surface:      s,
		capturer:     e.capturer,
		capabilities: e.capabilities,
		generatedOn:  generatedOn,
	}

	report = &Report{ID: id, Profile: profile, CreatedAt: started}
	cursorY := 0.0
	for _, sec := range e.sections {
		res, err := sec.render(ctx, rc, cursorY)
		if err != nil {
			log.Error().Err(err).Str("section", sec.name).Msg("Error generating PDF")
			return nil, fmt.Errorf("rendering %s: %w", sec.name, err)
		}
		cursorY = res.CursorY
		report.Sections = append(report.Sections, SectionReport{Name: sec.name, Outcome: res.Outcome, Err: res.Err})
		log.Debug().Str("section", sec.name).Stringer("outcome", res.Outcome).Bool("page_added", res.PageAdded).Msg("section rendered")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	report.Pages = doc.PageCount()
	report.Size = len(data)

	if err := e.verify(data, report.Pages); err != nil {
		return nil, err
	}

	report.Filename = ArtifactName(started)
	report.Path, err = e.downloader.Save(ctx, report.Filename, data)
	if err != nil {
		if !errors.Is(err, ErrDownload) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", ErrDownload, err)
		}
		return nil, err
	}

	e.track(ctx, profile)
	e.record(ctx, *report)

	log.Info().
		Str("file", report.Path).
		Int("pages", report.Pages).
		Dur("elapsed", e.now().Sub(started)).
		Msg("report exported")
	return report, nil
}

// readProfile reads the profile from the configured source, or from the
// form of s. A source that fails yields the empty record so the header
// still renders.
func (e *Exporter) readProfile(ctx context.Context, s Surface) StudentProfile {
	var src ProfileSource = FormSource{Surface: s}
	if e.profiles != nil {
		src = e.profiles
	}
	p, err := src.Read(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("profile unreadable, using empty profile")
		return StudentProfile{}
	}
	return p
}

func (e *Exporter) verify(data []byte, want int) error {
	if e.verifier == nil {
		return nil
	}
	got, err := e.verifier.PageCount(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if got != want {
		return fmt.Errorf("%w: artifact has %d pages, document has %d", ErrVerify, got, want)
	}
	return nil
}

// track dispatches the export event without waiting for it.
func (e *Exporter) track(ctx context.Context, p StudentProfile) {
	if e.dispatcher == nil {
		return
	}
	ev := Event{
		EventType: api.EventPDFExport,
		UserData:  p.TrackingData(),
		Timestamp: api.Timestamp(e.now()),
	}
	if err := e.dispatcher.Dispatch(ctx, ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("usage tracking not dispatched")
	}
}

func (e *Exporter) record(ctx context.Context, r Report) {
	if e.history == nil {
		return
	}
	if err := e.history.Record(ctx, r); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("export history not recorded")
	}
}

// readyLoader is a loader for capabilities that need no initialization.
type readyLoader struct{}

func (readyLoader) Available() bool            { return true }
func (readyLoader) Load(context.Context) error { return nil }

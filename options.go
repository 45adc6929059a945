package edureport

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-edureport/internal/pdfcheck"
)

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger. Each export logs through a child logger
// tagged with its export_id.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// WithClock overrides the time source.
// Panics if now is nil (programmer error).
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("edureport: WithClock requires a non-nil clock")
	}
	return func(e *Exporter) { e.now = now }
}

// WithFontFile draws text with a TrueType font instead of the built-in
// Helvetica. The font is loaded once, on the first export; a font that
// cannot be read makes the drawing capability unavailable.
func WithFontFile(path string) Option {
	return func(e *Exporter) { e.fontPath = path }
}

// WithDocumentFactory replaces the drawing backend. loader guards its
// initialization; nil means the factory is ready immediately.
func WithDocumentFactory(f DocumentFactory, loader CapabilityLoader) Option {
	return func(e *Exporter) {
		e.factory = f
		e.drawingLoader = loader
	}
}

// WithCapture sets the region capturer and the loader that brings it up.
func WithCapture(c Capturer, loader CapabilityLoader) Option {
	return func(e *Exporter) {
		e.capturer = c
		e.captureLoader = loader
	}
}

// WithBrowserCapture captures regions with headless Chrome.
func WithBrowserCapture(b *BrowserCapture) Option {
	return WithCapture(b, b)
}

// WithIndicator shows progress while exporting.
func WithIndicator(i Indicator) Option {
	return func(e *Exporter) {
		if i != nil {
			e.indicator = i
		}
	}
}

// WithDownloader sets where artifacts are delivered.
func WithDownloader(d Downloader) Option {
	return func(e *Exporter) {
		if d != nil {
			e.downloader = d
		}
	}
}

// WithOutputDir saves artifacts into dir.
func WithOutputDir(dir string) Option {
	return WithDownloader(DirDownloader{Dir: dir})
}

// WithDispatcher reports each export as a pdf_export usage event.
func WithDispatcher(d EventDispatcher) Option {
	return func(e *Exporter) { e.dispatcher = d }
}

// WithHistory records finished exports.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Exporter) { e.history = h }
}

// WithProfileSource reads the profile from src instead of the surface's
// form, so reports can be built for profiles that never went through a page.
func WithProfileSource(src ProfileSource) Option {
	return func(e *Exporter) { e.profiles = src }
}

// WithVerify reads each artifact back and checks its page count before
// delivering it.
func WithVerify(enabled bool) Option {
	return func(e *Exporter) {
		if enabled {
			e.verifier = pdfcheck.New()
		} else {
			e.verifier = nil
		}
	}
}

// WithVerifier sets a custom artifact verifier.
func WithVerifier(v Verifier) Option {
	return func(e *Exporter) { e.verifier = v }
}

// WithDateFormat sets how the "Generated on" date is printed: a preset
// (locale, iso, european, us, long) or tokens such as "DD/MM/YYYY".
// Invalid formats are reported by NewExporter.
func WithDateFormat(format string) Option {
	return func(e *Exporter) { e.dateFormat = format }
}

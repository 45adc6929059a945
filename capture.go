package edureport

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-edureport/internal/browser"
)

// BrowserConfig configures headless Chrome for region capture.
type BrowserConfig struct {
	Bin       string        // Chrome executable, empty for auto-detection
	NoSandbox bool          // forced on in CI and with a pre-installed browser
	RemoteURL string        // DevTools URL of an existing browser
	Timeout   time.Duration // page load and capture bound
	Logger    zerolog.Logger
}

// BrowserCapture provides the RegionCapture capability with headless
// Chrome. The browser starts on the first capture, or earlier when a live
// page is opened.
type BrowserCapture struct {
	manager  *browser.Manager
	capturer *browser.Capturer
}

var (
	_ CapabilityLoader = (*BrowserCapture)(nil)
	_ Capturer         = (*BrowserCapture)(nil)
)

// NewBrowserCapture creates a BrowserCapture. No process is started yet.
func NewBrowserCapture(cfg BrowserConfig) *BrowserCapture {
	m := browser.NewManager(browser.Config{
		Bin:       cfg.Bin,
		NoSandbox: cfg.NoSandbox,
		RemoteURL: cfg.RemoteURL,
		Timeout:   cfg.Timeout,
		Logger:    cfg.Logger,
	})
	return &BrowserCapture{manager: m, capturer: browser.NewCapturer(m)}
}

// Available implements CapabilityLoader.
func (b *BrowserCapture) Available() bool { return b.manager.Available() }

// Load implements CapabilityLoader.
func (b *BrowserCapture) Load(ctx context.Context) error { return b.manager.Load(ctx) }

// Capture implements Capturer.
func (b *BrowserCapture) Capture(ctx context.Context, r Region, opts CaptureOptions) (*CapturedRegion, error) {
	return b.capturer.Capture(ctx, r, opts)
}

// Page is a live Surface that must be closed after use.
type Page interface {
	Surface
	Close() error
}

// OpenPage loads the recommender application at url as a live Surface.
func (b *BrowserCapture) OpenPage(ctx context.Context, url string) (Page, error) {
	p, err := b.manager.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Close stops the browser.
func (b *BrowserCapture) Close() error { return b.manager.Close() }

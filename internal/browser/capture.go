package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-edureport/internal/surface"
)

// viewportHeight is the initial layout height; element screenshots are
// not limited by it.
const viewportHeight = 800

// markupRegion is a region that can be rendered from standalone HTML.
type markupRegion interface {
	surface.Region
	Markup() string
}

// Capturer rasterizes regions with the Manager's browser. Live page
// regions are captured in place; regions carrying markup are rendered in
// a scratch tab first.
type Capturer struct {
	m *Manager
}

var _ surface.Capturer = (*Capturer)(nil)

// NewCapturer creates a Capturer on m.
func NewCapturer(m *Manager) *Capturer {
	return &Capturer{m: m}
}

// Capture implements surface.Capturer.
func (c *Capturer) Capture(ctx context.Context, r surface.Region, opts surface.CaptureOptions) (*surface.CapturedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch reg := r.(type) {
	case *pageRegion:
		return c.captureElement(ctx, reg.page, reg.el, opts)
	case markupRegion:
		if reg.Markup() == "" {
			return nil, fmt.Errorf("%w: %s has no markup", ErrUnsupported, r.ID())
		}
		return c.captureMarkup(ctx, reg, opts)
	default:
		return nil, fmt.Errorf("%w: %s (%T)", ErrUnsupported, r.ID(), r)
	}
}

// captureMarkup renders the region's HTML in a scratch tab and captures
// the element carrying the region's id.
func (c *Capturer) captureMarkup(ctx context.Context, r markupRegion, opts surface.CaptureOptions) (*surface.CapturedRegion, error) {
	b, err := c.m.Browser()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(c.m.cfg.Timeout)
	if err := p.SetDocumentContent(r.Markup()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	el, err := p.Element("#" + r.ID())
	if err != nil {
		return nil, fmt.Errorf("%w: locating #%s: %v", ErrScreenshot, r.ID(), err)
	}
	return c.captureElement(ctx, page, el, opts)
}

// captureElement screenshots el at the requested pixel ratio.
func (c *Capturer) captureElement(ctx context.Context, page *rod.Page, el *rod.Element, opts surface.CaptureOptions) (*surface.CapturedRegion, error) {
	p := page.Context(ctx).Timeout(c.m.cfg.Timeout)

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             c.m.cfg.ViewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: scale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrScreenshot, err)
	}
	defer func() { _ = proto.EmulationClearDeviceMetricsOverride{}.Call(page) }()

	format := proto.PageCaptureScreenshotFormatJpeg
	kind := surface.FormatJPEG
	if opts.Quality <= 0 {
		format = proto.PageCaptureScreenshotFormatPng
		kind = surface.FormatPNG
	}

	data, err := el.Context(ctx).Timeout(c.m.cfg.Timeout).Screenshot(format, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding screenshot: %v", ErrScreenshot, err)
	}

	return &surface.CapturedRegion{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: kind,
		Data:   data,
	}, nil
}

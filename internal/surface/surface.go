// Package surface models the UI state a report is built from: a profile form
// and named regions that can be inspected and rasterized.
// It has no dependencies so that the browser, offline and library packages
// can share the same vocabulary without import cycles.
package surface

import "context"

// Well-known element identifiers of the recommender page.
const (
	FormID            = "recommendation-form"
	RecommendationsID = "recommendations-container"
	AnalyticsID       = "analytics-summary"
)

// HiddenClass marks a region that is present in the page but not shown.
const HiddenClass = "hidden"

// Form exposes the named input fields of the profile form.
type Form interface {
	// Field returns the current value of the input called name.
	// ok is false when the form has no such input.
	Field(name string) (value string, ok bool)
}

// Region is a point-in-time view of a named page element.
type Region interface {
	ID() string
	Hidden() bool
	Text() string
}

// Surface gives access to the form and regions of one rendered page.
// Both lookups return (nil, nil) when the element does not exist.
type Surface interface {
	Form(ctx context.Context) (Form, error)
	Region(ctx context.Context, id string) (Region, error)
}

// Image formats produced by capturers.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// CapturedRegion is a raster snapshot of a region. It is consumed by the
// layout engine immediately and never cached.
type CapturedRegion struct {
	Width  int // pixels
	Height int // pixels
	Format string
	Data   []byte
}

// CaptureOptions controls rasterization.
type CaptureOptions struct {
	Scale   float64 // device pixel ratio, 2 for crisp output
	Quality int     // JPEG quality 0-100
}

// Capturer rasterizes regions it knows how to render.
type Capturer interface {
	Capture(ctx context.Context, r Region, opts CaptureOptions) (*CapturedRegion, error)
}

// MapForm is a Form backed by a map, used for synthetic input.
type MapForm map[string]string

// Field implements Form.
func (m MapForm) Field(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// StaticRegion is a region whose state is known up front. When HTML is set
// it can be rendered and captured without a live page.
type StaticRegion struct {
	RegionID string
	IsHidden bool
	Content  string // visible text
	HTML     string // self-contained markup, optional
}

// ID implements Region.
func (r *StaticRegion) ID() string { return r.RegionID }

// Hidden implements Region.
func (r *StaticRegion) Hidden() bool { return r.IsHidden }

// Text implements Region.
func (r *StaticRegion) Text() string { return r.Content }

// Markup returns the HTML to render for capture.
func (r *StaticRegion) Markup() string { return r.HTML }

// StaticSurface is a Surface assembled in memory.
type StaticSurface struct {
	Fields  MapForm // nil means the form is absent
	Regions map[string]Region
}

// Form implements Surface.
func (s *StaticSurface) Form(context.Context) (Form, error) {
	if s.Fields == nil {
		return nil, nil
	}
	return s.Fields, nil
}

// Region implements Surface.
func (s *StaticSurface) Region(_ context.Context, id string) (Region, error) {
	r, ok := s.Regions[id]
	if !ok {
		return nil, nil
	}
	return r, nil
}

package edureport

import "github.com/alnah/go-edureport/internal/surface"

// Surface types are shared with the browser and offline renderers.
type (
	// Surface gives access to the form and regions of one rendered page.
	Surface = surface.Surface
	// Region is a point-in-time view of a named page element.
	Region = surface.Region
	// FormHandle exposes the named input fields of the profile form.
	FormHandle = surface.Form
	// CapturedRegion is a raster snapshot of a region.
	CapturedRegion = surface.CapturedRegion
	// CaptureOptions controls rasterization.
	CaptureOptions = surface.CaptureOptions
	// Capturer rasterizes regions.
	Capturer = surface.Capturer
	// MapForm is a FormHandle backed by a map.
	MapForm = surface.MapForm
)

// Element identifiers read by the report pipeline.
const (
	FormID            = surface.FormID
	RecommendationsID = surface.RecommendationsID
	AnalyticsID       = surface.AnalyticsID
)

// In-memory surface types.
type (
	// StaticRegion is a region whose state is known up front.
	StaticRegion = surface.StaticRegion
	// StaticSurface is a Surface assembled in memory.
	StaticSurface = surface.StaticSurface
)

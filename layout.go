package edureport

import "fmt"

// Layout constants in millimetres.
const (
	// TargetWidth is the display width of captured regions.
	TargetWidth = 170.0
	// UsableHeight is the lowest y content may reach before a page break.
	UsableHeight = 280.0
	// MarginLeft is the x of left-aligned content.
	MarginLeft = 20.0
	// MarginRight is the x where horizontal rules end.
	MarginRight = 190.0
	// PageCenter is the x of centred text.
	PageCenter = PageWidth / 2
	// TopMargin is where content resumes on a fresh page.
	TopMargin = 20.0
)

// Placement describes where an image ended up.
type Placement struct {
	Height     float64
	Overflowed bool
}

// DisplayHeight scales a pixel height to targetWidth preserving aspect ratio.
func DisplayHeight(pixelWidth, pixelHeight int, targetWidth float64) float64 {
	if pixelWidth <= 0 {
		return 0
	}
	return float64(pixelHeight) * targetWidth / float64(pixelWidth)
}

// Overflows reports whether content of height h starting at originY
// extends past the usable page height.
func Overflows(originY, h float64) bool {
	return originY+h > UsableHeight
}

// Place draws img at the left margin and originY, scaled to targetWidth,
// and reports whether it runs past the usable height. The image is drawn
// first; breaking the page afterwards is left to the caller.
func Place(doc Document, img *CapturedRegion, targetWidth, originY float64) (Placement, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return Placement{}, fmt.Errorf("%w: region has no pixels", ErrInvalidImage)
	}
	h := DisplayHeight(img.Width, img.Height, targetWidth)
	if err := doc.Image(img, MarginLeft, originY, targetWidth, h); err != nil {
		return Placement{}, err
	}
	return Placement{Height: h, Overflowed: Overflows(originY, h)}, nil
}

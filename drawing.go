package edureport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres (A4 portrait).
const (
	PageWidth  = 210.0
	PageHeight = 297.0
)

// Document is the drawing surface a report is assembled on.
// Coordinates are absolute millimetres from the top-left corner of the
// current page; text y is the baseline.
type Document interface {
	SetFontSize(size float64)
	SetTextColor(r, g, b int)
	SetDrawColor(r, g, b int)
	Text(x, y float64, s string)
	CenteredText(cx, y float64, s string)
	Line(x1, y1, x2, y2 float64)
	Image(img *CapturedRegion, x, y, w, h float64) error
	AddPage()
	SetPage(n int)
	PageCount() int
	Output(w io.Writer) error
}

// DocumentFactory creates empty documents with a first page.
type DocumentFactory interface {
	NewDocument() Document
}

// fontFamily is the core font used when no UTF-8 font is loaded.
const fontFamily = "Helvetica"

// utf8Family names the family registered from a custom font file.
const utf8Family = "ReportSans"

// DrawingBackend implements the DocumentDrawing capability on fpdf.
// Core fonts are built in, so the backend is available immediately unless
// a UTF-8 font file must be read first.
type DrawingBackend struct {
	fontPath string
	title    string
	now      func() time.Time

	mu   sync.RWMutex
	font []byte
}

// Compile-time interface checks.
var (
	_ CapabilityLoader = (*DrawingBackend)(nil)
	_ DocumentFactory  = (*DrawingBackend)(nil)
	_ Document         = (*fpdfDocument)(nil)
)

// NewDrawingBackend creates a backend. fontPath may be empty.
func NewDrawingBackend(fontPath string) *DrawingBackend {
	return &DrawingBackend{
		fontPath: fontPath,
		title:    reportTitle,
		now:      time.Now,
	}
}

// Available implements CapabilityLoader.
func (b *DrawingBackend) Available() bool {
	if b.fontPath == "" {
		return true
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.font != nil
}

// Load reads the configured font file.
func (b *DrawingBackend) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(b.fontPath) // #nosec G304 -- font path is user-provided
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}
	if !bytes.HasPrefix(data, []byte{0x00, 0x01, 0x00, 0x00}) && !bytes.HasPrefix(data, []byte("true")) {
		return fmt.Errorf("loading font: %s is not a TrueType file", b.fontPath)
	}
	b.mu.Lock()
	b.font = data
	b.mu.Unlock()
	return nil
}

// NewDocument implements DocumentFactory.
func (b *DrawingBackend) NewDocument() Document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetTitle(b.title, true)
	pdf.SetCreator("go-edureport", true)
	pdf.SetCreationDate(b.now())

	d := &fpdfDocument{pdf: pdf, translate: func(s string) string { return s }}

	b.mu.RLock()
	font := b.font
	b.mu.RUnlock()

	if font != nil {
		pdf.AddUTF8FontFromBytes(utf8Family, "", font)
		pdf.SetFont(utf8Family, "", 12)
	} else {
		pdf.SetFont(fontFamily, "", 12)
		d.translate = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()
	return d
}

// fpdfDocument adapts fpdf to Document.
type fpdfDocument struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	images    int
}

func (d *fpdfDocument) SetFontSize(size float64) { d.pdf.SetFontSize(size) }

func (d *fpdfDocument) SetTextColor(r, g, b int) { d.pdf.SetTextColor(r, g, b) }

func (d *fpdfDocument) SetDrawColor(r, g, b int) { d.pdf.SetDrawColor(r, g, b) }

func (d *fpdfDocument) Text(x, y float64, s string) {
	d.pdf.Text(x, y, d.translate(s))
}

func (d *fpdfDocument) CenteredText(cx, y float64, s string) {
	s = d.translate(s)
	d.pdf.Text(cx-d.pdf.GetStringWidth(s)/2, y, s)
}

func (d *fpdfDocument) Line(x1, y1, x2, y2 float64) { d.pdf.Line(x1, y1, x2, y2) }

// Image registers the raster under a unique name and draws it.
func (d *fpdfDocument) Image(img *CapturedRegion, x, y, w, h float64) error {
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	imageType := "JPG"
	if strings.EqualFold(img.Format, "png") {
		imageType = "PNG"
	}
	d.images++
	name := fmt.Sprintf("region-%d", d.images)
	opts := fpdf.ImageOptions{ImageType: imageType}

	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

func (d *fpdfDocument) AddPage() { d.pdf.AddPage() }

func (d *fpdfDocument) SetPage(n int) { d.pdf.SetPage(n) }

func (d *fpdfDocument) PageCount() int { return d.pdf.PageCount() }

// Output serializes the document as PDF.
func (d *fpdfDocument) Output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return nil
}

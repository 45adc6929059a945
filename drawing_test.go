package edureport

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// jpegRegion encodes a w x h solid image.
func jpegRegion(t *testing.T, w, h int) *CapturedRegion {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return &CapturedRegion{Width: w, Height: h, Format: "jpeg", Data: buf.Bytes()}
}

func TestDrawingBackend_CoreFontsAvailable(t *testing.T) {
	t.Parallel()

	b := NewDrawingBackend("")
	if !b.Available() {
		t.Error("Available() = false, want true without a font file")
	}
}

func TestDrawingBackend_Document(t *testing.T) {
	t.Parallel()

	b := NewDrawingBackend("")
	b.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	doc := b.NewDocument()
	if doc.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1 for a new document", doc.PageCount())
	}

	doc.SetFontSize(20)
	doc.CenteredText(PageCenter, 20, reportTitle)
	doc.Text(MarginLeft, 55, "Learning Style: Visual Learner")
	doc.Line(MarginLeft, 35, MarginRight, 35)
	if err := doc.Image(jpegRegion(t, 40, 20), MarginLeft, 100, TargetWidth, 85); err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	doc.AddPage()
	doc.SetPage(1)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with %%PDF-: %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if doc.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", doc.PageCount())
	}
}

func TestDrawingBackend_InvalidImage(t *testing.T) {
	t.Parallel()

	doc := NewDrawingBackend("").NewDocument()

	tests := []struct {
		name string
		img  *CapturedRegion
	}{
		{name: "nil", img: nil},
		{name: "no data", img: &CapturedRegion{Width: 10, Height: 10}},
		{name: "corrupt jpeg", img: &CapturedRegion{Width: 10, Height: 10, Format: "jpeg", Data: []byte("nope")}},
	}
	for _, tt := range tests {
		if err := doc.Image(tt.img, 0, 0, 10, 10); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("%s: Image() error = %v, want ErrInvalidImage", tt.name, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Errorf("Output() after rejected images error = %v", err)
	}
}

func TestDrawingBackend_LoadFontErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	notFont := filepath.Join(dir, "font.ttf")
	if err := os.WriteFile(notFont, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.ttf")},
		{name: "not a TrueType file", path: notFont},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewDrawingBackend(tt.path)
			if b.Available() {
				t.Error("Available() = true before the font is loaded")
			}
			if err := b.Load(context.Background()); err == nil {
				t.Error("Load() error = nil, want error")
			}
			if b.Available() {
				t.Error("Available() = true after failed load")
			}
		})
	}
}

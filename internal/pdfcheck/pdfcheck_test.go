package pdfcheck

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-pdf/fpdf"
)

func makePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 20, "page")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	return buf.Bytes()
}

func TestChecker_PageCount(t *testing.T) {
	t.Parallel()

	for _, pages := range []int{1, 3} {
		got, err := New().PageCount(makePDF(t, pages))
		if err != nil {
			t.Fatalf("PageCount() error = %v", err)
		}
		if got != pages {
			t.Errorf("PageCount() = %d, want %d", got, pages)
		}
	}
}

func TestChecker_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("hello world")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New().PageCount(tt.data)
			if err == nil {
				t.Fatal("PageCount() error = nil, want error")
			}
			if tt.data == nil && !errors.Is(err, ErrEmpty) {
				t.Errorf("error = %v, want ErrEmpty", err)
			}
		})
	}
}

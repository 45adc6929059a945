// Package pdfcheck reads a PDF back and reports what it contains.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("empty PDF")

// Checker validates PDFs with pdfcpu.
type Checker struct {
	conf *model.Configuration
}

// New returns a Checker using pdfcpu's default configuration.
func New() *Checker {
	return &Checker{conf: model.NewDefaultConfiguration()}
}

// PageCount parses and validates data and returns its number of pages.
func (c *Checker) PageCount(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), c.conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

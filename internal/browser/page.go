package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-edureport/internal/surface"
)

// PageSurface is a live page of the recommender application.
type PageSurface struct {
	page *rod.Page
}

var _ surface.Surface = (*PageSurface)(nil)

// Open navigates a new tab to url and waits for it to load. It connects
// the browser first if needed.
func (m *Manager) Open(ctx context.Context, url string) (*PageSurface, error) {
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	b, err := m.Browser()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.Context(ctx).Timeout(m.cfg.Timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}
	return &PageSurface{page: page}, nil
}

// Close closes the tab.
func (s *PageSurface) Close() error {
	return s.page.Close()
}

// Form implements surface.Surface.
func (s *PageSurface) Form(ctx context.Context) (surface.Form, error) {
	el, err := s.find(ctx, surface.FormID)
	if err != nil || el == nil {
		return nil, err
	}

	res, err := el.Eval(`() => {
		const out = {};
		for (const input of this.elements) {
			if (input.name) out[input.name] = String(input.value ?? "");
		}
		return out;
	}`)
	if err != nil {
		return nil, fmt.Errorf("reading form fields: %w", err)
	}

	fields := surface.MapForm{}
	if err := res.Value.Unmarshal(&fields); err != nil {
		return nil, fmt.Errorf("decoding form fields: %w", err)
	}
	return fields, nil
}

// Region implements surface.Surface. The snapshot of hidden state and text
// is taken now; capture uses the live element.
func (s *PageSurface) Region(ctx context.Context, id string) (surface.Region, error) {
	el, err := s.find(ctx, id)
	if err != nil || el == nil {
		return nil, err
	}

	hidden, err := el.Eval(`(cls) => this.classList.contains(cls)`, surface.HiddenClass)
	if err != nil {
		return nil, fmt.Errorf("reading region %s class: %w", id, err)
	}
	// textContent includes hidden descendants, which innerText skips.
	text, err := el.Eval(`() => this.textContent`)
	if err != nil {
		return nil, fmt.Errorf("reading region %s text: %w", id, err)
	}

	return &pageRegion{
		id:     id,
		hidden: hidden.Value.Bool(),
		text:   text.Value.Str(),
		el:     el,
		page:   s.page,
	}, nil
}

// find returns the element with the given id, or nil when absent.
func (s *PageSurface) find(ctx context.Context, id string) (*rod.Element, error) {
	found, el, err := s.page.Context(ctx).Has("#" + id)
	if err != nil {
		return nil, fmt.Errorf("looking up #%s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return el, nil
}

// pageRegion is a region backed by a live element.
type pageRegion struct {
	id     string
	hidden bool
	text   string
	el     *rod.Element
	page   *rod.Page
}

func (r *pageRegion) ID() string   { return r.id }
func (r *pageRegion) Hidden() bool { return r.hidden }
func (r *pageRegion) Text() string { return r.text }

package edureport

// Notes:
// - Sections are driven directly with a renderContext over a recordingDoc,
//   so positions and page breaks can be asserted without producing a PDF.
// - The capture capability is registered as ready unless a test needs it
//   to fail.

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func newRenderContext(s Surface, c Capturer) (*renderContext, *recordingDoc) {
	doc := newRecordingDoc()
	reg := NewRegistry()
	reg.Register(DocumentDrawing, readyLoader{})
	reg.Register(RegionCapture, readyLoader{})
	return &renderContext{
		doc:          doc,
		profile:      Extract(sampleForm()),
		surface:      s,
		capturer:     c,
		capabilities: reg,
		generatedOn:  "3/14/2026",
	}, doc
}

// runSections renders the full report and returns the per-section results.
func runSections(t *testing.T, rc *renderContext) []SectionResult {
	t.Helper()
	var out []SectionResult
	cursor := 0.0
	for _, sec := range reportSections() {
		res, err := sec.render(context.Background(), rc, cursor)
		if err != nil {
			t.Fatalf("section %s error = %v", sec.name, err)
		}
		cursor = res.CursorY
		out = append(out, res)
	}
	return out
}

// ---------------------------------------------------------------------------
// Header
// ---------------------------------------------------------------------------

func TestRenderHeader(t *testing.T) {
	t.Parallel()

	rc, doc := newRenderContext(nil, nil)
	res, err := renderHeader(context.Background(), rc, 0)
	if err != nil {
		t.Fatalf("renderHeader() error = %v", err)
	}
	if res.CursorY != 85 {
		t.Errorf("CursorY = %v, want 85", res.CursorY)
	}

	title := doc.find(reportTitle)
	if len(title) != 1 || title[0].X != 105 || title[0].Y != 20 || title[0].Kind != "ctext" {
		t.Errorf("title ops = %+v, want centred at (105,20)", title)
	}
	if date := doc.find("Generated on: 3/14/2026"); len(date) != 1 || date[0].Y != 30 {
		t.Errorf("date ops = %+v, want y=30", date)
	}

	lines := rc.profile.Lines()
	for i, line := range lines {
		ops := doc.find(line)
		wantY := 55 + float64(i)*5
		if len(ops) != 1 || ops[0].X != 20 || ops[0].Y != wantY {
			t.Errorf("%q ops = %+v, want (20,%v)", line, ops, wantY)
		}
	}

	var rules []float64
	for _, op := range doc.ops {
		if op.Kind == "line" {
			rules = append(rules, op.Y)
			if op.X != 20 || op.W != 170 {
				t.Errorf("rule from %v width %v, want 20..190", op.X, op.W)
			}
		}
	}
	if len(rules) != 2 || rules[0] != 35 || rules[1] != 85 {
		t.Errorf("rules at %v, want [35 85]", rules)
	}
}

func TestRenderHeader_EmptyProfile(t *testing.T) {
	t.Parallel()

	rc, doc := newRenderContext(nil, nil)
	rc.profile = StudentProfile{}
	if _, err := renderHeader(context.Background(), rc, 0); err != nil {
		t.Fatalf("renderHeader() error = %v", err)
	}
	if len(doc.find("Learning Style: "+NotSpecified)) != 1 {
		t.Errorf("texts = %v, want Not specified labels", doc.texts())
	}
}

// ---------------------------------------------------------------------------
// Recommendations
// ---------------------------------------------------------------------------

func TestRenderRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		region        Region
		img           *CapturedRegion
		wantOutcome   Outcome
		wantPageAdded bool
		wantCursor    float64
		wantTexts     []string
	}{
		{
			name:        "fits on first page",
			region:      &StaticRegion{RegionID: RecommendationsID},
			img:         &CapturedRegion{Width: 1700, Height: 1700, Data: []byte{1}},
			wantOutcome: OutcomeRendered,
			wantCursor:  270,
			wantTexts:   []string{recommendationsHeading},
		},
		{
			name:          "tall image breaks page after drawing",
			region:        &StaticRegion{RegionID: RecommendationsID},
			img:           &CapturedRegion{Width: 1700, Height: 1900, Data: []byte{1}},
			wantOutcome:   OutcomeRendered,
			wantPageAdded: true,
			wantCursor:    TopMargin,
			wantTexts:     []string{recommendationsHeading},
		},
		{
			name:        "hidden region draws notice",
			region:      &StaticRegion{RegionID: RecommendationsID, IsHidden: true},
			wantOutcome: OutcomeNotice,
			wantCursor:  95,
			wantTexts:   []string{noRecommendationsNotice},
		},
		{
			name:        "absent region draws notice",
			wantOutcome: OutcomeNotice,
			wantCursor:  95,
			wantTexts:   []string{noRecommendationsNotice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &StaticSurface{Regions: map[string]Region{}}
			if tt.region != nil {
				s.Regions[RecommendationsID] = tt.region
			}
			c := &fakeCapturer{images: map[string]*CapturedRegion{RecommendationsID: tt.img}}
			rc, doc := newRenderContext(s, c)

			res, err := renderRecommendations(context.Background(), rc, 85)
			if err != nil {
				t.Fatalf("renderRecommendations() error = %v", err)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.wantOutcome)
			}
			if res.PageAdded != tt.wantPageAdded {
				t.Errorf("PageAdded = %v, want %v", res.PageAdded, tt.wantPageAdded)
			}
			if res.CursorY != tt.wantCursor {
				t.Errorf("CursorY = %v, want %v", res.CursorY, tt.wantCursor)
			}
			got := doc.texts()
			if fmt.Sprint(got) != fmt.Sprint(tt.wantTexts) {
				t.Errorf("texts = %q, want %q", got, tt.wantTexts)
			}
			for _, op := range doc.ops {
				if op.Kind == "image" && (op.Page != 1 || op.Y != 100) {
					t.Errorf("image drawn on page %d at y=%v, want page 1 y=100", op.Page, op.Y)
				}
			}
			if tt.wantOutcome == OutcomeNotice && c.callCount() != 0 {
				t.Error("capturer invoked for a region with nothing to show")
			}
		})
	}
}

func TestRenderRecommendations_CaptureFailureIsolated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(rc *renderContext)
	}{
		{
			name: "capturer error",
			setup: func(rc *renderContext) {
				rc.capturer = &fakeCapturer{errs: map[string]error{RecommendationsID: errBoom}}
			},
		},
		{
			name: "capture capability failed to load",
			setup: func(rc *renderContext) {
				reg := NewRegistry()
				reg.Register(RegionCapture, LoaderFunc(func(context.Context) error { return errBoom }))
				rc.capabilities = reg
			},
		},
		{
			name:  "no capturer",
			setup: func(rc *renderContext) { rc.capturer = nil },
		},
		{
			name: "zero-size capture",
			setup: func(rc *renderContext) {
				rc.capturer = &fakeCapturer{images: map[string]*CapturedRegion{RecommendationsID: {Data: []byte{1}}}}
			},
		},
		{
			name:  "region lookup error",
			setup: func(rc *renderContext) { rc.surface = failingSurface{err: errBoom} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rc, doc := newRenderContext(fullSurface(), &fakeCapturer{})
			tt.setup(rc)

			results := runSections(t, rc)
			rec := results[1]
			if rec.Outcome != OutcomePlaceholder {
				t.Fatalf("Outcome = %v, want placeholder", rec.Outcome)
			}
			if !errors.Is(rec.Err, ErrCaptureFailure) {
				t.Errorf("Err = %v, want ErrCaptureFailure", rec.Err)
			}
			ph := doc.find(recommendationsCaptureMsg)
			if len(ph) != 1 || ph[0].X != 20 || ph[0].Y != 100 {
				t.Errorf("placeholder ops = %+v, want one at (20,100)", ph)
			}
			// Later sections still run.
			if len(doc.find(fmt.Sprintf("Page 1 of %d", doc.PageCount()))) != 1 {
				t.Errorf("footer missing after recovered failure; texts = %q", doc.texts())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Analytics
// ---------------------------------------------------------------------------

func TestRenderAnalytics_SkippedWithoutDrawing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		surface Surface
	}{
		{name: "absent region", surface: &StaticSurface{}},
		{name: "still loading", surface: &StaticSurface{Regions: map[string]Region{
			AnalyticsID: &StaticRegion{RegionID: AnalyticsID, Content: "Loading analytics data..."},
		}}},
		{name: "lookup error", surface: failingSurface{err: errBoom}},
		{name: "nil surface", surface: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &fakeCapturer{}
			rc, doc := newRenderContext(tt.surface, c)
			res, err := renderAnalytics(context.Background(), rc, 42)
			if err != nil {
				t.Fatalf("renderAnalytics() error = %v", err)
			}
			if res.Outcome != OutcomeSkipped || res.PageAdded || res.CursorY != 42 {
				t.Errorf("result = %+v, want skipped at 42 with no page", res)
			}
			if len(doc.ops) != 0 || doc.PageCount() != 1 {
				t.Errorf("ops = %+v pages = %d, want no drawing", doc.ops, doc.PageCount())
			}
			if c.callCount() != 0 {
				t.Error("capturer invoked for skipped analytics")
			}
		})
	}
}

func TestRenderAnalytics_OwnPage(t *testing.T) {
	t.Parallel()

	rc, doc := newRenderContext(fullSurface(), &fakeCapturer{})
	res, err := renderAnalytics(context.Background(), rc, 185)
	if err != nil {
		t.Fatalf("renderAnalytics() error = %v", err)
	}
	if !res.PageAdded || res.Outcome != OutcomeRendered {
		t.Fatalf("result = %+v, want rendered on a new page", res)
	}
	if doc.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", doc.PageCount())
	}

	title := doc.find(analyticsHeading)
	if len(title) != 1 || title[0].Page != 2 || title[0].Y != 20 {
		t.Errorf("title ops = %+v, want page 2 y=20", title)
	}
	for _, op := range doc.ops {
		if op.Kind == "image" && (op.Page != 2 || op.Y != 30 || op.H != 85) {
			t.Errorf("image op = %+v, want page 2 y=30 h=85", op)
		}
	}
}

func TestRenderAnalytics_CaptureFailurePlaceholder(t *testing.T) {
	t.Parallel()

	c := &fakeCapturer{errs: map[string]error{AnalyticsID: errBoom}}
	rc, doc := newRenderContext(fullSurface(), c)

	results := runSections(t, rc)
	an := results[2]
	if an.Outcome != OutcomePlaceholder || !an.PageAdded {
		t.Fatalf("analytics result = %+v, want placeholder on added page", an)
	}
	ph := doc.find(analyticsCaptureMsg)
	if len(ph) != 1 || ph[0].Page != 2 || ph[0].Y != 30 {
		t.Errorf("placeholder ops = %+v, want page 2 at y=30", ph)
	}
	if len(doc.find(recommendationsHeading)) != 1 || doc.count("image") != 1 {
		t.Error("recommendations section affected by analytics failure")
	}
}

// ---------------------------------------------------------------------------
// Footer
// ---------------------------------------------------------------------------

func TestRenderFooter_EveryPageOnce(t *testing.T) {
	t.Parallel()

	for _, pages := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("%d pages", pages), func(t *testing.T) {
			t.Parallel()

			rc, doc := newRenderContext(nil, nil)
			for i := 1; i < pages; i++ {
				doc.AddPage()
			}
			if _, err := renderFooter(context.Background(), rc, 0); err != nil {
				t.Fatalf("renderFooter() error = %v", err)
			}

			for i := 1; i <= pages; i++ {
				text := fmt.Sprintf("Page %d of %d", i, pages)
				ops := doc.find(text)
				if len(ops) != 1 {
					t.Fatalf("%q drawn %d times, want 1", text, len(ops))
				}
				if ops[0].Page != i || ops[0].X != 105 || ops[0].Y != 280 {
					t.Errorf("%q at page %d (%v,%v), want page %d (105,280)", text, ops[0].Page, ops[0].X, ops[0].Y, i)
				}
			}
			credits := doc.find(attributionLine)
			if len(credits) != pages {
				t.Errorf("attribution drawn %d times, want %d", len(credits), pages)
			}
			for _, c := range credits {
				if c.Y != 285 {
					t.Errorf("attribution at y=%v, want 285", c.Y)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Failure classification
// ---------------------------------------------------------------------------

func TestIsolate_FatalErrorsPropagate(t *testing.T) {
	t.Parallel()

	drawingErr := &CapabilityError{ID: DocumentDrawing, Err: errBoom}
	fn := isolate("x", func(context.Context, *renderContext, float64) (SectionResult, error) {
		return SectionResult{}, drawingErr
	}, placeholder{text: "ph", y: 10})

	rc, doc := newRenderContext(nil, nil)
	if _, err := fn(context.Background(), rc, 0); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Errorf("error = %v, want drawing capability failure propagated", err)
	}
	if len(doc.find("ph")) != 0 {
		t.Error("placeholder drawn for fatal error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fn = isolate("x", func(ctx context.Context, _ *renderContext, _ float64) (SectionResult, error) {
		return SectionResult{}, ctx.Err()
	}, placeholder{text: "ph", y: 10})
	if _, err := fn(ctx, rc, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	for o, want := range map[Outcome]string{
		OutcomeRendered:    "rendered",
		OutcomeNotice:      "notice",
		OutcomePlaceholder: "placeholder",
		OutcomeSkipped:     "skipped",
		Outcome(42):        "unknown",
	} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}

package edureport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-edureport/internal/surface"
)

// Report text.
const (
	reportTitle            = "Educational Recommendations Report"
	profileHeading         = "Student Profile"
	recommendationsHeading = "Learning Recommendations"
	analyticsHeading       = "Learning Analytics Summary"
	attributionLine        = "Generated by Educational Recommender System"

	noRecommendationsNotice   = "No recommendations available. Please generate recommendations first."
	recommendationsCaptureMsg = "Could not capture recommendations visually. Please try again."
	analyticsCaptureMsg       = "Could not capture analytics data."

	// analyticsLoadingSentinel marks an analytics region whose data has not arrived.
	analyticsLoadingSentinel = "Loading analytics data"
)

// Grey levels used by the report.
const (
	greyHeading = 40
	greyBody    = 80
	greySub     = 100
	greyMuted   = 150
	greyRule    = 200
)

// Vertical positions (mm).
const (
	titleY            = 20.0
	dateY             = 30.0
	firstRuleY        = 35.0
	profileHeadingY   = 45.0
	profileFirstLineY = 55.0
	profileLineStep   = 5.0
	secondRuleY       = 85.0
	recommendationsY  = 95.0
	recommendationsIm = 100.0
	analyticsTitleY   = 20.0
	analyticsImageY   = 30.0
	footerPageY       = 280.0
	footerCreditY     = 285.0
)

// regionCapture holds the scale and quality used for every region.
var regionCapture = CaptureOptions{Scale: 2, Quality: 80}

// Outcome classifies what a section produced.
type Outcome int

const (
	OutcomeRendered    Outcome = iota // content drawn as designed
	OutcomeNotice                     // nothing to show, notice line drawn
	OutcomePlaceholder                // failure recovered with a placeholder line
	OutcomeSkipped                    // nothing drawn at all
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeNotice:
		return "notice"
	case OutcomePlaceholder:
		return "placeholder"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SectionResult is what a section reports back to the assembler.
type SectionResult struct {
	CursorY   float64
	PageAdded bool
	Outcome   Outcome
	Err       error // recovered error, if any
}

// renderContext carries everything sections read while drawing.
type renderContext struct {
	doc          Document
	profile      StudentProfile
	surface      Surface
	capturer     Capturer
	capabilities *Registry
	generatedOn  string
}

// sectionFunc renders one section starting at cursorY.
type sectionFunc func(ctx context.Context, rc *renderContext, cursorY float64) (SectionResult, error)

// section is a named, failure-isolated step of the report.
type section struct {
	name   string
	render sectionFunc
}

// placeholder is the line drawn when a section fails.
type placeholder struct {
	text string
	y    float64
}

// isolate wraps a section so that any recoverable error becomes a
// placeholder line and the report continues. Capability failures of the
// drawing backend and context cancellation still abort the export.
func isolate(name string, fn sectionFunc, ph placeholder) sectionFunc {
	return func(ctx context.Context, rc *renderContext, cursorY float64) (SectionResult, error) {
		res, err := fn(ctx, rc, cursorY)
		if err == nil {
			return res, nil
		}
		if isFatal(ctx, err) {
			return res, err
		}

		zerolog.Ctx(ctx).Warn().Err(err).Str("section", name).Msg("section degraded to placeholder")

		rc.doc.SetFontSize(10)
		rc.doc.SetTextColor(greyMuted, greyMuted, greyMuted)
		rc.doc.Text(MarginLeft, ph.y, ph.text)

		return SectionResult{
			CursorY:   ph.y,
			PageAdded: res.PageAdded,
			Outcome:   OutcomePlaceholder,
			Err:       err,
		}, nil
	}
}

// isFatal reports errors that must abort the export rather than degrade.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var capErr *CapabilityError
	if errors.As(err, &capErr) && capErr.ID == DocumentDrawing {
		return true
	}
	return false
}

// reportSections lists the sections in their required order. The footer
// must stay last: it stamps the final page count on every page.
func reportSections() []section {
	return []section{
		{name: "header", render: renderHeader},
		{name: "recommendations", render: isolate("recommendations", renderRecommendations,
			placeholder{text: recommendationsCaptureMsg, y: recommendationsIm})},
		{name: "analytics", render: isolate("analytics", renderAnalytics,
			placeholder{text: analyticsCaptureMsg, y: analyticsImageY})},
		{name: "footer", render: renderFooter},
	}
}

// renderHeader draws the title, generation date and profile block.
func renderHeader(_ context.Context, rc *renderContext, _ float64) (SectionResult, error) {
	d := rc.doc

	d.SetFontSize(20)
	d.SetTextColor(greyHeading, greyHeading, greyHeading)
	d.CenteredText(PageCenter, titleY, reportTitle)

	d.SetFontSize(12)
	d.SetTextColor(greySub, greySub, greySub)
	d.CenteredText(PageCenter, dateY, "Generated on: "+rc.generatedOn)

	d.SetDrawColor(greyRule, greyRule, greyRule)
	d.Line(MarginLeft, firstRuleY, MarginRight, firstRuleY)

	d.SetFontSize(14)
	d.SetTextColor(greyHeading, greyHeading, greyHeading)
	d.Text(MarginLeft, profileHeadingY, profileHeading)

	d.SetFontSize(10)
	d.SetTextColor(greyBody, greyBody, greyBody)
	for i, line := range rc.profile.Lines() {
		d.Text(MarginLeft, profileFirstLineY+float64(i)*profileLineStep, line)
	}

	d.Line(MarginLeft, secondRuleY, MarginRight, secondRuleY)

	return SectionResult{CursorY: secondRuleY, Outcome: OutcomeRendered}, nil
}

// renderRecommendations embeds the recommendations region, or a notice
// when there is nothing to show.
func renderRecommendations(ctx context.Context, rc *renderContext, cursorY float64) (SectionResult, error) {
	d := rc.doc

	region, err := lookupRegion(ctx, rc.surface, RecommendationsID)
	if err != nil {
		return SectionResult{CursorY: cursorY}, fmt.Errorf("%w: %v", ErrCaptureFailure, err)
	}
	if region == nil || region.Hidden() {
		d.SetFontSize(12)
		d.SetTextColor(greyMuted, greyMuted, greyMuted)
		d.Text(MarginLeft, recommendationsY, noRecommendationsNotice)
		return SectionResult{CursorY: recommendationsY, Outcome: OutcomeNotice}, nil
	}

	d.SetFontSize(14)
	d.SetTextColor(greyHeading, greyHeading, greyHeading)
	d.Text(MarginLeft, recommendationsY, recommendationsHeading)

	img, err := captureRegion(ctx, rc, region)
	if err != nil {
		return SectionResult{CursorY: recommendationsY}, err
	}

	p, err := Place(d, img, TargetWidth, recommendationsIm)
	if err != nil {
		return SectionResult{CursorY: recommendationsY}, fmt.Errorf("%w: %v", ErrCaptureFailure, err)
	}

	res := SectionResult{CursorY: recommendationsIm + p.Height, Outcome: OutcomeRendered}
	if p.Overflowed {
		d.AddPage()
		res.PageAdded = true
		res.CursorY = TopMargin
	}
	return res, nil
}

// renderAnalytics embeds the analytics region on its own page. It is a
// no-op while the region is absent or still loading.
func renderAnalytics(ctx context.Context, rc *renderContext, cursorY float64) (SectionResult, error) {
	region, err := lookupRegion(ctx, rc.surface, AnalyticsID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("analytics region lookup failed, skipping section")
		return SectionResult{CursorY: cursorY, Outcome: OutcomeSkipped}, nil
	}
	if region == nil || strings.Contains(region.Text(), analyticsLoadingSentinel) {
		return SectionResult{CursorY: cursorY, Outcome: OutcomeSkipped}, nil
	}

	d := rc.doc
	d.AddPage()

	d.SetFontSize(14)
	d.SetTextColor(greyHeading, greyHeading, greyHeading)
	d.Text(MarginLeft, analyticsTitleY, analyticsHeading)

	img, err := captureRegion(ctx, rc, region)
	if err != nil {
		return SectionResult{CursorY: analyticsTitleY, PageAdded: true}, err
	}

	p, err := Place(d, img, TargetWidth, analyticsImageY)
	if err != nil {
		return SectionResult{CursorY: analyticsTitleY, PageAdded: true}, fmt.Errorf("%w: %v", ErrCaptureFailure, err)
	}

	return SectionResult{
		CursorY:   analyticsImageY + p.Height,
		PageAdded: true,
		Outcome:   OutcomeRendered,
	}, nil
}

// renderFooter stamps "Page i of N" and the attribution on every page.
func renderFooter(_ context.Context, rc *renderContext, cursorY float64) (SectionResult, error) {
	d := rc.doc
	n := d.PageCount()

	for i := 1; i <= n; i++ {
		d.SetPage(i)
		d.SetFontSize(8)
		d.SetTextColor(greyMuted, greyMuted, greyMuted)
		d.CenteredText(PageCenter, footerPageY, fmt.Sprintf("Page %d of %d", i, n))
		d.CenteredText(PageCenter, footerCreditY, attributionLine)
	}

	return SectionResult{CursorY: cursorY, Outcome: OutcomeRendered}, nil
}

// lookupRegion fetches a region, tolerating a nil surface.
func lookupRegion(ctx context.Context, s Surface, id string) (Region, error) {
	if s == nil {
		return nil, nil
	}
	return s.Region(ctx, id)
}

// captureRegion ensures the capture capability and rasterizes the region.
// Every failure, including an unavailable capability, is a capture failure.
func captureRegion(ctx context.Context, rc *renderContext, r surface.Region) (*CapturedRegion, error) {
	if rc.capabilities != nil {
		if err := rc.capabilities.Ensure(ctx, RegionCapture); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrCaptureFailure, err)
		}
	}
	if rc.capturer == nil {
		return nil, fmt.Errorf("%w: no capturer configured", ErrCaptureFailure)
	}
	img, err := rc.capturer.Capture(ctx, r, regionCapture)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCaptureFailure, r.ID(), err)
	}
	return img, nil
}

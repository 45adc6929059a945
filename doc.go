// Package edureport turns the state of an educational recommender page into
// a downloadable PDF report.
//
// # Quick Start
//
// Create an exporter and export a surface:
//
//	exp, err := edureport.NewExporter(
//	    edureport.WithOutputDir("reports"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := exp.Export(ctx, surface)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Path, report.Pages)
//
// A Surface is either a live page opened through BrowserCapture.OpenPage or
// an in-memory StaticSurface. The artifact is always named
// Educational_Recommendations_YYYY-MM-DD.pdf after the UTC export date.
//
// # Report Layout
//
// Sections are drawn in a fixed order:
//
//  1. Header: title, generation date and the student profile
//  2. Recommendations: a snapshot of the recommendations region, or a notice
//  3. Analytics: a snapshot of the analytics region on its own page
//  4. Footer: "Page i of N" and the attribution on every page
//
// # Capabilities
//
// Drawing and region capture are optional capabilities held in a Registry.
// Each is loaded at most once, on first use. Concurrent callers share the
// same load, and a failed load stays failed: later callers get the same
// error without a new attempt. Use WithBrowserCapture to enable region
// snapshots and WithFontFile for a UTF-8 TrueType font. WithProfileSource
// supplies the profile when there is no form to read it from.
//
// # Failure Semantics
//
// A failing recommendations or analytics section is replaced with a
// placeholder line and the export continues. Only an unavailable drawing
// backend, cancellation, serialization, verification or delivery errors
// abort. Usage tracking runs in the background through a Dispatcher and
// never fails an export.
//
// # Errors
//
// Errors can be checked with errors.Is:
//
//	if errors.Is(err, edureport.ErrCapabilityUnavailable) {
//	    // install Chrome or fix the font path
//	}
package edureport

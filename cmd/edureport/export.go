package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	edureport "github.com/alnah/go-edureport"
	"github.com/alnah/go-edureport/internal/api"
	"github.com/alnah/go-edureport/internal/hints"
	"github.com/alnah/go-edureport/internal/offline"
)

// dispatcherDrain bounds how long pending tracking events may delay exit.
const dispatcherDrain = 5 * time.Second

func newExportCmd(a *app) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate the PDF report",
		Long: `Generate the PDF report and save it as
Educational_Recommendations_<YYYY-MM-DD>.pdf in the output directory.

Without page.url the profile comes from the flags and the regions are
rendered from the prediction and analytics services.`,
		Example: `  edureport export --math 85 --science 78 --reading 92 \
      --learning-style 0 --interest 2 --performance 1 -o reports/
  edureport export --page-url http://localhost:3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExport(cmd, &f)
		},
	}
	f.register(cmd.Flags())
	a.bindExport(cmd.Flags())
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, f *exportFlags) error {
	ctx := cmd.Context()
	cfg := a.env.Config
	log := a.env.Logger

	if cfg.Page.URL != "" && f.noBrowser {
		return fmt.Errorf("%w: a live page needs the browser, drop --no-browser", ErrUsage)
	}

	var indicator *edureport.TerminalIndicator
	if !f.noProgress && !a.common.quiet {
		indicator = edureport.NewTerminalIndicator(a.env.Stderr)
		log = log.Output(consoleWriter(indicator, isTerminal(a.env.Stderr)))
		a.env.Logger = log
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	opts := []edureport.Option{
		edureport.WithLogger(log),
		edureport.WithClock(a.env.Now),
		edureport.WithDateFormat(cfg.Report.DateFormat),
		edureport.WithFontFile(cfg.Report.FontFile),
		edureport.WithVerify(cfg.Report.Verify),
	}
	if cfg.Output.Dir != "" {
		opts = append(opts, edureport.WithOutputDir(cfg.Output.Dir))
	}
	if indicator != nil {
		opts = append(opts, edureport.WithIndicator(indicator))
	}

	var dispatcher *edureport.Dispatcher
	if !f.noTrack {
		dispatcher = edureport.NewDispatcher(client, edureport.WithDispatcherLogger(log))
		defer drain(dispatcher, log)
		opts = append(opts, edureport.WithDispatcher(dispatcher))
	}

	var capture *edureport.BrowserCapture
	if !f.noBrowser {
		capture = edureport.NewBrowserCapture(edureport.BrowserConfig{
			Bin:       cfg.Browser.Bin,
			NoSandbox: cfg.Browser.NoSandbox,
			RemoteURL: cfg.Browser.RemoteURL,
			Timeout:   cfg.Browser.Timeout,
			Logger:    log,
		})
		defer func() {
			if err := capture.Close(); err != nil {
				log.Debug().Err(err).Msg("closing browser")
			}
		}()
		opts = append(opts, edureport.WithBrowserCapture(capture))
	}

	if cfg.History.Enabled {
		store, err := a.openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, edureport.WithHistory(historyRecorder{store: store}))
	}

	exporter, err := edureport.NewExporter(opts...)
	if err != nil {
		return err
	}

	var surface edureport.Surface
	if cfg.Page.URL != "" {
		page, err := capture.OpenPage(ctx, cfg.Page.URL)
		if err != nil {
			return err
		}
		defer func() { _ = page.Close() }()
		surface = page
	} else {
		surface, err = a.offlineSurface(ctx, client, dispatcher, &f.profile)
		if err != nil {
			return err
		}
	}

	report, err := exporter.Export(ctx, surface)
	if err != nil {
		return err
	}
	if err := a.printReport(report); err != nil {
		return err
	}
	if !f.noBrowser && !a.common.quiet && captureUnavailable(report) {
		fmt.Fprintf(a.env.Stderr, "Some regions were replaced with placeholders.%s\n", hints.ForCaptureUnavailable())
	}
	return nil
}

// offlineSurface renders the regions from the services. Service failures
// degrade the matching region instead of aborting the export.
func (a *app) offlineSurface(ctx context.Context, client *api.Client, dispatcher *edureport.Dispatcher, pf *profileFlags) (edureport.Surface, error) {
	log := a.env.Logger
	profile := pf.profile()

	var result *api.RecommendationResult
	if !profile.IsEmpty() {
		features, err := profile.Features()
		if err != nil {
			return nil, err
		}
		result, err = client.Recommend(ctx, features)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.networkFailure(err, "Failed to get recommendations")
			log.Warn().Err(err).Msg("recommendations unavailable, exporting without them")
			result = nil
		} else if dispatcher != nil {
			a.trackRecommendation(ctx, dispatcher, profile, result)
		}
	}

	summary, err := client.Summary(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Msg("analytics summary unavailable")
		summary = nil
	}

	loader, err := a.assetLoader()
	if err != nil {
		return nil, err
	}
	renderer, err := offline.New(loader, a.env.Config.Report.Templates, a.env.Config.Report.Style)
	if err != nil {
		return nil, err
	}
	return renderer.Surface(ctx, offline.Input{Form: pf.form(), Result: result, Summary: summary})
}

// trackRecommendation reports a generated recommendation set.
func (a *app) trackRecommendation(ctx context.Context, d *edureport.Dispatcher, p edureport.StudentProfile, r *api.RecommendationResult) {
	ev := edureport.Event{
		EventType:          api.EventRecommendationGenerated,
		UserData:           p.TrackingData(),
		RecommendationData: r.RecommendationData(),
		Timestamp:          api.Timestamp(a.env.Now()),
	}
	if err := d.Dispatch(ctx, ev); err != nil {
		a.env.Logger.Warn().Err(err).Msg("usage tracking not dispatched")
	}
}

func (a *app) printReport(r *edureport.Report) error {
	if a.common.json {
		return writeJSON(a.env.Stdout, reportView(r))
	}
	if a.common.quiet {
		return nil
	}
	w := a.env.Stdout
	fmt.Fprintf(w, "PDF generated successfully: %s (%d pages)\n", r.Path, r.Pages)
	for _, s := range r.Sections {
		if s.Err != nil {
			fmt.Fprintf(w, "  %-16s %s (%v)\n", s.Name, s.Outcome, s.Err)
			continue
		}
		fmt.Fprintf(w, "  %-16s %s\n", s.Name, s.Outcome)
	}
	return nil
}

// captureUnavailable reports whether a section fell back to a placeholder
// because the browser could not be loaded.
func captureUnavailable(r *edureport.Report) bool {
	for _, s := range r.Sections {
		var capErr *edureport.CapabilityError
		if s.Outcome == edureport.OutcomePlaceholder && errors.As(s.Err, &capErr) && capErr.ID == edureport.RegionCapture {
			return true
		}
	}
	return false
}

type sectionJSON struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type reportJSON struct {
	ID        string        `json:"id"`
	Filename  string        `json:"filename"`
	Path      string        `json:"path"`
	Pages     int           `json:"pages"`
	Size      int           `json:"size"`
	Sections  []sectionJSON `json:"sections"`
	CreatedAt time.Time     `json:"created_at"`
}

func reportView(r *edureport.Report) reportJSON {
	out := reportJSON{
		ID:        r.ID.String(),
		Filename:  r.Filename,
		Path:      r.Path,
		Pages:     r.Pages,
		Size:      r.Size,
		CreatedAt: r.CreatedAt.UTC(),
	}
	for _, s := range r.Sections {
		sj := sectionJSON{Name: s.Name, Outcome: s.Outcome.String()}
		if s.Err != nil {
			sj.Error = s.Err.Error()
		}
		out.Sections = append(out.Sections, sj)
	}
	return out
}

// drain waits for queued tracking events, bounded by dispatcherDrain.
func drain(d *edureport.Dispatcher, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatcherDrain)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("tracking events still pending at exit")
	}
}

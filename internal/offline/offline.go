// Package offline builds a report surface from collaborator responses, for
// exports run without the recommender page open in a browser.
package offline

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"text/template"

	"github.com/alnah/go-edureport/internal/api"
	"github.com/alnah/go-edureport/internal/assets"
	"github.com/alnah/go-edureport/internal/pipeline"
	"github.com/alnah/go-edureport/internal/surface"
)

// LoadingText is the analytics region text while no summary is available.
const LoadingText = "Loading analytics data..."

// periodOrder lists the time buckets of the analytics summary in display order.
var periodOrder = []string{"morning", "afternoon", "evening", "night"}

// Input is everything a surface is assembled from.
type Input struct {
	Form    surface.MapForm
	Result  *api.RecommendationResult // nil before recommendations were requested
	Summary *api.Summary              // nil when analytics are unavailable
}

// Renderer renders region templates into capturable HTML.
type Renderer struct {
	recommendations *template.Template
	analytics       *template.Template
	css             string

	pre       pipeline.MarkdownPreprocessor
	conv      pipeline.HTMLConverter
	sanitizer *pipeline.Sanitizer
	injector  pipeline.CSSInjector
}

// New creates a Renderer from a template set and stylesheet found by loader.
func New(loader assets.AssetLoader, templateSet, style string) (*Renderer, error) {
	if templateSet == "" {
		templateSet = assets.DefaultTemplateSetName
	}
	if style == "" {
		style = assets.DefaultStyleName
	}

	ts, err := loader.LoadTemplateSet(templateSet)
	if err != nil {
		return nil, err
	}
	css, err := loader.LoadStyle(style)
	if err != nil {
		return nil, err
	}

	recs, err := template.New("recommendations").Parse(ts.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("parsing recommendations template: %w", err)
	}
	analytics, err := template.New("analytics").Parse(ts.Analytics)
	if err != nil {
		return nil, fmt.Errorf("parsing analytics template: %w", err)
	}

	return &Renderer{
		recommendations: recs,
		analytics:       analytics,
		css:             css,
		pre:             &pipeline.CommonMarkPreprocessor{},
		conv:            pipeline.NewGoldmarkConverter(),
		sanitizer:       pipeline.NewSanitizer(),
		injector:        &pipeline.CSSInjection{},
	}, nil
}

// Surface assembles the form and both regions.
func (r *Renderer) Surface(ctx context.Context, in Input) (*surface.StaticSurface, error) {
	recs, err := r.recommendationsRegion(ctx, in.Result)
	if err != nil {
		return nil, err
	}
	analytics, err := r.analyticsRegion(ctx, in.Summary)
	if err != nil {
		return nil, err
	}
	return &surface.StaticSurface{
		Fields: in.Form,
		Regions: map[string]surface.Region{
			surface.RecommendationsID: recs,
			surface.AnalyticsID:       analytics,
		},
	}, nil
}

type chipView struct {
	Name       string
	Confidence string
}

type cardView struct {
	Index        int
	Icon         string
	Title        string
	Type         string
	Difficulty   string
	Category     string
	Confidence   string
	Duration     string
	Pages        string
	TimeRequired string
}

type recommendationsView struct {
	Categories []chipView
	Items      []cardView
}

// recommendationsRegion is hidden until there is something to show.
func (r *Renderer) recommendationsRegion(ctx context.Context, res *api.RecommendationResult) (*surface.StaticRegion, error) {
	region := &surface.StaticRegion{RegionID: surface.RecommendationsID}
	if res == nil || len(res.Recommendations) == 0 {
		region.IsHidden = true
		return region, nil
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	var view recommendationsView
	for i, c := range res.PredictedCategories {
		view.Categories = append(view.Categories, chipView{Name: esc(c), Confidence: percent(res.Probabilities[i])})
	}
	titles := make([]string, 0, len(res.Recommendations))
	for i, rec := range res.Recommendations {
		card := cardView{
			Index:        i + 1,
			Icon:         Icon(rec.Type),
			Title:        mdEsc(rec.Title),
			Type:         mdEsc(rec.Type),
			Difficulty:   mdEsc(rec.Difficulty),
			Category:     mdEsc(rec.Category),
			Confidence:   percent(rec.Confidence),
			Duration:     mdEsc(rec.Duration),
			TimeRequired: mdEsc(rec.TimeRequired),
		}
		if rec.Pages > 0 {
			card.Pages = fmt.Sprint(rec.Pages)
		}
		view.Items = append(view.Items, card)
		titles = append(titles, rec.Title)
	}

	doc, err := r.render(ctx, r.recommendations, view, surface.RecommendationsID, "Recommendations")
	if err != nil {
		return nil, err
	}
	region.HTML = doc
	region.Content = strings.Join(titles, "\n")
	return region, nil
}

type countView struct {
	Name  string
	Count int
}

type analyticsView struct {
	Total      int
	Categories []countView
	Periods    []countView
}

// analyticsRegion shows the loading text until a summary is available.
func (r *Renderer) analyticsRegion(ctx context.Context, s *api.Summary) (*surface.StaticRegion, error) {
	region := &surface.StaticRegion{RegionID: surface.AnalyticsID}
	if s == nil {
		region.Content = LoadingText
		return region, nil
	}

	view := analyticsView{
		Total:      s.TotalRecommendations,
		Categories: byCount(s.PopularCategories),
		Periods:    byPeriod(s.TimeBasedAnalysis),
	}
	doc, err := r.render(ctx, r.analytics, view, surface.AnalyticsID, "Analytics")
	if err != nil {
		return nil, err
	}
	region.HTML = doc
	region.Content = fmt.Sprintf("Total Recommendations: %d", s.TotalRecommendations)
	return region, nil
}

// render executes tmpl and runs the Markdown pipeline on the result.
func (r *Renderer) render(ctx context.Context, tmpl *template.Template, data any, id, title string) (string, error) {
	var md bytes.Buffer
	if err := tmpl.Execute(&md, data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", tmpl.Name(), err)
	}
	fragment, err := r.conv.ToHTML(ctx, r.pre.PreprocessMarkdown(ctx, md.String()))
	if err != nil {
		return "", err
	}
	doc := pipeline.RegionDocument(id, title, r.sanitizer.Sanitize(fragment))
	return r.injector.InjectCSS(ctx, doc, r.css), nil
}

// Icon returns the emoji shown for a material type.
func Icon(materialType string) string {
	switch materialType {
	case "course":
		return "🎓"
	case "activity":
		return "🔬"
	default:
		return "📚"
	}
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f", p*100)
}

var (
	lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	mdPunct    = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
		"(", `\(`, ")", `\)`, "#", `\#`, "+", `\+`, "-", `\-`, ".", `\.`,
		"!", `\!`, "|", `\|`, "~", `\~`, "{", `\{`, "}", `\}`,
	)
)

// esc prepares remote text for a raw HTML line of a template.
func esc(s string) string {
	return html.EscapeString(lineBreaks.Replace(s))
}

// mdEsc prepares remote text for a Markdown line of a template so it
// renders literally and stays on one line.
func mdEsc(s string) string {
	return html.EscapeString(mdPunct.Replace(lineBreaks.Replace(s)))
}

// byCount orders counts descending, ties by name.
func byCount(m map[string]int) []countView {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if m[names[i]] != m[names[j]] {
			return m[names[i]] > m[names[j]]
		}
		return names[i] < names[j]
	})
	out := make([]countView, 0, len(names))
	for _, k := range names {
		out = append(out, countView{Name: mdEsc(k), Count: m[k]})
	}
	return out
}

// byPeriod orders known time buckets first, then any others by name.
func byPeriod(m map[string]int) []countView {
	out := make([]countView, 0, len(m))
	seen := make(map[string]bool, len(periodOrder))
	for _, p := range periodOrder {
		if v, ok := m[p]; ok {
			out = append(out, countView{Name: p, Count: v})
			seen[p] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, countView{Name: mdEsc(k), Count: m[k]})
	}
	return out
}

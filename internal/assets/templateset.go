package assets

// Template file names inside a template set directory.
const (
	recommendationsFile = "recommendations.md"
	analyticsFile       = "analytics.md"
)

// TemplateSet holds the region templates rendered together.
type TemplateSet struct {
	Name            string
	Recommendations string // recommendations region template
	Analytics       string // analytics summary region template
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in stylesheet.
const DefaultStyleName = "report"

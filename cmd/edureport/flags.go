package main

import (
	flag "github.com/spf13/pflag"

	edureport "github.com/alnah/go-edureport"
)

// flagLookup is satisfied by *pflag.FlagSet.
type flagLookup interface {
	Lookup(name string) *flag.Flag
}

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	json    bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print debug logs")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.String("api-url", "", "base URL of the prediction and analytics services")
	fs.Duration("timeout", 0, "per-request timeout for the services")
}

// profileFlags holds the student profile for offline commands.
type profileFlags struct {
	math          string
	science       string
	reading       string
	learningStyle string
	interest      string
	performance   string
}

func (f *profileFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.math, "math", "", "math score (0-100)")
	fs.StringVar(&f.science, "science", "", "science score (0-100)")
	fs.StringVar(&f.reading, "reading", "", "reading score (0-100)")
	fs.StringVar(&f.learningStyle, "learning-style", "", "0=visual, 1=auditory, 2=kinesthetic")
	fs.StringVar(&f.interest, "interest", "", "interest level: 0=low, 1=medium, 2=high")
	fs.StringVar(&f.performance, "performance", "", "previous performance: 0=below, 1=average, 2=above")
}

// form returns the entered fields, or nil when none was given.
func (f *profileFlags) form() edureport.MapForm {
	m := edureport.MapForm{}
	set := func(name, value string) {
		if value != "" {
			m[name] = value
		}
	}
	set(edureport.FieldMathScore, f.math)
	set(edureport.FieldScienceScore, f.science)
	set(edureport.FieldReadingScore, f.reading)
	set(edureport.FieldLearningStyle, f.learningStyle)
	set(edureport.FieldInterestLevel, f.interest)
	set(edureport.FieldPreviousPerformance, f.performance)
	if len(m) == 0 {
		return nil
	}
	return m
}

// profile returns the entered profile.
func (f *profileFlags) profile() edureport.StudentProfile {
	form := f.form()
	if form == nil {
		return edureport.StudentProfile{}
	}
	return edureport.Extract(form)
}

// exportFlags holds flags of the export command.
type exportFlags struct {
	profile    profileFlags
	noBrowser  bool
	noTrack    bool
	noProgress bool
}

func (f *exportFlags) register(fs *flag.FlagSet) {
	f.profile.register(fs)
	fs.String("page-url", "", "capture a live recommender page instead of rendering offline")
	fs.StringP("output-dir", "o", "", "directory the report is saved in")
	fs.String("date-format", "", `"Generated on" format: preset (locale, iso, us, european, long) or tokens`)
	fs.String("font", "", "TrueType font file for UTF-8 text")
	fs.Bool("verify", false, "re-read the saved PDF and check its page count")
	fs.Bool("no-sandbox", false, "disable the Chrome sandbox (containers)")
	fs.String("browser-url", "", "DevTools URL of a running Chrome")
	fs.Bool("history", false, "record the export in the history database")
	fs.BoolVar(&f.noBrowser, "no-browser", false, "do not start Chrome; region images become placeholders")
	fs.BoolVar(&f.noTrack, "no-track", false, "do not report the export to the analytics service")
	fs.BoolVar(&f.noProgress, "no-progress", false, "hide the progress indicator")
}

// bindExport maps export flags to config keys.
func (a *app) bindExport(fs *flag.FlagSet) {
	a.bind("page.url", fs, "page-url")
	a.bind("output.dir", fs, "output-dir")
	a.bind("report.dateFormat", fs, "date-format")
	a.bind("report.fontFile", fs, "font")
	a.bind("report.verify", fs, "verify")
	a.bind("browser.noSandbox", fs, "no-sandbox")
	a.bind("browser.remoteURL", fs, "browser-url")
	a.bind("history.enabled", fs, "history")
}

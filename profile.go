package edureport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-edureport/internal/api"
)

// Form field names of the student profile.
const (
	FieldMathScore           = "math_score"
	FieldScienceScore        = "science_score"
	FieldReadingScore        = "reading_score"
	FieldLearningStyle       = "learning_style"
	FieldInterestLevel       = "interest_level"
	FieldPreviousPerformance = "previous_performance"
)

// NotSpecified is printed for unknown codes and missing values.
const NotSpecified = "Not specified"

var (
	learningStyleLabels = map[string]string{
		"0": "Visual Learner",
		"1": "Auditory Learner",
		"2": "Kinesthetic Learner",
	}
	interestLevelLabels = map[string]string{
		"0": "Low Interest",
		"1": "Medium Interest",
		"2": "High Interest",
	}
	performanceLabels = map[string]string{
		"0": "Below Average",
		"1": "Average",
		"2": "Above Average",
	}
)

// StudentProfile is the profile captured from the form at export time.
// Values are kept as entered; the zero value is the empty record.
type StudentProfile struct {
	MathScore           string
	ScienceScore        string
	ReadingScore        string
	LearningStyle       string // code "0".."2"
	InterestLevel       string // code "0".."2"
	PreviousPerformance string // code "0".."2"
}

// IsEmpty reports whether no field was captured.
func (p StudentProfile) IsEmpty() bool {
	return p == StudentProfile{}
}

// LearningStyleLabel returns the display label for the learning style code.
func (p StudentProfile) LearningStyleLabel() string {
	return label(learningStyleLabels, p.LearningStyle)
}

// InterestLevelLabel returns the display label for the interest level code.
func (p StudentProfile) InterestLevelLabel() string {
	return label(interestLevelLabels, p.InterestLevel)
}

// PerformanceLabel returns the display label for the previous performance code.
func (p StudentProfile) PerformanceLabel() string {
	return label(performanceLabels, p.PreviousPerformance)
}

// Lines returns the six profile lines printed in the report header.
func (p StudentProfile) Lines() []string {
	return []string{
		"Math Score: " + orNotSpecified(p.MathScore),
		"Science Score: " + orNotSpecified(p.ScienceScore),
		"Reading Score: " + orNotSpecified(p.ReadingScore),
		"Learning Style: " + p.LearningStyleLabel(),
		"Interest Level: " + p.InterestLevelLabel(),
		"Previous Performance: " + p.PerformanceLabel(),
	}
}

// TrackingData returns the user_data payload sent with usage events.
func (p StudentProfile) TrackingData() map[string]any {
	return map[string]any{
		"mathScore":     p.MathScore,
		"scienceScore":  p.ScienceScore,
		"readingScore":  p.ReadingScore,
		"learningStyle": p.LearningStyleLabel(),
		"interestLevel": p.InterestLevelLabel(),
		"performance":   p.PerformanceLabel(),
	}
}

// Features is the integer encoding expected by the prediction service.
type Features = api.Features

// Features converts the profile to prediction features.
// Scores must be integers in 0..100 and codes integers in 0..2.
func (p StudentProfile) Features() (Features, error) {
	var f Features
	var err error

	if f.MathScore, err = parseRange(FieldMathScore, p.MathScore, 0, 100); err != nil {
		return Features{}, err
	}
	if f.ScienceScore, err = parseRange(FieldScienceScore, p.ScienceScore, 0, 100); err != nil {
		return Features{}, err
	}
	if f.ReadingScore, err = parseRange(FieldReadingScore, p.ReadingScore, 0, 100); err != nil {
		return Features{}, err
	}
	if f.LearningStyle, err = parseRange(FieldLearningStyle, p.LearningStyle, 0, 2); err != nil {
		return Features{}, err
	}
	if f.InterestLevel, err = parseRange(FieldInterestLevel, p.InterestLevel, 0, 2); err != nil {
		return Features{}, err
	}
	if f.PreviousPerformance, err = parseRange(FieldPreviousPerformance, p.PreviousPerformance, 0, 2); err != nil {
		return Features{}, err
	}
	return f, nil
}

func parseRange(field, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidProfile, field, value)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s: %d (must be between %d and %d)", ErrInvalidProfile, field, n, lo, hi)
	}
	return n, nil
}

func label(labels map[string]string, code string) string {
	if l, ok := labels[strings.TrimSpace(code)]; ok {
		return l
	}
	return NotSpecified
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}

// Extract reads the six profile fields from a form.
// A nil form yields the empty record: header rendering proceeds with
// whatever data exists, so missing input is not an error.
func Extract(form FormHandle) StudentProfile {
	if form == nil {
		return StudentProfile{}
	}
	get := func(name string) string {
		v, _ := form.Field(name)
		return strings.TrimSpace(v)
	}
	return StudentProfile{
		MathScore:           get(FieldMathScore),
		ScienceScore:        get(FieldScienceScore),
		ReadingScore:        get(FieldReadingScore),
		LearningStyle:       get(FieldLearningStyle),
		InterestLevel:       get(FieldInterestLevel),
		PreviousPerformance: get(FieldPreviousPerformance),
	}
}

// ProfileSource produces the profile a report is generated for.
type ProfileSource interface {
	Read(ctx context.Context) (StudentProfile, error)
}

// FormSource reads the profile from a surface's form.
type FormSource struct {
	Surface Surface
}

// Read implements ProfileSource. An absent form gives the empty record.
func (s FormSource) Read(ctx context.Context) (StudentProfile, error) {
	if s.Surface == nil {
		return StudentProfile{}, nil
	}
	form, err := s.Surface.Form(ctx)
	if err != nil {
		return StudentProfile{}, fmt.Errorf("reading profile form: %w", err)
	}
	return Extract(form), nil
}

// StaticSource returns a fixed profile.
type StaticSource StudentProfile

// Read implements ProfileSource.
func (s StaticSource) Read(context.Context) (StudentProfile, error) {
	return StudentProfile(s), nil
}

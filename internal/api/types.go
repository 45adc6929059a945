package api

import (
	"fmt"
	"time"
)

// Features is the integer-encoded profile sent to the prediction endpoint.
type Features struct {
	MathScore           int `json:"math_score"`
	ScienceScore        int `json:"science_score"`
	ReadingScore        int `json:"reading_score"`
	LearningStyle       int `json:"learning_style"`
	InterestLevel       int `json:"interest_level"`
	PreviousPerformance int `json:"previous_performance"`
}

// Recommendation is one suggested learning material.
type Recommendation struct {
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	Difficulty   string  `json:"difficulty"`
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	Duration     string  `json:"duration,omitempty"`
	TimeRequired string  `json:"time_required,omitempty"`
	Pages        int     `json:"pages,omitempty"`
}

// RecommendationResult is the prediction service's answer.
// PredictedCategories and Probabilities are parallel lists.
type RecommendationResult struct {
	Recommendations     []Recommendation `json:"recommendations"`
	PredictedCategories []string         `json:"predicted_categories"`
	Probabilities       []float64        `json:"probabilities"`
}

// Validate checks that categories and probabilities line up.
func (r *RecommendationResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: empty result", ErrMalformedResult)
	}
	if len(r.PredictedCategories) != len(r.Probabilities) {
		return fmt.Errorf("%w: %d categories but %d probabilities",
			ErrMalformedResult, len(r.PredictedCategories), len(r.Probabilities))
	}
	return nil
}

// ModelInfo describes the model behind the prediction service.
type ModelInfo struct {
	ModelType    string   `json:"model_type"`
	FeaturesUsed []string `json:"features_used,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	NClasses     int      `json:"n_classes,omitempty"`
	TrainedAt    string   `json:"trained_at,omitempty"`
}

// TrainResult is the answer to a training request.
type TrainResult struct {
	Message   string     `json:"message,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	ModelInfo *ModelInfo `json:"model_info,omitempty"`
}

// Event types emitted by the client.
const (
	EventPDFExport               = "pdf_export"
	EventRecommendationGenerated = "recommendation_generated"
)

// Event is a usage analytics record.
type Event struct {
	EventType          string         `json:"event_type"`
	UserData           map[string]any `json:"user_data"`
	RecommendationData map[string]any `json:"recommendation_data,omitempty"`
	Timestamp          string         `json:"timestamp,omitempty"`
}

// timestampLayout matches the millisecond ISO-8601 form used by browsers.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t as a UTC ISO-8601 instant with milliseconds.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// RecommendationData summarizes a result for a recommendation_generated event.
func (r *RecommendationResult) RecommendationData() map[string]any {
	return map[string]any{
		"categories":    r.PredictedCategories,
		"probabilities": r.Probabilities,
		"count":         len(r.Recommendations),
	}
}

// Summary is the analytics aggregate.
type Summary struct {
	TotalRecommendations int            `json:"total_recommendations"`
	PopularCategories    map[string]int `json:"popular_categories"`
	TimeBasedAnalysis    map[string]int `json:"time_based_analysis"`
}

// envelope is the common response wrapper of the collaborator services.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Package apitest provides an in-memory stand-in for the prediction and
// analytics services, for tests and local runs of the CLI.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-edureport/internal/api"
)

// MockCategories and MockProbabilities are what the fake predicts for
// every profile.
var (
	MockCategories    = []string{"Math_Advanced", "Science_Intermediate", "General_Studies"}
	MockProbabilities = []float64{0.6, 0.25, 0.15}
)

// catalog holds three materials per mock category.
var catalog = map[string][]api.Recommendation{
	"Math_Advanced": {
		{Title: "Advanced Calculus", Type: "course", Difficulty: "advanced", Duration: "8 weeks"},
		{Title: "Linear Algebra Concepts", Type: "book", Difficulty: "advanced", Pages: 350},
		{Title: "Math Olympiad Preparation", Type: "activity", Difficulty: "advanced", TimeRequired: "60 mins"},
	},
	"Science_Intermediate": {
		{Title: "Chemistry in Daily Life", Type: "course", Difficulty: "intermediate", Duration: "6 weeks"},
		{Title: "Physics Fundamentals", Type: "book", Difficulty: "intermediate", Pages: 250},
		{Title: "Intermediate Lab Techniques", Type: "activity", Difficulty: "intermediate", TimeRequired: "45 mins"},
	},
	"General_Studies": {
		{Title: "Study Skills Mastery", Type: "course", Difficulty: "beginner", Duration: "3 weeks"},
		{Title: "Learning Strategies Guide", Type: "book", Difficulty: "beginner", Pages: 100},
		{Title: "Time Management Workshop", Type: "activity", Difficulty: "beginner", TimeRequired: "30 mins"},
	},
}

// maxRecommendations caps the number of materials returned.
const maxRecommendations = 9

// topCategories is how many categories the summary reports.
const topCategories = 5

// Record is a stored tracking event.
type Record struct {
	Event      api.Event
	ReceivedAt time.Time
}

// Failure forces a route to answer with an error.
type Failure struct {
	Status  int
	Message string
	Raw     string // sent verbatim instead of a JSON envelope when set
}

// Server is the fake collaborator service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	records  []Record
	failures map[string]Failure
	calls    map[string]int
	now      func() time.Time
	result   *api.RecommendationResult
}

// NewServer starts a fake service. Close it when done.
func NewServer() *Server {
	s := &Server{
		failures: make(map[string]Failure),
		calls:    make(map[string]int),
		now:      time.Now,
	}
	s.Server = httptest.NewServer(s.Router())
	return s
}

// Router returns the HTTP routes of the fake service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)

	r.Route("/api/predictions", func(r chi.Router) {
		r.Post("/recommend", s.handleRecommend)
		r.Get("/model_info", s.handleModelInfo)
		r.Post("/train_model", s.handleTrain)
	})
	r.Route("/api/analytics", func(r chi.Router) {
		r.Post("/track", s.handleTrack)
		r.Get("/summary", s.handleSummary)
	})
	return r
}

// Fail makes every request to path answer with f until Reset.
func (s *Server) Fail(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = f
}

// SetResult overrides the recommend answer.
func (s *Server) SetResult(r *api.RecommendationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
}

// SetClock overrides the time used to stamp records.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Reset clears failures, overrides, records and counters.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
	s.calls = make(map[string]int)
	s.records = nil
	s.result = nil
}

// Records returns a copy of the tracked events.
func (s *Server) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Calls returns how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if failing {
			if f.Raw != "" {
				w.WriteHeader(f.Status)
				_, _ = w.Write([]byte(f.Raw))
				return
			}
			writeJSON(w, f.Status, map[string]any{"success": false, "error": f.Message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var f api.Features
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	s.mu.Lock()
	override := s.result
	s.mu.Unlock()

	res := override
	if res == nil {
		res = Recommend(MockCategories, MockProbabilities)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"recommendations":      res.Recommendations,
		"predicted_categories": res.PredictedCategories,
		"probabilities":        res.Probabilities,
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "model_info": modelInfo()})
}

func (s *Server) handleTrain(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Simple model does not require training",
		"model_info": modelInfo(),
	})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var e api.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	s.mu.Lock()
	s.records = append(s.records, Record{Event: e, ReceivedAt: s.now()})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Analytics tracked successfully"})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": Summarize(s.Records())})
}

// Recommend builds a result from ranked categories: each category's
// materials carry its probability, sorted by confidence and capped.
func Recommend(categories []string, probabilities []float64) *api.RecommendationResult {
	var recs []api.Recommendation
	for i, c := range categories {
		for _, item := range catalog[c] {
			item.Category = c
			item.Confidence = probabilities[i]
			recs = append(recs, item)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Confidence > recs[j].Confidence })
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return &api.RecommendationResult{
		Recommendations:     recs,
		PredictedCategories: append([]string(nil), categories...),
		Probabilities:       append([]float64(nil), probabilities...),
	}
}

// Summarize aggregates records: total count, the most frequent categories,
// and counts per time of day.
func Summarize(records []Record) api.Summary {
	counts := make(map[string]int)
	buckets := map[string]int{"morning": 0, "afternoon": 0, "evening": 0, "night": 0}

	for _, r := range records {
		if c := primaryCategory(r.Event.RecommendationData); c != "" {
			counts[c]++
		}
		buckets[TimeBucket(r.ReceivedAt.Hour())]++
	}

	type kv struct {
		key   string
		count int
	}
	ranked := make([]kv, 0, len(counts))
	for k, v := range counts {
		ranked = append(ranked, kv{k, v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].key < ranked[j].key
	})
	if len(ranked) > topCategories {
		ranked = ranked[:topCategories]
	}
	popular := make(map[string]int, len(ranked))
	for _, e := range ranked {
		popular[e.key] = e.count
	}

	return api.Summary{
		TotalRecommendations: len(records),
		PopularCategories:    popular,
		TimeBasedAnalysis:    buckets,
	}
}

// primaryCategory returns the category an event is attributed to.
func primaryCategory(d map[string]any) string {
	if c, ok := d["category"].(string); ok {
		return c
	}
	if cs, ok := d["categories"].([]any); ok && len(cs) > 0 {
		c, _ := cs[0].(string)
		return c
	}
	return ""
}

// TimeBucket names the part of day an hour falls into.
func TimeBucket(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func modelInfo() api.ModelInfo {
	return api.ModelInfo{
		ModelType: "SimpleEducationalModel",
		FeaturesUsed: []string{
			"math_score", "science_score", "reading_score",
			"learning_style", "interest_level", "previous_performance",
		},
		Categories: []string{
			"Math_Basic", "Math_Intermediate", "Math_Advanced",
			"Science_Basic", "Science_Intermediate", "Science_Advanced",
			"Language_Intermediate", "Language_Advanced", "General_Studies",
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

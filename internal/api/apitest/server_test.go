package apitest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alnah/go-edureport/internal/api"
)

func TestTimeBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour int
		want string
	}{
		{0, "night"},
		{5, "night"},
		{6, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{21, "evening"},
		{22, "night"},
		{23, "night"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("hour %d", tt.hour), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TimeBucket(tt.hour))
		})
	}
}

func TestSummarize_TopFiveCategories(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	var records []Record
	add := func(category string, n int) {
		for i := 0; i < n; i++ {
			records = append(records, Record{
				Event:      api.Event{RecommendationData: map[string]any{"category": category}},
				ReceivedAt: at,
			})
		}
	}
	add("a", 6)
	add("b", 5)
	add("c", 4)
	add("d", 3)
	add("e", 2)
	add("f", 1)

	got := Summarize(records)

	assert.Equal(t, 21, got.TotalRecommendations)
	assert.Equal(t, map[string]int{"a": 6, "b": 5, "c": 4, "d": 3, "e": 2}, got.PopularCategories)
	assert.Equal(t, map[string]int{"morning": 0, "afternoon": 0, "evening": 21, "night": 0}, got.TimeBasedAnalysis)
}

func TestRecommend_CapsAndSorts(t *testing.T) {
	t.Parallel()

	got := Recommend(
		[]string{"General_Studies", "Math_Advanced", "Science_Intermediate", "Math_Advanced"},
		[]float64{0.1, 0.5, 0.3, 0.05},
	)

	assert.Len(t, got.Recommendations, maxRecommendations)
	for i := 1; i < len(got.Recommendations); i++ {
		assert.GreaterOrEqual(t, got.Recommendations[i-1].Confidence, got.Recommendations[i].Confidence)
	}
	assert.Equal(t, "Math_Advanced", got.Recommendations[0].Category)
}

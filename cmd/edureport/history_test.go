package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edureport "github.com/alnah/go-edureport"
	"github.com/alnah/go-edureport/internal/history"
)

func TestHistoryRecorder(t *testing.T) {
	t.Parallel()

	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	r := edureport.Report{
		ID:       uuid.New(),
		Filename: wantArtifact,
		Path:     "/tmp/" + wantArtifact,
		Pages:    2,
		Size:     1024,
		Sections: []edureport.SectionReport{
			{Name: "header", Outcome: edureport.OutcomeRendered},
			{Name: "recommendations", Outcome: edureport.OutcomePlaceholder, Err: errors.New("capture")},
		},
		Profile:   edureport.StudentProfile{MathScore: "85", LearningStyle: "0", InterestLevel: "2", PreviousPerformance: "1"},
		CreatedAt: fixedNow,
	}
	require.NoError(t, historyRecorder{store: store}.Record(context.Background(), r))

	entries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, r.ID.String(), e.ID)
	assert.Equal(t, 2, e.Pages)
	assert.Equal(t, "placeholder", e.Sections["recommendations"])
	assert.Equal(t, "Visual Learner", e.Profile["learningStyle"])
	assert.Equal(t, "High Interest", e.Profile["interestLevel"])
	assert.Equal(t, "Average", e.Profile["performance"])
	assert.True(t, e.CreatedAt.Equal(fixedNow))
}

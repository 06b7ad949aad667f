package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/service"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		submitted  []string
		key        []string
		score      int
		total      int
		percentage float64
	}{
		{"one wrong of five", []string{"B", "A", "X", "C", "B"}, []string{"B", "A", "D", "C", "B"}, 4, 5, 80},
		{"all correct", []string{"A", "B"}, []string{"A", "B"}, 2, 2, 100},
		{"case sensitive", []string{"a", "B"}, []string{"A", "B"}, 1, 2, 50},
		{"short submission", []string{"A"}, []string{"A", "B", "C", "D"}, 1, 4, 25},
		{"extra answers ignored", []string{"A", "B", "C"}, []string{"A"}, 1, 1, 100},
		{"empty key", []string{"A"}, nil, 0, 0, 0},
		{"empty submission", nil, []string{"A", "B"}, 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, total, pct := Score(tt.submitted, tt.key)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.total, total)
			assert.InDelta(t, tt.percentage, pct, 1e-9)
		})
	}
}

func seedTest(t *testing.T, h *harness, owner uuid.UUID, key []string) *model.SkillTest {
	t.Helper()
	answers, err := json.Marshal(key)
	require.NoError(t, err)
	test := &model.SkillTest{UserID: owner, Role: "Go developer", Questions: "[]", Answers: string(answers)}
	require.NoError(t, h.tests.Create(context.Background(), test))
	return test
}

func TestGrader_GradePassAndRevertsVerifiedProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.uc.Start(ctx, h.candidate.ID)
	require.NoError(t, err)
	rating := 4.5
	_, err = h.uc.Finalize(ctx, h.reviewer, h.candidate.ID, finalizeReq(&rating, model.TagExpert))
	require.NoError(t, err)
	require.Equal(t, model.TagExpert, h.profiles.get(h.candidate.ID).VerificationTag)

	test := seedTest(t, h, h.candidate.ID, []string{"B", "A", "D", "C", "B"})
	grade, err := h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"B", "A", "X", "C", "B"})
	require.NoError(t, err)

	assert.Equal(t, 4, grade.Score)
	assert.Equal(t, 5, grade.Total)
	assert.InDelta(t, 80.0, grade.Percentage, 1e-9)
	assert.Equal(t, model.OutcomePass, grade.Result)
	assert.Equal(t, 1, grade.Attempt)

	v, err := h.uc.Status(ctx, h.candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, v.Status)
	profile := h.profiles.get(h.candidate.ID)
	assert.Equal(t, model.TagUnverified, profile.VerificationTag)
	assert.Equal(t, 4.5, profile.StarRating)
	assert.Equal(t, 1, h.analysis.called(service.OpFinalAnalysis))
}

func TestGrader_EmptyKeyFails(t *testing.T) {
	h := newHarness(t)
	test := seedTest(t, h, h.candidate.ID, nil)

	grade, err := h.uc.SubmitTest(context.Background(), h.candidate.ID, test.ID, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, 0, grade.Total)
	assert.Equal(t, 0.0, grade.Percentage)
	assert.Equal(t, model.OutcomeFail, grade.Result)
}

func TestGrader_FinalAnalysisProseKeptAsNarrative(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.uc.Start(ctx, h.candidate.ID)
	require.NoError(t, err)

	h.analysis.structured[service.OpFinalAnalysis] = service.JSONResult{
		Raw:    "The candidate did well overall.",
		Reason: "no JSON object found in response",
	}
	test := seedTest(t, h, h.candidate.ID, []string{"A"})
	_, err = h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"B"})
	require.NoError(t, err)

	v, err := h.uc.Status(ctx, h.candidate.ID)
	require.NoError(t, err)
	assert.Nil(t, v.Recommendation)
	assert.Equal(t, "The candidate did well overall.", v.RecommendationNarrative)
}

func TestGrader_RepeatSubmissionsAppend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	test := seedTest(t, h, h.candidate.ID, []string{"A", "B"})

	first, err := h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"A", "C"})
	require.NoError(t, err)
	second, err := h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeFail, first.Result)
	assert.Equal(t, model.OutcomePass, second.Result)
	assert.Equal(t, 2, second.Attempt)
	assert.Len(t, h.results.results, 2)
}

func TestGrader_OwnershipAndMissingTest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	test := seedTest(t, h, uuid.New(), []string{"A"})

	_, err := h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"A"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = h.uc.SubmitTest(ctx, h.candidate.ID, uuid.New(), []string{"A"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, h.results.results)
}

func TestGrader_FailedResetKeepsNoResult(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.uc.Start(ctx, h.candidate.ID)
	require.NoError(t, err)
	rating := 4.0
	_, err = h.uc.Finalize(ctx, h.reviewer, h.candidate.ID, finalizeReq(&rating, model.TagIntermediate))
	require.NoError(t, err)

	h.verifications.saveErr = errors.New("db down")
	test := seedTest(t, h, h.candidate.ID, []string{"A"})
	_, err = h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"A"})
	require.Error(t, err)

	assert.Empty(t, h.results.results)
	assert.Equal(t, model.TagIntermediate, h.profiles.get(h.candidate.ID).VerificationTag)

	h.verifications.saveErr = nil
	grade, err := h.uc.SubmitTest(ctx, h.candidate.ID, test.ID, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, 1, grade.Attempt)
	assert.Equal(t, model.TagUnverified, h.profiles.get(h.candidate.ID).VerificationTag)
}

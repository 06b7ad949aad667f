package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/dto"
	"github.com/prakkhar03/skillbridge/internal/metrics"
	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/repository"
)

const defaultPassThreshold = 60.0

// Score counts index-aligned exact matches over the shorter of the two
// sequences. Percentage is relative to the key length and 0 for an empty key.
func Score(submitted, key []string) (score, total int, percentage float64) {
	total = len(key)
	n := min(len(submitted), total)
	for i := 0; i < n; i++ {
		if submitted[i] == key[i] {
			score++
		}
	}
	if total == 0 {
		return score, total, 0
	}
	return score, total, 100 * float64(score) / float64(total)
}

type Grader struct {
	tests         repository.SkillTestRepositoryInterface
	results       repository.TestResultRepositoryInterface
	verifications repository.VerificationRepositoryInterface
	profiles      repository.ProfileRepositoryInterface
	synth         *RecommendationSynthesizer
	passThreshold float64
}

func NewGrader(
	tests repository.SkillTestRepositoryInterface,
	results repository.TestResultRepositoryInterface,
	verifications repository.VerificationRepositoryInterface,
	profiles repository.ProfileRepositoryInterface,
	synth *RecommendationSynthesizer,
	passThreshold float64,
) *Grader {
	if passThreshold <= 0 {
		passThreshold = defaultPassThreshold
	}
	return &Grader{
		tests:         tests,
		results:       results,
		verifications: verifications,
		profiles:      profiles,
		synth:         synth,
		passThreshold: passThreshold,
	}
}

// Grade scores a submission, records it and folds the outcome back into the
// user's latest verification, which drops to PENDING with the profile tag
// reset until a reviewer confirms again.
func (g *Grader) Grade(ctx context.Context, userID, testID uuid.UUID, answers []string) (*dto.GradeDTO, error) {
	test, err := g.tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.UserID != userID {
		return nil, fmt.Errorf("skill test %s belongs to another user: %w", testID, model.ErrForbidden)
	}
	key, err := test.AnswerKey()
	if err != nil {
		return nil, err
	}

	score, total, percentage := Score(answers, key)
	outcome := model.OutcomeFail
	if percentage >= g.passThreshold {
		outcome = model.OutcomePass
	}
	result := &model.TestResult{
		UserID:     userID,
		TestID:     test.ID,
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Result:     outcome,
	}

	v, profile, err := g.reanalyze(ctx, userID, result)
	if err != nil {
		return nil, err
	}
	if err := g.results.Record(ctx, result, v, profile); err != nil {
		return nil, fmt.Errorf("record test result: %w", err)
	}
	metrics.GradedTests.WithLabelValues(string(outcome)).Inc()
	if v != nil {
		metrics.VerificationTransitions.WithLabelValues(string(model.StatusPending)).Inc()
		slog.InfoContext(ctx, "verification reset after test submission",
			slog.String("user_id", userID.String()),
			slog.String("verification_id", v.ID.String()),
			slog.String("test_id", result.TestID.String()),
			slog.String("result", string(result.Result)))
	}

	attempts, err := g.results.ListByTest(ctx, test.ID)
	if err != nil {
		return nil, err
	}

	return &dto.GradeDTO{
		TestID:     test.ID,
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Result:     outcome,
		Attempt:    len(attempts),
	}, nil
}

// reanalyze folds the result into the latest verification in memory. A nil
// verification means there is nothing to reset.
func (g *Grader) reanalyze(ctx context.Context, userID uuid.UUID, result *model.TestResult) (*model.Verification, *model.Profile, error) {
	v, err := g.verifications.LatestByUser(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		slog.WarnContext(ctx, "graded test without a verification to update",
			slog.String("user_id", userID.String()),
			slog.String("test_id", result.TestID.String()))
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	profile, err := g.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	final := g.synth.FinalAnalysis(ctx, v, result)
	if err := final.ApplyTo(v); err != nil {
		return nil, nil, err
	}
	v.Status = model.StatusPending
	profile.VerificationTag = model.TagUnverified
	if !final.OK() {
		slog.WarnContext(ctx, "final analysis was not structured",
			slog.String("user_id", userID.String()),
			slog.String("reason", final.Reason))
	}
	return v, profile, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/service"
)

const recommendationShape = `{
	"star_rating": float (1-5),
	"strengths": [list of strings],
	"weaknesses": [list of strings],
	"recommended_tags": ["Beginner", "Intermediate", or "Expert"]
}`

// RecommendationResult is either a structured recommendation or the reason
// none could be produced. Narrative is set only by the final analysis when
// the backend answered in prose.
type RecommendationResult struct {
	Value     *model.Recommendation
	Narrative string
	Reason    string
}

func (r RecommendationResult) OK() bool { return r.Value != nil }

// ApplyTo stores the result on v, replacing whatever the previous analysis
// left there.
func (r RecommendationResult) ApplyTo(v *model.Verification) error {
	switch {
	case r.Value != nil:
		return v.SetRecommendation(*r.Value)
	case r.Narrative != "":
		v.SetRecommendationNarrative(r.Narrative)
	default:
		v.SetRecommendationError(r.Reason)
	}
	return nil
}

type RecommendationSynthesizer struct {
	analysis service.AnalysisServiceInterface
}

func NewRecommendationSynthesizer(analysis service.AnalysisServiceInterface) *RecommendationSynthesizer {
	return &RecommendationSynthesizer{analysis: analysis}
}

// Synthesize turns the free-text analyses and skills into a structured
// recommendation. Backend failures come back as a result with a Reason.
func (s *RecommendationSynthesizer) Synthesize(ctx context.Context, resumeAnalysis, githubAnalysis, skills string) RecommendationResult {
	prompt := fmt.Sprintf(`
Based on these analyses and provided skills:

Resume Analysis:
%s

GitHub Analysis:
%s

Skills:
%s

Return ONLY a valid JSON object with:
%s
No extra text, no explanation, only JSON.
`, resumeAnalysis, githubAnalysis, orNotProvided(skills), recommendationShape)

	res := s.analysis.GenerateStructured(ctx, service.OpRecommendation, prompt)
	if !res.OK() {
		return RecommendationResult{Reason: res.Reason}
	}
	return decodeRecommendation(res)
}

// FinalAnalysis folds a graded test into a fresh recommendation. Unlike
// Synthesize it keeps a prose answer as narrative text instead of failing.
func (s *RecommendationSynthesizer) FinalAnalysis(ctx context.Context, v *model.Verification, result *model.TestResult) RecommendationResult {
	prompt := fmt.Sprintf(`
You are an expert technical evaluator.
Based on the following details, provide a final structured analysis of the candidate.

Resume Analysis:
%s

GitHub Analysis:
%s

Previous Recommendation:
%s

Test Performance:
Score: %.2f%%
Result: %s

Return ONLY a valid JSON object in this exact structure:
%s
Do not include any explanations or extra text.
`, v.ResumeAnalysis, v.GithubAnalysis, v.RecommendationText(), result.Percentage, result.Result, recommendationShape)

	res := s.analysis.GenerateStructured(ctx, service.OpFinalAnalysis, prompt)
	if res.OK() {
		if rec := decodeRecommendation(res); rec.OK() {
			return rec
		}
	}
	if text := strings.TrimSpace(res.Raw); text != "" {
		return RecommendationResult{Narrative: text}
	}
	if res.OK() {
		return RecommendationResult{Narrative: res.JSON}
	}
	return RecommendationResult{Reason: res.Reason}
}

func decodeRecommendation(res service.JSONResult) RecommendationResult {
	if err := service.ValidateRecommendation(res.JSON); err != nil {
		return RecommendationResult{Reason: err.Error()}
	}
	var rec model.Recommendation
	if err := res.Decode(&rec); err != nil {
		return RecommendationResult{Reason: err.Error()}
	}
	return RecommendationResult{Value: &rec}
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/prakkhar03/skillbridge/internal/metrics"
	"github.com/prakkhar03/skillbridge/internal/util"
)

// Operation names used for logging and metrics.
const (
	OpResumeAnalysis = "resume_analysis"
	OpGithubAnalysis = "github_analysis"
	OpRecommendation = "recommendation"
	OpAssessment     = "assessment"
	OpFinalAnalysis  = "final_analysis"
)

// JSONResult is the outcome of a structured generation call: either a JSON
// object or the reason none could be produced.
type JSONResult struct {
	JSON   string
	Raw    string
	Reason string
}

func (r JSONResult) OK() bool { return r.Reason == "" && r.JSON != "" }

// Has reports whether the object carries key (gjson path syntax).
func (r JSONResult) Has(key string) bool {
	return r.OK() && gjson.Get(r.JSON, key).Exists()
}

func (r JSONResult) Decode(v any) error {
	if !r.OK() {
		return fmt.Errorf("no JSON payload: %s", r.Reason)
	}
	return json.Unmarshal([]byte(r.JSON), v)
}

type AnalysisServiceInterface interface {
	AnalyzeResume(ctx context.Context, resumeText string) string
	AnalyzeGithub(ctx context.Context, githubURL string, profile *GithubProfile) string
	GenerateStructured(ctx context.Context, operation, prompt string) JSONResult
}

// AnalysisService isolates the pipeline from the generative backend. None of
// its methods fail: free-text calls degrade to an error string and structured
// calls to a JSONResult with a Reason.
type AnalysisService struct {
	backend GenerativeBackend
}

func NewAnalysisService(backend GenerativeBackend) *AnalysisService {
	return &AnalysisService{backend: backend}
}

func (s *AnalysisService) AnalyzeResume(ctx context.Context, resumeText string) string {
	prompt := fmt.Sprintf(`
You are an expert technical recruiter.
Analyze the following resume text and provide:
- Key strengths
- Weaknesses
- Suggestions for improvement

Resume:
%s
`, resumeText)
	return s.generateText(ctx, OpResumeAnalysis, prompt)
}

func (s *AnalysisService) AnalyzeGithub(ctx context.Context, githubURL string, profile *GithubProfile) string {
	var data string
	if profile != nil {
		data = "Public profile data:\n" + profile.Summary()
	} else {
		data = "Profile data could not be fetched. Assume typical public repo signals if data is not accessible."
	}
	prompt := fmt.Sprintf(`
You are an expert software mentor.
Analyze the GitHub profile at %s and provide:
- Coding strengths
- Areas for improvement
- Technology focus

%s
`, githubURL, data)
	return s.generateText(ctx, OpGithubAnalysis, prompt)
}

func (s *AnalysisService) generateText(ctx context.Context, operation, prompt string) string {
	text, err := s.backend.GenerateText(ctx, prompt)
	if err != nil {
		metrics.BackendCalls.WithLabelValues(operation, metrics.OutcomeDegraded).Inc()
		slog.WarnContext(ctx, "analysis degraded",
			slog.String("operation", operation),
			slog.String("backend", s.backend.Name()),
			slog.Any("error", err))
		return fmt.Sprintf("Error from analysis backend: %v", err)
	}
	metrics.BackendCalls.WithLabelValues(operation, metrics.OutcomeOK).Inc()
	return strings.TrimSpace(text)
}

// GenerateStructured asks for a JSON-only answer and recovers the first JSON
// object from whatever the backend returns.
func (s *AnalysisService) GenerateStructured(ctx context.Context, operation, prompt string) JSONResult {
	raw, err := s.backend.GenerateJSON(ctx, prompt)
	if err != nil {
		return s.degraded(ctx, operation, JSONResult{Reason: err.Error()})
	}
	obj, ok := util.ExtractJSONObject(raw)
	if !ok {
		return s.degraded(ctx, operation, JSONResult{Raw: raw, Reason: "no JSON object found in response"})
	}
	metrics.BackendCalls.WithLabelValues(operation, metrics.OutcomeOK).Inc()
	return JSONResult{JSON: obj, Raw: raw}
}

func (s *AnalysisService) degraded(ctx context.Context, operation string, r JSONResult) JSONResult {
	metrics.BackendCalls.WithLabelValues(operation, metrics.OutcomeDegraded).Inc()
	slog.WarnContext(ctx, "structured generation degraded",
		slog.String("operation", operation),
		slog.String("backend", s.backend.Name()),
		slog.String("reason", r.Reason))
	return r
}

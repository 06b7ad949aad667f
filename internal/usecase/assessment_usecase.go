package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/metrics"
	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/repository"
	"github.com/prakkhar03/skillbridge/internal/service"
)

const defaultQuestionCount = 5

// AssessmentInput is everything the generator tailors a test to.
type AssessmentInput struct {
	ResumeAnalysis string
	GithubAnalysis string
	Skills         []string
	Recommendation *model.Recommendation
	NumQuestions   int
}

type generatedAssessment struct {
	Role      string
	Questions []model.Question
	Answers   []string
	Fallback  bool
}

type AssessmentGenerator struct {
	analysis     service.AnalysisServiceInterface
	tests        repository.SkillTestRepositoryInterface
	defaultCount int
}

func NewAssessmentGenerator(analysis service.AnalysisServiceInterface, tests repository.SkillTestRepositoryInterface, defaultCount int) *AssessmentGenerator {
	if defaultCount <= 0 {
		defaultCount = defaultQuestionCount
	}
	return &AssessmentGenerator{analysis: analysis, tests: tests, defaultCount: defaultCount}
}

// Generate builds and persists a test for userID. A backend failure or a
// malformed payload yields the fixed fallback test, never an error.
func (g *AssessmentGenerator) Generate(ctx context.Context, userID uuid.UUID, in AssessmentInput) (*model.SkillTest, error) {
	if in.NumQuestions <= 0 {
		in.NumQuestions = g.defaultCount
	}
	role := RoleHint(in.Recommendation, in.Skills)

	gen, err := g.generate(ctx, role, in)
	if err != nil {
		slog.WarnContext(ctx, "assessment generation fell back",
			slog.String("user_id", userID.String()),
			slog.String("reason", err.Error()))
		metrics.AssessmentFallbacks.Inc()
		gen = fallbackAssessment(role, in.Skills)
	}

	questions, err := json.Marshal(gen.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(gen.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	test := &model.SkillTest{
		UserID:    userID,
		Role:      gen.Role,
		Questions: string(questions),
		Answers:   string(answers),
		Fallback:  gen.Fallback,
	}
	if err := g.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create skill test: %w", err)
	}
	return test, nil
}

func (g *AssessmentGenerator) generate(ctx context.Context, role string, in AssessmentInput) (generatedAssessment, error) {
	recommendation := "Not provided"
	if in.Recommendation != nil {
		if b, err := json.Marshal(in.Recommendation); err == nil {
			recommendation = string(b)
		}
	}
	prompt := fmt.Sprintf(`
You are an expert interviewer creating evaluation tasks for freelancers.
Based on the following candidate data, generate %d role-specific multiple-choice questions:

Resume Analysis:
%s

GitHub Analysis:
%s

Skills:
%s

Recommendation:
%s

Recommended Role:
%s

Instructions:
- Make the questions practical, scenario-based, and relevant to the candidate's freelance role.
- Cover a mix of theory, practical and task questions.
- Vary difficulty: Easy, Medium, Hard.
- Every question has four options labelled "A.", "B.", "C.", "D." and exactly one correct letter.
- Return ONLY valid JSON in this format:
{
	"role": "%s",
	"questions": [
		{
			"question": "string",
			"options": ["A. ...", "B. ...", "C. ...", "D. ..."],
			"type": "theory/practical/task",
			"difficulty": "Easy/Medium/Hard",
			"correct_answer": "B"
		}
	],
	"answers": ["B", "A", "D", "C", "B"]
}
The answers array lists the correct letter for each question, in order.
`, in.NumQuestions, in.ResumeAnalysis, in.GithubAnalysis, orNotProvided(strings.Join(in.Skills, ", ")), recommendation, role, role)

	res := g.analysis.GenerateStructured(ctx, service.OpAssessment, prompt)
	if !res.OK() {
		return generatedAssessment{}, fmt.Errorf("generation failed: %s", res.Reason)
	}
	if !res.Has("questions") || !res.Has("answers") {
		return generatedAssessment{}, fmt.Errorf("payload missing questions or answers")
	}
	if err := service.ValidateAssessment(res.JSON); err != nil {
		return generatedAssessment{}, err
	}

	var payload struct {
		Role      string `json:"role"`
		Questions []struct {
			Question      string   `json:"question"`
			Options       []string `json:"options"`
			Type          string   `json:"type"`
			Difficulty    string   `json:"difficulty"`
			CorrectAnswer string   `json:"correct_answer"`
		} `json:"questions"`
		Answers []string `json:"answers"`
	}
	if err := res.Decode(&payload); err != nil {
		return generatedAssessment{}, err
	}

	gen := generatedAssessment{Role: payload.Role, Answers: payload.Answers}
	if gen.Role == "" {
		gen.Role = role
	}
	for i, q := range payload.Questions {
		// correct_answer is dropped here so it is never stored with the
		// candidate-facing questions.
		gen.Questions = append(gen.Questions, model.Question{
			Question:   strings.TrimSpace(q.Question),
			Options:    q.Options,
			Type:       q.Type,
			Difficulty: q.Difficulty,
		})
		// Fill holes in a short answers array from the per-question label.
		if i >= len(gen.Answers) {
			gen.Answers = append(gen.Answers, strings.TrimSpace(q.CorrectAnswer))
		}
	}
	if len(gen.Answers) > len(gen.Questions) {
		gen.Answers = gen.Answers[:len(gen.Questions)]
	}
	// A blank key entry would match a blank submission.
	for i, a := range gen.Answers {
		gen.Answers[i] = strings.TrimSpace(a)
		if gen.Answers[i] == "" {
			return generatedAssessment{}, fmt.Errorf("no answer for question %d", i+1)
		}
	}
	return gen, nil
}

// RoleHint describes the role a test targets: recommended tags win over the
// skills list, which wins over the generic default.
func RoleHint(rec *model.Recommendation, skills []string) string {
	if rec != nil && len(rec.RecommendedTags) > 0 {
		tags := make([]string, len(rec.RecommendedTags))
		for i, t := range rec.RecommendedTags {
			tags[i] = string(t)
		}
		return strings.Join(tags, ", ") + " professional"
	}
	if len(skills) > 0 {
		return "freelancer specializing in " + strings.Join(skills, ", ")
	}
	return "freelance professional"
}

func fallbackAssessment(role string, skills []string) generatedAssessment {
	subject := "your field"
	if len(skills) > 0 {
		subject = strings.Join(skills, ", ")
	}
	return generatedAssessment{
		Role: role,
		Questions: []model.Question{
			{
				Question: fmt.Sprintf("Which of the following is a best practice for writing maintainable code in %s?", subject),
				Options: []string{
					"A. Keep functions small and give them descriptive names",
					"B. Put all logic in a single large file",
					"C. Avoid comments and documentation entirely",
					"D. Copy and paste code instead of reusing it",
				},
				Type:       "theory",
				Difficulty: "Easy",
			},
			{
				Question: "Which tool is most widely used for version control?",
				Options: []string{
					"A. Docker",
					"B. Git",
					"C. Jenkins",
					"D. Kubernetes",
				},
				Type:       "theory",
				Difficulty: "Easy",
			},
		},
		Answers:  []string{"A", "B"},
		Fallback: true,
	}
}

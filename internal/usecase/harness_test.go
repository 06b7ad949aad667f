package usecase

import (
	"testing"

	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/service"
	"github.com/prakkhar03/skillbridge/internal/util"
)

const validRecommendation = `{"star_rating": 4.2, "strengths": ["Go"], "weaknesses": ["Testing"], "recommended_tags": ["Intermediate"]}`

type harness struct {
	uc            *VerificationUsecase
	users         *fakeUsers
	profiles      *fakeProfiles
	verifications *fakeVerifications
	tests         *fakeSkillTests
	results       *fakeTestResults
	analysis      *fakeAnalysis
	guard         *service.LocalInflightGuard
	candidate     *model.User
	reviewer      *model.User
	docs          map[string]util.Document
}

func strPtr(s string) *string { return &s }

func newHarness(t *testing.T) *harness {
	t.Helper()
	candidate := &model.User{ID: uuid.New(), Email: "dev@example.com", Role: model.RoleFreelancer}
	reviewer := &model.User{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}

	h := &harness{
		users: &fakeUsers{users: map[uuid.UUID]*model.User{
			candidate.ID: candidate,
			reviewer.ID:  reviewer,
		}},
		profiles: &fakeProfiles{profiles: map[uuid.UUID]*model.Profile{
			candidate.ID: {
				ID:              uuid.New(),
				UserID:          candidate.ID,
				Skills:          "Go, PostgreSQL",
				GithubURL:       strPtr("https://github.com/dev"),
				VerificationTag: model.TagUnverified,
			},
		}},
		tests:   newFakeSkillTests(),
		results: &fakeTestResults{},
		analysis: &fakeAnalysis{
			resume: "resume analysis: ",
			github: "github analysis: ",
			structured: map[string]service.JSONResult{
				service.OpRecommendation: okJSON(validRecommendation),
				service.OpFinalAnalysis:  okJSON(validRecommendation),
			},
		},
		guard:     service.NewLocalInflightGuard(),
		candidate: candidate,
		reviewer:  reviewer,
		docs:      map[string]util.Document{},
	}
	h.verifications = &fakeVerifications{profiles: h.profiles}
	h.results.verifications = h.verifications

	synth := NewRecommendationSynthesizer(h.analysis)
	h.uc = NewVerificationUsecase(VerificationUsecaseDeps{
		Users:         h.users,
		Profiles:      h.profiles,
		Verifications: h.verifications,
		Analysis:      h.analysis,
		Github:        &fakeGithub{},
		Synth:         synth,
		Generator:     NewAssessmentGenerator(h.analysis, h.tests, 5),
		Grader:        NewGrader(h.tests, h.results, h.verifications, h.profiles, synth, 60),
		Guard:         h.guard,
		OpenDocument: func(path string) util.Document {
			if d, ok := h.docs[path]; ok {
				return d
			}
			return brokenDocument{}
		},
	})
	return h
}

func (h *harness) profile() *model.Profile {
	return h.profiles.profiles[h.candidate.ID]
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/prakkhar03/skillbridge/internal/dto"
	"github.com/prakkhar03/skillbridge/internal/metrics"
	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/repository"
	"github.com/prakkhar03/skillbridge/internal/response"
	"github.com/prakkhar03/skillbridge/internal/service"
	"github.com/prakkhar03/skillbridge/internal/util"
)

// In-flight operation names.
const (
	opStart    = "start"
	opGenerate = "generate_test"
	opSubmit   = "submit_test"
)

type VerificationUsecase struct {
	users         repository.UserRepositoryInterface
	profiles      repository.ProfileRepositoryInterface
	verifications repository.VerificationRepositoryInterface
	analysis      service.AnalysisServiceInterface
	github        service.GithubServiceInterface
	synth         *RecommendationSynthesizer
	generator     *AssessmentGenerator
	grader        *Grader
	guard         service.InflightGuard
	validate      *validator.Validate
	openDocument  func(path string) util.Document
}

type VerificationUsecaseDeps struct {
	Users         repository.UserRepositoryInterface
	Profiles      repository.ProfileRepositoryInterface
	Verifications repository.VerificationRepositoryInterface
	Analysis      service.AnalysisServiceInterface
	Github        service.GithubServiceInterface
	Synth         *RecommendationSynthesizer
	Generator     *AssessmentGenerator
	Grader        *Grader
	Guard         service.InflightGuard
	// OpenDocument resolves a stored resume path; defaults to the local
	// filesystem.
	OpenDocument func(path string) util.Document
}

func NewVerificationUsecase(deps VerificationUsecaseDeps) *VerificationUsecase {
	if deps.Guard == nil {
		deps.Guard = service.NewLocalInflightGuard()
	}
	if deps.OpenDocument == nil {
		deps.OpenDocument = func(path string) util.Document { return util.FileDocument{Path: path} }
	}
	return &VerificationUsecase{
		users:         deps.Users,
		profiles:      deps.Profiles,
		verifications: deps.Verifications,
		analysis:      deps.Analysis,
		github:        deps.Github,
		synth:         deps.Synth,
		generator:     deps.Generator,
		grader:        deps.Grader,
		guard:         deps.Guard,
		validate:      newValidator(),
		openDocument:  deps.OpenDocument,
	}
}

func (uc *VerificationUsecase) acquire(ctx context.Context, op string, userID uuid.UUID) (func(), error) {
	release, err := uc.guard.Acquire(ctx, op, userID)
	if errors.Is(err, service.ErrInflight) {
		return nil, fmt.Errorf("%s already running for this user: %w", op, model.ErrConflict)
	}
	return release, err
}

// Start runs the analysis pipeline for userID and leaves the latest
// verification PENDING. Sub-step failures degrade the stored analyses; only
// missing input and persistence errors fail the call.
func (uc *VerificationUsecase) Start(ctx context.Context, userID uuid.UUID) (*model.Verification, error) {
	profile, err := uc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.HasResume() && !profile.HasGithub() {
		return nil, util.NewFormError("Upload a resume or add a GitHub URL before starting verification", map[string]string{
			"resume":     "required without github_url",
			"github_url": "required without resume",
		})
	}

	release, err := uc.acquire(ctx, opStart, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	var resumeAnalysis, githubAnalysis string
	g, gctx := errgroup.WithContext(ctx)
	if profile.HasResume() {
		g.Go(func() error {
			resumeAnalysis = uc.analyzeResume(gctx, *profile.Resume)
			return nil
		})
	}
	if profile.HasGithub() {
		g.Go(func() error {
			githubAnalysis = uc.analyzeGithub(gctx, profile.Github())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := uc.synth.Synthesize(ctx, resumeAnalysis, githubAnalysis, profile.Skills)

	v, err := uc.verifications.LatestByUser(ctx, userID)
	isNew := errors.Is(err, model.ErrNotFound)
	if err != nil && !isNew {
		return nil, err
	}
	if isNew {
		v = &model.Verification{UserID: userID}
	}
	v.ResumeAnalysis = resumeAnalysis
	v.GithubAnalysis = githubAnalysis
	v.Status = model.StatusPending
	if err := rec.ApplyTo(v); err != nil {
		return nil, err
	}

	if isNew {
		err = uc.verifications.Create(ctx, v)
	} else {
		err = uc.verifications.Save(ctx, v)
	}
	if err != nil {
		return nil, fmt.Errorf("store verification: %w", err)
	}
	metrics.VerificationTransitions.WithLabelValues(string(model.StatusPending)).Inc()
	slog.InfoContext(ctx, "verification started",
		slog.String("user_id", userID.String()),
		slog.String("verification_id", v.ID.String()),
		slog.Bool("new_record", isNew),
		slog.Bool("recommendation_ok", rec.OK()))
	return v, nil
}

func (uc *VerificationUsecase) analyzeResume(ctx context.Context, path string) string {
	text, err := util.ExtractText(uc.openDocument(path))
	if err != nil {
		slog.WarnContext(ctx, "resume extraction failed", slog.String("path", path), slog.Any("error", err))
		return util.ExtractionDiagnostic(err)
	}
	return uc.analysis.AnalyzeResume(ctx, text)
}

func (uc *VerificationUsecase) analyzeGithub(ctx context.Context, url string) string {
	var gp *service.GithubProfile
	if uc.github != nil {
		fetched, err := uc.github.FetchProfile(ctx, url)
		if err != nil {
			slog.WarnContext(ctx, "github profile fetch failed", slog.String("github_url", url), slog.Any("error", err))
		} else {
			gp = fetched
		}
	}
	return uc.analysis.AnalyzeGithub(ctx, url, gp)
}

// Status returns the caller's latest verification.
func (uc *VerificationUsecase) Status(ctx context.Context, userID uuid.UUID) (*model.Verification, error) {
	return uc.verifications.LatestByUser(ctx, userID)
}

// History pages through every attempt, newest first.
func (uc *VerificationUsecase) History(ctx context.Context, userID uuid.UUID, q dto.HistoryQuery) ([]model.Verification, *response.Pagination, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 10
	}
	if err := uc.validate.Struct(q); err != nil {
		return nil, nil, validationError("Invalid pagination", err)
	}
	items, total, err := uc.verifications.ListByUser(ctx, userID, q.Page, q.PageSize)
	if err != nil {
		return nil, nil, err
	}
	return items, response.NewPagination(q.Page, q.PageSize, len(items), total), nil
}

// Recommendation returns the structured recommendation of the latest
// verification, or NotFound when the last analysis produced none.
func (uc *VerificationUsecase) Recommendation(ctx context.Context, userID uuid.UUID) (*model.Recommendation, error) {
	v, err := uc.verifications.LatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, err := v.RecommendationValue()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("no structured recommendation available: %w", model.ErrNotFound)
	}
	return rec, nil
}

// GenerateTest builds an assessment from the latest verification's analyses.
func (uc *VerificationUsecase) GenerateTest(ctx context.Context, userID uuid.UUID, req dto.GenerateTestRequest) (*dto.AssessmentDTO, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError("Invalid test request", err)
	}
	v, err := uc.verifications.LatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("start verification before requesting a test: %w", err)
	}
	profile, err := uc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	release, err := uc.acquire(ctx, opGenerate, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := v.RecommendationValue()
	if err != nil {
		slog.WarnContext(ctx, "ignoring unreadable recommendation", slog.String("verification_id", v.ID.String()), slog.Any("error", err))
	}
	test, err := uc.generator.Generate(ctx, userID, AssessmentInput{
		ResumeAnalysis: v.ResumeAnalysis,
		GithubAnalysis: v.GithubAnalysis,
		Skills:         profile.SkillList(),
		Recommendation: rec,
		NumQuestions:   req.NumQuestions,
	})
	if err != nil {
		return nil, err
	}
	questions, err := test.QuestionList()
	if err != nil {
		return nil, err
	}
	return &dto.AssessmentDTO{TestID: test.ID, Role: test.Role, Questions: questions}, nil
}

func (uc *VerificationUsecase) SubmitTest(ctx context.Context, userID, testID uuid.UUID, answers []string) (*dto.GradeDTO, error) {
	release, err := uc.acquire(ctx, opSubmit, userID)
	if err != nil {
		return nil, err
	}
	defer release()
	return uc.grader.Grade(ctx, userID, testID, answers)
}

// Review shows a reviewer the target's latest verification with an advisory
// suggestion. Nothing is changed.
func (uc *VerificationUsecase) Review(ctx context.Context, caller *model.User, targetID uuid.UUID) (*dto.ReviewDTO, error) {
	if !caller.IsReviewer() {
		return nil, fmt.Errorf("only reviewers can review verifications: %w", model.ErrForbidden)
	}
	v, profile, err := uc.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	out := &dto.ReviewDTO{
		Verification: dto.NewVerificationDTO(v),
		Profile:      dto.NewProfileDTO(profile),
	}
	if rec, err := v.RecommendationValue(); err == nil && rec != nil && len(rec.RecommendedTags) > 0 {
		out.Suggestion = &dto.Suggestion{StarRating: rec.StarRating, Tag: rec.RecommendedTags[0]}
	}
	return out, nil
}

// Finalize is the only way to VERIFIED: the reviewer's rating and tag are
// written to the profile together with the status change.
func (uc *VerificationUsecase) Finalize(ctx context.Context, caller *model.User, targetID uuid.UUID, req dto.FinalizeRequest) (*dto.ProfileDTO, error) {
	if !caller.IsReviewer() {
		return nil, fmt.Errorf("only reviewers can finalize verifications: %w", model.ErrForbidden)
	}
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError("Invalid verification verdict", err)
	}
	v, profile, err := uc.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	profile.StarRating = math.Round(*req.StarRating*10) / 10
	profile.VerificationTag = req.Tags
	v.Status = model.StatusVerified
	if err := uc.verifications.SaveWithProfile(ctx, v, profile); err != nil {
		return nil, fmt.Errorf("finalize verification: %w", err)
	}
	uc.logTransition(ctx, caller, v)
	out := dto.NewProfileDTO(profile)
	return &out, nil
}

// Reject marks the latest verification REJECTED and clears the public tag.
// The star rating is left as it was.
func (uc *VerificationUsecase) Reject(ctx context.Context, caller *model.User, targetID uuid.UUID) (*dto.VerificationDTO, error) {
	if !caller.IsReviewer() {
		return nil, fmt.Errorf("only reviewers can reject verifications: %w", model.ErrForbidden)
	}
	v, profile, err := uc.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	profile.VerificationTag = model.TagUnverified
	v.Status = model.StatusRejected
	if err := uc.verifications.SaveWithProfile(ctx, v, profile); err != nil {
		return nil, fmt.Errorf("reject verification: %w", err)
	}
	uc.logTransition(ctx, caller, v)
	out := dto.NewVerificationDTO(v)
	return &out, nil
}

func (uc *VerificationUsecase) loadTarget(ctx context.Context, targetID uuid.UUID) (*model.Verification, *model.Profile, error) {
	if _, err := uc.users.FindByID(ctx, targetID); err != nil {
		return nil, nil, err
	}
	v, err := uc.verifications.LatestByUser(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := uc.profiles.FindByUserID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return v, profile, nil
}

func (uc *VerificationUsecase) logTransition(ctx context.Context, caller *model.User, v *model.Verification) {
	metrics.VerificationTransitions.WithLabelValues(string(v.Status)).Inc()
	slog.InfoContext(ctx, "verification reviewed",
		slog.String("reviewer_id", caller.ID.String()),
		slog.String("user_id", v.UserID.String()),
		slog.String("verification_id", v.ID.String()),
		slog.String("status", string(v.Status)))
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return util.NewFormError(message, map[string]string{"_": err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("failed on %s", fe.Tag())
	}
	return util.NewFormError(message, fields)
}

// newValidator reports fields by their json or query name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

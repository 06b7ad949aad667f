package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/service"
	"github.com/prakkhar03/skillbridge/internal/util"
)

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*model.Profile
}

func (f *fakeProfiles) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) get(userID uuid.UUID) model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.profiles[userID]
}

type fakeVerifications struct {
	mu       sync.Mutex
	rows     []model.Verification
	profiles *fakeProfiles
	saveErr  error
}

func (f *fakeVerifications) Create(_ context.Context, v *model.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now().Add(time.Duration(len(f.rows)) * time.Millisecond)
	v.UpdatedAt = v.CreatedAt
	f.rows = append(f.rows, *v)
	return nil
}

func (f *fakeVerifications) Save(_ context.Context, v *model.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveLocked(v)
}

func (f *fakeVerifications) saveLocked(v *model.Verification) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for i := range f.rows {
		if f.rows[i].ID == v.ID {
			v.UpdatedAt = time.Now()
			f.rows[i] = *v
			return nil
		}
	}
	return errors.New("save of unknown verification")
}

func (f *fakeVerifications) byUser(userID uuid.UUID) []model.Verification {
	var out []model.Verification
	for _, v := range f.rows {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeVerifications) LatestByUser(_ context.Context, userID uuid.UUID) (*model.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.byUser(userID)
	if len(rows) == 0 {
		return nil, model.ErrNotFound
	}
	v := rows[0]
	return &v, nil
}

func (f *fakeVerifications) ListByUser(_ context.Context, userID uuid.UUID, page, pageSize int) ([]model.Verification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.byUser(userID)
	start := min((page-1)*pageSize, len(rows))
	end := min(start+pageSize, len(rows))
	return rows[start:end], int64(len(rows)), nil
}

func (f *fakeVerifications) SaveWithProfile(_ context.Context, v *model.Verification, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveLocked(v); err != nil {
		return err
	}
	f.profiles.mu.Lock()
	defer f.profiles.mu.Unlock()
	stored := f.profiles.profiles[profile.UserID]
	stored.VerificationTag = profile.VerificationTag
	stored.StarRating = profile.StarRating
	return nil
}

func (f *fakeVerifications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeSkillTests struct {
	mu    sync.Mutex
	tests map[uuid.UUID]model.SkillTest
}

func newFakeSkillTests() *fakeSkillTests {
	return &fakeSkillTests{tests: make(map[uuid.UUID]model.SkillTest)}
}

func (f *fakeSkillTests) Create(_ context.Context, t *model.SkillTest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	f.tests[t.ID] = *t
	return nil
}

func (f *fakeSkillTests) FindByID(_ context.Context, id uuid.UUID) (*model.SkillTest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &t, nil
}

// fakeTestResults keeps a result only when the verification reset that goes
// with it succeeds, like the transaction it stands in for.
type fakeTestResults struct {
	mu            sync.Mutex
	results       []model.TestResult
	verifications *fakeVerifications
}

func (f *fakeTestResults) Record(ctx context.Context, r *model.TestResult, v *model.Verification, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v != nil {
		if err := f.verifications.SaveWithProfile(ctx, v, profile); err != nil {
			return err
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	f.results = append(f.results, *r)
	return nil
}

func (f *fakeTestResults) ListByTest(_ context.Context, testID uuid.UUID) ([]model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TestResult
	for _, r := range f.results {
		if r.TestID == testID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeAnalysis answers structured calls by operation.
type fakeAnalysis struct {
	mu         sync.Mutex
	resume     string
	github     string
	structured map[string]service.JSONResult
	calls      []string
}

func (f *fakeAnalysis) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeAnalysis) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeAnalysis) AnalyzeResume(_ context.Context, text string) string {
	f.record(service.OpResumeAnalysis)
	return f.resume + text
}

func (f *fakeAnalysis) AnalyzeGithub(_ context.Context, url string, _ *service.GithubProfile) string {
	f.record(service.OpGithubAnalysis)
	return f.github + url
}

func (f *fakeAnalysis) GenerateStructured(_ context.Context, op, _ string) service.JSONResult {
	f.record(op)
	if res, ok := f.structured[op]; ok {
		return res
	}
	return service.JSONResult{Reason: "no canned response"}
}

func okJSON(s string) service.JSONResult { return service.JSONResult{JSON: s, Raw: s} }

type fakeGithub struct{ err error }

func (f *fakeGithub) FetchProfile(_ context.Context, url string) (*service.GithubProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.GithubProfile{Login: url}, nil
}

type brokenDocument struct{}

func (brokenDocument) Open() (io.ReadCloser, error) { return nil, errors.New("storage offline") }
func (brokenDocument) Name() string                 { return "broken" }

type textDocument struct{ body string }

func (d textDocument) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(d.body)), nil
}
func (d textDocument) Name() string { return "text" }

var _ util.Document = brokenDocument{}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"protopia/internal/domain"
)

// In-memory repository fakes shared by the service tests. They mirror the
// Postgres implementations' contracts, including pgx.ErrNoRows on misses.

type fakeQuestionRepo struct {
	questions []domain.Question
}

func (r *fakeQuestionRepo) Create(_ context.Context, q domain.Question) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (domain.Question, error) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, pgx.ErrNoRows
}

func (r *fakeQuestionRepo) ListByDemographics(_ context.Context, ageRange, gender, profession string, requireProfession bool) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range r.questions {
		if !q.MatchesDemographics(ageRange, gender) {
			continue
		}
		if requireProfession && !q.HasProfession(profession) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *fakeQuestionRepo) ListAll(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(r.questions))
	copy(out, r.questions)
	return out, nil
}

type fakeResponseRepo struct {
	responses map[string][]domain.UserResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: make(map[string][]domain.UserResponse)}
}

func (r *fakeResponseRepo) Create(_ context.Context, resp domain.UserResponse) error {
	r.responses[resp.UserID] = append(r.responses[resp.UserID], resp)
	return nil
}

func (r *fakeResponseRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.responses, userID)
	return nil
}

type fakeScoreRepo struct {
	scores map[string]map[string]float64
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: make(map[string]map[string]float64)}
}

func (r *fakeScoreRepo) ReplaceForUser(_ context.Context, userID string, scores []domain.TraitScore) error {
	m := make(map[string]float64, len(scores))
	for _, s := range scores {
		m[s.Trait] = s.Score
	}
	r.scores[userID] = m
	return nil
}

func (r *fakeScoreRepo) MapByUser(_ context.Context, userID string) (map[string]float64, error) {
	out := make(map[string]float64, len(r.scores[userID]))
	for k, v := range r.scores[userID] {
		out[k] = v
	}
	return out, nil
}

func (r *fakeScoreRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.scores, userID)
	return nil
}

type fakeEssayRepo struct {
	answers map[string][]domain.EssayAnswer
}

func newFakeEssayRepo() *fakeEssayRepo {
	return &fakeEssayRepo{answers: make(map[string][]domain.EssayAnswer)}
}

func (r *fakeEssayRepo) Create(_ context.Context, a domain.EssayAnswer) error {
	r.answers[a.UserID] = append(r.answers[a.UserID], a)
	return nil
}

func (r *fakeEssayRepo) ListByUser(_ context.Context, userID string) ([]domain.EssayAnswer, error) {
	out := make([]domain.EssayAnswer, len(r.answers[userID]))
	copy(out, r.answers[userID])
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (r *fakeEssayRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.answers, userID)
	return nil
}

type fakeVRQuestionRepo struct {
	questions []domain.VRQuestion
}

func (r *fakeVRQuestionRepo) Create(_ context.Context, q domain.VRQuestion) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeVRQuestionRepo) ListRandom(_ context.Context, n int) ([]domain.VRQuestion, error) {
	if n > len(r.questions) {
		n = len(r.questions)
	}
	out := make([]domain.VRQuestion, n)
	copy(out, r.questions[:n])
	return out, nil
}

type fakeVRSessionRepo struct {
	sessions map[string]domain.VRSession
}

func newFakeVRSessionRepo() *fakeVRSessionRepo {
	return &fakeVRSessionRepo{sessions: make(map[string]domain.VRSession)}
}

func (r *fakeVRSessionRepo) Create(_ context.Context, s domain.VRSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeVRSessionRepo) GetByID(_ context.Context, id, userID string) (domain.VRSession, error) {
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return domain.VRSession{}, pgx.ErrNoRows
	}
	return s, nil
}

func (r *fakeVRSessionRepo) AppendAnswer(_ context.Context, id string, answer domain.VRAnswer) error {
	s, ok := r.sessions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if s.Completed() {
		return fmt.Errorf("session %s already completed", id)
	}
	s.Answers = append(s.Answers, answer)
	r.sessions[id] = s
	return nil
}

func (r *fakeVRSessionRepo) Complete(_ context.Context, id string, completedAt time.Time) error {
	s, ok := r.sessions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.CompletedAt = &completedAt
	r.sessions[id] = s
	return nil
}

func (r *fakeVRSessionRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

type fakeProgressRepo struct {
	records map[string]domain.Progress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]domain.Progress)}
}

func (r *fakeProgressRepo) GetOrCreate(_ context.Context, userID string) (domain.Progress, error) {
	if p, ok := r.records[userID]; ok {
		return p, nil
	}
	p := domain.Progress{UserID: userID, Status: domain.StatusNotStarted, UpdatedAt: time.Now().UTC()}
	r.records[userID] = p
	return p, nil
}

func (r *fakeProgressRepo) SetStatus(_ context.Context, userID string, status domain.Status) error {
	p, ok := r.records[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.records[userID] = p
	return nil
}

func (r *fakeProgressRepo) SaveSnapshot(_ context.Context, userID string, snapshot *domain.EssaySnapshot, status domain.Status) error {
	p, ok := r.records[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.EssaySnapshot = snapshot
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.records[userID] = p
	return nil
}

func (r *fakeProgressRepo) SaveVRScore(_ context.Context, userID string, score float64, status domain.Status) error {
	p, ok := r.records[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.VRScore = &score
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.records[userID] = p
	return nil
}

func (r *fakeProgressRepo) Reset(_ context.Context, userID string) error {
	p, ok := r.records[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = domain.StatusNotStarted
	p.EssaySnapshot = nil
	p.VRScore = nil
	p.UpdatedAt = time.Now().UTC()
	r.records[userID] = p
	return nil
}

type fakeResultRepo struct {
	results map[string]domain.FinalResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]domain.FinalResult)}
}

func (r *fakeResultRepo) Upsert(_ context.Context, res domain.FinalResult) error {
	r.results[res.UserID] = res
	return nil
}

func (r *fakeResultRepo) GetByUser(_ context.Context, userID string) (domain.FinalResult, error) {
	res, ok := r.results[userID]
	if !ok {
		return domain.FinalResult{}, pgx.ErrNoRows
	}
	return res, nil
}

func (r *fakeResultRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.results, userID)
	return nil
}

// testEnv bundles the service under test with its fakes so assertions can
// inspect stored state directly.
type testEnv struct {
	svc         *AssessmentService
	questions   *fakeQuestionRepo
	responses   *fakeResponseRepo
	scores      *fakeScoreRepo
	essays      *fakeEssayRepo
	vrQuestions *fakeVRQuestionRepo
	vrSessions  *fakeVRSessionRepo
	progress    *fakeProgressRepo
	results     *fakeResultRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{
		questions:   &fakeQuestionRepo{},
		responses:   newFakeResponseRepo(),
		scores:      newFakeScoreRepo(),
		essays:      newFakeEssayRepo(),
		vrQuestions: &fakeVRQuestionRepo{},
		vrSessions:  newFakeVRSessionRepo(),
		progress:    newFakeProgressRepo(),
		results:     newFakeResultRepo(),
	}
	logger := zap.NewNop()
	selector := NewSeededQuestionSelector(env.questions, logger, 1)
	analyzer := NewEssayAnalyzer(nil, logger)
	env.svc = NewAssessmentService(
		env.questions, env.responses, env.scores, env.essays,
		env.vrQuestions, env.vrSessions, env.progress, env.results,
		selector, analyzer, nil, logger,
	)
	return env
}

// seedBank fills the MCQ bank with n untargeted questions for one trait.
func (e *testEnv) seedBank(n int, trait string) []domain.Question {
	start := len(e.questions.questions)
	for i := 0; i < n; i++ {
		e.questions.questions = append(e.questions.questions, domain.Question{
			ID:             fmt.Sprintf("q-%s-%d", trait, start+i),
			Text:           fmt.Sprintf("Statement %d about %s.", start+i, trait),
			Trait:          trait,
			ProfessionTags: []string{"Manager"},
			AgeGroup:       domain.AgeGroupAll,
			Weight:         1.0,
		})
	}
	return e.questions.questions[start:]
}

// seedVRPool fills the interview pool with n questions.
func (e *testEnv) seedVRPool(n int) {
	for i := 0; i < n; i++ {
		e.vrQuestions.questions = append(e.vrQuestions.questions, domain.VRQuestion{
			ID:         fmt.Sprintf("vrq-%d", i),
			Text:       fmt.Sprintf("Interview prompt %d?", i),
			PillarKey:  "integrity_ethics",
			PillarName: "Integrity & Ethical Reasoning",
		})
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"protopia/internal/domain"
	"protopia/internal/repository"
)

// Likert labels accepted by the MCQ submission contract.
var likertValues = map[string]int{
	"Strongly Disagree": 1,
	"Disagree":          2,
	"Neutral":           3,
	"Agree":             4,
	"Strongly Agree":    5,
}

const vrDefaultScenario = "ethics-01"

// AssessmentService orchestrates the assessment pipeline: question serving,
// MCQ scoring, essay analysis, the VR interview, and finalization. Every
// state mutation runs under the user's stage lock so duplicate concurrent
// calls cannot corrupt progress.
type AssessmentService struct {
	questions   repository.QuestionRepository
	responses   repository.ResponseRepository
	scores      repository.ScoreRepository
	essays      repository.EssayRepository
	vrQuestions repository.VRQuestionRepository
	vrSessions  repository.VRSessionRepository
	progress    repository.ProgressRepository
	results     repository.ResultRepository
	selector    *QuestionSelector
	analyzer    *EssayAnalyzer
	locks       StageLock
	logger      *zap.Logger
}

func NewAssessmentService(
	questions repository.QuestionRepository,
	responses repository.ResponseRepository,
	scores repository.ScoreRepository,
	essays repository.EssayRepository,
	vrQuestions repository.VRQuestionRepository,
	vrSessions repository.VRSessionRepository,
	progress repository.ProgressRepository,
	results repository.ResultRepository,
	selector *QuestionSelector,
	analyzer *EssayAnalyzer,
	locks StageLock,
	logger *zap.Logger,
) *AssessmentService {
	if locks == nil {
		locks = NewMemoryStageLock()
	}
	return &AssessmentService{
		questions:   questions,
		responses:   responses,
		scores:      scores,
		essays:      essays,
		vrQuestions: vrQuestions,
		vrSessions:  vrSessions,
		progress:    progress,
		results:     results,
		selector:    selector,
		analyzer:    analyzer,
		locks:       locks,
		logger:      logger,
	}
}

// Progress returns the user's stage record, creating it on first touch.
func (s *AssessmentService) Progress(ctx context.Context, userID string) (domain.Progress, error) {
	return s.progress.GetOrCreate(ctx, userID)
}

// Questions serves the demographic-matched MCQ set for the user.
func (s *AssessmentService) Questions(ctx context.Context, user domain.User) ([]domain.Question, error) {
	return s.selector.Select(ctx, user)
}

// SubmitAnswers scores exactly 20 Likert answers into per-trait averages,
// replacing any previous submission, and advances progress to MCQ_DONE.
func (s *AssessmentService) SubmitAnswers(ctx context.Context, userID string, answers map[string]string) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return fmt.Errorf("acquire stage lock: %w", err)
	}
	defer release()

	prog, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	if prog.Status != domain.StatusNotStarted && prog.Status != domain.StatusMCQDone {
		return fmt.Errorf("%w: MCQ stage already completed", ErrOutOfOrder)
	}
	if len(answers) != QuestionCount {
		return validationErr("responses", fmt.Sprintf("all %d questions must be answered", QuestionCount))
	}

	// Full overwrite of the MCQ layer, never a merge.
	if err := s.responses.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear responses: %w", err)
	}

	perTrait := make(map[string][]float64)
	var traitOrder []string
	for qid, label := range answers {
		q, err := s.questions.GetByID(ctx, qid)
		if errors.Is(err, pgx.ErrNoRows) {
			// Stale client state is tolerated: skip the unknown id.
			s.logger.Warn("skipping unknown question id", zap.String("question_id", qid), zap.String("user_id", userID))
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve question %s: %w", qid, err)
		}

		raw, ok := likertValues[label]
		if !ok {
			raw = 3
		}
		if q.ReverseScore {
			raw = 6 - raw
		}
		if _, seen := perTrait[q.Trait]; !seen {
			traitOrder = append(traitOrder, q.Trait)
		}
		perTrait[q.Trait] = append(perTrait[q.Trait], float64(raw)*q.Weight)

		if err := s.responses.Create(ctx, domain.UserResponse{
			ID:         uuid.NewString(),
			UserID:     userID,
			QuestionID: q.ID,
			Answer:     raw,
		}); err != nil {
			return fmt.Errorf("store response: %w", err)
		}
	}

	scores := make([]domain.TraitScore, 0, len(perTrait))
	for _, trait := range traitOrder {
		vals := perTrait[trait]
		var sum float64
		for _, v := range vals {
			sum += v
		}
		avg := round2(minFloat(sum/float64(len(vals)), 5.0))
		scores = append(scores, domain.TraitScore{UserID: userID, Trait: trait, Score: avg})
	}
	if err := s.scores.ReplaceForUser(ctx, userID, scores); err != nil {
		return fmt.Errorf("store trait scores: %w", err)
	}

	if err := s.progress.SetStatus(ctx, userID, prog.Status.Advance(domain.StatusMCQDone)); err != nil {
		return fmt.Errorf("advance progress: %w", err)
	}

	s.logger.Info("mcq submission scored",
		zap.String("user_id", userID),
		zap.Int("traits", len(scores)),
	)
	return nil
}

// EssaySubmission is the essay stage input contract: three equal-length
// ordered lists of 3-10 elements.
type EssaySubmission struct {
	Answers []string `json:"answers"`
	Timers  []int    `json:"timers"`
	Pasted  []bool   `json:"is_pasted"`
}

// Validate enforces the submission shape with field-level detail.
func (e EssaySubmission) Validate() error {
	if len(e.Answers) < 3 || len(e.Answers) > 10 {
		return validationErr("answers", "between 3 and 10 answers required")
	}
	if len(e.Timers) != len(e.Answers) || len(e.Pasted) != len(e.Answers) {
		return validationErr("timers", "mismatch in answer, timer, and paste data")
	}
	for i, a := range e.Answers {
		if len(a) < 50 {
			return validationErr("answers", fmt.Sprintf("answer %d shorter than 50 characters", i+1))
		}
	}
	for i, t := range e.Timers {
		if t < 0 {
			return validationErr("timers", fmt.Sprintf("timer %d is negative", i+1))
		}
	}
	return nil
}

// SubmitEssays analyzes the written answers, stores them with their
// embeddings, parks the analysis snapshot on the progress record, and
// advances to ESSAY_DONE.
func (s *AssessmentService) SubmitEssays(ctx context.Context, userID string, sub EssaySubmission) (domain.EssayAnalysis, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return domain.EssayAnalysis{}, fmt.Errorf("acquire stage lock: %w", err)
	}
	defer release()

	prog, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.EssayAnalysis{}, fmt.Errorf("load progress: %w", err)
	}
	if prog.Status != domain.StatusMCQDone {
		return domain.EssayAnalysis{}, fmt.Errorf("%w: complete MCQs first", ErrOutOfOrder)
	}
	if err := sub.Validate(); err != nil {
		return domain.EssayAnalysis{}, err
	}

	mcqScores, err := s.scores.MapByUser(ctx, userID)
	if err != nil {
		return domain.EssayAnalysis{}, fmt.Errorf("load mcq scores: %w", err)
	}
	if len(mcqScores) == 0 {
		return domain.EssayAnalysis{}, fmt.Errorf("%w: MCQ data missing", ErrDependencyMissing)
	}

	analysis, embeds := s.analyzer.Analyze(ctx, sub.Answers, sub.Timers, sub.Pasted)

	now := time.Now().UTC()
	for i, text := range sub.Answers {
		answer := domain.EssayAnswer{
			ID:            uuid.NewString(),
			UserID:        userID,
			Ordinal:       i + 1,
			Text:          text,
			TypingSeconds: sub.Timers[i],
			PasteDetected: sub.Pasted[i],
			CreatedAt:     now,
		}
		if i < len(embeds) && len(embeds[i]) > 0 {
			vec := pgvector.NewVector(embeds[i])
			answer.Embedding = &vec
		}
		if err := s.essays.Create(ctx, answer); err != nil {
			return domain.EssayAnalysis{}, fmt.Errorf("store essay answer: %w", err)
		}
	}

	snapshot := analysis.Snapshot()
	if err := s.progress.SaveSnapshot(ctx, userID, &snapshot, prog.Status.Advance(domain.StatusEssayDone)); err != nil {
		return domain.EssayAnalysis{}, fmt.Errorf("store essay snapshot: %w", err)
	}

	s.logger.Info("essay submission analyzed",
		zap.String("user_id", userID),
		zap.Float64("essay_score", analysis.FinalScore),
		zap.String("tone", analysis.Tone),
	)
	return analysis, nil
}

// StartVRSession opens an interview session after the essay stage and
// returns the sampled question set.
func (s *AssessmentService) StartVRSession(ctx context.Context, userID string, count int) (domain.VRSession, []domain.VRQuestion, error) {
	prog, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.VRSession{}, nil, fmt.Errorf("load progress: %w", err)
	}
	if prog.Status != domain.StatusEssayDone {
		return domain.VRSession{}, nil, fmt.Errorf("%w: complete essay first", ErrOutOfOrder)
	}

	if count <= 0 {
		count = vrAnswerSlots
	}
	questions, err := s.vrQuestions.ListRandom(ctx, count)
	if err != nil {
		return domain.VRSession{}, nil, fmt.Errorf("sample vr questions: %w", err)
	}

	session := domain.VRSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scenario:  vrDefaultScenario,
		Answers:   []domain.VRAnswer{},
		StartedAt: time.Now().UTC(),
	}
	if err := s.vrSessions.Create(ctx, session); err != nil {
		return domain.VRSession{}, nil, fmt.Errorf("create vr session: %w", err)
	}
	return session, questions, nil
}

// VRAnswerInput is the per-answer contract for the VR stage.
type VRAnswerInput struct {
	SessionID  string            `json:"session_id"`
	QuestionID string            `json:"question_id"`
	PillarKey  string            `json:"pillar_key,omitempty"`
	Transcript string            `json:"transcript"`
	Features   domain.VRFeatures `json:"features"`
}

// AppendVRAnswer records one spoken answer on an open session.
func (s *AssessmentService) AppendVRAnswer(ctx context.Context, userID string, in VRAnswerInput) error {
	if in.SessionID == "" {
		return validationErr("session_id", "missing session id")
	}
	if in.QuestionID == "" {
		return validationErr("question_id", "missing question id")
	}

	session, err := s.vrSessions.GetByID(ctx, in.SessionID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("load vr session: %w", err)
	}
	if session.Completed() {
		return ErrSessionCompleted
	}

	answer := domain.VRAnswer{
		QuestionID: in.QuestionID,
		PillarKey:  in.PillarKey,
		Transcript: in.Transcript,
		Features:   in.Features,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.vrSessions.AppendAnswer(ctx, session.ID, answer); err != nil {
		return fmt.Errorf("append vr answer: %w", err)
	}
	return nil
}

// CompleteVRSession scores the session, stores the VR score, advances to
// VR_DONE, and finalizes the composite result in the same call.
func (s *AssessmentService) CompleteVRSession(ctx context.Context, userID, sessionID string) (domain.FinalResult, float64, error) {
	if sessionID == "" {
		return domain.FinalResult{}, 0, validationErr("session_id", "missing session id")
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, 0, fmt.Errorf("acquire stage lock: %w", err)
	}
	defer release()

	prog, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, 0, fmt.Errorf("load progress: %w", err)
	}
	if prog.Status != domain.StatusEssayDone {
		return domain.FinalResult{}, 0, fmt.Errorf("%w: essay must be completed first", ErrOutOfOrder)
	}

	session, err := s.vrSessions.GetByID(ctx, sessionID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FinalResult{}, 0, ErrSessionNotFound
	}
	if err != nil {
		return domain.FinalResult{}, 0, fmt.Errorf("load vr session: %w", err)
	}
	if session.Completed() {
		return domain.FinalResult{}, 0, ErrSessionCompleted
	}

	vrScore := scoreVRSession(session.Answers)

	if err := s.vrSessions.Complete(ctx, session.ID, time.Now().UTC()); err != nil {
		return domain.FinalResult{}, 0, fmt.Errorf("complete vr session: %w", err)
	}
	if err := s.progress.SaveVRScore(ctx, userID, vrScore, prog.Status.Advance(domain.StatusVRDone)); err != nil {
		return domain.FinalResult{}, 0, fmt.Errorf("store vr score: %w", err)
	}

	s.logger.Info("vr session scored",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Int("answers", len(session.Answers)),
		zap.Float64("vr_score", vrScore),
	)

	result, err := s.finalizeLocked(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, vrScore, err
	}
	return result, vrScore, nil
}

// Finalize combines MCQ, essay and VR outputs into the composite result.
// Calling it again after FINALIZED returns the stored result unchanged.
func (s *AssessmentService) Finalize(ctx context.Context, userID string) (domain.FinalResult, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("acquire stage lock: %w", err)
	}
	defer release()

	return s.finalizeLocked(ctx, userID)
}

func (s *AssessmentService) finalizeLocked(ctx context.Context, userID string) (domain.FinalResult, error) {
	prog, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("load progress: %w", err)
	}
	if prog.Status == domain.StatusFinalized {
		existing, err := s.results.GetByUser(ctx, userID)
		if err != nil {
			return domain.FinalResult{}, fmt.Errorf("load final result: %w", err)
		}
		return existing, nil
	}
	if prog.Status != domain.StatusVRDone {
		return domain.FinalResult{}, fmt.Errorf("%w: VR not completed", ErrOutOfOrder)
	}
	if prog.EssaySnapshot == nil {
		return domain.FinalResult{}, fmt.Errorf("%w: essay snapshot missing", ErrDependencyMissing)
	}
	if prog.VRScore == nil {
		return domain.FinalResult{}, fmt.Errorf("%w: VR score missing", ErrDependencyMissing)
	}

	mcqScores, err := s.scores.MapByUser(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("load mcq scores: %w", err)
	}
	if len(mcqScores) == 0 {
		return domain.FinalResult{}, fmt.Errorf("%w: MCQ data missing", ErrDependencyMissing)
	}

	// Combine MCQ + essay per display trait, each component clamped to
	// [0.5, 4.7], trait total capped at 10.
	combined := make([]domain.TraitBreakdown, 0, len(domain.DisplayTraits))
	for _, trait := range domain.DisplayTraits {
		pair, ok := domain.SubtraitLabels(trait)
		if !ok {
			continue
		}
		essayVal, _ := prog.EssaySnapshot.Traits.Value(trait)

		mcqComponent := maxFloat2(0.5, round2(minFloat(mcqScores[trait], 4.7)))
		essayComponent := maxFloat2(0.5, round2(minFloat(essayVal*5.0, 4.7)))
		total := round2(minFloat(mcqComponent+essayComponent, 10.0))

		combined = append(combined, domain.TraitBreakdown{
			Trait:         trait,
			Score:         total,
			MCQScore:      mcqComponent,
			EssayScore:    essayComponent,
			MCQSubtrait:   pair.MCQ,
			EssaySubtrait: pair.Essay,
		})
	}

	// Stable sort keeps first-seen order on ties.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})
	if len(combined) > 5 {
		combined = combined[:5]
	}

	var totalOutOf50 float64
	for _, t := range combined {
		totalOutOf50 += t.Score
	}

	// MCQ+essay subtotal carries up to 50 points; the VR score (0-50) is
	// added directly. The (sum/50)*50 pass-through matches the arithmetic
	// the verdict thresholds were tuned against.
	partA := (totalOutOf50 / 50.0) * 50.0
	finalScore := round2(partA + *prog.VRScore)

	result := domain.FinalResult{
		UserID:     userID,
		FinalScore: finalScore,
		Verdict:    domain.VerdictFor(finalScore),
		TopTraits:  combined,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.results.Upsert(ctx, result); err != nil {
		return domain.FinalResult{}, fmt.Errorf("store final result: %w", err)
	}
	if err := s.progress.SetStatus(ctx, userID, prog.Status.Advance(domain.StatusFinalized)); err != nil {
		return domain.FinalResult{}, fmt.Errorf("advance progress: %w", err)
	}

	s.logger.Info("assessment finalized",
		zap.String("user_id", userID),
		zap.Float64("final_score", finalScore),
		zap.String("verdict", result.Verdict),
	)
	return result, nil
}

// FinalResult returns the stored composite result once progress reaches
// FINALIZED.
func (s *AssessmentService) FinalResult(ctx context.Context, userID string) (domain.FinalResult, error) {
	prog, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("load progress: %w", err)
	}
	if prog.Status != domain.StatusFinalized {
		return domain.FinalResult{}, ErrResultNotReady
	}
	result, err := s.results.GetByUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FinalResult{}, fmt.Errorf("%w: final result missing", ErrDependencyMissing)
	}
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("load final result: %w", err)
	}
	return result, nil
}

// Reset wipes every assessment artifact for the user and returns progress
// to NOT_STARTED so the whole pipeline can be re-run.
func (s *AssessmentService) Reset(ctx context.Context, userID string) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return fmt.Errorf("acquire stage lock: %w", err)
	}
	defer release()

	if err := s.responses.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear responses: %w", err)
	}
	if err := s.scores.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear trait scores: %w", err)
	}
	if err := s.essays.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear essays: %w", err)
	}
	if err := s.vrSessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear vr sessions: %w", err)
	}
	if err := s.results.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear final result: %w", err)
	}
	if _, err := s.progress.GetOrCreate(ctx, userID); err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	if err := s.progress.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}

	s.logger.Info("assessment reset", zap.String("user_id", userID))
	return nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

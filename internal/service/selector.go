package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"protopia/internal/domain"
	"protopia/internal/repository"
)

// QuestionCount is the fixed size of every served MCQ set.
const QuestionCount = 20

// QuestionSelector performs stratified sampling of the MCQ bank per
// demographic profile, with cascading fallback when strict matches run out.
type QuestionSelector struct {
	questions repository.QuestionRepository
	logger    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuestionSelector builds a selector seeded from entropy.
func NewQuestionSelector(questions repository.QuestionRepository, logger *zap.Logger) *QuestionSelector {
	return NewSeededQuestionSelector(questions, logger, time.Now().UnixNano())
}

// NewSeededQuestionSelector builds a selector with a fixed seed, for
// deterministic sampling in tests.
func NewSeededQuestionSelector(questions repository.QuestionRepository, logger *zap.Logger, seed int64) *QuestionSelector {
	return &QuestionSelector{
		questions: questions,
		logger:    logger,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Select returns exactly QuestionCount questions for the user's demographics,
// loosening the match progressively: profession+age+gender, then age+gender,
// then uniform fill from the whole pool. Fails with
// ErrInsufficientQuestionBank when the entire bank is too small.
func (s *QuestionSelector) Select(ctx context.Context, user domain.User) ([]domain.Question, error) {
	strict, err := s.questions.ListByDemographics(ctx, user.AgeRange, user.Gender, user.Profession, true)
	if err != nil {
		return nil, fmt.Errorf("list strict questions: %w", err)
	}
	if len(strict) >= QuestionCount {
		return s.sample(strict, QuestionCount), nil
	}

	relaxed, err := s.questions.ListByDemographics(ctx, user.AgeRange, user.Gender, user.Profession, false)
	if err != nil {
		return nil, fmt.Errorf("list relaxed questions: %w", err)
	}
	combined := dedupeQuestions(append(append([]domain.Question{}, strict...), relaxed...))
	if len(combined) >= QuestionCount {
		return s.sample(combined, QuestionCount), nil
	}

	all, err := s.questions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all questions: %w", err)
	}
	chosen := map[string]struct{}{}
	for _, q := range combined {
		chosen[q.ID] = struct{}{}
	}
	var remainder []domain.Question
	for _, q := range all {
		if _, ok := chosen[q.ID]; !ok {
			remainder = append(remainder, q)
		}
	}
	need := QuestionCount - len(combined)
	if need > len(remainder) {
		need = len(remainder)
	}
	selected := append(combined, s.sample(remainder, need)...)

	if len(selected) < QuestionCount {
		if s.logger != nil {
			s.logger.Warn("question bank too small",
				zap.Int("available", len(selected)),
				zap.Int("required", QuestionCount),
			)
		}
		return nil, ErrInsufficientQuestionBank
	}
	return selected, nil
}

// sample picks n items without replacement via a partial Fisher-Yates
// shuffle of a copy.
func (s *QuestionSelector) sample(pool []domain.Question, n int) []domain.Question {
	if n >= len(pool) {
		out := make([]domain.Question, len(pool))
		copy(out, pool)
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := make([]domain.Question, len(pool))
	copy(work, pool)
	for i := 0; i < n; i++ {
		j := i + s.rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:n]
}

func dedupeQuestions(qs []domain.Question) []domain.Question {
	seen := make(map[string]struct{}, len(qs))
	var out []domain.Question
	for _, q := range qs {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}

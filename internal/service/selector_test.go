package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"protopia/internal/domain"
)

func selectorUser() domain.User {
	return domain.User{ID: "u1", AgeRange: "21–30", Gender: "Female", Profession: "Manager"}
}

func bankQuestion(i int, ageGroup, gender string, tags []string) domain.Question {
	return domain.Question{
		ID:             fmt.Sprintf("q%d", i),
		Text:           fmt.Sprintf("Statement %d.", i),
		Trait:          "integrity",
		ProfessionTags: tags,
		AgeGroup:       ageGroup,
		GenderSpecific: gender,
		Weight:         1.0,
	}
}

func TestSelect_ExactPoolReturnsAll(t *testing.T) {
	repo := &fakeQuestionRepo{}
	for i := 0; i < QuestionCount; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, domain.AgeGroupAll, "", []string{"Manager"}))
	}
	sel := NewSeededQuestionSelector(repo, zap.NewNop(), 7)

	got, err := sel.Select(context.Background(), selectorUser())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != QuestionCount {
		t.Fatalf("expected %d questions, got %d", QuestionCount, len(got))
	}
	seen := map[string]struct{}{}
	for _, q := range got {
		seen[q.ID] = struct{}{}
	}
	if len(seen) != QuestionCount {
		t.Fatalf("expected unique questions, got %d distinct", len(seen))
	}
}

func TestSelect_SeededSamplingIsDeterministic(t *testing.T) {
	repo := &fakeQuestionRepo{}
	for i := 0; i < 40; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, domain.AgeGroupAll, "", []string{"Manager"}))
	}

	first, err := NewSeededQuestionSelector(repo, zap.NewNop(), 99).Select(context.Background(), selectorUser())
	if err != nil {
		t.Fatalf("first select: %v", err)
	}
	second, err := NewSeededQuestionSelector(repo, zap.NewNop(), 99).Select(context.Background(), selectorUser())
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("position %d differs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestSelect_FallbackFillsWithoutDuplicates(t *testing.T) {
	repo := &fakeQuestionRepo{}
	// 5 strict matches, 7 age/gender matches without the profession, and a
	// pool of untargeted fill questions.
	for i := 0; i < 5; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, domain.AgeGroupAll, "", []string{"Manager"}))
	}
	for i := 5; i < 12; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, domain.AgeGroupAll, "", []string{"Developer"}))
	}
	for i := 12; i < 40; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, "41–50", "", []string{"Developer"}))
	}
	sel := NewSeededQuestionSelector(repo, zap.NewNop(), 3)

	got, err := sel.Select(context.Background(), selectorUser())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != QuestionCount {
		t.Fatalf("expected %d questions, got %d", QuestionCount, len(got))
	}
	seen := map[string]struct{}{}
	for _, q := range got {
		if _, dup := seen[q.ID]; dup {
			t.Fatalf("duplicate question %s in selection", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	// All 12 demographic matches must be present before any fill questions.
	for i := 0; i < 12; i++ {
		if _, ok := seen[fmt.Sprintf("q%d", i)]; !ok {
			t.Fatalf("expected demographic match q%d in selection", i)
		}
	}
}

func TestSelect_InsufficientBankFails(t *testing.T) {
	repo := &fakeQuestionRepo{}
	for i := 0; i < QuestionCount-1; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, domain.AgeGroupAll, "", []string{"Manager"}))
	}
	sel := NewSeededQuestionSelector(repo, zap.NewNop(), 1)

	_, err := sel.Select(context.Background(), selectorUser())
	if !errors.Is(err, ErrInsufficientQuestionBank) {
		t.Fatalf("expected ErrInsufficientQuestionBank, got %v", err)
	}
}

func TestSelect_GenderTargetingRespected(t *testing.T) {
	repo := &fakeQuestionRepo{}
	for i := 0; i < QuestionCount; i++ {
		repo.questions = append(repo.questions, bankQuestion(i, domain.AgeGroupAll, "", []string{"Manager"}))
	}
	// A male-only question must never be served to this user.
	repo.questions = append(repo.questions, bankQuestion(100, domain.AgeGroupAll, "Male", []string{"Manager"}))
	sel := NewSeededQuestionSelector(repo, zap.NewNop(), 5)

	got, err := sel.Select(context.Background(), selectorUser())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, q := range got {
		if q.ID == "q100" {
			t.Fatal("gender-targeted question leaked into selection")
		}
	}
}

package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"protopia/internal/domain"
	"protopia/internal/embedding"
)

func TestAnalyze_RepeatedWordSpamIsHardCapped(t *testing.T) {
	analyzer := NewEssayAnalyzer(nil, zap.NewNop())
	spam := strings.TrimSpace(strings.Repeat("yes ", 10))
	texts := []string{spam, spam, spam}

	analysis, _ := analyzer.Analyze(context.Background(), texts, []int{5, 5, 5}, []bool{false, false, false})
	if analysis.FinalScore > 5.0 {
		t.Fatalf("expected hard cap at 5.0 for repeated-word spam, got %v", analysis.FinalScore)
	}
}

func TestAnalyze_PasteCapsScore(t *testing.T) {
	analyzer := NewEssayAnalyzer(nil, zap.NewNop())
	analysis, _ := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{true, false, false})
	if analysis.FinalScore > 60.0 {
		t.Fatalf("expected paste cap at 60.0, got %v", analysis.FinalScore)
	}
}

func TestAnalyze_CleanEssaysLandMidBand(t *testing.T) {
	analyzer := NewEssayAnalyzer(nil, zap.NewNop())
	analysis, embeds := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{false, false, false})

	if analysis.FinalScore < 50 || analysis.FinalScore >= 85 {
		t.Fatalf("expected score in [50,85) for clean mid-length essays, got %v", analysis.FinalScore)
	}
	if analysis.Authenticity != 0.5 {
		t.Fatalf("expected neutral authenticity without embedder, got %v", analysis.Authenticity)
	}
	if embeds != nil {
		t.Fatalf("expected no embeddings in degraded mode, got %d", len(embeds))
	}
	if analysis.Comment == "" {
		t.Fatal("expected a summary comment")
	}
	if got := len(strings.Fields(analysis.Comment)); got > 20 {
		t.Fatalf("comment longer than 20 words: %d", got)
	}
}

func TestAnalyze_AIPhrasesPenalized(t *testing.T) {
	analyzer := NewEssayAnalyzer(nil, zap.NewNop())

	clean, _ := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{false, false, false})

	templated := append([]string{}, sampleEssays...)
	templated[0] = "In conclusion, leadership is the cornerstone of every organization. " + templated[0]
	templated[1] = "Furthermore, it is important to note that " + templated[1]
	flagged, _ := analyzer.Analyze(context.Background(), templated, []int{240, 230, 250}, []bool{false, false, false})

	if flagged.FinalScore >= clean.FinalScore {
		t.Fatalf("expected AI boilerplate to lower the score: clean=%v flagged=%v", clean.FinalScore, flagged.FinalScore)
	}
}

func TestAnalyze_ImplausibleTypingSpeedPenalized(t *testing.T) {
	analyzer := NewEssayAnalyzer(nil, zap.NewNop())

	slow, _ := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{false, false, false})
	// 75 words in 10 seconds is 450 wpm.
	fast, _ := analyzer.Analyze(context.Background(), sampleEssays, []int{10, 230, 250}, []bool{false, false, false})

	if fast.FinalScore >= slow.FinalScore {
		t.Fatalf("expected wpm penalty: slow=%v fast=%v", slow.FinalScore, fast.FinalScore)
	}
}

func TestAnalyze_DisabledEmbedderFallsBackToNeutral(t *testing.T) {
	analyzer := NewEssayAnalyzer(embedding.Disabled{}, zap.NewNop())
	analysis, embeds := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{false, false, false})
	if analysis.Authenticity != 0.5 {
		t.Fatalf("expected neutral authenticity with disabled provider, got %v", analysis.Authenticity)
	}
	if embeds != nil {
		t.Fatalf("expected no embeddings, got %d", len(embeds))
	}
}

func TestAnalyze_SemanticFlowFromEmbeddings(t *testing.T) {
	mock := &embedding.Mock{Vectors: map[string][]float32{
		sampleEssays[0]: {1, 0},
		sampleEssays[1]: {0, 1},
		sampleEssays[2]: {1, 0},
	}}
	analyzer := NewEssayAnalyzer(mock, zap.NewNop())
	analysis, embeds := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{false, false, false})

	// Consecutive distances are both sqrt(2); mean/5 rounds to 0.28.
	if analysis.Authenticity != 0.28 {
		t.Fatalf("expected authenticity 0.28, got %v", analysis.Authenticity)
	}
	if len(embeds) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(embeds))
	}
}

func TestAnalyze_TraitsStayInsideDisplayClamp(t *testing.T) {
	analyzer := NewEssayAnalyzer(nil, zap.NewNop())
	analysis, _ := analyzer.Analyze(context.Background(), sampleEssays, []int{240, 230, 250}, []bool{false, false, false})

	for _, trait := range domain.DisplayTraits {
		v, ok := analysis.Traits.Value(trait)
		if !ok {
			t.Fatalf("missing trait %s", trait)
		}
		if v < 0.10 || v > 0.94 {
			t.Fatalf("trait %s outside display clamp: %v", trait, v)
		}
	}
}

func TestTokenizeWords(t *testing.T) {
	words := tokenizeWords("Don't STOP, keep going; really.")
	want := []string{"don't", "stop", "keep", "going", "really"}
	if len(words) != len(want) {
		t.Fatalf("expected %d words, got %v", len(want), words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("word %d: expected %q, got %q", i, want[i], words[i])
		}
	}
}

func TestMaxRepeatRun(t *testing.T) {
	if got := maxRepeatRun([]string{"a", "a", "a", "b"}); got != 3 {
		t.Fatalf("expected run 3, got %d", got)
	}
	if got := maxRepeatRun([]string{"a", "b", "a"}); got != 1 {
		t.Fatalf("expected run 1, got %d", got)
	}
	if got := maxRepeatRun(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
}

func TestNgramRepeatRatio(t *testing.T) {
	words := []string{"yes", "yes", "yes", "yes"}
	if got := ngramRepeatRatio(words, 2); got != 1.0 {
		t.Fatalf("expected bigram ratio 1.0, got %v", got)
	}
	if got := ngramRepeatRatio([]string{"a"}, 2); got != 0 {
		t.Fatalf("expected 0 for too-short input, got %v", got)
	}
}

func TestSummaryComment_Bands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{90, "Exceptional"},
		{72, "Solid"},
		{55, "Moderate"},
		{10, "Weak"},
	}
	for _, tc := range cases {
		got := summaryComment(tc.score)
		if !strings.HasPrefix(got, tc.want) {
			t.Fatalf("score %v: expected prefix %q, got %q", tc.score, tc.want, got)
		}
		if len(strings.Fields(got)) > 20 {
			t.Fatalf("score %v: comment longer than 20 words", tc.score)
		}
	}
}

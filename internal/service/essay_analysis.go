package service

import (
	"context"
	"math"
	"regexp"
	"strings"

	govader "github.com/jonreiter/govader"
	"go.uber.org/zap"

	"protopia/internal/domain"
	"protopia/internal/embedding"
)

// neutralAuthenticity is substituted whenever the embedding model is
// unavailable or fewer than two answers exist (degraded mode, never an error).
const neutralAuthenticity = 0.5

// semanticFlowScale normalizes the mean embedding distance into [0,1] so
// typical varied answers land around 0.6-0.9.
const semanticFlowScale = 5.0

var wordRe = regexp.MustCompile(`[a-z']+`)

var aiPhrases = []string{
	"in conclusion", "to conclude", "it is important to note",
	"one of the most important", "this highlights", "this demonstrates",
	"leadership is the cornerstone", "it is essential", "furthermore",
	"moreover", "in summary",
}

var fillerWords = []string{
	"um", "uh", "erm", "like", "basically", "actually", "literally",
	"you know", "sort of", "kind of",
}

// EssayAnalyzer extracts linguistic and behavioral features from written
// answers and produces the strict authenticity-penalized integrity score.
type EssayAnalyzer struct {
	embedder  embedding.Provider
	sentiment *govader.SentimentIntensityAnalyzer
	logger    *zap.Logger
}

func NewEssayAnalyzer(embedder embedding.Provider, logger *zap.Logger) *EssayAnalyzer {
	return &EssayAnalyzer{
		embedder:  embedder,
		sentiment: govader.NewSentimentIntensityAnalyzer(),
		logger:    logger,
	}
}

// Analyze scores 3-10 parallel (text, elapsed-seconds, paste-flag) tuples.
// The returned embeddings run parallel to texts and are nil in degraded mode.
func (a *EssayAnalyzer) Analyze(ctx context.Context, texts []string, timersSec []int, pasteFlags []bool) (domain.EssayAnalysis, [][]float32) {
	if len(texts) == 0 {
		return domain.EssayAnalysis{Tone: "Neutral", Comment: "No content provided."}, nil
	}

	// Per-essay metrics.
	wordLists := make([][]string, len(texts))
	wordCounts := make([]int, len(texts))
	uniqRatios := make([]float64, len(texts))
	repeatRuns := make([]int, len(texts))
	bigramRep := make([]float64, len(texts))
	trigramRep := make([]float64, len(texts))
	fillerRatios := make([]float64, len(texts))
	compounds := make([]float64, len(texts))
	aiHits := 0
	pasteCount := 0

	for i, text := range texts {
		w := tokenizeWords(text)
		wordLists[i] = w
		wordCounts[i] = len(w)
		uniqRatios[i] = uniqueRatio(w)
		repeatRuns[i] = maxRepeatRun(w)
		bigramRep[i] = ngramRepeatRatio(w, 2)
		trigramRep[i] = ngramRepeatRatio(w, 3)
		fillerRatios[i] = fillerRatio(text, len(w))
		compounds[i] = a.sentiment.PolarityScores(text).Compound
		if looksAIGenerated(text) {
			aiHits++
		}
	}
	for _, p := range pasteFlags {
		if p {
			pasteCount++
		}
	}

	// Words-per-minute; implausibly fast typing suggests paste/automation.
	wpm := make([]float64, len(texts))
	for i, n := range wordCounts {
		sec := 0
		if i < len(timersSec) {
			sec = timersSec[i]
		}
		if sec <= 0 {
			wpm[i] = 0
		} else {
			wpm[i] = float64(n) / float64(sec) * 60.0
		}
	}

	veryShortAny := false
	for _, n := range wordCounts {
		if n < 40 {
			veryShortAny = true
		}
	}
	shortTimeCount := 0
	for i, n := range wordCounts {
		sec := 0
		if i < len(timersSec) {
			sec = timersSec[i]
		}
		if sec < 20 && n >= 50 {
			shortTimeCount++
		}
	}

	toneMean := mean(compounds)
	tone := "Neutral"
	if toneMean > 0.4 {
		tone = "Positive"
	} else if toneMean < -0.4 {
		tone = "Negative"
	}

	authenticity, embeds := a.semanticFlow(ctx, texts)

	// Trait estimates (0..1).
	empathy := round2((toneMean + 1) / 2)
	ethics := round2((authenticity + empathy) / 2)
	clarity := round2(mean(uniqRatios) * 0.9)
	criticalThinking := round2(ethics * 0.9)
	inclusiveness := round2((empathy + toneMean + 1) / 3)
	accountability := round2((authenticity + ethics) / 2)
	vocabularyRichness := round2(mean(uniqRatios))
	toneBalance := round2(toneMean)
	leadershipSignal := round2((authenticity + empathy) / 2)

	// Aggregated anti-cheat indicators.
	nMean := meanInts(wordCounts)
	uniqMean := mean(uniqRatios)
	repRunMax := maxInt(repeatRuns)
	biRepMax := maxFloat(bigramRep)
	triRepMax := maxFloat(trigramRep)
	fillerMean := mean(fillerRatios)
	wpmMax := maxFloat(wpm)

	penalty := 0.0
	if nMean < 60 {
		penalty += 0.35
	}
	if uniqMean < 0.50 {
		penalty += 0.35
	}
	if repRunMax >= 3 {
		penalty += 0.40
	}
	if biRepMax > 0.35 || triRepMax > 0.25 {
		penalty += 0.30
	}
	if fillerMean > 0.08 {
		penalty += 0.15
	}
	if aiHits >= 2 {
		penalty += 0.40
	} else if aiHits == 1 {
		penalty += 0.20
	}
	if pasteCount > 0 {
		penalty += 0.70
	}
	if shortTimeCount >= 2 || veryShortAny {
		penalty += 0.30
	}
	if wpmMax >= 180 {
		penalty += 0.25
	}
	if penalty > 1.0 {
		penalty = 1.0
	}

	// Content composite scales with length (cap ~180 words avg) boosted by
	// diversity (0.35 -> 0, 0.80 -> 1).
	lengthComponent := math.Min(1.0, nMean/180.0)
	diversityComponent := math.Min(1.0, math.Max(0.0, (uniqMean-0.35)/0.45))
	contentNorm := 0.6*lengthComponent + 0.4*diversityComponent
	contentAfterPenalty := math.Max(0.0, contentNorm*(1.0-penalty))

	// Small tone/authenticity bonus, never letting junk pass high.
	featureNorm := 0.25*math.Max(0.0, (toneMean+1)/2) + 0.75*authenticity
	featureNorm = math.Min(featureNorm, 1.0)

	raw := 0.70*contentAfterPenalty + 0.30*featureNorm
	finalScore := round2(math.Max(0.0, math.Min(raw, 1.0)) * 100.0)

	// Hard clamps for clear abuse.
	if repRunMax >= 3 && uniqMean < 0.4 && nMean < 40 {
		finalScore = math.Min(finalScore, 5.0)
	}
	if pasteCount > 0 {
		finalScore = math.Min(finalScore, 60.0)
	}

	traits := domain.EssayTraits{
		Empathy:            clampTrait(empathy),
		EthicalReasoning:   clampTrait(ethics),
		Authenticity:       clampTrait(authenticity),
		Clarity:            clampTrait(clarity),
		CriticalThinking:   clampTrait(criticalThinking),
		Inclusiveness:      clampTrait(inclusiveness),
		Accountability:     clampTrait(accountability),
		VocabularyRichness: clampTrait(vocabularyRichness),
		ToneBalance:        clampTrait(toneBalance),
		LeadershipSignal:   clampTrait(leadershipSignal),
	}

	return domain.EssayAnalysis{
		Authenticity:     round2(authenticity),
		EmpathySignal:    empathy,
		EthicalReasoning: ethics,
		Tone:             tone,
		FinalScore:       finalScore,
		Traits:           traits,
		Comment:          summaryComment(finalScore),
	}, embeds
}

// semanticFlow computes the average distance between consecutive answer
// embeddings as the authenticity proxy, or the neutral constant when the
// model is unavailable.
func (a *EssayAnalyzer) semanticFlow(ctx context.Context, texts []string) (float64, [][]float32) {
	if a.embedder == nil {
		return neutralAuthenticity, nil
	}
	embeds := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := a.embedder.Embed(ctx, t)
		if err != nil {
			if a.logger != nil {
				a.logger.Debug("embedding unavailable, using neutral authenticity", zap.Error(err))
			}
			return neutralAuthenticity, nil
		}
		embeds = append(embeds, vec)
	}
	if len(embeds) < 2 {
		return neutralAuthenticity, embeds
	}
	var total float64
	for i := 1; i < len(embeds); i++ {
		d, ok := l2Distance(embeds[i-1], embeds[i])
		if !ok {
			return neutralAuthenticity, embeds
		}
		total += d
	}
	flow := total / float64(len(embeds)-1) / semanticFlowScale
	return math.Min(math.Max(flow, 0.0), 1.0), embeds
}

func tokenizeWords(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func uniqueRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

// maxRepeatRun returns the longest run of an immediately repeated word.
func maxRepeatRun(words []string) int {
	if len(words) == 0 {
		return 0
	}
	best, cur := 1, 1
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 1
		}
	}
	return best
}

// ngramRepeatRatio is the frequency of the most common n-gram normalized by
// the total n-gram count. Detects "yes yes yes" spam and near-duplicate
// phrasing.
func ngramRepeatRatio(words []string, n int) float64 {
	if len(words) < n {
		return 0
	}
	counts := make(map[string]int)
	maxCount := 0
	for i := 0; i+n <= len(words); i++ {
		g := strings.Join(words[i:i+n], " ")
		counts[g]++
		if counts[g] > maxCount {
			maxCount = counts[g]
		}
	}
	total := len(words) - n + 1
	if total < 1 {
		total = 1
	}
	return float64(maxCount) / float64(total)
}

func fillerRatio(text string, wordCount int) float64 {
	tl := strings.ToLower(text)
	count := 0
	for _, f := range fillerWords {
		count += strings.Count(tl, " "+f+" ")
	}
	if wordCount < 1 {
		wordCount = 1
	}
	return float64(count) / float64(wordCount)
}

func looksAIGenerated(text string) bool {
	tl := strings.ToLower(text)
	for _, p := range aiPhrases {
		if strings.Contains(tl, p) {
			return true
		}
	}
	return false
}

func summaryComment(score float64) string {
	var base string
	switch {
	case score >= 85:
		base = "Exceptional leadership integrity with strong ethics and empathy. Clear, original, and trustworthy responses detected."
	case score >= 70:
		base = "Solid integrity and leadership indicators. Slight concerns over authenticity and tone, but overall trustworthy performance."
	case score >= 50:
		base = "Moderate leadership signals. Improvements needed in tone, originality, and ethical consistency to build integrity."
	default:
		base = "Weak leadership indicators. High risk of generic or manipulated content. Authentic reflection and ethics must improve."
	}
	words := strings.Fields(base)
	if len(words) > 20 {
		words = words[:20]
	}
	return strings.Join(words, " ")
}

func l2Distance(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), true
}

func clampTrait(v float64) float64 {
	return math.Max(math.Min(v, 0.94), 0.10)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanInts(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func maxInt(vals []int) int {
	best := 0
	for _, v := range vals {
		if v > best {
			best = v
		}
	}
	return best
}

func maxFloat(vals []float64) float64 {
	best := 0.0
	for _, v := range vals {
		if v > best {
			best = v
		}
	}
	return best
}

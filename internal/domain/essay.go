package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// EssayAnswer is one stored written answer. The embedding is kept alongside
// the text so the authenticity signal can be re-derived later; it is nil when
// the embedding provider ran in degraded mode.
type EssayAnswer struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Ordinal       int              `json:"ordinal"`
	Text          string           `json:"text"`
	TypingSeconds int              `json:"typing_seconds"`
	PasteDetected bool             `json:"paste_detected"`
	Embedding     *pgvector.Vector `json:"embedding,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EssayTraits holds every trait estimate produced by the essay analyzer,
// each in [0,1] ([0.10,0.94] after the display clamp).
type EssayTraits struct {
	Empathy            float64 `json:"empathy"`
	EthicalReasoning   float64 `json:"ethical_reasoning"`
	Authenticity       float64 `json:"authenticity"`
	Clarity            float64 `json:"clarity"`
	CriticalThinking   float64 `json:"critical_thinking"`
	Inclusiveness      float64 `json:"inclusiveness"`
	Accountability     float64 `json:"accountability"`
	VocabularyRichness float64 `json:"vocabulary_richness"`
	ToneBalance        float64 `json:"tone_balance"`
	LeadershipSignal   float64 `json:"leadership_signal"`
}

// Value returns the estimate for a display trait name.
func (t EssayTraits) Value(trait string) (float64, bool) {
	switch trait {
	case TraitEmpathy:
		return t.Empathy, true
	case TraitEthicalReasoning:
		return t.EthicalReasoning, true
	case TraitAuthenticity:
		return t.Authenticity, true
	case TraitClarity:
		return t.Clarity, true
	case TraitCriticalThinking:
		return t.CriticalThinking, true
	case TraitInclusiveness:
		return t.Inclusiveness, true
	case TraitAccountability:
		return t.Accountability, true
	default:
		return 0, false
	}
}

// Display trait names. DisplayTraits fixes the iteration order used when
// combining scores, which also decides ties in the top-5 ranking.
const (
	TraitEmpathy          = "empathy"
	TraitEthicalReasoning = "ethical_reasoning"
	TraitAuthenticity     = "authenticity"
	TraitCriticalThinking = "critical_thinking"
	TraitClarity          = "clarity"
	TraitInclusiveness    = "inclusiveness"
	TraitAccountability   = "accountability"
)

var DisplayTraits = []string{
	TraitEmpathy,
	TraitEthicalReasoning,
	TraitAuthenticity,
	TraitCriticalThinking,
	TraitClarity,
	TraitInclusiveness,
	TraitAccountability,
}

// SubtraitPair is the fixed human-readable label pair shown for a display
// trait: one label from the MCQ side, one from the essay side.
type SubtraitPair struct {
	MCQ   string `json:"mcq"`
	Essay string `json:"essay"`
}

var subtraitLabels = map[string]SubtraitPair{
	TraitEmpathy:          {MCQ: "Sensitivity", Essay: "Compassion"},
	TraitEthicalReasoning: {MCQ: "Fairness", Essay: "Judgment"},
	TraitAuthenticity:     {MCQ: "Consistency", Essay: "Honesty"},
	TraitCriticalThinking: {MCQ: "Logic", Essay: "Problem Solving"},
	TraitInclusiveness:    {MCQ: "Openness", Essay: "Respect for Diversity"},
	TraitAccountability:   {MCQ: "Responsibility", Essay: "Ownership"},
	TraitClarity:          {MCQ: "Understanding", Essay: "Precision"},
}

// SubtraitLabels returns the fixed label pair for a display trait.
func SubtraitLabels(trait string) (SubtraitPair, bool) {
	pair, ok := subtraitLabels[trait]
	return pair, ok
}

// EssaySnapshot is the intermediate essay result parked on the progress
// record between the essay stage and finalization.
type EssaySnapshot struct {
	EssayScore float64     `json:"essay_score"`
	Traits     EssayTraits `json:"traits"`
	Tone       string      `json:"tone"`
	Comment    string      `json:"ai_comment"`
}

// EssayAnalysis is the full analyzer output returned to the caller.
type EssayAnalysis struct {
	Authenticity     float64     `json:"authenticity"`
	EmpathySignal    float64     `json:"empathy_signal"`
	EthicalReasoning float64     `json:"ethical_reasoning"`
	Tone             string      `json:"tone"`
	FinalScore       float64     `json:"final_ai_score"`
	Traits           EssayTraits `json:"traits"`
	Comment          string      `json:"ai_comment"`
}

// Snapshot converts an analysis into the persisted intermediate form.
func (a EssayAnalysis) Snapshot() EssaySnapshot {
	return EssaySnapshot{
		EssayScore: a.FinalScore,
		Traits:     a.Traits,
		Tone:       a.Tone,
		Comment:    a.Comment,
	}
}

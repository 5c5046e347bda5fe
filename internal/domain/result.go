package domain

import "time"

// Verdict labels for the final 0-100 score bands.
const (
	VerdictOutstanding = "Outstanding Integrity"
	VerdictStrong      = "Strong Integrity"
	VerdictModerate    = "Moderate Integrity"
	VerdictNeedsWork   = "Needs Improvement"
)

// VerdictFor maps a final score to its verdict label.
func VerdictFor(score float64) string {
	switch {
	case score >= 85:
		return VerdictOutstanding
	case score >= 70:
		return VerdictStrong
	case score >= 50:
		return VerdictModerate
	default:
		return VerdictNeedsWork
	}
}

// TraitBreakdown is one ranked entry of the final report: the combined trait
// total plus the clamped per-source components and their subtrait labels.
type TraitBreakdown struct {
	Trait         string  `json:"trait"`
	Score         float64 `json:"score"`
	MCQScore      float64 `json:"mcq_score"`
	EssayScore    float64 `json:"essay_score"`
	MCQSubtrait   string  `json:"mcq_subtrait"`
	EssaySubtrait string  `json:"essay_subtrait"`
}

// FinalResult is the composite assessment outcome. TopTraits is ordered
// highest first and always holds at most five entries.
type FinalResult struct {
	UserID     string           `json:"user_id"`
	FinalScore float64          `json:"final_integrity_score"`
	Verdict    string           `json:"verdict"`
	TopTraits  []TraitBreakdown `json:"top_traits"`
	CreatedAt  time.Time        `json:"created_at"`
}

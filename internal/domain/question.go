package domain

// AgeGroupAll marks a question as applicable to every age range.
const AgeGroupAll = "all"

// Question is an immutable MCQ bank item. GenderSpecific is empty when the
// question applies to any gender; ReverseScore inverts the Likert value
// (answer v contributes 6-v).
type Question struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	Trait          string   `json:"trait"`
	ProfessionTags []string `json:"profession_tags"`
	AgeGroup       string   `json:"age_group"`
	GenderSpecific string   `json:"gender_specific,omitempty"`
	Weight         float64  `json:"weight"`
	ReverseScore   bool     `json:"reverse_score"`
}

// MatchesDemographics reports whether a question's age/gender targeting
// accepts the given user attributes.
func (q Question) MatchesDemographics(ageRange, gender string) bool {
	if q.AgeGroup != AgeGroupAll && q.AgeGroup != ageRange {
		return false
	}
	return q.GenderSpecific == "" || q.GenderSpecific == gender
}

// HasProfession reports whether the question is tagged for the profession.
func (q Question) HasProfession(profession string) bool {
	for _, tag := range q.ProfessionTags {
		if tag == profession {
			return true
		}
	}
	return false
}

// UserResponse is one stored MCQ answer (raw value already reverse-adjusted
// to 1..5). Replaced wholesale on resubmission.
type UserResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	Answer     int    `json:"answer"`
}

// TraitScore is the per-trait MCQ average for a user, in [0,5].
type TraitScore struct {
	UserID string  `json:"user_id"`
	Trait  string  `json:"trait"`
	Score  float64 `json:"score"`
}

package domain

import "time"

// VRQuestion is a spoken-interview prompt tagged with its thematic pillar.
type VRQuestion struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	PillarKey  string   `json:"pillar_key"`
	PillarName string   `json:"pillar_name"`
	Tags       []string `json:"tags,omitempty"`
}

// VRFeatures are the delivery features captured with each spoken answer.
type VRFeatures struct {
	SpeechRateWPS   float64 `json:"speech_rate_wps"`
	AvgPauseSec     float64 `json:"avg_pause_sec"`
	ChallengePassed bool    `json:"challenge_passed"`
	DurationSec     float64 `json:"duration_sec,omitempty"`
}

// VRAnswer is one recorded answer inside a session.
type VRAnswer struct {
	QuestionID string     `json:"question_id"`
	PillarKey  string     `json:"pillar_key,omitempty"`
	Transcript string     `json:"transcript"`
	Features   VRFeatures `json:"features"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// VRSession tracks one interview run. A session becomes immutable once
// CompletedAt is set.
type VRSession struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Scenario    string     `json:"scenario"`
	Answers     []VRAnswer `json:"answers"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the session has been closed for answers.
func (s VRSession) Completed() bool {
	return s.CompletedAt != nil
}

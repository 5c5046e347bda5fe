package domain

import "time"

// Status is the assessment stage marker. The order below is total and
// transitions only ever move forward.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusMCQDone    Status = "MCQ_DONE"
	StatusEssayDone  Status = "ESSAY_DONE"
	StatusVRDone     Status = "VR_DONE"
	StatusFinalized  Status = "FINALIZED"
)

var statusOrder = []Status{
	StatusNotStarted,
	StatusMCQDone,
	StatusEssayDone,
	StatusVRDone,
	StatusFinalized,
}

// Index returns the position of the status in the stage order, -1 for an
// unknown value.
func (s Status) Index() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether the value is one of the five known stages.
func (s Status) Valid() bool {
	return s.Index() >= 0
}

// AtLeast reports whether s is at or past the other stage.
func (s Status) AtLeast(other Status) bool {
	return s.Index() >= other.Index()
}

// Advance returns the saturated forward transition: target when it is ahead
// of s, otherwise s unchanged. Backward moves are silent no-ops so retries
// and duplicate calls are safe.
func (s Status) Advance(target Status) Status {
	if !target.Valid() {
		return s
	}
	if target.Index() >= s.Index() {
		return target
	}
	return s
}

// Progress is the single per-user stage record. EssaySnapshot and VRScore
// are owned by this record until finalization consumes them.
type Progress struct {
	UserID        string         `json:"user_id"`
	Status        Status         `json:"status"`
	EssaySnapshot *EssaySnapshot `json:"essay_snapshot,omitempty"`
	VRScore       *float64       `json:"vr_score,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

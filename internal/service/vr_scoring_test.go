package service

import (
	"strings"
	"testing"

	"protopia/internal/domain"
)

func vrAnswer(words int, wps, pause float64) domain.VRAnswer {
	return domain.VRAnswer{
		Transcript: strings.TrimSpace(strings.Repeat("word ", words)),
		Features:   domain.VRFeatures{SpeechRateWPS: wps, AvgPauseSec: pause},
	}
}

func TestScoreVRAnswer_Tiers(t *testing.T) {
	cases := []struct {
		name string
		ans  domain.VRAnswer
		want float64
	}{
		{"long fluent answer", vrAnswer(150, 2.0, 0.5), 10.0},   // 6 + 3 + 1
		{"mid answer", vrAnswer(60, 2.0, 0.5), 8.0},             // 4 + 3 + 1
		{"slow hesitant answer", vrAnswer(35, 0.6, 1.5), 4.5},   // 3 + 1 + 0.5
		{"one word answer", vrAnswer(1, 0.1, 3.0), 1.0},         // 1 + 0 + 0
		{"short but steady", vrAnswer(20, 1.5, 0.3), 6.0},       // 2 + 3 + 1
		{"rushed delivery", vrAnswer(90, 4.5, 0.5), 7.0},        // 5 + 1 + 1
		{"boundary at 120 words", vrAnswer(120, 3.2, 1.9), 9.5}, // 6 + 3 + 0.5
	}
	for _, tc := range cases {
		if got := scoreVRAnswer(tc.ans); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestScoreVRAnswer_SpeechRateFallback(t *testing.T) {
	// No reported rate: derive words/duration, 100 words over 50s is 2 wps.
	ans := domain.VRAnswer{
		Transcript: strings.TrimSpace(strings.Repeat("word ", 100)),
		Features:   domain.VRFeatures{DurationSec: 50},
	}
	// 5 (length) + 3 (derived rate) + 1 (default 0.5s pause).
	if got := scoreVRAnswer(ans); got != 9.0 {
		t.Fatalf("expected 9.0 with derived speech rate, got %v", got)
	}
}

func TestScoreVRAnswer_MissingDurationDefaultsToOneSecond(t *testing.T) {
	// 40 words with no duration or rate reads as 40 wps: outside every band.
	ans := domain.VRAnswer{Transcript: strings.TrimSpace(strings.Repeat("word ", 40))}
	// 3 (length) + 0 (rate) + 1 (default pause).
	if got := scoreVRAnswer(ans); got != 4.0 {
		t.Fatalf("expected 4.0, got %v", got)
	}
}

func TestScoreVRSession_EmptyIsZero(t *testing.T) {
	if got := scoreVRSession(nil); got != 0.0 {
		t.Fatalf("expected 0.0 for no answers, got %v", got)
	}
}

func TestScoreVRSession_SumsFirstFiveOnly(t *testing.T) {
	answers := make([]domain.VRAnswer, 0, 7)
	for i := 0; i < 7; i++ {
		answers = append(answers, vrAnswer(150, 2.0, 0.5))
	}
	// Seven maximal answers still cap at five scored slots.
	if got := scoreVRSession(answers); got != 50.0 {
		t.Fatalf("expected 50.0, got %v", got)
	}
}

func TestScoreVRSession_PartialSession(t *testing.T) {
	answers := []domain.VRAnswer{
		vrAnswer(150, 2.0, 0.5),
		vrAnswer(60, 2.0, 0.5),
	}
	if got := scoreVRSession(answers); got != 18.0 {
		t.Fatalf("expected 18.0 for two answers, got %v", got)
	}
}

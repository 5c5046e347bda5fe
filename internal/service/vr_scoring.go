package service

import (
	"strings"

	"protopia/internal/domain"
)

// vrAnswerSlots is the fixed number of scored interview slots; missing
// answers score 0.
const vrAnswerSlots = 5

// scoreVRAnswer applies the heuristic 0-10 rubric to one spoken answer:
// a length tier from the transcript word count, a fluency tier from speech
// rate proximity to the ~2 words/sec ideal, and a pause tier.
func scoreVRAnswer(ans domain.VRAnswer) float64 {
	words := 0
	for _, w := range strings.Fields(ans.Transcript) {
		if strings.TrimSpace(w) != "" {
			words++
		}
	}

	dur := ans.Features.DurationSec
	if dur <= 0 {
		dur = 1.0
	}
	wps := ans.Features.SpeechRateWPS
	if wps == 0 {
		wps = float64(words) / dur
	}
	pauses := ans.Features.AvgPauseSec
	if pauses == 0 {
		pauses = 0.5
	}

	score := 0.0
	switch {
	case words >= 120:
		score += 6.0
	case words >= 80:
		score += 5.0
	case words >= 50:
		score += 4.0
	case words >= 30:
		score += 3.0
	case words >= 15:
		score += 2.0
	default:
		score += 1.0
	}

	switch {
	case wps >= 1.2 && wps <= 3.2:
		score += 3.0
	case wps >= 0.8 && wps <= 4.0:
		score += 2.0
	case wps >= 0.5 && wps <= 5.0:
		score += 1.0
	}

	if pauses < 0.8 {
		score += 1.0
	} else if pauses < 2.0 {
		score += 0.5
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}

// scoreVRSession sums the first five recorded answers, padding missing slots
// with zero, clamped to [0,50].
func scoreVRSession(answers []domain.VRAnswer) float64 {
	if len(answers) > vrAnswerSlots {
		answers = answers[:vrAnswerSlots]
	}
	total := 0.0
	for _, a := range answers {
		total += scoreVRAnswer(a)
	}
	if total < 0 {
		total = 0
	}
	if total > 50 {
		total = 50
	}
	return round2(total)
}

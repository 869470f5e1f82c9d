package selection

import (
	"strings"

	"tubeget/internal/scoring"
)

// bestAudio is the audio component paired with every bare video choice.
const bestAudio = "bestaudio"

// Request is the resolved stream-selection expression for one run. Exactly
// one request is active per run.
type Request struct {
	Expression string
	Automatic  bool
}

// Automatic picks the highest-scoring non-audio-only candidate and pairs it
// with a best-available-audio request. Ties break by catalog order: the first
// occurrence wins. When no candidate scored above zero (empty or unreadable
// catalog), the configured fallback expression is used instead of failing.
func Automatic(scored []scoring.ScoredStream, fallback string) Request {
	best := 0
	index := -1
	for i, candidate := range scored {
		if candidate.Breakdown.Total > best {
			best = candidate.Breakdown.Total
			index = i
		}
	}
	if index < 0 {
		return Request{Expression: fallback, Automatic: true}
	}
	return Request{Expression: scored[index].Stream.ID + "+" + bestAudio, Automatic: true}
}

// Explicit resolves a user-supplied expression. A bare numeric stream id gets
// the audio component appended, turning a video-only expression into a
// video+audio pair; anything else is treated as an already-compound
// expression and passes through unmodified.
func Explicit(expression string) Request {
	expression = strings.TrimSpace(expression)
	if isNumeric(expression) {
		expression += "+" + bestAudio
	}
	return Request{Expression: expression}
}

// FromInput turns one line of interactive input into a request: empty input
// accepts the automatic choice, anything else is an explicit expression.
func FromInput(input string, scored []scoring.ScoredStream, fallback string) Request {
	input = strings.TrimSpace(input)
	if input == "" {
		return Automatic(scored, fallback)
	}
	return Explicit(input)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

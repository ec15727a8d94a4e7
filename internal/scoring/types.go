package scoring

import (
	"encoding/json"

	"example.com/mastermind/internal/mastermind"
)

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ScoreRequest is the body of POST /api/score and the payload of a "score"
// WS message.
type ScoreRequest struct {
	Secret mastermind.Sequence `json:"secret"`
	Guess  mastermind.Sequence `json:"guess"`
}

type ValidateRequest struct {
	Sequence mastermind.Sequence `json:"sequence"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// Result is a Score plus whether the input passed validation. Invalid input
// still scores (0, 0); Valid and Reason let callers tell it apart from a
// guess with no matches.
type Result struct {
	mastermind.Score `yaml:",inline"`
	Valid            bool   `json:"valid" yaml:"valid"`
	Reason           string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

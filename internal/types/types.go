package types

import (
	"time"

	"github.com/innovatorlabs/itype/internal/quiz"
)

// EvaluateRequest is the payload for the evaluate endpoint. Answers are
// keyed by question ID; Scenarios maps scenario ID to the chosen option ID.
type EvaluateRequest struct {
	Answers   map[string]quiz.Answer `json:"answers" binding:"required"`
	Scenarios map[string]string      `json:"scenarios,omitempty"`
	Simulate  bool                   `json:"simulate,omitempty"`
	Runs      int                    `json:"runs,omitempty"`
	Noise     float64                `json:"noise,omitempty"`
}

// EvaluateResponse wraps an evaluation with its stored result ID so clients
// can fetch or delete it later.
type EvaluateResponse struct {
	ID         string          `json:"id"`
	Evaluation quiz.Evaluation `json:"evaluation"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ErrorResponse is the uniform error body for API failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

package storage

import (
	"time"

	"github.com/google/uuid"

	"apim/internal/persona"
)

// Record types written to the event log.
const (
	TypeRun      = "run"
	TypeFeedback = "feedback"
	TypeShadow   = "shadow"
)

// Prediction is the shadow classifier output stored next to a run.
type Prediction struct {
	OK            bool      `json:"ok"`
	Reason        string    `json:"reason,omitempty"`
	Persona       string    `json:"pred_persona,omitempty"`
	Confidence    float64   `json:"confidence,omitempty"`
	Probabilities []float64 `json:"probs,omitempty"`
}

// Record is one line of the event log. Which fields are set depends on
// Type: runs carry answers and result, feedback carries rating and
// comment, shadow carries the rules persona and the prediction.
type Record struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"ts"`

	Answers *persona.Answers `json:"answers,omitempty"`
	Result  *persona.Result  `json:"result,omitempty"`

	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`

	RulesPersona string      `json:"rules_persona,omitempty"`
	Prediction   *Prediction `json:"prediction,omitempty"`
}

// Recorder abstracts persistence of the event log.
// Load returns records in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Append(rec Record) error
	Load() ([]Record, error)
}

// NewRunRecord stamps a questionnaire run with a fresh run id.
func NewRunRecord(ts time.Time, a persona.Answers, res persona.Result) Record {
	return Record{
		Type:      TypeRun,
		RunID:     uuid.NewString(),
		Timestamp: ts.UTC(),
		Answers:   &a,
		Result:    &res,
	}
}

func NewFeedbackRecord(ts time.Time, runID string, rating int, comment string) Record {
	return Record{
		Type:      TypeFeedback,
		RunID:     runID,
		Timestamp: ts.UTC(),
		Rating:    rating,
		Comment:   comment,
	}
}

func NewShadowRecord(ts time.Time, runID, rulesPersona string, p Prediction) Record {
	return Record{
		Type:         TypeShadow,
		RunID:        runID,
		Timestamp:    ts.UTC(),
		RulesPersona: rulesPersona,
		Prediction:   &p,
	}
}

// FilterType returns the records of one type, keeping order.
func FilterType(records []Record, typ string) []Record {
	var out []Record
	for _, r := range records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

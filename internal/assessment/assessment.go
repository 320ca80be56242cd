// Package assessment runs the persona questionnaire end to end: classify,
// recommend, log the run and shadow-predict with the dojo classifier.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"apim/internal/dojo"
	"apim/internal/persona"
	"apim/internal/storage"
)

var ErrEmptyRunID = errors.New("run id is required")

// Predictor is the shadow classifier.
type Predictor interface {
	Predict(a persona.Answers) storage.Prediction
}

type Assessment struct {
	RunID           string                  `json:"run_id"`
	Answers         persona.Answers         `json:"answers"`
	Result          persona.Result          `json:"result"`
	Recommendations persona.Recommendations `json:"recommendations"`
	Weaknesses      []string                `json:"weaknesses"`
	ShowPrinciples  bool                    `json:"show_principles"`
	Shadow          storage.Prediction      `json:"shadow"`
}

type Service struct {
	recorder  storage.Recorder
	predictor Predictor
	now       func() time.Time
}

// New builds the service. A nil predictor disables shadow predictions.
func New(recorder storage.Recorder, predictor Predictor, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{recorder: recorder, predictor: predictor, now: now}
}

// Assess scores the answers and stores the run. Shadow prediction never
// fails the run: problems are logged and the rules result is returned.
func (s *Service) Assess(ctx context.Context, a persona.Answers) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}
	a = a.Clamp()
	res := persona.Classify(a)
	run := storage.NewRunRecord(s.now(), a, res)
	if err := s.recorder.Append(run); err != nil {
		return Assessment{}, fmt.Errorf("save run: %w", err)
	}
	log.Printf("🧭 Assessment %s: %s (score %d)", run.RunID, res.Persona, res.Score)

	out := Assessment{
		RunID:           run.RunID,
		Answers:         a,
		Result:          res,
		Recommendations: persona.Recommend(res.Persona, a),
		Weaknesses:      persona.Weaknesses(a),
		ShowPrinciples:  persona.ShowPrinciples(res.Persona),
		Shadow:          storage.Prediction{OK: false, Reason: dojo.ReasonNoModel},
	}
	if s.predictor != nil {
		out.Shadow = s.shadow(run.RunID, res.Persona, a)
	}
	return out, nil
}

func (s *Service) shadow(runID, rulesPersona string, a persona.Answers) (pred storage.Prediction) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Shadow prediction panicked for %s: %v", runID, r)
			pred = storage.Prediction{OK: false, Reason: "shadow_failed"}
		}
	}()
	pred = s.predictor.Predict(a)
	if err := s.recorder.Append(storage.NewShadowRecord(s.now(), runID, rulesPersona, pred)); err != nil {
		log.Printf("⚠️ Failed to save shadow record for %s: %v", runID, err)
	}
	return pred
}

// SaveFeedback stores a 1-5 rating for a run. Out of range ratings are
// clamped and the comment is trimmed.
func (s *Service) SaveFeedback(ctx context.Context, runID string, rating int, comment string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ErrEmptyRunID
	}
	rating = max(1, min(5, rating))
	rec := storage.NewFeedbackRecord(s.now(), runID, rating, strings.TrimSpace(comment))
	if err := s.recorder.Append(rec); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	log.Printf("⭐ Feedback for %s: %d", runID, rating)
	return nil
}

// Records returns the full event log.
func (s *Service) Records(ctx context.Context) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.recorder.Load()
}

package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"apim/internal/persona"
	"apim/internal/storage"
)

type memRecorder struct {
	mu      sync.Mutex
	records []storage.Record
	failOn  string
}

func (m *memRecorder) Append(rec storage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Type == m.failOn {
		return errors.New("disk full")
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecorder) Load() ([]storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.Record(nil), m.records...), nil
}

type fixedPredictor struct{ pred storage.Prediction }

func (f fixedPredictor) Predict(persona.Answers) storage.Prediction { return f.pred }

type panicPredictor struct{}

func (panicPredictor) Predict(persona.Answers) storage.Prediction { panic("boom") }

func clock() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }

func TestAssess_RecordsRunAndShadow(t *testing.T) {
	rec := &memRecorder{}
	pred := storage.Prediction{OK: true, Persona: persona.FinancialGenius, Confidence: 0.7, Probabilities: []float64{0.1, 0.1, 0.7, 0.1}}
	svc := New(rec, fixedPredictor{pred}, clock)

	out, err := svc.Assess(context.Background(), persona.Answers{SavingsPct: 80, TracksExpenses: true, EmergencyFundMonths: 6})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if out.Answers.SavingsPct != 50 {
		t.Fatalf("answers not clamped: %+v", out.Answers)
	}
	if out.Result.Persona != persona.BossOfBosses || out.ShowPrinciples {
		t.Fatalf("unexpected result: %+v", out.Result)
	}
	if out.RunID == "" || len(out.Recommendations.Immediate) == 0 {
		t.Fatalf("missing run id or plan: %+v", out)
	}
	if !out.Shadow.OK || out.Shadow.Persona != persona.FinancialGenius {
		t.Fatalf("shadow not returned: %+v", out.Shadow)
	}

	records, _ := svc.Records(context.Background())
	if len(records) != 2 || records[0].Type != storage.TypeRun || records[1].Type != storage.TypeShadow {
		t.Fatalf("unexpected log: %+v", records)
	}
	if records[1].RunID != out.RunID || records[1].RulesPersona != persona.BossOfBosses {
		t.Fatalf("shadow record mismatch: %+v", records[1])
	}
	if !records[0].Timestamp.Equal(clock()) {
		t.Fatalf("timestamp not from clock: %v", records[0].Timestamp)
	}
}

func TestAssess_ShadowFailuresNeverSurface(t *testing.T) {
	rec := &memRecorder{failOn: storage.TypeShadow}
	svc := New(rec, fixedPredictor{storage.Prediction{OK: true, Persona: persona.ImpulseBuyer}}, clock)
	if _, err := svc.Assess(context.Background(), persona.Answers{}); err != nil {
		t.Fatalf("shadow save failure leaked: %v", err)
	}

	svc = New(&memRecorder{}, panicPredictor{}, clock)
	out, err := svc.Assess(context.Background(), persona.Answers{})
	if err != nil {
		t.Fatalf("shadow panic leaked: %v", err)
	}
	if out.Shadow.OK {
		t.Fatalf("panicking predictor should report not ok")
	}
}

func TestAssess_RunSaveFailure(t *testing.T) {
	svc := New(&memRecorder{failOn: storage.TypeRun}, nil, clock)
	if _, err := svc.Assess(context.Background(), persona.Answers{}); err == nil {
		t.Fatalf("expected run save error")
	}
}

func TestSaveFeedback(t *testing.T) {
	rec := &memRecorder{}
	svc := New(rec, nil, clock)
	ctx := context.Background()

	if err := svc.SaveFeedback(ctx, "  ", 3, ""); !errors.Is(err, ErrEmptyRunID) {
		t.Fatalf("want ErrEmptyRunID, got %v", err)
	}
	if err := svc.SaveFeedback(ctx, "run-1", 9, "  muy útil  "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.SaveFeedback(ctx, "run-1", -2, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.records[0].Rating != 5 || rec.records[0].Comment != "muy útil" {
		t.Fatalf("unexpected first feedback: %+v", rec.records[0])
	}
	if rec.records[1].Rating != 1 {
		t.Fatalf("rating not clamped up: %+v", rec.records[1])
	}
}

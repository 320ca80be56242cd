package dojo

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"apim/internal/persona"
	"apim/internal/storage"
)

func runs(t *testing.T) []storage.Record {
	t.Helper()
	var out []storage.Record
	ts := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	for _, savings := range []int{0, 10, 20, 40} {
		for _, impulse := range []int{0, 3, 8} {
			for _, fund := range []int{0, 3, 6} {
				a := persona.Answers{SavingsPct: savings, ImpulseBuysPerWeek: impulse, TracksExpenses: fund > 0, EmergencyFundMonths: fund}
				out = append(out, storage.NewRunRecord(ts, a, persona.Classify(a)))
			}
		}
	}
	return out
}

func TestFeatures(t *testing.T) {
	got := Features(persona.Answers{SavingsPct: 25, ImpulseBuysPerWeek: 7, TracksExpenses: true, EmergencyFundMonths: 6})
	want := [4]float64{0.5, 0.5, 1, 0.5}
	if got != want {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestDemoForwardPass(t *testing.T) {
	a := persona.Answers{SavingsPct: 10, ImpulseBuysPerWeek: 2, TracksExpenses: true, EmergencyFundMonths: 1}
	out, mse := DemoForwardPass(a)
	if len(out) != 3 {
		t.Fatalf("want 3 outputs, got %d", len(out))
	}
	if mse <= 0 {
		t.Fatalf("untrained net should miss the target, mse=%v", mse)
	}
	out2, mse2 := DemoForwardPass(a)
	if !reflect.DeepEqual(out, out2) || mse != mse2 {
		t.Fatalf("demo pass must be deterministic")
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	rep, net, err := Train(runs(t)[:MinSamples-1], TrainOptions{})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if rep.OK || rep.Reason != ReasonInsufficientData || rep.N != MinSamples-1 || net != nil {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestDataset_SkipsNonRuns(t *testing.T) {
	recs := runs(t)[:2]
	recs = append(recs,
		storage.NewFeedbackRecord(time.Now(), recs[0].RunID, 5, ""),
		storage.Record{Type: storage.TypeRun, Answers: &persona.Answers{}, Result: &persona.Result{Persona: "otro"}},
	)
	xs, ys := Dataset(recs)
	if len(xs) != 2 || len(ys) != 2 {
		t.Fatalf("want 2 samples, got %d", len(xs))
	}
}

func TestTrain_SavesAndPredicts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "dojo.json")
	data := runs(t)
	xs, ys := Dataset(data)
	before := NewNet(newRand(1)).Loss(xs, ys)

	rep, net, err := Train(data, TrainOptions{Epochs: 300, BatchSize: 8, LearningRate: 0.01, ModelPath: path})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !rep.OK || rep.N != len(data) || rep.ModelPath != path {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if after := net.Loss(xs, ys); after >= before {
		t.Fatalf("training did not reduce loss: before=%.4f after=%.4f", before, after)
	}

	p := NewPredictor(path)
	pred := p.Predict(persona.Answers{SavingsPct: 40, TracksExpenses: true, EmergencyFundMonths: 6})
	if !pred.OK || persona.Index(pred.Persona) < 0 {
		t.Fatalf("unexpected prediction: %+v", pred)
	}
	var sum float64
	for _, v := range pred.Probabilities {
		sum += v
	}
	if len(pred.Probabilities) != 4 || math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities must sum to 1, got %v", pred.Probabilities)
	}
	if pred.Confidence != pred.Probabilities[persona.Index(pred.Persona)] {
		t.Fatalf("confidence must be the arg-max probability")
	}
}

func TestPredictor_NoModel(t *testing.T) {
	p := NewPredictor(filepath.Join(t.TempDir(), "missing.json"))
	pred := p.Predict(persona.Answers{})
	if pred.OK || pred.Reason != ReasonNoModel {
		t.Fatalf("want no_model, got %+v", pred)
	}
	p.Use(NewNet(newRand(3)))
	if !p.Predict(persona.Answers{}).OK {
		t.Fatalf("installed net should predict")
	}
}

func TestLoadNet_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadNet(filepath.Join(dir, "none.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist error, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"in":4,"hidden":2,"out":4}`), 0o644)
	if _, err := LoadNet(bad); err == nil {
		t.Fatalf("expected shape error")
	}
}

func TestGradients_MatchFiniteDifferences(t *testing.T) {
	data := runs(t)[:6]
	xs, ys := Dataset(data)
	net := NewNet(newRand(5))

	grads, loss := net.gradients(xs, ys)
	if math.Abs(loss-net.Loss(xs, ys)) > 1e-12 {
		t.Fatalf("batch loss %v differs from Loss %v", loss, net.Loss(xs, ys))
	}

	const h = 1e-6
	for pi, p := range net.params() {
		if len(grads[pi]) != len(p) {
			t.Fatalf("param %d: gradient size %d, want %d", pi, len(grads[pi]), len(p))
		}
		for _, j := range []int{0, len(p) / 2, len(p) - 1} {
			orig := p[j]
			p[j] = orig + h
			up := net.Loss(xs, ys)
			p[j] = orig - h
			down := net.Loss(xs, ys)
			p[j] = orig
			num := (up - down) / (2 * h)
			if math.Abs(num-grads[pi][j]) > 1e-5 {
				t.Errorf("param %d[%d]: analytic %v, numeric %v", pi, j, grads[pi][j], num)
			}
		}
	}
}

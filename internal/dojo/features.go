// Package dojo holds the small neural classifier that learns the rules
// persona from logged runs and predicts it in shadow mode.
package dojo

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"apim/internal/persona"
)

// Features scales the answers to roughly [0,1] in the order
// savings, impulse buys, tracks expenses, emergency fund.
func Features(a persona.Answers) [4]float64 {
	tracks := 0.0
	if a.TracksExpenses {
		tracks = 1
	}
	return [4]float64{
		float64(a.SavingsPct) / 50,
		float64(a.ImpulseBuysPerWeek) / 14,
		tracks,
		float64(a.EmergencyFundMonths) / 12,
	}
}

var demoTarget = [3]float64{0.6, 0.3, 0.7}

type dense struct {
	w *mat.Dense
	b []float64
}

func newDense(in, out int, rng *rand.Rand) dense {
	w := make([]float64, in*out)
	for i := range w {
		w[i] = 0.01 * rng.NormFloat64()
	}
	return dense{w: mat.NewDense(in, out, w), b: make([]float64, out)}
}

func (d dense) forward(x []float64) []float64 {
	var out mat.Dense
	out.Mul(mat.NewDense(1, len(x), x), d.w)
	row := append([]float64(nil), out.RawRowView(0)...)
	floats.Add(row, d.b)
	return row
}

func relu(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Max(0, v)
	}
	return out
}

var demoLayer1, demoLayer2 = func() (dense, dense) {
	rng := newRand(7)
	return newDense(4, 6, rng), newDense(6, 3, rng)
}()

// DemoForwardPass runs the answers through a fixed untrained 4-6-3 network
// and returns its three outputs with their mean squared error against a
// demo target. It only illustrates a forward pass.
func DemoForwardPass(a persona.Answers) ([]float64, float64) {
	x := Features(a)
	out := demoLayer2.forward(relu(demoLayer1.forward(x[:])))
	var mse float64
	for i, v := range out {
		d := v - demoTarget[i]
		mse += d * d
	}
	return out, mse / float64(len(out))
}

func newRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

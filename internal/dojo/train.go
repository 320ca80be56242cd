package dojo

import (
	"log"
	"math"

	"apim/internal/persona"
	"apim/internal/storage"
)

const (
	MinSamples = 8

	ReasonInsufficientData = "insufficient_data"
	ReasonNoModel          = "no_model"
)

type TrainOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         int64
	// ModelPath is where weights are saved. Empty skips saving.
	ModelPath string
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.Epochs <= 0 {
		o.Epochs = 20
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 8
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 1e-3
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
	return o
}

type TrainReport struct {
	OK        bool    `json:"ok"`
	Reason    string  `json:"reason,omitempty"`
	N         int     `json:"n"`
	LastLoss  float64 `json:"last_loss,omitempty"`
	ModelPath string  `json:"model_path,omitempty"`
}

// Dataset extracts features and persona labels from run records. Runs
// without answers or with an unknown persona are skipped.
func Dataset(records []storage.Record) ([][4]float64, []int) {
	var xs [][4]float64
	var ys []int
	for _, r := range records {
		if r.Type != storage.TypeRun || r.Answers == nil || r.Result == nil {
			continue
		}
		label := persona.Index(r.Result.Persona)
		if label < 0 {
			continue
		}
		xs = append(xs, Features(*r.Answers))
		ys = append(ys, label)
	}
	return xs, ys
}

// Train fits a fresh Net on the logged runs with mini-batch Adam on
// softmax cross-entropy. With fewer than MinSamples runs nothing is
// trained and the returned Net is nil. A save failure is returned as an
// error alongside the trained Net.
func Train(records []storage.Record, opts TrainOptions) (TrainReport, *Net, error) {
	opts = opts.withDefaults()
	xs, ys := Dataset(records)
	if len(xs) < MinSamples {
		return TrainReport{OK: false, Reason: ReasonInsufficientData, N: len(xs)}, nil, nil
	}

	rng := newRand(opts.Seed)
	net := NewNet(rng)
	opt := newAdam(net.params(), opts.LearningRate)

	var last float64
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		order := rng.Perm(len(xs))
		for start := 0; start < len(order); start += opts.BatchSize {
			batch := order[start:min(start+opts.BatchSize, len(order))]
			bx := make([][4]float64, len(batch))
			by := make([]int, len(batch))
			for i, idx := range batch {
				bx[i], by[i] = xs[idx], ys[idx]
			}
			grads, loss := net.gradients(bx, by)
			opt.step(net.params(), grads)
			last = loss
		}
	}

	rep := TrainReport{OK: true, N: len(xs), LastLoss: last}
	if opts.ModelPath != "" {
		if err := net.Save(opts.ModelPath); err != nil {
			return rep, net, err
		}
		rep.ModelPath = opts.ModelPath
	}
	log.Printf("🥋 Dojo trained on %d runs, last loss %.4f", rep.N, rep.LastLoss)
	return rep, net, nil
}

// adam updates the raw parameter slices in place; the matrices in Net
// are views over the same memory.
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	m, v                  [][]float64
}

func newAdam(params [][]float64, lr float64) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
	a.m = a.zerosLike(params)
	a.v = a.zerosLike(params)
	return a
}

func (a *adam) zerosLike(params [][]float64) [][]float64 {
	out := make([][]float64, len(params))
	for i, p := range params {
		out[i] = make([]float64, len(p))
	}
	return out
}

func (a *adam) step(params, grads [][]float64) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for i, p := range params {
		m, v, g := a.m[i], a.v[i], grads[i]
		for j := range p {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			p[j] -= a.lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.eps)
		}
	}
}

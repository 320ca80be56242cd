package dojo

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Net is a 4-16-4 perceptron with a ReLU hidden layer. Weights are stored
// row-major by input so they can be viewed as gonum matrices in place.
type Net struct {
	In     int       `json:"in"`
	Hidden int       `json:"hidden"`
	Out    int       `json:"out"`
	W1     []float64 `json:"w1"`
	B1     []float64 `json:"b1"`
	W2     []float64 `json:"w2"`
	B2     []float64 `json:"b2"`
}

const (
	nIn     = 4
	nHidden = 16
	nOut    = 4
)

// NewNet initializes weights uniformly in ±1/sqrt(fan_in).
func NewNet(rng *rand.Rand) *Net {
	n := &Net{
		In: nIn, Hidden: nHidden, Out: nOut,
		W1: make([]float64, nIn*nHidden), B1: make([]float64, nHidden),
		W2: make([]float64, nHidden*nOut), B2: make([]float64, nOut),
	}
	fill := func(v []float64, fanIn int) {
		bound := 1 / math.Sqrt(float64(fanIn))
		for i := range v {
			v[i] = (rng.Float64()*2 - 1) * bound
		}
	}
	fill(n.W1, nIn)
	fill(n.B1, nIn)
	fill(n.W2, nHidden)
	fill(n.B2, nHidden)
	return n
}

func (n *Net) params() [][]float64 { return [][]float64{n.W1, n.B1, n.W2, n.B2} }

func (n *Net) validate() error {
	if n.In != nIn || n.Hidden != nHidden || n.Out != nOut {
		return fmt.Errorf("unexpected shape %d-%d-%d", n.In, n.Hidden, n.Out)
	}
	if len(n.W1) != nIn*nHidden || len(n.B1) != nHidden || len(n.W2) != nHidden*nOut || len(n.B2) != nOut {
		return fmt.Errorf("weight sizes do not match shape")
	}
	return nil
}

// weights views W1 and W2 as matrices sharing the parameter slices.
func (n *Net) weights() (w1, w2 *mat.Dense) {
	return mat.NewDense(n.In, n.Hidden, n.W1), mat.NewDense(n.Hidden, n.Out, n.W2)
}

// design stacks feature rows into an r×4 matrix.
func design(xs [][4]float64) *mat.Dense {
	data := make([]float64, 0, len(xs)*nIn)
	for _, x := range xs {
		data = append(data, x[:]...)
	}
	return mat.NewDense(len(xs), nIn, data)
}

func addBias(m *mat.Dense, b []float64) {
	m.Apply(func(_, j int, v float64) float64 { return v + b[j] }, m)
}

// forward returns the hidden pre-activations, the hidden activations and
// the output logits for every row of x.
func (n *Net) forward(x *mat.Dense) (pre, act, logits *mat.Dense) {
	w1, w2 := n.weights()

	pre = new(mat.Dense)
	pre.Mul(x, w1)
	addBias(pre, n.B1)

	act = new(mat.Dense)
	act.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, pre)

	logits = new(mat.Dense)
	logits.Mul(act, w2)
	addBias(logits, n.B2)
	return pre, act, logits
}

// softmaxRows turns every row of logits into a distribution.
func softmaxRows(logits *mat.Dense) *mat.Dense {
	r, c := logits.Dims()
	p := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		p.SetRow(i, softmax(logits.RawRowView(i)))
	}
	return p
}

// Probabilities returns the softmax over the four personas.
func (n *Net) Probabilities(x [4]float64) []float64 {
	_, _, logits := n.forward(design([][4]float64{x}))
	return softmax(logits.RawRowView(0))
}

// Loss is the mean cross-entropy over a labeled set.
func (n *Net) Loss(xs [][4]float64, ys []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	_, _, logits := n.forward(design(xs))
	p := softmaxRows(logits)
	var total float64
	for i, y := range ys {
		total += crossEntropy(p.RawRowView(i), y)
	}
	return total / float64(len(xs))
}

// gradients returns the mean cross-entropy of a batch and its gradient
// for every parameter, in params order.
func (n *Net) gradients(xs [][4]float64, ys []int) ([][]float64, float64) {
	x := design(xs)
	pre, act, logits := n.forward(x)
	_, w2 := n.weights()
	scale := 1 / float64(len(xs))

	dl := softmaxRows(logits)
	var loss float64
	for i, y := range ys {
		loss += crossEntropy(dl.RawRowView(i), y)
		dl.Set(i, y, dl.At(i, y)-1)
	}
	dl.Scale(scale, dl)

	var gW2 mat.Dense
	gW2.Mul(act.T(), dl)

	var dh mat.Dense
	dh.Mul(dl, w2.T())
	dh.Apply(func(i, j int, v float64) float64 {
		if pre.At(i, j) <= 0 {
			return 0
		}
		return v
	}, &dh)

	var gW1 mat.Dense
	gW1.Mul(x.T(), &dh)

	grads := [][]float64{gW1.RawMatrix().Data, colSums(&dh), gW2.RawMatrix().Data, colSums(dl)}
	return grads, loss * scale
}

func colSums(m *mat.Dense) []float64 {
	_, c := m.Dims()
	out := make([]float64, c)
	for j := range out {
		out[j] = mat.Sum(m.ColView(j))
	}
	return out
}

func softmax(logits []float64) []float64 {
	top := floats.Max(logits)
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - top)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

func crossEntropy(p []float64, y int) float64 {
	return -math.Log(math.Max(p[y], 1e-12))
}

// Save writes the weights as JSON, creating the parent directory.
func (n *Net) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure model dir: %w", err)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// LoadNet reads weights written by Save. A missing file yields an error
// matching os.ErrNotExist.
func LoadNet(path string) (*Net, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var n Net
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &n, nil
}

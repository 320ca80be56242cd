package dojo

import (
	"errors"
	"log"
	"os"
	"sync"

	"apim/internal/persona"
	"apim/internal/storage"
)

// Predictor serves shadow predictions from the latest trained weights.
// Weights are loaded lazily from disk until Use installs a net directly.
type Predictor struct {
	path string
	mu   sync.RWMutex
	net  *Net
}

func NewPredictor(modelPath string) *Predictor {
	return &Predictor{path: modelPath}
}

// Use swaps in a freshly trained net.
func (p *Predictor) Use(n *Net) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.net = n
}

func (p *Predictor) model() *Net {
	p.mu.RLock()
	n := p.net
	p.mu.RUnlock()
	if n != nil || p.path == "" {
		return n
	}

	loaded, err := LoadNet(p.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ Dojo model unavailable: %v", err)
		}
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.net == nil {
		p.net = loaded
	}
	return p.net
}

// Predict returns the arg-max persona with its confidence and the full
// distribution. Without a model it reports no_model.
func (p *Predictor) Predict(a persona.Answers) storage.Prediction {
	n := p.model()
	if n == nil {
		return storage.Prediction{OK: false, Reason: ReasonNoModel}
	}
	probs := n.Probabilities(Features(a))
	best := 0
	for i, v := range probs {
		if v > probs[best] {
			best = i
		}
	}
	return storage.Prediction{
		OK:            true,
		Persona:       persona.All[best],
		Confidence:    probs[best],
		Probabilities: probs,
	}
}

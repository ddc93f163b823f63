package metrics

import (
	"math"

	"github.com/san-kum/mobikin/internal/dynamo"
)

// Stability is the fraction of steps on which every state entry from index
// from onward stayed within threshold. With from set to the number of
// coordinates it bounds the speeds only.
type Stability struct {
	threshold  float64
	from       int
	violations int
	samples    int
}

func NewStability(threshold float64, from int) *Stability {
	return &Stability{threshold: threshold, from: from}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, _ dynamo.Control, _ float64) {
	s.samples++
	for i := s.from; i < len(x); i++ {
		if math.Abs(x[i]) > s.threshold {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

package control

import "github.com/san-kum/mobikin/internal/dynamo"

type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{dim: dim}
}

func (n *None) Compute(dynamo.State, float64) dynamo.Control {
	return make(dynamo.Control, n.dim)
}

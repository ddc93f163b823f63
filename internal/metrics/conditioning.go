package metrics

import (
	"math"

	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/tree"
)

// Conditioning records the worst condition number of the angle-rate map
// seen over a run, i.e. how close any three-angle joint came to gimbal lock.
// It realizes positions on its own digest.
type Conditioning struct {
	tree  *tree.Tree
	d     *digest.Digest
	worst float64
	node  int
	at    float64
}

func NewConditioning(t *tree.Tree) *Conditioning {
	return &Conditioning{tree: t, d: t.NewDigest(), node: -1}
}

func (c *Conditioning) Name() string { return "max_conditioning" }

func (c *Conditioning) Observe(x dynamo.State, _ dynamo.Control, t float64) {
	nq := c.tree.Layout().NQ
	if len(x) < nq {
		return
	}
	c.d.SetQ(x[:nq])
	c.tree.RealizePosition(c.d)
	v, node := c.tree.Conditioning(c.d)
	if node < 0 {
		return
	}
	if v > c.worst || math.IsInf(v, 1) {
		c.worst, c.node, c.at = v, node, t
	}
}

func (c *Conditioning) Value() float64 { return c.worst }

// Worst reports the body and time of the worst sample.
func (c *Conditioning) Worst() (node int, t float64) { return c.node, c.at }

func (c *Conditioning) Reset() {
	c.worst, c.node, c.at = 0, -1, 0
}

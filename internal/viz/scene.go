package viz

import (
	"math"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
	"github.com/san-kum/mobikin/internal/tree"
)

// Braille cells hold 2x4 dots; blank is U+2800.
const blank = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dots, Width*2 by Height*4.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.cells[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.cells[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for j := range row {
			row[j] = blank
		}
	}
}

// DrawLine is Bresenham's line.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Camera looks down its own -z axis from Distance. View maps ground
// coordinates into camera coordinates.
type Camera struct {
	View     spatial.Rotation
	Distance float64
	Zoom     float64
}

// NewCamera looks at the ground origin from an oblique angle with ground z up.
func NewCamera() *Camera {
	return &Camera{
		View:     spatial.RotationX(-1.1).Mul(spatial.RotationZ(-0.6)),
		Distance: 12,
		Zoom:     1,
	}
}

// Orbit turns the scene about one of the camera's axes.
func (c *Camera) Orbit(axis int, angle float64) {
	var r spatial.Rotation
	switch axis {
	case 0:
		r = spatial.RotationX(angle)
	case 1:
		r = spatial.RotationY(angle)
	default:
		r = spatial.RotationZ(angle)
	}
	c.View = r.Mul(c.View)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Project returns dot coordinates on a w by h canvas and the depth of p.
// Points behind the eye are not visible.
func (c *Camera) Project(p r3.Vector, w, h int) (x, y int, depth float64, ok bool) {
	v := c.View.Apply(p).Mul(c.Zoom)
	if v.Z >= c.Distance-0.1 {
		return 0, 0, v.Z, false
	}
	scale := c.Distance / (c.Distance - v.Z) * float64(min(w, h)) / 6
	x = int(math.Round(v.X*scale)) + w/2
	y = int(math.Round(-v.Y*scale)) + h/2
	return x, y, v.Z, true
}

type segment struct{ a, b r3.Vector }

// Scene draws each body of a tree as its frame axes plus a link from its
// parent's origin.
type Scene struct {
	tree     *tree.Tree
	AxisSize float64
	segs     []segment
}

func NewScene(t *tree.Tree) *Scene {
	return &Scene{tree: t, AxisSize: 0.3}
}

// Draw renders the body poses in d, which must be at Position or beyond.
func (s *Scene) Draw(c *Canvas, cam *Camera, d *digest.Digest) {
	d.Require(digest.Position, "Scene.Draw")
	s.segs = s.segs[:0]
	add := func(a, b r3.Vector) {
		s.segs = append(s.segs, segment{a, b})
	}

	add(r3.Vector{}, r3.Vector{X: 2 * s.AxisSize})
	add(r3.Vector{}, r3.Vector{Y: 2 * s.AxisSize})
	add(r3.Vector{}, r3.Vector{Z: 2 * s.AxisSize})
	for i, b := range s.tree.Bodies() {
		x := d.BodyPose(i)
		parent := r3.Vector{}
		if b.Parent != tree.GroundIndex {
			parent = d.BodyPose(b.Parent).P
		}
		add(parent, x.P)
		for _, e := range []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}} {
			add(x.P, x.P.Add(x.R.Apply(e).Mul(s.AxisSize)))
		}
	}

	w, h := c.Dots()
	c.Clear()
	for _, seg := range s.segs {
		x0, y0, _, ok0 := cam.Project(seg.a, w, h)
		x1, y1, _, ok1 := cam.Project(seg.b, w, h)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

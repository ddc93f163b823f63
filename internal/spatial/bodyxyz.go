package spatial

import (
	"math"

	"github.com/golang/geo/r3"
)

// BodyXYZ holds the sines and cosines of body-fixed 1-2-3 Euler angles and
// relates their rates to angular velocity expressed in the body (M) frame:
//
//	qdot = N(q) * w_M,  w_M = NInv(q) * qdot
//
// N divides by cos(q1) and is undefined at q1 = +-pi/2 (gimbal lock). No
// attempt is made to regularize it.
type BodyXYZ struct {
	S, C [3]float64
}

func NewBodyXYZ(q r3.Vector) BodyXYZ {
	var b BodyXYZ
	b.S[0], b.C[0] = math.Sincos(q.X)
	b.S[1], b.C[1] = math.Sincos(q.Y)
	b.S[2], b.C[2] = math.Sincos(q.Z)
	return b
}

// BodyXYZFromSinCos uses precomputed values; sin and cos must hold at least
// three entries.
func BodyXYZFromSinCos(sin, cos []float64) BodyXYZ {
	return BodyXYZ{S: [3]float64{sin[0], sin[1], sin[2]}, C: [3]float64{cos[0], cos[1], cos[2]}}
}

// Rotation returns Rx(q0) * Ry(q1) * Rz(q2).
func (b BodyXYZ) Rotation() Rotation {
	s0, s1, s2 := b.S[0], b.S[1], b.S[2]
	c0, c1, c2 := b.C[0], b.C[1], b.C[2]
	return Rotation{
		{c1 * c2, -c1 * s2, s1},
		{c0*s2 + s0*s1*c2, c0*c2 - s0*s1*s2, -s0 * c1},
		{s0*s2 - c0*s1*c2, s0*c2 + c0*s1*s2, c0 * c1},
	}
}

// NInv maps Euler angle rates to body-frame angular velocity. It is always
// finite and loses rank at the singularity.
func (b BodyXYZ) NInv() Mat33 {
	s1, s2 := b.S[1], b.S[2]
	c1, c2 := b.C[1], b.C[2]
	return Mat33{
		{c1 * c2, s2, 0},
		{-c1 * s2, c2, 0},
		{s1, 0, 1},
	}
}

// N maps body-frame angular velocity to Euler angle rates.
func (b BodyXYZ) N() Mat33 {
	s1, s2 := b.S[1], b.S[2]
	c1, c2 := b.C[1], b.C[2]
	oc := 1 / c1
	return Mat33{
		{c2 * oc, -s2 * oc, 0},
		{s2, c2, 0},
		{-s1 * c2 * oc, s1 * s2 * oc, 1},
	}
}

// NDot is the time derivative of N given the current angle rates.
func (b BodyXYZ) NDot(qdot r3.Vector) Mat33 {
	s1, s2 := b.S[1], b.S[2]
	c1, c2 := b.C[1], b.C[2]
	oc := 1 / c1
	t := s1 * oc
	w1, w2 := qdot.Y, qdot.Z
	oc2w1 := oc * oc * w1
	return Mat33{
		{-s2*w2*oc + c2*s1*oc2w1, -c2*w2*oc - s2*s1*oc2w1, 0},
		{c2 * w2, -s2 * w2, 0},
		{-c2*oc2w1 + t*s2*w2, s2*oc2w1 + t*c2*w2, 0},
	}
}

// QDot converts body-frame angular velocity to Euler angle rates.
func (b BodyXYZ) QDot(wB r3.Vector) r3.Vector {
	return b.N().MulVec(wB)
}

// QDotDot converts body-frame angular velocity and its body-frame
// derivative to Euler angle second derivatives.
func (b BodyXYZ) QDotDot(wB, wDotB r3.Vector) r3.Vector {
	n := b.N()
	qdot := n.MulVec(wB)
	return b.NDot(qdot).MulVec(wB).Add(n.MulVec(wDotB))
}

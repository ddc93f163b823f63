package spatial

import "github.com/golang/geo/r3"

// Transform is a rigid transform X_FM: the rotation R_FM and the position
// P of M's origin measured from F's origin, expressed in F.
type Transform struct {
	R Rotation
	P r3.Vector
}

func IdentityTransform() Transform {
	return Transform{R: IdentityRotation()}
}

func NewTransform(r Rotation, p r3.Vector) Transform {
	return Transform{R: r, P: p}
}

// Compose returns X_FB = X_FM * X_MB.
func (x Transform) Compose(o Transform) Transform {
	return Transform{R: x.R.Mul(o.R), P: x.P.Add(x.R.Apply(o.P))}
}

func (x Transform) Inverse() Transform {
	return Transform{R: x.R.Inverse(), P: x.R.ApplyInverse(x.P).Mul(-1)}
}

// ApplyPoint maps a point given in M to F.
func (x Transform) ApplyPoint(p r3.Vector) r3.Vector {
	return x.P.Add(x.R.Apply(p))
}

func (x Transform) AlmostEqual(o Transform, tol float64) bool {
	return x.R.AlmostEqual(o.R, tol) && x.P.Sub(o.P).Norm() <= tol
}

// Package spatial provides the value types used to describe relative
// rigid-body motion across a mobilizer:
//
//   - [Mat33]: small dense 3x3 matrix with the algebra needed by rate maps
//   - [Rotation]: orthonormal rotation matrix (columns are child axes in parent)
//   - [Transform]: rotation plus translation
//   - [SpatialVec]: angular and linear part of a spatial velocity or acceleration
//   - [BodyXYZ]: body-fixed 1-2-3 Euler angle rate relations
//   - [Mat43]: unit quaternion rate relations
//
// Three-vectors are github.com/golang/geo/r3 vectors. Conditioning and
// other numeric analysis is delegated to gonum.
package spatial

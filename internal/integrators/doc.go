// Package integrators advances a dynamo.System by one step. None of them
// know about quaternion or other state constraints; callers project the
// result when the system is a dynamo.Projector.
package integrators

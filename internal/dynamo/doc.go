// Package dynamo provides core simulation primitives for kinematic and
// dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Controller]: control input source
//   - [Projector]: optional constraint projection applied after each step
//
// # Example
//
//	sys := tree.NewKinematicSystem(t)
//	integ := integrators.NewRK4()
//	s := sim.New(sys, integ, control.NewNone(sys.ControlDim()))
//	result, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Systems are NOT thread-safe. [ParallelFor] partitions work whose
// iterations touch disjoint data.
package dynamo

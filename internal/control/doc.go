// Package control provides controllers for kinematic trees. The control of a
// kinematic system is the speed derivative udot, so a controller prescribes
// accelerations rather than forces.
//
//   - [None]: zero udot, every speed stays constant
//   - [Constant]: a fixed udot vector, adjustable while running
//   - [Servo]: PID on one coordinate, acting through one speed
//   - [Linear]: udot = -K (x - target), e.g. [NewDamping]
package control

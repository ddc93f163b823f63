// Package viz draws kinematic trees in the terminal.
//
// [Model] is a Bubble Tea program that integrates a tree live and renders
// every body frame on a braille [Canvas] through an orbiting [Camera], next
// to the conditioning of the angle-rate maps so gimbal lock shows up as it
// approaches.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to initial state
//	[ ]   - Step through recorded history
//	x y z - Orbit the camera (shifted keys reverse)
//	+ -   - Zoom
//	?     - Show help overlay
package viz

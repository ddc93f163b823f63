package control

import "github.com/san-kum/mobikin/internal/dynamo"

// Servo drives state entry QIndex toward Target with a PID law whose output
// is written to control entry UIndex. The derivative term uses the measured
// error rate, so Kd acts as damping on the coordinate.
type Servo struct {
	Kp, Ki, Kd float64
	Target     float64
	QIndex     int
	UIndex     int

	dim      int
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewServo(dim, qIndex, uIndex int, kp, ki, kd, target float64) *Servo {
	return &Servo{
		Kp: kp, Ki: ki, Kd: kd,
		Target: target,
		QIndex: qIndex,
		UIndex: uIndex,
		dim:    dim,
		first:  true,
	}
}

func (s *Servo) Compute(x dynamo.State, t float64) dynamo.Control {
	out := make(dynamo.Control, s.dim)
	if s.QIndex >= len(x) || s.UIndex >= s.dim {
		return out
	}
	err := s.Target - x[s.QIndex]

	if s.first {
		s.prevErr, s.prevT, s.first = err, t, false
		out[s.UIndex] = s.Kp * err
		return out
	}

	dt := t - s.prevT
	if dt <= 0 {
		out[s.UIndex] = s.Kp * err
		return out
	}
	s.integral += err * dt
	derivative := (err - s.prevErr) / dt
	s.prevErr, s.prevT = err, t
	out[s.UIndex] = s.Kp*err + s.Ki*s.integral + s.Kd*derivative
	return out
}

func (s *Servo) Reset() {
	s.integral = 0
	s.prevErr = 0
	s.first = true
}

// GetParams returns tunable parameters for live adjustment.
func (s *Servo) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     s.Kp,
		"Ki":     s.Ki,
		"Kd":     s.Kd,
		"Target": s.Target,
	}
}

func (s *Servo) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		s.Kp = value
	case "Ki":
		s.Ki = value
	case "Kd":
		s.Kd = value
	case "Target":
		s.Target = value
	}
}

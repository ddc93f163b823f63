// Package config loads and validates YAML descriptions of a body tree and
// the run that animates it.
package config

import (
	"math"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/spatial"
	"github.com/san-kum/mobikin/internal/tree"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultTolerance = 1e-6
	DefaultKp        = 10.0
	DefaultKi        = 0.0
	DefaultKd        = 4.0
	DefaultDamping   = 0.5
)

const (
	IntegratorEuler      = "euler"
	IntegratorRK4        = "rk4"
	IntegratorRK45       = "rk45"
	IntegratorSymplectic = "symplectic"

	ControllerNone     = "none"
	ControllerConstant = "constant"
	ControllerServo    = "servo"
	ControllerDamping  = "damping"
)

var (
	Integrators = []string{IntegratorEuler, IntegratorRK4, IntegratorRK45, IntegratorSymplectic}
	Controllers = []string{ControllerConstant, ControllerDamping, ControllerNone, ControllerServo}
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Model            string           `yaml:"model"`
	Integrator       string           `yaml:"integrator"`
	Controller       string           `yaml:"controller"`
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	Seed             int64            `yaml:"seed"`
	Adaptive         bool             `yaml:"adaptive"`
	Tolerance        float64          `yaml:"tolerance"`
	Bodies           []BodyConfig     `yaml:"bodies"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
}

// BodyConfig describes one body and the joint connecting it to its parent.
// InParent places the joint's F frame on the parent and InBody places its M
// frame on the body.
type BodyConfig struct {
	Name     string          `yaml:"name"`
	Parent   string          `yaml:"parent,omitempty"`
	Joint    string          `yaml:"joint"`
	InParent FrameConfig     `yaml:"in_parent,omitempty"`
	InBody   FrameConfig     `yaml:"in_body,omitempty"`
	Init     InitStateConfig `yaml:"init,omitempty"`
}

// FrameConfig is a rigid transform given as a position and body-fixed XYZ
// angles in degrees. Empty fields mean zero.
type FrameConfig struct {
	Position    []float64 `yaml:"position,omitempty,flow"`
	Orientation []float64 `yaml:"orientation_xyz_deg,omitempty,flow"`
}

// InitStateConfig sets a body's initial coordinates and speeds. Raw Q and U
// are applied first; the geometric fields are then fitted through the
// joint and override them.
type InitStateConfig struct {
	Q               []float64 `yaml:"q,omitempty,flow"`
	U               []float64 `yaml:"u,omitempty,flow"`
	Orientation     []float64 `yaml:"orientation_xyz_deg,omitempty,flow"`
	Translation     []float64 `yaml:"translation,omitempty,flow"`
	AngularVelocity []float64 `yaml:"angular_velocity,omitempty,flow"`
	LinearVelocity  []float64 `yaml:"linear_velocity,omitempty,flow"`
	UDot            []float64 `yaml:"udot,omitempty,flow"`
}

// ControllerConfig parameterizes the servo and damping controllers. Body and
// Axis select the servoed coordinate.
type ControllerConfig struct {
	Kp      float64 `yaml:"kp"`
	Ki      float64 `yaml:"ki"`
	Kd      float64 `yaml:"kd"`
	Target  float64 `yaml:"target"`
	Damping float64 `yaml:"damping"`
	Body    string  `yaml:"body,omitempty"`
	Axis    int     `yaml:"axis"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "gimbal",
		Integrator: IntegratorRK4,
		Controller: ControllerNone,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		Bodies: []BodyConfig{{
			Name:  "rotor",
			Joint: mobilizer.KindGimbal,
			Init: InitStateConfig{
				Orientation:     []float64{10, 20, 30},
				AngularVelocity: []float64{0.3, -0.2, 1.0},
			},
		}},
		ControllerParams: ControllerConfig{
			Kp:      DefaultKp,
			Ki:      DefaultKi,
			Kd:      DefaultKd,
			Damping: DefaultDamping,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. A file
// that lists bodies replaces the default body list.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: read")
	}

	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = DefaultConfig().Bodies
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "config: marshal")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "config: write")
}

// Validate reports every problem it finds, combined into one error. Each
// one wraps ErrInvalid.
func (c *Config) Validate() error {
	var err error
	bad := func(format string, args ...interface{}) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalid, format, args...))
	}

	if c.Dt <= 0 || math.IsNaN(c.Dt) {
		bad("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 || math.IsNaN(c.Duration) {
		bad("duration must be positive, got %g", c.Duration)
	}
	if c.Adaptive && c.Tolerance <= 0 {
		bad("adaptive runs need a positive tolerance, got %g", c.Tolerance)
	}
	if !contains(Integrators, c.Integrator) {
		bad("unknown integrator %q", c.Integrator)
	}
	if !contains(Controllers, c.Controller) {
		bad("unknown controller %q", c.Controller)
	}
	if len(c.Bodies) == 0 {
		bad("no bodies")
	}

	kinds := mobilizer.Kinds()
	seen := map[string]bool{tree.Ground: true, "": true}
	for i, b := range c.Bodies {
		name := b.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
			bad("body %s has no name", name)
		} else if seen[name] {
			bad("body %q is defined twice", name)
		}
		if !seen[b.Parent] {
			bad("body %q: parent %q must be defined before it", name, b.Parent)
		}
		if !contains(kinds, b.Joint) {
			bad("body %q: unknown joint %q", name, b.Joint)
		}
		vectors := []struct {
			field string
			v     []float64
		}{
			{"in_parent.position", b.InParent.Position},
			{"in_parent.orientation_xyz_deg", b.InParent.Orientation},
			{"in_body.position", b.InBody.Position},
			{"in_body.orientation_xyz_deg", b.InBody.Orientation},
			{"init.orientation_xyz_deg", b.Init.Orientation},
			{"init.translation", b.Init.Translation},
			{"init.angular_velocity", b.Init.AngularVelocity},
			{"init.linear_velocity", b.Init.LinearVelocity},
		}
		for _, f := range vectors {
			if f.v != nil && len(f.v) != 3 {
				bad("body %q: %s needs 3 values, got %d", name, f.field, len(f.v))
			}
		}
		seen[b.Name] = true
	}

	if c.Controller == ControllerServo {
		if !seen[c.ControllerParams.Body] || c.ControllerParams.Body == "" || c.ControllerParams.Body == tree.Ground {
			bad("servo body %q is not defined", c.ControllerParams.Body)
		}
		if c.ControllerParams.Axis < 0 {
			bad("servo axis must not be negative, got %d", c.ControllerParams.Axis)
		}
	}
	return err
}

// RunConfig returns the simulator settings.
func (c *Config) RunConfig() dynamo.Config {
	rc := dynamo.DefaultConfig()
	rc.Dt = c.Dt
	rc.Duration = c.Duration
	rc.Seed = c.Seed
	rc.Adaptive = c.Adaptive
	if c.Tolerance > 0 {
		rc.Tolerance = c.Tolerance
	}
	if rc.MaxDt < c.Dt {
		rc.MaxDt = c.Dt
	}
	return rc
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		b.InParent = b.InParent.clone()
		b.InBody = b.InBody.clone()
		b.Init = InitStateConfig{
			Q:               cloneFloats(b.Init.Q),
			U:               cloneFloats(b.Init.U),
			Orientation:     cloneFloats(b.Init.Orientation),
			Translation:     cloneFloats(b.Init.Translation),
			AngularVelocity: cloneFloats(b.Init.AngularVelocity),
			LinearVelocity:  cloneFloats(b.Init.LinearVelocity),
			UDot:            cloneFloats(b.Init.UDot),
		}
		out.Bodies[i] = b
	}
	return &out
}

// Transform converts the frame to a spatial transform.
func (f FrameConfig) Transform() spatial.Transform {
	return spatial.NewTransform(Rotation(f.Orientation), Vec3(f.Position))
}

func (f FrameConfig) clone() FrameConfig {
	return FrameConfig{Position: cloneFloats(f.Position), Orientation: cloneFloats(f.Orientation)}
}

// Rotation builds a body-fixed XYZ rotation from angles in degrees. Nil
// means identity.
func Rotation(deg []float64) spatial.Rotation {
	if deg == nil {
		return spatial.IdentityRotation()
	}
	return spatial.NewRotationBodyFixedXYZ(Vec3(deg).Mul(math.Pi / 180))
}

// Vec3 converts a three-element slice; nil means zero.
func Vec3(v []float64) r3.Vector {
	if len(v) < 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

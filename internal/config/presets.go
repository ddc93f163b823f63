package config

import (
	"sort"

	"github.com/san-kum/mobikin/internal/mobilizer"
)

func gimbalPreset(orientation, rate []float64, duration float64) *Config {
	return &Config{
		Model: "gimbal", Integrator: IntegratorRK4, Controller: ControllerNone,
		Dt: 0.01, Duration: duration,
		Bodies: []BodyConfig{{
			Name: "rotor", Joint: mobilizer.KindGimbal,
			Init: InitStateConfig{Orientation: orientation, AngularVelocity: rate},
		}},
	}
}

func armBodies() []BodyConfig {
	link := []float64{0, -1, 0}
	return []BodyConfig{
		{Name: "shoulder", Joint: mobilizer.KindBall, InBody: FrameConfig{Position: []float64{0, 0.5, 0}},
			Init: InitStateConfig{AngularVelocity: []float64{0, 0.4, 0.2}}},
		{Name: "upper", Parent: "shoulder", Joint: mobilizer.KindPin, InParent: FrameConfig{Position: link},
			Init: InitStateConfig{Q: []float64{0.3}, U: []float64{0.5}}},
		{Name: "fore", Parent: "upper", Joint: mobilizer.KindPin, InParent: FrameConfig{Position: link},
			Init: InitStateConfig{Q: []float64{-0.2}, U: []float64{-0.5}}},
		{Name: "wrist", Parent: "fore", Joint: mobilizer.KindUniversal, InParent: FrameConfig{Position: link},
			Init: InitStateConfig{U: []float64{1, -1}}},
	}
}

// Presets holds ready-made configurations keyed by model and preset name.
var Presets = map[string]map[string]*Config{
	"gimbal": {
		"tumble": gimbalPreset([]float64{10, 20, 30}, []float64{0.3, -0.2, 1.0}, 10),
		// Pitching through 90 degrees drives the Euler rates through lock.
		"lock": gimbalPreset(nil, []float64{0, 0.5, 0.1}, 4),
		"near_lock": {
			Model: "gimbal", Integrator: IntegratorRK45, Controller: ControllerNone,
			Dt: 0.01, Duration: 2, Adaptive: true, Tolerance: 1e-8,
			Bodies: []BodyConfig{{
				Name: "rotor", Joint: mobilizer.KindGimbal,
				Init: InitStateConfig{Orientation: []float64{0, 85, 0}, AngularVelocity: []float64{1, 0, 1}},
			}},
		},
		"servo": {
			Model: "gimbal", Integrator: IntegratorRK4, Controller: ControllerServo,
			Dt: 0.01, Duration: 10,
			Bodies:           []BodyConfig{{Name: "rotor", Joint: mobilizer.KindGimbal}},
			ControllerParams: ControllerConfig{Kp: 4, Kd: 4, Target: 1.2, Body: "rotor", Axis: 2},
		},
	},
	"ball": {
		"tumble": {
			Model: "ball", Integrator: IntegratorRK4, Controller: ControllerNone,
			Dt: 0.01, Duration: 10,
			Bodies: []BodyConfig{{
				Name: "rotor", Joint: mobilizer.KindBall,
				Init: InitStateConfig{Orientation: []float64{10, 20, 30}, AngularVelocity: []float64{0.3, -0.2, 1.0}},
			}},
		},
		"spin_up": {
			Model: "ball", Integrator: IntegratorRK4, Controller: ControllerConstant,
			Dt: 0.01, Duration: 5,
			Bodies: []BodyConfig{{
				Name: "rotor", Joint: mobilizer.KindBall,
				Init: InitStateConfig{UDot: []float64{0, 0, 2}},
			}},
		},
	},
	"free": {
		"drift": {
			Model: "free", Integrator: IntegratorRK4, Controller: ControllerNone,
			Dt: 0.01, Duration: 10,
			Bodies: []BodyConfig{{
				Name: "probe", Joint: mobilizer.KindFree,
				Init: InitStateConfig{
					Translation:     []float64{0, 0, 1},
					AngularVelocity: []float64{0, 0, 0.5},
					LinearVelocity:  []float64{0.2, 0, 0},
				},
			}},
		},
	},
	"universal": {
		"cardan": {
			Model: "universal", Integrator: IntegratorRK4, Controller: ControllerNone,
			Dt: 0.01, Duration: 6.28,
			Bodies: []BodyConfig{{
				Name: "shaft", Joint: mobilizer.KindUniversal,
				Init: InitStateConfig{Q: []float64{0, 0.5}, U: []float64{1, 0}},
			}},
		},
	},
	"arm": {
		"wave": {
			Model: "arm", Integrator: IntegratorRK4, Controller: ControllerNone,
			Dt: 0.01, Duration: 10, Bodies: armBodies(),
		},
		"settle": {
			Model: "arm", Integrator: IntegratorSymplectic, Controller: ControllerDamping,
			Dt: 0.005, Duration: 10, Bodies: armBodies(),
			ControllerParams: ControllerConfig{Damping: 0.8},
		},
	},
	"mixed": {
		"all_joints": {
			Model: "mixed", Integrator: IntegratorRK4, Controller: ControllerNone,
			Dt: 0.01, Duration: 5,
			Bodies: []BodyConfig{
				{Name: "base", Joint: mobilizer.KindTranslation, Init: InitStateConfig{LinearVelocity: []float64{0.1, 0, 0}}},
				{Name: "turret", Parent: "base", Joint: mobilizer.KindPin, Init: InitStateConfig{U: []float64{0.5}}},
				{Name: "rail", Parent: "turret", Joint: mobilizer.KindSlider, InParent: FrameConfig{Position: []float64{0, 0, 0.3}},
					Init: InitStateConfig{U: []float64{0.1}}},
				{Name: "mast", Parent: "rail", Joint: mobilizer.KindCylinder, Init: InitStateConfig{U: []float64{0.2, 0.05}}},
				{Name: "sled", Parent: "mast", Joint: mobilizer.KindPlanar, Init: InitStateConfig{U: []float64{0.3, 0.1, 0}}},
				{Name: "head", Parent: "sled", Joint: mobilizer.KindGimbal, InParent: FrameConfig{Orientation: []float64{0, 0, 45}},
					Init: InitStateConfig{AngularVelocity: []float64{0.2, 0.1, 0}}},
				{Name: "eye", Parent: "head", Joint: mobilizer.KindBall, Init: InitStateConfig{AngularVelocity: []float64{0, 0, 1}}},
				{Name: "lens", Parent: "eye", Joint: mobilizer.KindWeld, InParent: FrameConfig{Position: []float64{0.05, 0, 0}}},
				{Name: "drone", Joint: mobilizer.KindFree, Init: InitStateConfig{Translation: []float64{1, 1, 1}}},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Tolerance == 0 {
		out.Tolerance = DefaultTolerance
	}
	return out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/mobikin/internal/mobilizer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "gimbal" {
		t.Errorf("expected model gimbal, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for _, model := range ListModels() {
		for _, name := range ListPresets(model) {
			cfg := GetPreset(model, name)
			if cfg == nil {
				t.Fatalf("%s/%s: listed but not found", model, name)
			}
			if cfg.Model != model {
				t.Errorf("%s/%s: model field is %q", model, name, cfg.Model)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a := GetPreset("gimbal", "tumble")
	if a == nil {
		t.Fatal("expected preset, got nil")
	}
	a.Dt = 1
	a.Bodies[0].Init.Orientation[0] = 99

	b := GetPreset("gimbal", "tumble")
	if b.Dt == 1 || b.Bodies[0].Init.Orientation[0] == 99 {
		t.Error("modifying a preset copy changed the stored preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("gimbal", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "tumble"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	got := ListPresets("gimbal")
	want := []string{"lock", "near_lock", "servo", "tumble"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("gimbal presets (-want +got):\n%s", diff)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for unknown model")
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	cfg.Integrator = "leapfrog"
	cfg.Bodies = append(cfg.Bodies,
		BodyConfig{Name: "rotor", Joint: mobilizer.KindPin},
		BodyConfig{Name: "orphan", Parent: "missing", Joint: "hinge"},
		BodyConfig{Name: "tilted", Joint: mobilizer.KindBall, Init: InitStateConfig{Orientation: []float64{1, 2}}},
	)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 6 {
		t.Fatalf("expected 6 problems, got %d: %v", len(errs), err)
	}
	for _, e := range errs {
		if errors.Cause(e) != ErrInvalid {
			t.Errorf("%v does not wrap ErrInvalid", e)
		}
	}
	for _, fragment := range []string{"dt", "leapfrog", "twice", "missing", "hinge", "3 values"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %q", err, fragment)
		}
	}
}

func TestValidateServoBody(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controller = ControllerServo
	cfg.ControllerParams.Body = "nobody"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for undefined servo body")
	}
	cfg.ControllerParams.Body = "rotor"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.yaml")
	want := GetPreset("arm", "settle")
	if err := want.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	src := `
integrator: rk45
adaptive: true
bodies:
  - name: a
    joint: pin
    init: {q: [0.5]}
  - name: b
    parent: a
    joint: gimbal
    in_parent: {position: [0, 0, 1]}
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Integrator != IntegratorRK45 || !cfg.Adaptive {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Controller != ControllerNone {
		t.Errorf("defaults lost: dt=%g controller=%s", cfg.Dt, cfg.Controller)
	}
	if len(cfg.Bodies) != 2 || cfg.Bodies[1].Parent != "a" {
		t.Fatalf("bodies not replaced: %+v", cfg.Bodies)
	}
	if p := cfg.Bodies[1].InParent.Transform().P; p.Z != 1 {
		t.Errorf("in_parent position = %v", p)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative dt")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0.5
	cfg.Adaptive = true
	rc := cfg.RunConfig()
	if rc.Dt != 0.5 || !rc.Adaptive || rc.MaxDt < rc.Dt {
		t.Errorf("unexpected run config %+v", rc)
	}
}

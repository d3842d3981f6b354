package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/sailing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller != "none" {
		t.Errorf("expected controller none, got %s", cfg.Controller)
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

func TestParamsRoundTrip(t *testing.T) {
	p := DefaultConfig().SailingParams()
	want := sailing.DefaultParams()
	if math.Abs(p.LiftPeak-want.LiftPeak) > 1e-12 {
		t.Errorf("lift peak %v, want %v", p.LiftPeak, want.LiftPeak)
	}
	p.LiftPeak = want.LiftPeak
	if p != want {
		t.Errorf("params %+v, want %+v", p, want)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	cfg.Params.Leeway = 2
	cfg.Controller = "helmsman"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	for _, want := range []string{"dt", "leeway", "helmsman"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Boat.Heading = 90
	cfg.Boat.X = 5
	cfg.Boat.Sheet = 1000
	cfg.Boat.Rudder = 80

	w, err := cfg.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if math.Abs(w.Boat.Rotation-math.Pi/2) > 1e-12 {
		t.Errorf("expected heading π/2, got %v", w.Boat.Rotation)
	}
	if w.Boat.Position.X != 5 {
		t.Errorf("expected x 5, got %v", w.Boat.Position.X)
	}

	s := w.Boat.Sails[0]
	if _, hi := s.SheetRange(w.Params.SheetSlack); s.SheetLength != hi {
		t.Errorf("expected sheet clamped to %v, got %v", hi, s.SheetLength)
	}
	if w.Boat.Rudder.Rotation != w.Boat.Rudder.Limit {
		t.Errorf("expected rudder at its limit, got %v", w.Boat.Rudder.Rotation)
	}
}

func TestBuildRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.BoomLength = 0
	if _, err := cfg.Build(); err == nil {
		t.Error("expected error for zero boom")
	}
}

func TestBuildController(t *testing.T) {
	for _, name := range Controllers {
		cfg := DefaultConfig()
		cfg.Controller = name
		w, err := cfg.Build()
		if err != nil {
			t.Fatalf("%s: build: %v", name, err)
		}
		ctrl, err := cfg.BuildController(w, nil)
		if err != nil {
			t.Fatalf("%s: controller: %v", name, err)
		}
		if ctrl == nil {
			t.Errorf("%s: nil controller", name)
		}
	}

	cfg := DefaultConfig()
	w, _ := cfg.Build()
	m := control.NewManual()
	m.Nudge(3, 0)
	ctrl, err := cfg.BuildController(w, m)
	if err != nil {
		t.Fatal(err)
	}
	if in := ctrl.Compute(w.Snapshot(), 0); in.SheetDelta != 3 {
		t.Errorf("manual input lost: %+v", in)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boat.yaml")

	cfg := DefaultConfig()
	cfg.Wind.Speed = 14
	cfg.Controller = "autopilot"
	cfg.ControllerParams.Heading = 30
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("wind:\n  speed: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Wind.Speed != 3 {
		t.Errorf("expected wind 3, got %v", cfg.Wind.Speed)
	}
	if cfg.Wind.Direction != DefaultWindDir || cfg.Dt != DefaultConfig().Dt {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("duration: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}
	base := GetPreset("beat")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Duration != 12 || cfg.Controller != "cruise" || cfg.Course.Windward != 500 {
		t.Errorf("file did not layer over the preset: %+v", cfg)
	}
	if base.Duration == 12 {
		t.Error("base was modified")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("wind: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	os.WriteFile(envFile, []byte("SAILSIM_WIND_SPEED=7.5\nSAILSIM_DATA_DIR=/tmp/runs\n"), 0644)

	t.Setenv(EnvDataDir, "/srv/sailsim")
	os.Unsetenv(EnvWindSpeed)
	t.Cleanup(func() { os.Unsetenv(EnvWindSpeed) })

	if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load env: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Wind.Speed != 7.5 {
		t.Errorf("expected wind 7.5 from .env, got %v", cfg.Wind.Speed)
	}
	if cfg.DataDir != "/srv/sailsim" {
		t.Errorf("existing env should win over .env, got %s", cfg.DataDir)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("beat")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Boat.Heading != 45 {
		t.Errorf("expected heading 45, got %f", cfg.Boat.Heading)
	}

	cfg.Boat.Heading = 0
	if GetPreset("beat").Boat.Heading != 45 {
		t.Error("preset mutated through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsBuild(t *testing.T) {
	names := ListPresets()
	if len(names) != 5 {
		t.Fatalf("expected 5 presets, got %v", names)
	}
	for _, name := range names {
		cfg := GetPreset(name)
		w, err := cfg.Build()
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if _, err := cfg.BuildController(w, nil); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestBuildCourse(t *testing.T) {
	cfg := DefaultConfig()
	if marks := cfg.BuildCourse(); marks != nil {
		t.Errorf("expected no course by default, got %v", marks)
	}

	cfg.Course.Marks = 3
	cfg.Course.Seed = 11
	a := cfg.BuildCourse()
	b := cfg.BuildCourse()
	if len(a) != 3 {
		t.Fatalf("expected 3 marks, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("same seed gave different marks: %v vs %v", a[i], b[i])
		}
		p := a[i].Position
		if math.Abs(p.X) > 400 || math.Abs(p.Y) > 200 {
			t.Errorf("mark %v outside the padded area", p)
		}
	}

	cfg.Course.Windward = 300
	if marks := cfg.BuildCourse(); len(marks) != 2 {
		t.Errorf("expected a windward/leeward course, got %v", marks)
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"wind direction", "wind: {direction_deg: .inf}", "wind.direction_deg"},
		{"wind speed nan", "wind: {speed: .nan}", "wind speed"},
		{"wind speed inf", "wind: {speed: .inf}", "wind speed"},
		{"heading", "boat: {heading_deg: .nan}", "boat.heading_deg"},
		{"position", "boat: {x: -.inf}", "boat.x"},
		{"velocity", "boat: {vy: .nan}", "boat.vy"},
		{"sail", "boat: {sail_deg: .nan}", "boat.sail_deg"},
		{"rudder", "boat: {rudder_deg: .inf}", "boat.rudder_deg"},
		{"sheet", "boat: {sheet: .nan}", "boat.sheet"},
		{"pivot", "geometry: {pivot: [.nan, 0]}", "geometry.pivot[0]"},
		{"sheet block", "geometry: {sheet_block: [-40, .inf]}", "geometry.sheet_block[1]"},
		{"sheet max", "geometry: {sheet_max: .inf}", "geometry.sheet_max"},
		{"target heading", "controller_params: {heading_deg: .nan}", "controller_params.heading_deg"},
		{"dt", "dt: .nan", "dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml+"\n"), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}

			err = cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
			if _, err := cfg.Build(); err == nil {
				t.Error("Build accepted a non-finite config")
			}
		})
	}
}

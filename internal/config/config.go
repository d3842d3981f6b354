package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/golang/geo/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/course"
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
	"github.com/san-kum/sailsim/internal/vmath"
)

const (
	DefaultDuration  = 60.0
	DefaultWindSpeed = 10.0
	DefaultWindDir   = -90.0 // from the north
	DefaultKp        = 1.5
	DefaultKi        = 0.05
	DefaultKd        = 0.5
)

// Angles in the file are in degrees; the simulation works in radians.
type Config struct {
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	ValidateState    bool             `yaml:"validate_state"`
	RecordEvery      int              `yaml:"record_every"`
	Controller       string           `yaml:"controller"`
	Wind             WindConfig       `yaml:"wind"`
	Boat             BoatConfig       `yaml:"boat"`
	Geometry         GeometryConfig   `yaml:"geometry"`
	Params           ParamsConfig     `yaml:"params"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
	Course           CourseConfig     `yaml:"course"`
	DataDir          string           `yaml:"data_dir,omitempty"`
	LogLevel         string           `yaml:"log_level,omitempty"`
}

type WindConfig struct {
	Speed     float64 `yaml:"speed"`
	Direction float64 `yaml:"direction_deg"` // the way the wind blows toward
}

type BoatConfig struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	VX      float64 `yaml:"vx"`
	VY      float64 `yaml:"vy"`
	Heading float64 `yaml:"heading_deg"`
	Sail    float64 `yaml:"sail_deg"`
	Sheet   float64 `yaml:"sheet"`
	Rudder  float64 `yaml:"rudder_deg"`
}

type GeometryConfig struct {
	Pivot       [2]float64 `yaml:"pivot"`
	SheetBlock  [2]float64 `yaml:"sheet_block"`
	BoomLength  float64    `yaml:"boom_length"`
	SheetMin    float64    `yaml:"sheet_min"`
	SheetMax    float64    `yaml:"sheet_max"`
	RudderLimit float64    `yaml:"rudder_limit_deg"`
}

type ParamsConfig struct {
	SailDrag   float64 `yaml:"sail_drag"`
	SailLift   float64 `yaml:"sail_lift"`
	LiftPeak   float64 `yaml:"lift_peak_deg"`
	SailTorque float64 `yaml:"sail_torque"`
	HullDrag   float64 `yaml:"hull_drag"`
	Leeway     float64 `yaml:"leeway"`
	Rudder     float64 `yaml:"rudder"`
	SheetSlack float64 `yaml:"sheet_slack"`
}

type ControllerConfig struct {
	Kp            float64 `yaml:"kp"`
	Ki            float64 `yaml:"ki"`
	Kd            float64 `yaml:"kd"`
	Heading       float64 `yaml:"heading_deg"`
	Sheet         float64 `yaml:"sheet"`
	Rudder        float64 `yaml:"rudder_deg"`
	AngleOfAttack float64 `yaml:"angle_of_attack_deg"`
}

// CourseConfig places buoys. Zero marks and no standard distance means no
// course is laid.
type CourseConfig struct {
	Marks    int     `yaml:"marks"`
	Seed     uint64  `yaml:"seed"`
	Padding  float64 `yaml:"padding"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Windward float64 `yaml:"windward_distance"` // lays a windward/leeward course instead
}

// Controllers lists the names accepted in Config.Controller.
var Controllers = []string{"none", "trim", "autopilot", "autotrim", "cruise"}

func DefaultConfig() *Config {
	p := sailing.DefaultParams()
	return &Config{
		Dt:            sim.DefaultDt,
		Duration:      DefaultDuration,
		ValidateState: true,
		Controller:    "none",
		Wind:          WindConfig{Speed: DefaultWindSpeed, Direction: DefaultWindDir},
		Boat:          BoatConfig{Sheet: sailing.DefaultSheetMax},
		Geometry: GeometryConfig{
			Pivot:       [2]float64{sailing.DefaultPivot.X, sailing.DefaultPivot.Y},
			SheetBlock:  [2]float64{sailing.DefaultSheetBlock.X, sailing.DefaultSheetBlock.Y},
			BoomLength:  sailing.DefaultBoomLength,
			SheetMin:    sailing.DefaultSheetMin,
			SheetMax:    sailing.DefaultSheetMax,
			RudderLimit: vmath.Degrees(sailing.DefaultRudderLimit),
		},
		Params: ParamsConfig{
			SailDrag:   p.SailDrag,
			SailLift:   p.SailLift,
			LiftPeak:   vmath.Degrees(p.LiftPeak),
			SailTorque: p.SailTorque,
			HullDrag:   p.HullDrag,
			Leeway:     p.Leeway,
			Rudder:     p.Rudder,
			SheetSlack: p.SheetSlack,
		},
		ControllerParams: ControllerConfig{
			Kp:            DefaultKp,
			Ki:            DefaultKi,
			Kd:            DefaultKd,
			Sheet:         sailing.DefaultSheetMax,
			AngleOfAttack: vmath.Degrees(sailing.DefaultLiftPeak),
		},
		Course: CourseConfig{
			Padding: course.DefaultPadding,
			Width:   1200,
			Height:  800,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base, so keys missing from the file keep
// base's values. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

var ErrInvalid = errors.New("invalid config")

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Dt > 0 && vmath.IsFinite(c.Dt), "dt must be positive, got %v", c.Dt)
	check(c.Duration > 0 && vmath.IsFinite(c.Duration), "duration must be positive, got %v", c.Duration)
	check(c.RecordEvery >= 0, "record_every must not be negative")
	check(c.Wind.Speed >= 0 && vmath.IsFinite(c.Wind.Speed), "wind speed must be a non-negative number, got %v", c.Wind.Speed)

	g := c.Geometry
	check(g.BoomLength > 0 && vmath.IsFinite(g.BoomLength), "boom_length must be positive, got %v", g.BoomLength)
	check(g.SheetMin <= g.SheetMax, "sheet_min %v above sheet_max %v", g.SheetMin, g.SheetMax)
	check(g.RudderLimit >= 0 && g.RudderLimit <= 90, "rudder_limit_deg must be in [0, 90], got %v", g.RudderLimit)
	check(g.Pivot != g.SheetBlock, "sheet_block must differ from pivot")

	// every remaining number ends up in the world, so none may be NaN or Inf
	b, cp := c.Boat, c.ControllerParams
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"wind.direction_deg", c.Wind.Direction},
		{"boat.x", b.X}, {"boat.y", b.Y}, {"boat.vx", b.VX}, {"boat.vy", b.VY},
		{"boat.heading_deg", b.Heading}, {"boat.sail_deg", b.Sail},
		{"boat.sheet", b.Sheet}, {"boat.rudder_deg", b.Rudder},
		{"geometry.pivot[0]", g.Pivot[0]}, {"geometry.pivot[1]", g.Pivot[1]},
		{"geometry.sheet_block[0]", g.SheetBlock[0]}, {"geometry.sheet_block[1]", g.SheetBlock[1]},
		{"geometry.sheet_min", g.SheetMin}, {"geometry.sheet_max", g.SheetMax},
		{"params.lift_peak_deg", c.Params.LiftPeak},
		{"controller_params.kp", cp.Kp}, {"controller_params.ki", cp.Ki}, {"controller_params.kd", cp.Kd},
		{"controller_params.heading_deg", cp.Heading}, {"controller_params.sheet", cp.Sheet},
		{"controller_params.rudder_deg", cp.Rudder}, {"controller_params.angle_of_attack_deg", cp.AngleOfAttack},
		{"course.padding", c.Course.Padding}, {"course.width", c.Course.Width},
		{"course.height", c.Course.Height}, {"course.windward_distance", c.Course.Windward},
	} {
		check(vmath.IsFinite(f.v), "%s must be finite, got %v", f.name, f.v)
	}

	p := c.Params
	for name, v := range map[string]float64{
		"sail_drag": p.SailDrag, "sail_lift": p.SailLift, "sail_torque": p.SailTorque,
		"hull_drag": p.HullDrag, "leeway": p.Leeway, "rudder": p.Rudder, "sheet_slack": p.SheetSlack,
	} {
		check(v >= 0 && !math.IsInf(v, 0), "%s must be a non-negative number, got %v", name, v)
	}
	check(c.Course.Marks >= 0, "course marks must not be negative")
	check(c.Course.Marks == 0 || (c.Course.Width > 0 && c.Course.Height > 0), "course area must be positive")
	check(p.Leeway <= 1, "leeway must be at most 1, got %v", p.Leeway)

	known := false
	for _, n := range Controllers {
		known = known || n == c.Controller
	}
	check(known, "unknown controller %q", c.Controller)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c *Config) SailingParams() sailing.Params {
	return sailing.Params{
		SailDrag:   c.Params.SailDrag,
		SailLift:   c.Params.SailLift,
		LiftPeak:   vmath.Radians(c.Params.LiftPeak),
		SailTorque: c.Params.SailTorque,
		HullDrag:   c.Params.HullDrag,
		Leeway:     c.Params.Leeway,
		Rudder:     c.Params.Rudder,
		SheetSlack: c.Params.SheetSlack,
	}
}

func (c *Config) SailingWind() sailing.Wind {
	return sailing.Wind{Speed: c.Wind.Speed, Direction: vmath.Radians(c.Wind.Direction)}
}

// Build assembles the world described by the config.
func (c *Config) Build() (*sailing.World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g := c.Geometry
	boat := sailing.NewBoat()
	boat.Position = r2.Point{X: c.Boat.X, Y: c.Boat.Y}
	boat.Velocity = r2.Point{X: c.Boat.VX, Y: c.Boat.VY}
	boat.Rotation = vmath.WrapPi(vmath.Radians(c.Boat.Heading))

	sail := sailing.NewSail(r2.Point{X: g.Pivot[0], Y: g.Pivot[1]}, g.BoomLength, r2.Point{X: g.SheetBlock[0], Y: g.SheetBlock[1]})
	sail.SheetMin, sail.SheetMax = g.SheetMin, g.SheetMax
	sail.SheetLength = c.Boat.Sheet
	sail.Rotation = vmath.Radians(c.Boat.Sail)
	boat.AddSail(sail)

	rudder := sailing.NewRudder(vmath.Radians(g.RudderLimit))
	rudder.Set(vmath.Radians(c.Boat.Rudder))
	boat.SetRudder(rudder)

	return sailing.NewWorld(c.SailingWind(), boat, c.SailingParams()), nil
}

// BuildController makes the controller named in the config for world.
// Manual input, when given, is layered on top.
func (c *Config) BuildController(world *sailing.World, manual *control.Manual) (sim.Controller, error) {
	cp := c.ControllerParams
	heading := vmath.Radians(cp.Heading)

	var ctrl sim.Controller
	switch c.Controller {
	case "none", "":
		ctrl = control.NewNone()
	case "trim":
		ctrl = control.NewTrim(cp.Sheet, vmath.Radians(cp.Rudder))
	case "autopilot":
		ctrl = control.NewHeadingPID(cp.Kp, cp.Ki, cp.Kd, heading)
	case "autotrim", "cruise":
		if len(world.Boat.Sails) == 0 {
			return nil, fmt.Errorf("%s needs a sail", c.Controller)
		}
		trim := control.NewAutoTrim(world.Boat.Sails[0])
		trim.AngleOfAttack = vmath.Radians(cp.AngleOfAttack)
		ctrl = trim
		if c.Controller == "cruise" {
			ctrl = control.Combine(control.NewHeadingPID(cp.Kp, cp.Ki, cp.Kd, heading), trim)
		}
	default:
		return nil, fmt.Errorf("unknown controller: %s", c.Controller)
	}

	if manual != nil {
		return control.Combine(ctrl, manual), nil
	}
	return ctrl, nil
}

// BuildCourse lays the configured marks around the boat's start position.
func (c *Config) BuildCourse() []course.Mark {
	start := r2.Point{X: c.Boat.X, Y: c.Boat.Y}
	if c.Course.Windward > 0 {
		return course.Standard(start, c.SailingWind(), c.Course.Windward)
	}
	if c.Course.Marks == 0 {
		return nil
	}
	bounds := r2.RectFromCenterSize(start, r2.Point{X: c.Course.Width, Y: c.Course.Height})
	rng := rand.New(rand.NewPCG(c.Course.Seed, c.Course.Seed^0x9e3779b97f4a7c15))
	return course.Random(rng, bounds, c.Course.Marks, c.Course.Padding)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		ValidateState: c.ValidateState,
		RecordEvery:   c.RecordEvery,
	}
}

package config

import (
	"sort"

	"github.com/san-kum/sailsim/internal/course"
)

func preset(mod func(c *Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

// Presets are named starting scenarios. The wind blows from the north
// unless noted.
var Presets = map[string]*Config{
	"beat": preset(func(c *Config) {
		c.Boat.Heading = 45
		c.Controller = "cruise"
		c.ControllerParams.Heading = 45
		c.Course.Windward = 500
	}),
	"reach": preset(func(c *Config) {
		c.Controller = "autotrim"
		c.Course.Marks = course.DefaultMarks
		c.Course.Seed = 7
	}),
	"run": preset(func(c *Config) {
		c.Wind.Direction = 10 // from the west, a touch south
		c.Boat.Sail = 80
		c.Controller = "trim"
		c.ControllerParams.Sheet = 90
	}),
	"luffing": preset(func(c *Config) {
		c.Wind.Direction = 0
		c.Duration = 10
	}),
	"tack": preset(func(c *Config) {
		c.Boat.Heading = 45
		c.Boat.VX, c.Boat.VY = 2, 2
		c.Controller = "cruise"
		c.ControllerParams.Heading = 135
		c.Duration = 90
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/sailsim/internal/sim"
)

var constructors = map[string]func() sim.Metric{
	"speed":         func() sim.Metric { return NewSpeed() },
	"max_speed":     func() sim.Metric { return NewMaxSpeed() },
	"vmg":           func() sim.Metric { return NewVMG() },
	"leeway":        func() sim.Metric { return NewLeeway() },
	"distance":      func() sim.Metric { return NewDistance() },
	"rudder_effort": func() sim.Metric { return NewRudderEffort() },
}

// Names lists the known metrics in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds a fresh metric by name.
func New(name string) (sim.Metric, error) {
	c, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return c(), nil
}

// All builds one of every metric.
func All() []sim.Metric {
	out := make([]sim.Metric, 0, len(constructors))
	for _, n := range Names() {
		out = append(out, constructors[n]())
	}
	return out
}

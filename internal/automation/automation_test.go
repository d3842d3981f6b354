package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
)

const beatAndRun = `
name: out-and-back
description: reach out, then bear away with more wind
legs:
  - name: reach
    duration: 5
    heading_deg: 0
    sheet: 70
  - name: run
    duration: 3
    wind:
      speed: 14
`

func beamReach() *sailing.World {
	return sailing.NewWorld(sailing.Wind{Speed: 10, Direction: math.Pi / 2}, sailing.NewDinghy(), sailing.DefaultParams())
}

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(beatAndRun))
	require.NoError(t, err)

	assert.Equal(t, "out-and-back", s.Name)
	require.Len(t, s.Legs, 2)
	require.NotNil(t, s.Legs[0].Heading)
	assert.Equal(t, 0.0, *s.Legs[0].Heading)
	assert.Equal(t, 70.0, *s.Legs[0].Sheet)
	assert.Nil(t, s.Legs[1].Heading)
	require.NotNil(t, s.Legs[1].Wind)
	assert.Equal(t, 14.0, *s.Legs[1].Wind.Speed)
	assert.Nil(t, s.Legs[1].Wind.Direction)
	assert.Equal(t, 8.0, s.TotalDuration())
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(beatAndRun), 0o644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, s.Legs, 2)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	_, err := ParseScript([]byte("name: empty\n"))
	assert.True(t, errors.Is(err, ErrInvalidScript))

	_, err = ParseScript([]byte("legs:\n  - duration: 0\n  - duration: 2\n    sheet: -1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScript))
	assert.Contains(t, err.Error(), "leg 1")
	assert.Contains(t, err.Error(), "leg 2")

	_, err = ParseScript([]byte("legs: [unterminated"))
	assert.Error(t, err)
}

func TestRunCarriesWorldAcrossLegs(t *testing.T) {
	s, err := ParseScript([]byte(beatAndRun))
	require.NoError(t, err)

	w := beamReach()
	results, err := Run(context.Background(), w, s, sim.DefaultDt, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "reach", results[0].Leg)
	assert.Equal(t, results[0].End.Step, results[1].Start.Step)
	assert.Equal(t, results[0].End.Position, results[1].Start.Position)
	assert.InDelta(t, 8.0, w.Time, 1e-9)

	assert.Equal(t, 14.0, w.Wind.Speed)
	assert.InDelta(t, math.Pi/2, w.Wind.Direction, 1e-12, "direction was not overridden")

	assert.Greater(t, results[0].End.Position.X, results[0].Start.Position.X)
	assert.Contains(t, results[0].Result.Metrics, "speed")
}

func TestRunSheetLeg(t *testing.T) {
	sheet := 70.0
	s := &Script{Legs: []Leg{{Duration: 3, Sheet: &sheet}}}

	w := beamReach()
	_, err := Run(context.Background(), w, s, sim.DefaultDt, nil)
	require.NoError(t, err)
	assert.InDelta(t, sheet, w.Boat.Sails[0].SheetLength, 1e-9)
	assert.Equal(t, 0.0, w.Boat.Rudder.Rotation)
}

func TestRunDefaultsLegNames(t *testing.T) {
	s := &Script{Legs: []Leg{{Duration: 1}, {Duration: 1}}}
	results, err := Run(context.Background(), beamReach(), s, sim.DefaultDt, nil)
	require.NoError(t, err)
	assert.Equal(t, "leg-1", results[0].Leg)
	assert.Equal(t, "leg-2", results[1].Leg)
}

func TestRunCancelled(t *testing.T) {
	s := &Script{Legs: []Leg{{Duration: 5}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, beamReach(), s, sim.DefaultDt, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGainsDefault(t *testing.T) {
	s := &Script{}
	kp, _, _ := s.gains()
	assert.Greater(t, kp, 0.0)

	s.Kp = 3
	kp, ki, kd := s.gains()
	assert.Equal(t, []float64{3, 0, 0}, []float64{kp, ki, kd})
}

func TestValidateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"heading", "legs:\n  - {duration: 1, heading_deg: .nan}\n", "heading"},
		{"sheet nan", "legs:\n  - {duration: 1, sheet: .nan}\n", "sheet"},
		{"sheet inf", "legs:\n  - {duration: 1, sheet: .inf}\n", "sheet"},
		{"wind speed nan", "legs:\n  - {duration: 1, wind: {speed: .nan}}\n", "wind speed"},
		{"wind speed inf", "legs:\n  - {duration: 1, wind: {speed: .inf}}\n", "wind speed"},
		{"wind direction", "legs:\n  - {duration: 1, wind: {direction_deg: -.inf}}\n", "wind direction"},
		{"duration", "legs:\n  - {duration: .inf}\n", "duration"},
		{"gains", "kp: .nan\nlegs:\n  - {duration: 1}\n", "gains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScript)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunRejectsNonFiniteWind(t *testing.T) {
	nan := math.NaN()
	s := &Script{Legs: []Leg{{Duration: 1, Wind: &WindOverride{Direction: &nan}}}}

	w := beamReach()
	before := w.Wind
	_, err := Run(context.Background(), w, s, sim.DefaultDt, nil)
	assert.ErrorIs(t, err, ErrInvalidScript)
	assert.Equal(t, before, w.Wind)
}

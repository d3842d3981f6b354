package metrics

import "github.com/san-kum/sailsim/internal/sailing"

// Speed is the mean boat speed over the run.
type Speed struct {
	sum     float64
	samples int
}

func NewSpeed() *Speed { return &Speed{} }

func (s *Speed) Name() string { return "speed" }

func (s *Speed) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	s.sum += snap.Speed
	s.samples++
}

func (s *Speed) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Speed) Reset() {
	s.sum = 0
	s.samples = 0
}

type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	if snap.Speed > m.max {
		m.max = snap.Speed
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

package sim_test

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/golang/geo/r2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
)

type countMetric struct {
	count int
	sum   float64
}

func (m *countMetric) Name() string { return "mean_speed" }
func (m *countMetric) Observe(snap sailing.Snapshot, in sailing.Input, t float64) {
	m.count++
	m.sum += snap.Speed
}
func (m *countMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *countMetric) Reset() { m.count, m.sum = 0, 0 }

type recorder struct{ times []float64 }

func (r *recorder) OnStep(snap sailing.Snapshot, in sailing.Input, t float64) {
	r.times = append(r.times, t)
}

func beamReach() *sailing.World {
	return sailing.NewWorld(sailing.Wind{Speed: 10, Direction: math.Pi / 2}, sailing.NewDinghy(), sailing.DefaultParams())
}

var _ = Describe("Simulator", func() {
	var (
		world *sailing.World
		s     *sim.Simulator
		cfg   sim.Config
	)

	BeforeEach(func() {
		world = beamReach()
		s = sim.New(world, nil)
		cfg = sim.Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	})

	Describe("Run", func() {
		It("records the initial snapshot and one per tick", func() {
			result, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Snapshots).To(HaveLen(11))
			Expect(result.Times).To(HaveLen(11))
			Expect(result.Inputs).To(HaveLen(10))
			Expect(result.StepsTaken).To(Equal(10))
			Expect(result.Times[10]).To(BeNumerically("~", 1.0, 1e-9))
			Expect(result.Err()).NotTo(HaveOccurred())
		})

		It("moves the boat on a beam reach", func() {
			cfg.Dt, cfg.Duration = sim.DefaultDt, 10
			result, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final().Velocity.X).To(BeNumerically(">", 1))
			Expect(world.Steps).To(Equal(300))
		})

		It("thins the record with RecordEvery", func() {
			cfg.RecordEvery = 3
			result, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			// initial, steps 3, 6, 9 and the last one
			Expect(result.Snapshots).To(HaveLen(5))
			Expect(result.Final().Step).To(Equal(10))
		})

		It("feeds metrics and observers once per tick", func() {
			m := &countMetric{}
			r := &recorder{}
			s.AddMetric(m)
			s.AddObserver(r)

			result, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.count).To(Equal(10))
			Expect(r.times).To(HaveLen(10))
			Expect(result.Metrics).To(HaveKey("mean_speed"))
		})

		It("passes the latest snapshot to the controller", func() {
			var seen []int
			ctrl := sim.ControllerFunc(func(snap sailing.Snapshot, t float64) sailing.Input {
				seen = append(seen, snap.Step)
				return sailing.Input{RudderDelta: 0.01}
			})
			s = sim.New(world, ctrl)

			_, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
			Expect(world.Boat.Rudder.Rotation).To(BeNumerically("~", 0.1, 1e-9))
		})

		DescribeTable("rejects invalid configs",
			func(c sim.Config) {
				_, err := s.Run(context.Background(), c)
				Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())
			},
			Entry("zero dt", sim.Config{Dt: 0, Duration: 1}),
			Entry("negative dt", sim.Config{Dt: -0.1, Duration: 1}),
			Entry("zero duration", sim.Config{Dt: 0.1, Duration: 0}),
			Entry("negative duration", sim.Config{Dt: 0.1, Duration: -1}),
		)

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			result, err := s.Run(ctx, cfg)
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.StepsTaken).To(Equal(0))
		})

		It("aborts on a non-finite state", func() {
			world.Boat.Velocity = r2.Point{X: math.NaN()}
			result, err := s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errors).To(HaveLen(1))

			var stepErr *sim.StepError
			Expect(errors.As(result.Err(), &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(0))
			Expect(errors.Is(stepErr, sim.ErrInvalidState)).To(BeTrue())
		})
	})

	Describe("RunWithCallback", func() {
		It("stops when the callback says so", func() {
			calls := 0
			err := s.RunWithCallback(context.Background(), cfg, func(sailing.Snapshot, sailing.Input) bool {
				calls++
				return calls < 4
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(4))
			Expect(world.Steps).To(Equal(4))
		})
	})
})

var _ = Describe("RunRealTime", func() {
	It("paces ticks and stops after the duration", func() {
		world := beamReach()
		r := &recorder{}
		s := sim.New(world, nil)
		s.AddObserver(r)

		start := time.Now()
		err := s.RunRealTime(context.Background(), sim.Config{Dt: 0.01, Duration: 0.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(world.Steps).To(Equal(10))
		Expect(r.times).To(HaveLen(10))
		Expect(time.Since(start)).To(BeNumerically(">=", 90*time.Millisecond))
	})

	It("runs until the context ends when no duration is set", func() {
		world := beamReach()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()

		err := sim.New(world, nil).RunRealTime(ctx, sim.Config{Dt: 0.005})
		Expect(err).NotTo(HaveOccurred())
		Expect(world.Steps).To(BeNumerically(">", 0))
	})

	It("rejects a non-positive dt", func() {
		err := sim.New(beamReach(), nil).RunRealTime(context.Background(), sim.Config{})
		Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent worlds", func() {
		headings := []float64{0, 0.5, 1.0, 1.5}
		e := sim.NewEnsemble(len(headings), func(i int) (*sim.Simulator, error) {
			w := beamReach()
			w.Boat.Rotation = headings[i]
			return sim.New(w, nil), nil
		}).WithWorkers(2)

		results, err := e.Run(context.Background(), sim.Config{Dt: sim.DefaultDt, Duration: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(headings)))
		for i, r := range results {
			Expect(r.Snapshots[0].Rotation).To(Equal(headings[i]))
			Expect(r.StepsTaken).To(Equal(60))
		}
	})

	It("reports build failures", func() {
		boom := errors.New("no boat")
		e := sim.NewEnsemble(3, func(i int) (*sim.Simulator, error) {
			if i == 1 {
				return nil, boom
			}
			return sim.New(beamReach(), nil), nil
		})
		_, err := e.Run(context.Background(), sim.Config{Dt: sim.DefaultDt, Duration: 1})
		Expect(errors.Is(err, boom)).To(BeTrue())
	})
})

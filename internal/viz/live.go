package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/course"
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/vmath"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 300

	DefaultScale = 2.0

	SheetStep   = 2.0
	RudderStep  = 5 * math.Pi / 180
	HeadingStep = 5 * math.Pi / 180
)

type TickMsg time.Time

// Options configure a live Model. Zero values take the defaults.
type Options struct {
	Marks []course.Mark
	Dt    float64
	Scale float64
	Theme string

	// Autopilot gains used when the pilot is engaged with 'a'.
	Kp, Ki, Kd float64
}

// Model sails one boat in real time. The keyboard drives a control.Manual,
// and the autopilot holds the heading it was engaged on.
type Model struct {
	world   *sailing.World
	initial *sailing.World
	dt      float64

	manual  *control.Manual
	pilot   *control.HeadingPID
	trim    *control.AutoTrim
	auto    bool
	tracker *course.Tracker

	canvas *Canvas
	view   Viewport
	theme  Theme
	styles styles

	snap     sailing.Snapshot
	trail    []r2.Point
	speeds   []float64
	running  bool
	showHelp bool
}

// NewModel builds a live view over world. The world is cloned so reset can
// restore it.
func NewModel(world *sailing.World, opts Options) Model {
	if opts.Dt <= 0 {
		opts.Dt = 1.0 / 30
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.Kp == 0 && opts.Ki == 0 && opts.Kd == 0 {
		opts.Kp, opts.Ki, opts.Kd = 1.5, 0.05, 0.5
	}
	theme := GetTheme(opts.Theme)
	canvas := NewCanvas(width, height)

	m := Model{
		world:   world,
		initial: world.Clone(),
		dt:      opts.Dt,
		manual:  control.NewManual(),
		pilot:   control.NewHeadingPID(opts.Kp, opts.Ki, opts.Kd, world.Boat.Rotation),
		tracker: course.NewTracker(opts.Marks),
		canvas:  canvas,
		view:    NewViewport(canvas, opts.Scale),
		theme:   theme,
		styles:  newStyles(theme),
		snap:    world.Snapshot(),
		trail:   make([]r2.Point, 0, trailCapacity),
		speeds:  make([]float64, 0, historyCapacity),
		running: true,
	}
	if len(world.Boat.Sails) > 0 {
		m.trim = control.NewAutoTrim(world.Boat.Sails[0])
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.dt*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "a":
			m.toggleAutopilot()
		case "up", "k":
			m.manual.Nudge(-SheetStep, 0)
		case "down", "j":
			m.manual.Nudge(SheetStep, 0)
		case "left", "h":
			m.steer(-1)
		case "right", "l":
			m.steer(1)
		case "+", "=":
			m.view.Scale /= 1.25
		case "-", "_":
			m.view.Scale *= 1.25
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// steer turns right for dir > 0. With the autopilot engaged it moves the
// target heading instead of the tiller.
func (m *Model) steer(dir float64) {
	if m.auto {
		m.pilot.SetTarget(m.pilot.Target - dir*HeadingStep)
		return
	}
	m.manual.Nudge(0, dir*RudderStep)
}

func (m *Model) toggleAutopilot() {
	m.auto = !m.auto
	if m.auto {
		m.pilot.SetTarget(m.snap.Heading())
	}
}

func (m *Model) controls() sailing.Input {
	in := m.manual.Compute(m.snap, m.snap.Time)
	if !m.auto {
		return in
	}
	in = in.Add(m.pilot.Compute(m.snap, m.snap.Time))
	if m.trim != nil && in.SheetDelta == 0 {
		in = in.Add(m.trim.Compute(m.snap, m.snap.Time))
	}
	return in
}

// step advances the world one tick.
func (m *Model) step() {
	in := m.controls()
	m.snap = m.world.Tick(m.dt, in)
	m.tracker.Observe(m.snap, in, m.snap.Time)

	m.trail = append(m.trail, m.snap.Position)
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.speeds = append(m.speeds, m.snap.Speed)
	if len(m.speeds) > historyCapacity {
		m.speeds = m.speeds[1:]
	}
}

// reset restores the world the view was opened with.
func (m *Model) reset() {
	m.world = m.initial.Clone()
	m.snap = m.world.Snapshot()
	m.manual.Compute(m.snap, 0)
	m.pilot.SetTarget(m.world.Boat.Rotation)
	m.auto = false
	m.tracker.Reset()
	m.trail = m.trail[:0]
	m.speeds = m.speeds[:0]
}

// World is the world being sailed.
func (m Model) World() *sailing.World { return m.world }

// Snapshot is the state after the latest tick.
func (m Model) Snapshot() sailing.Snapshot { return m.snap }

func (m Model) Autopilot() bool { return m.auto }
func (m Model) Running() bool   { return m.running }

// draw renders the scene centred on the boat.
func (m *Model) draw() {
	m.canvas.Clear()
	m.view.Centre = m.snap.Position
	DrawTrail(m.canvas, m.view, m.trail)
	DrawMarks(m.canvas, m.view, m.tracker.Marks, m.tracker.Rounded(), m.snap.Position)
	DrawBoat(m.canvas, m.view, m.world.Boat)
	DrawWind(m.canvas, m.snap.Wind, 16)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.styles
	snap := m.snap

	var s strings.Builder
	s.WriteString(st.header.Render("SAILSIM") + "\n")

	status := st.running.Render("SAILING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	mode := "manual"
	if m.auto {
		mode = st.active.Render(fmt.Sprintf("autopilot %.0f°", vmath.Degrees(m.pilot.Target)))
	}
	s.WriteString(status + "  " + mode + "\n\n")

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Speed"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.row("Time", fmt.Sprintf("%.1fs", snap.Time)))
	s.WriteString(st.row("Speed", fmt.Sprintf("%.2f", snap.Speed)))
	s.WriteString(st.row("Heading", fmt.Sprintf("%.0f°", vmath.Degrees(snap.Heading()))))
	s.WriteString(st.row("Wind", fmt.Sprintf("%.1f @ %.0f°", snap.Wind.Norm(), vmath.Degrees(vmath.Angle(snap.Wind)))))
	s.WriteString(st.row("Apparent", fmt.Sprintf("%.1f @ %.0f°", snap.Apparent.Norm(), vmath.Degrees(vmath.Angle(snap.Apparent)))))
	s.WriteString(st.row("Rudder", fmt.Sprintf("%+.0f°", vmath.Degrees(snap.Rudder))))

	if len(m.world.Boat.Sails) > 0 {
		sail := snap.Sail()
		lo, hi := m.world.Boat.Sails[0].SheetRange(m.world.Params.SheetSlack)
		s.WriteString(st.row("Sheet", fmt.Sprintf("%.1f ", sail.SheetLength)+st.Gauge(sail.SheetLength, lo, hi, 12)))
		s.WriteString(st.row("Boom", fmt.Sprintf("%+.0f° / %.0f°", vmath.Degrees(sail.Rotation), vmath.Degrees(sail.MaxAngle))))
	}

	if n := len(m.tracker.Marks); n > 0 {
		marks := fmt.Sprintf("%d/%d", m.tracker.Rounded(), n)
		if next, ok := m.tracker.Next(); ok {
			marks += fmt.Sprintf("  next %.0f away", next.Position.Sub(snap.Position).Norm())
		} else {
			marks += "  finished"
		}
		s.WriteString(st.row("Marks", marks))
	}

	s.WriteString("\n" + Separator(34, m.theme.Muted))
	s.WriteString(st.help.Render("\n↑↓:Sheet ←→:Rudder A:Pilot\nSP:Pause R:Reset Q:Quit ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Up/K     - Trim the sheet in        ║
║  Down/J   - Ease the sheet out       ║
║  Left/H   - Turn to port             ║
║  Right/L  - Turn to starboard        ║
║  A        - Toggle autopilot         ║
║  + / -    - Zoom in / out            ║
║  T        - Cycle themes             ║
║  Space    - Pause/Resume             ║
║  R        - Reset                    ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`

// Run starts the live view on the terminal and blocks until it is quit.
func Run(world *sailing.World, opts Options) error {
	p := tea.NewProgram(NewModel(world, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

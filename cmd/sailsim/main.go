package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/sailsim/internal/analysis"
	"github.com/san-kum/sailsim/internal/automation"
	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/course"
	"github.com/san-kum/sailsim/internal/export"
	"github.com/san-kum/sailsim/internal/logging"
	"github.com/san-kum/sailsim/internal/metrics"
	"github.com/san-kum/sailsim/internal/optim"
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
	"github.com/san-kum/sailsim/internal/storage"
	"github.com/san-kum/sailsim/internal/telemetry"
	"github.com/san-kum/sailsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	envFile   string

	// scenario flags, shared by every command that builds a world
	configFile  string
	preset      string
	dt          float64
	duration    float64
	controller  string
	heading     float64
	sheet       float64
	windSpeed   float64
	windDir     float64
	kp, ki, kd  float64
	recordEvery int
	name        string

	// output flags
	plotColumn    string
	analyzeColumn string
	track         bool
	outFile       string
	svgWidth      int
	svgHeight     int
	braille       bool

	// sweeps
	angleFrom, angleTo, angleStep float64
	settle                        float64
	workers                       int
	sheetSteps                    int
	headingSteps                  int
	headingSpan                   float64
	metricName                    string
	minimize                      bool

	addr        string
	streamEvery int
	theme       string

	log = logging.Discard()
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "sailsim",
		Short:        "dinghy sailing simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			if !cmd.Flags().Changed("data") {
				if v := os.Getenv(config.EnvDataDir); v != "" {
					dataDir = v
				}
			}
			log = logging.New(os.Stderr, logLevel, logging.Format(logFormat))
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".sailsim", "data directory")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file read at startup")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 0, "keep one snapshot in n")
	runCmd.Flags().StringVar(&name, "name", "", "scenario name used in the run id")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "sail interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "ocean", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "", "plot one column ("+strings.Join(storage.Columns[1:], ", ")+")")
	plotCmd.Flags().BoolVar(&track, "track", false, "draw the track on a braille canvas instead")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the track of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render the braille canvas as dots")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "track and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeColumn, "column", "heading", "column to analyse")

	polarCmd := &cobra.Command{
		Use:   "polar",
		Short: "speed and VMG across true wind angles",
		Args:  cobra.NoArgs,
		RunE:  runPolar,
	}
	addScenarioFlags(polarCmd)
	polarCmd.Flags().Float64Var(&angleFrom, "from", 30, "first true wind angle (degrees)")
	polarCmd.Flags().Float64Var(&angleTo, "to", 180, "last true wind angle (degrees)")
	polarCmd.Flags().Float64Var(&angleStep, "step", 15, "angle step (degrees)")
	polarCmd.Flags().Float64Var(&settle, "settle", 0, "seconds ignored before averaging (default half the run)")
	polarCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	trimCmd := &cobra.Command{
		Use:   "trim",
		Short: "search for the best fixed sheet and heading",
		Args:  cobra.NoArgs,
		RunE:  runTrim,
	}
	addScenarioFlags(trimCmd)
	trimCmd.Flags().IntVar(&sheetSteps, "steps", 12, "sheet lengths tried")
	trimCmd.Flags().IntVar(&headingSteps, "headings", 1, "headings tried around --heading (1 keeps it fixed)")
	trimCmd.Flags().Float64Var(&headingSpan, "heading-span", 60, "width of the heading sweep (degrees)")
	trimCmd.Flags().StringVar(&metricName, "metric", "speed", "metric to optimise ("+strings.Join(metrics.Names(), ", ")+")")
	trimCmd.Flags().BoolVar(&minimize, "minimize", false, "minimise the metric instead")
	trimCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "sail a YAML script of legs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	addScenarioFlags(scriptCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "sail in real time and stream over WebSocket",
		Long:  `Sail in real time and stream snapshots over /ws. Clients send
{"sheet": d, "rudder": d} deltas. With the autopilot or cruise controller
the pilot owns the rudder, so rudder deltas are undone on the next tick;
sheet deltas still apply.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	addScenarioFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&streamEvery, "every", 1, "stream one snapshot in n")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, analyzeCmd, polarCmd, trimCmd, scriptCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset ("+strings.Join(config.ListPresets(), ", ")+")")
	f.Float64Var(&dt, "dt", sim.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.StringVar(&controller, "controller", "none", "controller ("+strings.Join(config.Controllers, ", ")+")")
	f.Float64Var(&heading, "heading", 0, "initial heading and autopilot target (degrees)")
	f.Float64Var(&sheet, "sheet", 0, "sheet length held by the trim controller")
	f.Float64Var(&windSpeed, "wind", config.DefaultWindSpeed, "wind speed")
	f.Float64Var(&windDir, "wind-dir", config.DefaultWindDir, "direction the wind blows toward (degrees)")
	f.Float64Var(&kp, "kp", config.DefaultKp, "autopilot kp")
	f.Float64Var(&ki, "ki", config.DefaultKi, "autopilot ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "autopilot kd")
}

// loadConfig layers preset, config file, environment and flags, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("controller") {
		cfg.Controller = controller
	}
	if f.Changed("heading") {
		cfg.Boat.Heading = heading
		cfg.ControllerParams.Heading = heading
	}
	if f.Changed("sheet") {
		cfg.ControllerParams.Sheet = sheet
	}
	if f.Changed("wind") {
		cfg.Wind.Speed = windSpeed
	}
	if f.Changed("wind-dir") {
		cfg.Wind.Direction = windDir
	}
	if f.Changed("kp") {
		cfg.ControllerParams.Kp = kp
	}
	if f.Changed("ki") {
		cfg.ControllerParams.Ki = ki
	}
	if f.Changed("kd") {
		cfg.ControllerParams.Kd = kd
	}
	if f.Lookup("record-every") != nil && f.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if cfg.ControllerParams.Sheet == 0 {
		cfg.ControllerParams.Sheet = cfg.Boat.Sheet
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func scenarioName() string {
	switch {
	case name != "":
		return name
	case preset != "":
		return preset
	case configFile != "":
		base := configFile[strings.LastIndexAny(configFile, `/\`)+1:]
		return strings.TrimSuffix(base, ".yaml")
	}
	return "sail"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	world, err := cfg.Build()
	if err != nil {
		return err
	}
	ctrl, err := cfg.BuildController(world, nil)
	if err != nil {
		return err
	}

	s := sim.New(world, ctrl).WithLogger(log)
	for _, m := range metrics.All() {
		s.AddMetric(m)
	}
	marks := cfg.BuildCourse()
	if len(marks) > 0 {
		s.AddMetric(course.NewTracker(marks))
	}

	fmt.Printf("sailing %s for %.0fs...\n", scenarioName(), cfg.Duration)
	start := time.Now()

	result, err := s.Run(cmd.Context(), cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Scenario:   scenarioName(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Controller: cfg.Controller,
		Wind:       cfg.SailingWind(),
		Marks:      marks,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if err := result.Err(); err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.4f\n", n, m[n])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := cfg.Build()
	if err != nil {
		return err
	}
	cp := cfg.ControllerParams
	return viz.Run(world, viz.Options{
		Marks: cfg.BuildCourse(),
		Dt:    cfg.Dt,
		Theme: theme,
		Kp:    cp.Kp,
		Ki:    cp.Ki,
		Kd:    cp.Kd,
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tCTRL\tWIND\tSPEED\tMARKS")

	for _, run := range runs {
		marks := "-"
		if len(run.Marks) > 0 {
			marks = fmt.Sprintf("%.0f/%d", run.Metrics["marks"], len(run.Marks))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%s\t%.1f@%.0f°\t%.2f\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Controller,
			run.Wind.Speed,
			run.Wind.Direction*180/math.Pi,
			run.Metrics["speed"],
			marks,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []storage.Record, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, records, nil
}

func trackOf(records []storage.Record) []r2.Point {
	points := make([]r2.Point, len(records))
	for i, r := range records {
		points[i] = r2.Point{X: r.X, Y: r.Y}
	}
	return points
}

var plotCaptions = map[string]string{
	"speed":   "boat speed",
	"heading": "heading (rad)",
	"sheet":   "sheet length",
	"sail":    "boom angle (rad)",
	"rudder":  "rudder (rad)",
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(records))

	if track {
		fmt.Print(viz.TrackCanvas(trackOf(records), meta.Marks, 80, 30).String())
		return nil
	}

	columns := []string{"speed", "heading", "sheet"}
	if plotColumn != "" {
		columns = []string{plotColumn}
	}
	for _, c := range columns {
		data, ok := storage.Series(records, c)
		if !ok {
			return fmt.Errorf("unknown column: %s", c)
		}
		caption := plotCaptions[c]
		if caption == "" {
			caption = c
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteRecordsCSV(os.Stdout, records)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, records)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if braille {
		svg = export.CanvasToSVG(viz.TrackCanvas(trackOf(records), meta.Marks, svgWidth/8, svgHeight/16), 4)
	} else {
		svg = export.TrackToSVG(trackOf(records), meta.Marks, svgWidth, svgHeight, "#00ccff")
	}
	if svg == "" {
		return fmt.Errorf("run %s is too short to draw", meta.ID)
	}

	if outFile == "" {
		_, err = fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	data, ok := storage.Series(records, analyzeColumn)
	if !ok {
		return fmt.Errorf("unknown column: %s", analyzeColumn)
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	fmt.Println(analysis.TrackToASCII(trackOf(records), 70, 20))

	last := records[len(records)-1]
	fmt.Printf("distance made good: %.1f\n", math.Hypot(last.X-records[0].X, last.Y-records[0].Y))
	for _, k := range []string{"speed", "max_speed", "vmg", "leeway", "distance", "marks"} {
		if v, ok := meta.Metrics[k]; ok {
			fmt.Printf("%s: %.3f\n", k, v)
		}
	}
	fmt.Println()

	// sample spacing of the stored records, which may be thinned
	sampleDt := meta.Dt
	if len(records) > 1 {
		sampleDt = (last.Time - records[0].Time) / float64(len(records)-1)
	}
	ps := analysis.PowerSpectrum(data)
	if len(ps) > 2 {
		graph := asciigraph.Plot(ps[1:max(len(ps)/4, 2)],
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption("power spectrum ("+analyzeColumn+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq, _ := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.2f s\n", 1.0/freq)
	}
	return nil
}

func runPolar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if angleStep <= 0 || angleTo < angleFrom {
		return fmt.Errorf("bad angle range %.0f..%.0f step %.0f", angleFrom, angleTo, angleStep)
	}

	var angles []float64
	for a := angleFrom; a <= angleTo+1e-9; a += angleStep {
		angles = append(angles, a*math.Pi/180)
	}
	if settle <= 0 {
		settle = cfg.Duration / 2
	}

	spec := analysis.PolarSpec{
		Angles:  angles,
		Config:  cfg.SimConfig(),
		Settle:  settle,
		Workers: workers,
		Build: func(twa float64) (*sim.Simulator, error) {
			c := cfg.Clone()
			// bow twa off the direction the wind comes from
			h := c.Wind.Direction + 180 - twa*180/math.Pi
			c.Boat.Heading = h
			c.ControllerParams.Heading = h
			c.Controller = "cruise"
			w, err := c.Build()
			if err != nil {
				return nil, err
			}
			ctrl, err := c.BuildController(w, nil)
			if err != nil {
				return nil, err
			}
			return sim.New(w, ctrl), nil
		},
	}

	log.Info("polar sweep", "angles", len(angles), "duration", cfg.Duration, "settle", settle)
	points, err := analysis.Polar(cmd.Context(), spec)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TWA\tSPEED\tVMG")
	speeds := make([]float64, len(points))
	for i, p := range points {
		speeds[i] = p.Speed
		fmt.Fprintf(w, "%.0f°\t%.3f\t%+.3f\n", p.TrueWindAngle*180/math.Pi, p.Speed, p.VMG)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(speeds) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(speeds, asciigraph.Height(8), asciigraph.Caption("speed by true wind angle")))
	}
	if best, ok := analysis.BestVMG(points); ok {
		fmt.Printf("\nbest upwind VMG %.3f at %.0f°\n", best.VMG, best.TrueWindAngle*180/math.Pi)
	}
	return nil
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := metrics.New(metricName); err != nil {
		return err
	}

	names := []string{"sheet"}
	ranges := [][]float64{optim.Linspace(cfg.Geometry.SheetMin, cfg.Geometry.SheetMax, sheetSteps)}
	if headingSteps > 1 {
		h := cfg.ControllerParams.Heading
		names = append(names, "heading")
		ranges = append(ranges, optim.Linspace(h-headingSpan/2, h+headingSpan/2, headingSteps))
	}
	g := optim.NewGridSearch(names, ranges)
	g.Maximize = !minimize
	g.Workers = workers

	build := func(p map[string]float64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Controller = "trim"
		c.ControllerParams.Sheet = p["sheet"]
		if h, ok := p["heading"]; ok {
			c.Boat.Heading = h
			c.ControllerParams.Heading = h
			c.Controller = "autopilot"
		}
		w, err := c.Build()
		if err != nil {
			return nil, err
		}
		ctrl, err := c.BuildController(w, nil)
		if err != nil {
			return nil, err
		}
		if c.Controller == "autopilot" {
			hold := control.NewTrim(p["sheet"], 0)
			ctrl = control.Combine(ctrl, sim.ControllerFunc(func(snap sailing.Snapshot, t float64) sailing.Input {
				in := hold.Compute(snap, t)
				in.RudderDelta = 0
				return in
			}))
		}
		s := sim.New(w, ctrl)
		m, err := metrics.New(metricName)
		if err != nil {
			return nil, err
		}
		s.AddMetric(m)
		return s, nil
	}

	log.Info("trim search", "points", len(ranges[0])*max(headingSteps, 1), "metric", metricName)
	best, evals, err := g.Search(cmd.Context(), build, cfg.SimConfig(), metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	for _, e := range evals {
		for _, n := range names {
			fmt.Fprintf(w, "%.1f\t", e.Params[n])
		}
		marker := ""
		if sameParams(e.Params, best.Params) {
			marker = "  <- best"
		}
		fmt.Fprintf(w, "%.4f%s\n", e.Value, marker)
	}
	return w.Flush()
}

func sameParams(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func runScript(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := cfg.Build()
	if err != nil {
		return err
	}

	if script.Name != "" {
		fmt.Printf("script: %s\n", script.Name)
	}
	if script.Description != "" {
		fmt.Printf("%s\n", script.Description)
	}
	fmt.Printf("legs: %d, %.0fs in total\n\n", len(script.Legs), script.TotalDuration())

	results, runErr := automation.Run(cmd.Context(), world, script, cfg.Dt, log)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEG\tEND\tHEADING\tSPEED\tVMG\tDISTANCE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.1fs\t%.0f°\t%.2f\t%+.2f\t%.1f\n",
			r.Leg,
			r.End.Time,
			r.End.Heading()*180/math.Pi,
			r.Result.Metrics["speed"],
			r.Result.Metrics["vmg"],
			r.Result.Metrics["distance"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := cfg.Build()
	if err != nil {
		return err
	}

	manual := control.NewManual()
	ctrl, err := cfg.BuildController(world, manual)
	if err != nil {
		return err
	}

	hub := telemetry.NewHub(log).Every(streamEvery)
	s := sim.New(world, ctrl).WithLogger(log)
	s.AddObserver(hub)
	if marks := cfg.BuildCourse(); len(marks) > 0 {
		s.AddMetric(course.NewTracker(marks))
	}
	server := telemetry.NewServer(hub, manual, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr)
	})
	g.Go(func() error {
		simCfg := cfg.SimConfig()
		simCfg.Duration = 0
		return s.RunRealTime(ctx, simCfg)
	})
	return g.Wait()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTROLLER\tWIND\tHEADING\tDURATION\tCOURSE")
	for _, n := range config.ListPresets() {
		p := config.GetPreset(n)
		courseDesc := "-"
		switch {
		case p.Course.Windward > 0:
			courseDesc = fmt.Sprintf("windward %.0f", p.Course.Windward)
		case p.Course.Marks > 0:
			courseDesc = fmt.Sprintf("%d marks", p.Course.Marks)
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f@%.0f°\t%.0f°\t%.0fs\t%s\n",
			n, p.Controller, p.Wind.Speed, p.Wind.Direction, p.Boat.Heading, p.Duration, courseDesc)
	}
	return w.Flush()
}

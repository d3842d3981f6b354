package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sailsim/internal/course"
	"github.com/san-kum/sailsim/internal/sailing"
	"github.com/san-kum/sailsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// Columns is the header of states.csv.
var Columns = []string{"time", "x", "y", "vx", "vy", "heading", "speed", "sail", "sheet", "rudder", "aw_x", "aw_y"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Controller string             `json:"controller"`
	Wind       sailing.Wind       `json:"wind"`
	Marks      []course.Mark      `json:"marks,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Record is one row of states.csv.
type Record struct {
	Time    float64
	X, Y    float64
	VX, VY  float64
	Heading float64
	Speed   float64
	Sail    float64 // boom world angle
	Sheet   float64
	Rudder  float64
	AWX     float64
	AWY     float64
}

func FromSnapshot(snap sailing.Snapshot) Record {
	sail := snap.Sail()
	return Record{
		Time:    snap.Time,
		X:       snap.Position.X,
		Y:       snap.Position.Y,
		VX:      snap.Velocity.X,
		VY:      snap.Velocity.Y,
		Heading: snap.Heading(),
		Speed:   snap.Speed,
		Sail:    sail.Boom,
		Sheet:   sail.SheetLength,
		Rudder:  snap.Rudder,
		AWX:     snap.Apparent.X,
		AWY:     snap.Apparent.Y,
	}
}

func (r Record) values() []float64 {
	return []float64{r.Time, r.X, r.Y, r.VX, r.VY, r.Heading, r.Speed, r.Sail, r.Sheet, r.Rudder, r.AWX, r.AWY}
}

func (r Record) row() []string {
	vals := r.values()
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return row
}

func parseRecord(row []string) (Record, error) {
	if len(row) < len(Columns) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}
	v := make([]float64, len(Columns))
	for i := range Columns {
		f, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return Record{}, fmt.Errorf("column %s: %w", Columns[i], err)
		}
		v[i] = f
	}
	return Record{
		Time: v[0], X: v[1], Y: v[2], VX: v[3], VY: v[4], Heading: v[5],
		Speed: v[6], Sail: v[7], Sheet: v[8], Rudder: v[9], AWX: v[10], AWY: v[11],
	}, nil
}

// Save writes a run directory and returns its id. states.csv is written
// first and metadata.json last, so List only ever sees complete runs. On
// failure the directory is removed.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (runID string, err error) {
	if meta.Scenario == "" {
		meta.Scenario = "custom"
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	runID, runDir, err := s.newRunDir(meta.Scenario, meta.Timestamp)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	meta.ID = runID
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	if err := writeStates(filepath.Join(runDir, statesFile), result.Snapshots); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	return runID, nil
}

func writeStates(path string, snaps []sailing.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, snaps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// newRunDir creates a fresh directory, suffixing the id when two runs land
// on the same second.
func (s *Store) newRunDir(scenario string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%s", scenario, ts.Format("20060102-150405"))
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i+1)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadRecords(runID string) ([]Record, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

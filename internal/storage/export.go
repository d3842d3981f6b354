package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/sailsim/internal/sailing"
)

// WriteCSV writes snapshots as states.csv rows, header first.
func WriteCSV(w io.Writer, snaps []sailing.Snapshot) error {
	records := make([]Record, len(snaps))
	for i, s := range snaps {
		records[i] = FromSnapshot(s)
	}
	return WriteRecordsCSV(w, records)
}

func WriteRecordsCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// ExportJSON writes a run's metadata and records as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, records []Record) error {
	data := ExportData{
		Run:     meta,
		Columns: Columns,
		Rows:    make([][]float64, len(records)),
	}
	for i, r := range records {
		data.Rows[i] = r.values()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Series extracts one column from records by name.
func Series(records []Record, column string) ([]float64, bool) {
	idx := -1
	for i, c := range Columns {
		if c == column {
			idx = i
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.values()[idx]
	}
	return out, true
}

package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/stellarsim/internal/star"
)

// StarRecord is one star's entry in a batch document. The persisted form of
// a batch is a bare JSON array of these records: the sole file-format
// contract downstream tooling depends on. Field names must not change.
type StarRecord struct {
	StarID            string             `json:"star_id"`
	InitialMass       float64            `json:"initial_mass"`
	FinalPhase        string             `json:"final_phase"`
	TerminationReason string             `json:"termination_reason"`
	States            []star.StateVector `json:"states"`
}

// NewStarRecords assembles the export records from published trajectories.
func NewStarRecords(trajectories []*star.Trajectory) []StarRecord {
	records := make([]StarRecord, 0, len(trajectories))
	for _, t := range trajectories {
		records = append(records, StarRecord{
			StarID:            t.StarID,
			InitialMass:       t.InitialMass,
			FinalPhase:        string(t.FinalPhase()),
			TerminationReason: string(t.TerminationReason),
			States:            t.States,
		})
	}
	return records
}

// WriteJSON writes the batch document, a top-level array of star records,
// to w.
func WriteJSON(w io.Writer, trajectories []*star.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewStarRecords(trajectories))
}

// ExportJSON writes the batch document to a file.
func ExportJSON(path string, trajectories []*star.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, trajectories)
}

// featureHeader is the flat record shape the ML trainer consumes: one row
// per StateVector, every field present, no nulls.
var featureHeader = []string{
	"star_id", "time_step_index", "age", "mass",
	"luminosity", "radius", "surface_temperature", "phase",
}

// WriteFeaturesCSV writes one feature row per recorded state.
func WriteFeaturesCSV(w io.Writer, trajectories []*star.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(featureHeader); err != nil {
		return err
	}

	for _, t := range trajectories {
		for _, s := range t.States {
			row := []string{
				s.StarID,
				strconv.Itoa(s.TimeStepIndex),
				formatFloat(s.Age),
				formatFloat(s.Mass),
				formatFloat(s.Luminosity),
				formatFloat(s.Radius),
				formatFloat(s.SurfaceTemperature),
				string(s.Phase),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFeaturesCSV writes the feature table to a file.
func ExportFeaturesCSV(path string, trajectories []*star.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteFeaturesCSV(f, trajectories); err != nil {
		return fmt.Errorf("export features: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

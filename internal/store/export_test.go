package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/stellarsim/internal/star"
)

func TestWriteJSON_DocumentShape(t *testing.T) {
	var buf bytes.Buffer
	trajs := []*star.Trajectory{sampleTrajectory("sun")}

	if err := WriteJSON(&buf, trajs); err != nil {
		t.Fatal(err)
	}

	// Decode as generic JSON so the assertion is about the wire contract,
	// not our own struct tags. The document is a bare array of star records;
	// consumers unmarshal it directly into a slice.
	var stars []any
	if err := json.Unmarshal(buf.Bytes(), &stars); err != nil {
		t.Fatalf("document is not a top-level array: %v", err)
	}
	if len(stars) != 1 {
		t.Fatalf("expected 1 record, got %d", len(stars))
	}

	rec := stars[0].(map[string]any)
	if rec["star_id"] != "sun" {
		t.Errorf("star_id = %v", rec["star_id"])
	}
	if rec["initial_mass"] != 1.0 {
		t.Errorf("initial_mass = %v", rec["initial_mass"])
	}
	if rec["final_phase"] != "pre_main_sequence" {
		t.Errorf("final_phase = %v", rec["final_phase"])
	}
	if rec["termination_reason"] != "terminal_phase" {
		t.Errorf("termination_reason = %v", rec["termination_reason"])
	}

	states := rec["states"].([]any)
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	first := states[0].(map[string]any)
	for _, field := range []string{
		"star_id", "time_step_index", "age", "mass",
		"luminosity", "radius", "surface_temperature", "phase",
	} {
		if _, ok := first[field]; !ok {
			t.Errorf("state missing field %q", field)
		}
	}
	// Run-internal bookkeeping never leaks into the document.
	for field := range first {
		switch field {
		case "star_id", "time_step_index", "age", "mass",
			"luminosity", "radius", "surface_temperature", "phase":
		default:
			t.Errorf("unexpected state field %q", field)
		}
	}
}

func TestWriteJSON_EmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty batch must encode as [], not %q", got)
	}
}

func TestWriteJSON_ConsumableAsRecordSlice(t *testing.T) {
	var buf bytes.Buffer
	trajs := []*star.Trajectory{sampleTrajectory("a"), sampleTrajectory("b")}

	if err := WriteJSON(&buf, trajs); err != nil {
		t.Fatal(err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("document must unmarshal as a record array: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestWriteFeaturesCSV(t *testing.T) {
	var buf bytes.Buffer
	trajs := []*star.Trajectory{sampleTrajectory("sun")}

	if err := WriteFeaturesCSV(&buf, trajs); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	wantHeader := "star_id,time_step_index,age,mass,luminosity,radius,surface_temperature,phase"
	if strings.Join(rows[0], ",") != wantHeader {
		t.Errorf("header = %v", rows[0])
	}

	first := rows[1]
	if first[0] != "sun" || first[1] != "0" || first[7] != "pre_main_sequence" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[3] != "1" {
		t.Errorf("mass column = %q", first[3])
	}
}

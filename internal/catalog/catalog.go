// Package catalog holds initial conditions handed over by the upstream
// preprocessing pipeline: one record per star, validated before any
// simulation starts so a bad record never costs the rest of the batch.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/stellarsim/internal/config"
	"github.com/san-kum/stellarsim/internal/star"
)

// SolarMetallicity is assumed when a record carries no metallicity column.
const SolarMetallicity = 0.02

// MaxMetallicity bounds the supported metal mass fraction.
const MaxMetallicity = 0.1

// Star is one star's initial condition.
type Star struct {
	ID          string
	Mass        float64 // solar masses
	Metallicity float64 // metal mass fraction Z
	SeedAge     float64 // Myr, optional age offset at formation
}

// Validate fails with ErrInvalidInitialCondition when the record is
// malformed or outside the supported range.
func (s Star) Validate(bands config.MassBands) error {
	fail := func(format string, args ...any) error {
		return star.WrapError(s.ID, 0, nil,
			fmt.Errorf("%w: "+format, append([]any{star.ErrInvalidInitialCondition}, args...)...))
	}

	if s.ID == "" {
		return fail("empty star id")
	}
	if math.IsNaN(s.Mass) || s.Mass < bands.Min || s.Mass > bands.Max {
		return fail("mass %g outside supported range [%g, %g]", s.Mass, bands.Min, bands.Max)
	}
	if math.IsNaN(s.Metallicity) || s.Metallicity < 0 || s.Metallicity > MaxMetallicity {
		return fail("metallicity %g outside [0, %g]", s.Metallicity, MaxMetallicity)
	}
	if math.IsNaN(s.SeedAge) || s.SeedAge < 0 {
		return fail("seed age %g must be non-negative", s.SeedAge)
	}
	return nil
}

// LoadCSV reads a catalog file with header
// star_id,initial_mass[,metallicity[,seed_age]]. Missing optional columns
// fall back to solar metallicity and zero seed age. Parsing is strict: a
// malformed row is an error, matching the fail-fast contract with the
// upstream pipeline.
func LoadCSV(path string) ([]Star, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses catalog records from r.
func ReadCSV(r io.Reader) ([]Star, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog: empty input")
	}

	stars := make([]Star, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("catalog: row %d: need at least star_id and initial_mass", i+1)
		}

		s := Star{ID: rec[0], Metallicity: SolarMetallicity}

		if s.Mass, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("catalog: row %d: bad mass %q", i+1, rec[1])
		}
		if len(rec) > 2 && rec[2] != "" {
			if s.Metallicity, err = strconv.ParseFloat(rec[2], 64); err != nil {
				return nil, fmt.Errorf("catalog: row %d: bad metallicity %q", i+1, rec[2])
			}
		}
		if len(rec) > 3 && rec[3] != "" {
			if s.SeedAge, err = strconv.ParseFloat(rec[3], 64); err != nil {
				return nil, fmt.Errorf("catalog: row %d: bad seed age %q", i+1, rec[3])
			}
		}

		stars = append(stars, s)
	}

	return stars, nil
}

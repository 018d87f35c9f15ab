package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/stellarsim/internal/star"
)

// Sqlite is a durable trajectory archive. The schema mirrors the export
// contract: one row per trajectory plus one row per state. A publish is one
// transaction, so readers on other connections never see a partial run.
type Sqlite struct {
	db *sql.DB
}

// OpenSqlite opens or creates the archive database at path.
func OpenSqlite(path string) (*Sqlite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS trajectories (
			star_id TEXT PRIMARY KEY,
			initial_mass REAL NOT NULL,
			final_phase TEXT NOT NULL,
			termination_reason TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS states (
			star_id TEXT NOT NULL,
			time_step_index INTEGER NOT NULL,
			age REAL NOT NULL,
			mass REAL NOT NULL,
			luminosity REAL NOT NULL,
			radius REAL NOT NULL,
			surface_temperature REAL NOT NULL,
			phase TEXT NOT NULL,
			PRIMARY KEY (star_id, time_step_index),
			FOREIGN KEY (star_id) REFERENCES trajectories(star_id) ON DELETE CASCADE
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Sqlite{db: db}, nil
}

// Close closes the database connection.
func (s *Sqlite) Close() error { return s.db.Close() }

// Record publishes t in a single transaction, replacing any previous run.
func (s *Sqlite) Record(ctx context.Context, t *star.Trajectory) error {
	if t == nil || t.StarID == "" {
		return fmt.Errorf("store: trajectory must have a star id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM states WHERE star_id = ?`, t.StarID); err != nil {
		return fmt.Errorf("clear states: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trajectories (star_id, initial_mass, final_phase, termination_reason)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(star_id) DO UPDATE SET
			initial_mass = excluded.initial_mass,
			final_phase = excluded.final_phase,
			termination_reason = excluded.termination_reason`,
		t.StarID, t.InitialMass, string(t.FinalPhase()), string(t.TerminationReason),
	); err != nil {
		return fmt.Errorf("upsert trajectory: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO states (star_id, time_step_index, age, mass, luminosity, radius, surface_temperature, phase)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare states: %w", err)
	}
	defer stmt.Close()

	for _, sv := range t.States {
		if _, err := stmt.ExecContext(ctx,
			sv.StarID, sv.TimeStepIndex, sv.Age, sv.Mass,
			sv.Luminosity, sv.Radius, sv.SurfaceTemperature, string(sv.Phase),
		); err != nil {
			return fmt.Errorf("insert state %d: %w", sv.TimeStepIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish: %w", err)
	}
	return nil
}

// Get loads one star's trajectory.
func (s *Sqlite) Get(ctx context.Context, starID string) (*star.Trajectory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT star_id, initial_mass, termination_reason FROM trajectories WHERE star_id = ?`, starID)

	t := &star.Trajectory{}
	var reason string
	if err := row.Scan(&t.StarID, &t.InitialMass, &reason); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", star.ErrNotFound, starID)
		}
		return nil, fmt.Errorf("load trajectory: %w", err)
	}
	t.TerminationReason = star.TerminationReason(reason)

	if err := s.loadStates(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// All loads every archived trajectory, ordered by star id.
func (s *Sqlite) All(ctx context.Context) ([]*star.Trajectory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT star_id, initial_mass, termination_reason FROM trajectories ORDER BY star_id`)
	if err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}
	defer rows.Close()

	var out []*star.Trajectory
	for rows.Next() {
		t := &star.Trajectory{}
		var reason string
		if err := rows.Scan(&t.StarID, &t.InitialMass, &reason); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		t.TerminationReason = star.TerminationReason(reason)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}

	for _, t := range out {
		if err := s.loadStates(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Sqlite) loadStates(ctx context.Context, t *star.Trajectory) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time_step_index, age, mass, luminosity, radius, surface_temperature, phase
		 FROM states WHERE star_id = ? ORDER BY time_step_index`, t.StarID)
	if err != nil {
		return fmt.Errorf("load states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sv := star.StateVector{StarID: t.StarID, InitialMass: t.InitialMass}
		var phase string
		if err := rows.Scan(&sv.TimeStepIndex, &sv.Age, &sv.Mass,
			&sv.Luminosity, &sv.Radius, &sv.SurfaceTemperature, &phase); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		sv.Phase = star.Phase(phase)
		t.States = append(t.States, sv)
	}
	return rows.Err()
}

// Package runstore persists training runs and their per-step traces to a
// local SQLite database so experiments can be compared after the fact.
package runstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/helioq-labs/varq/internal/train"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one persisted training run.
type Run struct {
	ID           string    `json:"id"`
	Circuit      string    `json:"circuit"`
	Optimizer    string    `json:"optimizer"`
	LearningRate float64   `json:"learning_rate"`
	Steps        int       `json:"steps"`
	Shots        int       `json:"shots"`
	Seed         int64     `json:"seed"`
	FinalLoss    float64   `json:"final_loss"`
	Accuracy     float64   `json:"accuracy"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// Note: m is not closed here because that would close the underlying
	// DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SaveRun persists a run and its full step history in one transaction and
// returns the generated run ID.
func (s *Store) SaveRun(run Run, hist train.History) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, circuit, optimizer, learning_rate, steps, shots, seed, final_loss, accuracy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Circuit, run.Optimizer, run.LearningRate, run.Steps,
		run.Shots, run.Seed, hist.FinalLoss, hist.Accuracy)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_steps (run_id, step, loss, params_json) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare step insert: %w", err)
	}
	defer stmt.Close()

	for _, step := range hist.Steps {
		paramsJSON, err := json.Marshal(step.Params)
		if err != nil {
			return "", fmt.Errorf("marshal params for step %d: %w", step.Step, err)
		}
		if _, err := stmt.Exec(run.ID, step.Step, step.Loss, string(paramsJSON)); err != nil {
			return "", fmt.Errorf("insert step %d: %w", step.Step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, circuit, optimizer, learning_rate, steps, shots, seed,
		       COALESCE(final_loss, 0), COALESCE(accuracy, 0), created_at
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Circuit, &r.Optimizer, &r.LearningRate,
			&r.Steps, &r.Shots, &r.Seed, &r.FinalLoss, &r.Accuracy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	var r Run
	err := s.db.QueryRow(`
		SELECT run_id, circuit, optimizer, learning_rate, steps, shots, seed,
		       COALESCE(final_loss, 0), COALESCE(accuracy, 0), created_at
		FROM runs WHERE run_id = ?`, id).
		Scan(&r.ID, &r.Circuit, &r.Optimizer, &r.LearningRate,
			&r.Steps, &r.Shots, &r.Seed, &r.FinalLoss, &r.Accuracy, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run %s: %w", id, err)
	}
	return r, nil
}

// GetHistory reconstructs the step history of a run.
func (s *Store) GetHistory(id string) (train.History, error) {
	rows, err := s.db.Query(`SELECT step, loss, params_json FROM run_steps WHERE run_id = ? ORDER BY step`, id)
	if err != nil {
		return train.History{}, fmt.Errorf("query steps for run %s: %w", id, err)
	}
	defer rows.Close()

	var hist train.History
	for rows.Next() {
		var rec train.StepRecord
		var paramsJSON string
		if err := rows.Scan(&rec.Step, &rec.Loss, &paramsJSON); err != nil {
			return train.History{}, fmt.Errorf("scan step: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &rec.Params); err != nil {
			return train.History{}, fmt.Errorf("unmarshal params for step %d: %w", rec.Step, err)
		}
		hist.Steps = append(hist.Steps, rec)
	}
	if err := rows.Err(); err != nil {
		return train.History{}, err
	}
	if len(hist.Steps) == 0 {
		return train.History{}, fmt.Errorf("run %s has no steps", id)
	}
	hist.FinalLoss = hist.Steps[len(hist.Steps)-1].Loss

	run, err := s.GetRun(id)
	if err != nil {
		return train.History{}, err
	}
	hist.Accuracy = run.Accuracy
	return hist, nil
}

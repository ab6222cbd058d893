package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	// ErrModelNotFound is returned when no model has the requested name.
	ErrModelNotFound = errors.New("registry: model not found")
	// ErrModelExists is returned by ImportModel when the name is already taken.
	ErrModelExists = errors.New("registry: model already exists")
	// ErrCorruptModel is returned when stored rows do not describe a valid chain.
	ErrCorruptModel = errors.New("registry: stored model is corrupt")
	// ErrFrequencyOverflow is returned when a count does not fit a signed 64-bit
	// database integer.
	ErrFrequencyOverflow = errors.New("registry: transition count exceeds storable range")
)

// SetupSchema initializes the necessary tables in the provided database. This
// function should be called once on a new database before any other operations are
// performed. It is idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaModels = `
CREATE TABLE IF NOT EXISTS markov_models (
    model_id INTEGER PRIMARY KEY,
    model_name TEXT NOT NULL UNIQUE,
    vertices TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
		schemaTransitions = `
CREATE TABLE IF NOT EXISTS markov_transitions (
    model_id INTEGER NOT NULL,
    from_index INTEGER NOT NULL,
    to_index INTEGER NOT NULL,
    frequency INTEGER NOT NULL,
    PRIMARY KEY (model_id, from_index, to_index)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaModels); err != nil {
		return fmt.Errorf("could not create models schema: %w", err)
	}

	if _, err = tx.Exec(schemaTransitions); err != nil {
		return fmt.Errorf("could not create transitions schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Registry is a catalog of named, fitted chains stored in a SQL database. It holds
// the database connection and prepared SQL statements for efficient access.
type Registry struct {
	db                   *sql.DB
	stmtGetModelInfo     *sql.Stmt
	stmtGetModels        *sql.Stmt
	stmtGetTransitions   *sql.Stmt
	stmtModelTransitions *sql.Stmt
	stmtModelFreq        *sql.Stmt
	logger               *slog.Logger
}

// NewRegistry creates and returns a new Registry. It pre-compiles all necessary SQL
// statements, returning an error if any preparation fails. SetupSchema must have
// been run on db.
func NewRegistry(db *sql.DB) (*Registry, error) {
	stmtGetModelInfo, err := db.Prepare(`SELECT model_id, vertices, created_at FROM markov_models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetModels, err := db.Prepare(`SELECT model_id, model_name, vertices, created_at FROM markov_models ORDER BY model_name;`)
	if err != nil {
		return nil, err
	}

	stmtGetTransitions, err := db.Prepare(`SELECT from_index, to_index, frequency FROM markov_transitions WHERE model_id = ? ORDER BY from_index, to_index;`)
	if err != nil {
		return nil, err
	}

	stmtModelTransitions, err := db.Prepare(`SELECT COUNT(*) FROM markov_transitions WHERE model_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtModelFreq, err := db.Prepare(`SELECT coalesce(SUM(frequency), 0) FROM markov_transitions WHERE model_id = ?;`)
	if err != nil {
		return nil, err
	}

	return &Registry{
		db:                   db,
		stmtGetModelInfo:     stmtGetModelInfo,
		stmtGetModels:        stmtGetModels,
		stmtGetTransitions:   stmtGetTransitions,
		stmtModelTransitions: stmtModelTransitions,
		stmtModelFreq:        stmtModelFreq,
		logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Registry. It does not
// close the database.
func (r *Registry) Close() {
	_ = r.stmtGetModelInfo.Close()
	_ = r.stmtGetModels.Close()
	_ = r.stmtGetTransitions.Close()
	_ = r.stmtModelTransitions.Close()
	_ = r.stmtModelFreq.Close()
}

// SetLogger sets the logger for the Registry. By default, all logs are discarded.
func (r *Registry) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

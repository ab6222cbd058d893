package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"
	"unicode/utf8"

	"github.com/CTAG07/wordweaver/pkg/markov"
)

// ModelInfo holds the metadata of a stored model.
type ModelInfo struct {
	Id        int
	Name      string
	Vertices  string // the alphabet in the chain's fixed order
	CreatedAt time.Time
}

// ExportedModel is the serializable representation of a stored model, used for
// JSON-based import and export. Only non-zero transitions are listed.
type ExportedModel struct {
	Name        string               `json:"name"`
	Vertices    string               `json:"vertices"`
	Transitions []ExportedTransition `json:"transitions"`
}

// ExportedTransition is a single from→to count within an ExportedModel.
type ExportedTransition struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Frequency uint64 `json:"frequency"`
}

// GetModelInfos retrieves metadata for all stored models, ordered by name.
func (r *Registry) GetModelInfos(ctx context.Context) ([]ModelInfo, error) {
	rows, err := r.stmtGetModels.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var models []ModelInfo
	for rows.Next() {
		var model ModelInfo
		var created int64
		if err = rows.Scan(&model.Id, &model.Name, &model.Vertices, &created); err != nil {
			return nil, err
		}
		model.CreatedAt = time.Unix(created, 0).UTC()
		models = append(models, model)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// GetModelInfo retrieves the metadata for a single model specified by name. It
// returns ErrModelNotFound if there is none.
func (r *Registry) GetModelInfo(ctx context.Context, name string) (ModelInfo, error) {
	info := ModelInfo{Name: name}
	var created int64
	err := r.stmtGetModelInfo.QueryRowContext(ctx, name).Scan(&info.Id, &info.Vertices, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	if err != nil {
		return ModelInfo{}, err
	}
	info.CreatedAt = time.Unix(created, 0).UTC()
	return info, nil
}

// SaveModel stores chain under name, replacing any model already stored under that
// name. The operation is performed within a transaction.
func (r *Registry) SaveModel(ctx context.Context, name string, chain *markov.Chain) error {
	return r.storeModel(ctx, name, chain, true)
}

// storeModel writes chain under name. Unless replace is set, an existing model with
// that name is an ErrModelExists error.
func (r *Registry) storeModel(ctx context.Context, name string, chain *markov.Chain, replace bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for save: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var existingID int
	err = tx.QueryRowContext(ctx, "SELECT model_id FROM markov_models WHERE model_name = ?", name).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to query for model '%s': %w", name, err)
	case !replace:
		return fmt.Errorf("%w: %q", ErrModelExists, name)
	default:
		if err = deleteModel(ctx, tx, existingID); err != nil {
			return err
		}
	}

	vertices := chain.Vertices()
	res, err := tx.ExecContext(ctx, "INSERT INTO markov_models (model_name, vertices, created_at) VALUES (?, ?, ?)",
		name, string(vertices), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert model '%s': %w", name, err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read id of model '%s': %w", name, err)
	}

	stmtInsertTransition, err := tx.PrepareContext(ctx, `INSERT INTO markov_transitions (model_id, from_index, to_index, frequency) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare transition insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertTransition)

	n := len(vertices)
	var transitions int
	for i, w := range chain.Weights() {
		if w == 0 {
			continue
		}
		if w > math.MaxInt64 {
			return fmt.Errorf("%w: transition (%d -> %d) has count %d", ErrFrequencyOverflow, i/n, i%n, w)
		}
		if _, err = stmtInsertTransition.ExecContext(ctx, newID, i/n, i%n, int64(w)); err != nil {
			return fmt.Errorf("failed to insert transition (%d -> %d): %w", i/n, i%n, err)
		}
		transitions++
	}

	r.logger.InfoContext(ctx, "Model saved",
		slog.String("model_name", name),
		slog.Int64("model_id", newID),
		slog.Int("vertices", n),
		slog.Int("transitions", transitions),
	)

	return tx.Commit()
}

// LoadModel rebuilds the chain stored under name. opts are passed to markov.New.
func (r *Registry) LoadModel(ctx context.Context, name string, opts ...markov.Option) (*markov.Chain, error) {
	info, err := r.GetModelInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	vertices := []rune(info.Vertices)
	n := len(vertices)
	weights := make([]uint64, n*n)

	rows, err := r.stmtGetTransitions.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query transitions for model '%s': %w", name, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var from, to int
		var freq int64
		if err = rows.Scan(&from, &to, &freq); err != nil {
			return nil, err
		}
		if from < 0 || from >= n || to < 0 || to >= n || freq < 0 {
			return nil, fmt.Errorf("%w: transition (%d -> %d, %d) outside a %d-symbol alphabet", ErrCorruptModel, from, to, freq, n)
		}
		weights[from*n+to] = uint64(freq)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	chain, err := markov.New(vertices, weights, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptModel, err)
	}

	r.logger.DebugContext(ctx, "Model loaded",
		slog.String("model_name", name),
		slog.Int("model_id", info.Id),
	)
	return chain, nil
}

// RemoveModel deletes a model and all of its transitions. The operation is
// performed within a transaction.
func (r *Registry) RemoveModel(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var modelID int
	err = tx.QueryRowContext(ctx, "SELECT model_id FROM markov_models WHERE model_name = ?", name).Scan(&modelID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	if err != nil {
		return err
	}

	if err = deleteModel(ctx, tx, modelID); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Model removed successfully",
		slog.String("model_name", name),
		slog.Int("model_id", modelID),
	)

	return tx.Commit()
}

func deleteModel(ctx context.Context, tx *sql.Tx, modelID int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM markov_transitions WHERE model_id = ?", modelID); err != nil {
		return fmt.Errorf("failed to remove transitions for model %d: %w", modelID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM markov_models WHERE model_id = ?", modelID); err != nil {
		return fmt.Errorf("failed to remove model %d: %w", modelID, err)
	}
	return nil
}

// ExportModel serializes the model stored under name into JSON and writes it to w.
// This is useful for backups or for transferring models between databases.
func (r *Registry) ExportModel(ctx context.Context, name string, w io.Writer) error {
	chain, err := r.LoadModel(ctx, name)
	if err != nil {
		return err
	}

	vertices := chain.Vertices()
	n := len(vertices)
	exported := ExportedModel{
		Name:        name,
		Vertices:    string(vertices),
		Transitions: []ExportedTransition{},
	}
	for i, freq := range chain.Weights() {
		if freq == 0 {
			continue
		}
		exported.Transitions = append(exported.Transitions, ExportedTransition{
			From:      string(vertices[i/n]),
			To:        string(vertices[i%n]),
			Frequency: freq,
		})
	}

	r.logger.InfoContext(ctx, "Model exported",
		slog.String("model_name", name),
		slog.Int("vertices", n),
		slog.Int("transitions_exported", len(exported.Transitions)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// ImportModel reads a JSON model written by ExportModel and stores it. Importing
// never merges into an existing model: a name that is already taken is an
// ErrModelExists error.
func (r *Registry) ImportModel(ctx context.Context, rd io.Reader) (ModelInfo, error) {
	var imported ExportedModel
	if err := json.NewDecoder(rd).Decode(&imported); err != nil {
		return ModelInfo{}, fmt.Errorf("failed to decode json model: %w", err)
	}
	if imported.Name == "" {
		return ModelInfo{}, errors.New("imported model has no name")
	}

	vertices := []rune(imported.Vertices)
	n := len(vertices)
	index := make(map[rune]int, n)
	for i, v := range vertices {
		index[v] = i
	}
	lookup := func(s string) (int, bool) {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) {
			return 0, false
		}
		i, ok := index[r]
		return i, ok
	}

	weights := make([]uint64, n*n)
	for _, t := range imported.Transitions {
		from, okFrom := lookup(t.From)
		to, okTo := lookup(t.To)
		if !okFrom || !okTo {
			return ModelInfo{}, fmt.Errorf("import consistency error: transition %q -> %q is not in the vertex table", t.From, t.To)
		}
		weights[from*n+to] = t.Frequency
	}

	chain, err := markov.New(vertices, weights)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("invalid imported model '%s': %w", imported.Name, err)
	}
	if err = r.storeModel(ctx, imported.Name, chain, false); err != nil {
		return ModelInfo{}, err
	}

	r.logger.InfoContext(ctx, "Model imported successfully",
		slog.String("model_name", imported.Name),
		slog.Int("transitions_imported", len(imported.Transitions)),
	)
	return r.GetModelInfo(ctx, imported.Name)
}

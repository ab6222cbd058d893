package registry

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupTestDB creates a new SQLite database in a temp dir and a Registry for
// testing. It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Registry) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile)
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SetupSchema(db), "failed to set up schema")

	r, err := NewRegistry(db)
	require.NoError(t, err, "NewRegistry() error")
	t.Cleanup(r.Close)

	return db, r
}

// setupTestDBWithModel is a convenience helper that also stores a fitted model.
func setupTestDBWithModel(t *testing.T) (context.Context, *Registry, *markov.Chain) {
	_, r := setupTestDB(t)
	ctx := context.Background()

	chain, err := markov.Fit([]string{"aa", "ar", "rc", "cr", "bo"})
	require.NoError(t, err, "setup: Fit() failed")
	require.NoError(t, r.SaveModel(ctx, "test_model", chain), "setup: SaveModel() failed")
	return ctx, r, chain
}

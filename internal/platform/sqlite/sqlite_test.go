package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/phrazzld/scry-study/internal/platform/sqlite"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/phrazzld/scry-study/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "scry.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(ctx, db, nil))
	return db
}

func TestRepositoryContract(t *testing.T) {
	storetest.RunRepositoryTests(t, func(t *testing.T) store.Repository {
		return sqlite.NewRepository(openTestDB(t), nil)
	})
}

func TestMigrationStatus(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "status.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	before, err := sqlite.MigrationStatus(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, before)
	for _, s := range before {
		assert.False(t, s.Applied, s.Path)
	}

	require.NoError(t, sqlite.Migrate(ctx, db, nil))
	// Re-running is a no-op.
	require.NoError(t, sqlite.Migrate(ctx, db, nil))

	after, err := sqlite.MigrationStatus(ctx, db)
	require.NoError(t, err)
	for _, s := range after {
		assert.True(t, s.Applied, s.Path)
		assert.False(t, s.AppliedAt.IsZero())
	}
	assert.Equal(t, int64(1), after[0].Version)
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db, nil))

	repo := sqlite.NewRepository(db, nil)
	deck := storetest.NewDeck(t, "Scratch")
	storetest.Seed(t, repo, deck, storetest.NewCard(t, deck.ID, "q", storetest.BaseTime))

	cards, err := repo.Cards().FetchCards(ctx, store.AllDecks())
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestMapErrorPassthrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sqlite.MapError(nil))
	assert.ErrorIs(t, sqlite.MapError(sql.ErrNoRows), store.ErrNotFound)

	generic := errors.New("generic error")
	assert.Same(t, generic, sqlite.MapError(generic))
}

package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func noteID(n note) string { return n.ID }

type failingStore struct{}

func (failingStore) Load(context.Context, string, any) (bool, error) {
	return false, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, string, any) error {
	return errors.New("disk on fire")
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection(memory.New(), "notes", noteID)

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, c.Append(ctx, note{ID: "a", Text: "one"}, note{ID: "b", Text: "two"}))

	got, err := c.Find(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Text)

	updated, err := c.Modify(ctx, "a", func(n note) (note, error) {
		n.Text = "uno"
		return n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "uno", updated.Text)

	require.NoError(t, c.Delete(ctx, "b"))
	all, err = c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: "a", Text: "uno"}}, all)

	assert.ErrorIs(t, c.Delete(ctx, "missing"), storage.ErrNotFound)
	_, err = c.Find(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCollectionUpdateFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection(memory.New(), "notes", noteID)
	require.NoError(t, c.Append(ctx, note{ID: "a"}))

	boom := errors.New("boom")
	_, err := c.Update(ctx, func([]note) ([]note, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCollectionConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	c := storage.NewCollection(memory.New(), "notes", noteID)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Append(ctx, note{ID: "x"}))
		}()
	}
	wg.Wait()

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestCollectionPropagatesStoreErrors(t *testing.T) {
	c := storage.NewCollection[note](failingStore{}, "notes", noteID)
	_, err := c.All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes")
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Ping(ctx))

	var got []note
	found, err := repo.Load(ctx, "notes", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, "notes", []note{{ID: "1", Text: "first"}}))
	require.NoError(t, repo.Save(ctx, "notes", []note{{ID: "1", Text: "second"}}))

	found, err = repo.Load(ctx, "notes", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []note{{ID: "1", Text: "second"}}, got)

	var wrong int
	_, err = repo.Load(ctx, "notes", &wrong)
	assert.ErrorIs(t, err, storage.ErrStorage)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")

	version, err := storage.RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	version, err = storage.RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

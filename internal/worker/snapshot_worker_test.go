package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txdash/internal/core"
	"txdash/internal/dataset/memory"
	"txdash/internal/storage"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func records() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Title: "Blue Shirt", Price: 19.99, Category: "men's clothing", Sold: true,
			DateOfSale: time.Date(2021, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Title: "Gold Ring", Price: 650, Category: "jewelery",
			DateOfSale: time.Date(2021, time.April, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRunOnceStoresDataset(t *testing.T) {
	repo := newRepo(t)
	w := NewSnapshotWorker(memory.New(records()), "memory", repo, quiet())

	snap, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Records)
	assert.Equal(t, "memory", snap.Source)

	stored, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Blue Shirt", stored[0].Title)
}

func TestRunOnceKeepsPreviousSnapshotOnFetchFailure(t *testing.T) {
	repo := newRepo(t)
	src := memory.New(records())
	w := NewSnapshotWorker(src, "memory", repo, quiet())

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	src.FailWith(errors.New("upstream down"))
	_, err = w.RunOnce(context.Background())
	require.Error(t, err)

	stored, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestRunTakesSnapshotsUntilCancelled(t *testing.T) {
	repo := newRepo(t)
	w := NewSnapshotWorker(memory.New(records()), "memory", repo, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu   sync.Mutex
		seen []storage.Snapshot
	)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, 10*time.Millisecond, func(s storage.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, s)
			if len(seen) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("worker did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seen), 2)
	assert.Greater(t, seen[1].ID, seen[0].ID)
}

func TestRunRejectsZeroInterval(t *testing.T) {
	w := NewSnapshotWorker(memory.New(nil), "memory", newRepo(t), quiet())
	assert.Error(t, w.Run(context.Background(), 0, nil))
}

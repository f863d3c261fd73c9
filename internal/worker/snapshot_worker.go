package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"txdash/internal/core"
	"txdash/internal/dataset"
	"txdash/internal/log"
	"txdash/internal/storage"
)

// SnapshotStore persists a full copy of the dataset.
type SnapshotStore interface {
	ReplaceAll(ctx context.Context, source string, txns []core.Transaction) (storage.Snapshot, error)
}

// SnapshotWorker copies the dataset from a source into a store, once or on a
// fixed interval.
type SnapshotWorker struct {
	source     dataset.Source
	sourceName string
	store      SnapshotStore
	logger     *slog.Logger
}

func NewSnapshotWorker(source dataset.Source, sourceName string, store SnapshotStore, logger *slog.Logger) *SnapshotWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotWorker{
		source:     source,
		sourceName: sourceName,
		store:      store,
		logger:     logger,
	}
}

// RunOnce fetches the whole dataset and replaces the stored copy. A failed
// fetch leaves the previous snapshot in place.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (storage.Snapshot, error) {
	start := time.Now()
	txns, err := w.source.FetchAll(ctx)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("fetch %s: %w", w.sourceName, err)
	}

	snap, err := w.store.ReplaceAll(ctx, w.sourceName, txns)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("store snapshot: %w", err)
	}

	w.logger.InfoContext(ctx, "Snapshot taken",
		log.FieldOperation, log.OpSnapshot,
		"snapshot_id", snap.ID,
		log.FieldSource, w.sourceName,
		log.FieldRecords, snap.Records,
		log.FieldDuration, time.Since(start).Milliseconds())
	return snap, nil
}

// Run takes a snapshot immediately and then every interval until ctx is
// cancelled. Failures are logged and retried on the next tick; onSnapshot,
// when set, sees every successful snapshot.
func (w *SnapshotWorker) Run(ctx context.Context, interval time.Duration, onSnapshot func(storage.Snapshot)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid snapshot interval %v", interval)
	}

	tick := func() {
		snap, err := w.RunOnce(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Periodic snapshot failed",
					log.FieldOperation, log.OpSnapshot,
					log.FieldError, err.Error())
			}
			return
		}
		if onSnapshot != nil {
			onSnapshot(snap)
		}
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Snapshot worker stopped")
			return nil
		case <-ticker.C:
			tick()
		}
	}
}

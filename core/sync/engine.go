package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultBatchSize bounds storage transactions when Options leaves it unset.
const DefaultBatchSize = 50

// Options configures an Engine.
type Options struct {
	// BatchSize is the number of records per storage transaction.
	BatchSize int

	// InactiveWindow is how far back full mode pulls inactive records.
	InactiveWindow time.Duration

	// Recorder receives per-batch counters. Optional.
	Recorder BatchRecorder

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Engine computes the delta between remote and local reference data and
// applies it in bounded atomic batches. One engine is bound to a single
// record type's source and store; concurrent runs over the same type are the
// caller's responsibility to prevent.
type Engine struct {
	source         Source
	store          Store
	batchSize      int
	inactiveWindow time.Duration
	recorder       BatchRecorder
	logger         *zap.Logger

	// now is swapped in tests
	now func() time.Time
}

// New creates an engine over one record type's source and store.
func New(source Source, store Store, opts Options) *Engine {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	inactiveWindow := opts.InactiveWindow
	if inactiveWindow <= 0 {
		inactiveWindow = 30 * 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source:         source,
		store:          store,
		batchSize:      batchSize,
		inactiveWindow: inactiveWindow,
		recorder:       opts.Recorder,
		logger:         logger,
		now:            time.Now,
	}
}

// Synchronize pulls remote records according to mode, diffs them against the
// local store by key and fingerprint, and applies the changed subset in
// atomic batches. It returns the run's counters and the advanced cursor.
//
// The cursor is an explicit value: it only moves forward, and only past
// records that have been durably applied (or verified unchanged). On error
// the returned cursor equals the high-water mark of the last committed
// batch, so the next incremental run re-pulls exactly the unapplied records.
func (e *Engine) Synchronize(ctx context.Context, mode Mode, cursor time.Time) (Stats, time.Time, error) {
	var stats Stats
	watermark := cursor

	switch mode {
	case ModeFull:
		// All active records; the cursor is ignored for the pull but still
		// advanced from what is observed.
		active := true
		if err := e.pull(ctx, PageQuery{Active: &active}, &stats, &watermark); err != nil {
			return stats, watermark, err
		}

		// Inactive records modified inside the window, so deactivations are
		// observed without paying for the full inactive backlog.
		inactive := false
		since := e.now().Add(-e.inactiveWindow)
		if err := e.pull(ctx, PageQuery{Active: &inactive, Since: &since}, &stats, &watermark); err != nil {
			return stats, watermark, err
		}

	case ModeIncremental:
		since := cursor
		if err := e.pull(ctx, PageQuery{Since: &since}, &stats, &watermark); err != nil {
			return stats, watermark, err
		}

	default:
		return stats, watermark, fmt.Errorf("unknown sync mode: %s", mode)
	}

	e.logger.Info("Synchronization pass complete",
		zap.String("mode", string(mode)),
		zap.Int("fetched", stats.Fetched),
		zap.Int("inserted", stats.Inserted),
		zap.Int("updated", stats.Updated),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("batches", stats.Batches),
		zap.Time("cursor", watermark),
	)
	return stats, watermark, nil
}

// pull pages through one query, diffing and applying each page before
// fetching the next. Pages arrive oldest-modified-first, which keeps the
// watermark monotonic.
func (e *Engine) pull(ctx context.Context, q PageQuery, stats *Stats, watermark *time.Time) error {
	offset := 0
	for {
		q.Offset = offset
		page, err := e.source.FetchPage(ctx, q)
		if err != nil {
			return fmt.Errorf("page fetch at offset %d failed: %w", offset, err)
		}
		if len(page.Records) == 0 {
			return nil
		}

		stats.Fetched += len(page.Records)
		if err := e.applyPage(ctx, page.Records, stats, watermark); err != nil {
			return err
		}

		if !page.HasMore {
			return nil
		}
		offset = page.NextOffset
	}
}

// applyPage diffs one page against the store and applies the changed subset
// in bounded atomic batches, in fetch order.
func (e *Engine) applyPage(ctx context.Context, records []Record, stats *Stats, watermark *time.Time) error {
	records = dedupe(records)

	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	existing, err := e.store.GetMany(ctx, keys)
	if err != nil {
		return fmt.Errorf("local fingerprint lookup failed: %w", err)
	}

	var (
		changed      []Record
		isInsert     = make(map[string]bool, len(records))
		unchanged    int
		unchangedMax time.Time
	)
	for _, rec := range records {
		storedFp, found := existing[rec.Key]
		switch {
		case !found:
			isInsert[rec.Key] = true
			changed = append(changed, rec)
		case storedFp != rec.Fingerprint:
			changed = append(changed, rec)
		default:
			unchanged++
			if rec.RemoteUpdatedAt.After(unchangedMax) {
				unchangedMax = rec.RemoteUpdatedAt
			}
		}
	}

	for start := 0; start < len(changed); start += e.batchSize {
		// Cancellation is honored between batches only; a batch in flight
		// always completes or fails as a unit.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + e.batchSize
		if end > len(changed) {
			end = len(changed)
		}
		batch := changed[start:end]

		committed, err := e.store.UpsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("batch upsert failed: %w", err)
		}
		if committed != len(batch) {
			e.logger.Warn("Batch committed fewer records than submitted",
				zap.Int("submitted", len(batch)),
				zap.Int("committed", committed),
			)
		}

		var inserted, updated int
		batchMax := *watermark
		for _, rec := range batch {
			if isInsert[rec.Key] {
				inserted++
			} else {
				updated++
			}
			if rec.RemoteUpdatedAt.After(batchMax) {
				batchMax = rec.RemoteUpdatedAt
			}
		}
		stats.Inserted += inserted
		stats.Updated += updated
		stats.Batches++
		if e.recorder != nil {
			e.recorder.RecordBatch(inserted, updated, 0)
		}
		// The batch is durable; the cursor may move past it.
		advance(watermark, batchMax)
	}

	// Unchanged records move the cursor only once the whole page has been
	// applied; before that a failed batch could still force a re-pull.
	stats.Unchanged += unchanged
	advance(watermark, unchangedMax)
	if unchanged > 0 && e.recorder != nil {
		e.recorder.RecordBatch(0, 0, unchanged)
	}
	return nil
}

// dedupe keeps the first occurrence of each key, preserving fetch order.
// Overlapping pulls (active + recently-inactive) can return the same record
// twice.
func dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		if _, dup := seen[rec.Key]; dup {
			continue
		}
		seen[rec.Key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func advance(watermark *time.Time, candidate time.Time) {
	if candidate.After(*watermark) {
		*watermark = candidate
	}
}

package sync

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ResolveMissing backfills reference records observed as foreign keys in
// transactional data. It checks which keys are absent locally, fetches only
// that subset from the remote source in one batched lookup, and upserts the
// results with the same batch discipline as Synchronize.
//
// Keys the remote cannot resolve (deleted or invalid) are reported in the
// resolution, never treated as a failure: the caller decides whether to keep
// a null reference. No key is silently dropped.
func (e *Engine) ResolveMissing(ctx context.Context, keys []string) (*Resolution, error) {
	res := &Resolution{}

	keys = uniqueKeys(keys)
	if len(keys) == 0 {
		return res, nil
	}

	existing, err := e.store.GetMany(ctx, keys)
	if err != nil {
		return res, fmt.Errorf("local existence check failed: %w", err)
	}

	var absent []string
	for _, key := range keys {
		if _, found := existing[key]; !found {
			absent = append(absent, key)
		}
	}
	if len(absent) == 0 {
		return res, nil
	}

	fetched, err := e.source.FetchByKeys(ctx, absent)
	if err != nil {
		return res, fmt.Errorf("remote key lookup failed: %w", err)
	}
	byKey := make(map[string]Record, len(fetched))
	for _, rec := range fetched {
		byKey[rec.Key] = rec
	}

	var batch []Record
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := e.store.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("backfill batch failed: %w", err)
		}
		if e.recorder != nil {
			e.recorder.RecordBatch(len(batch), 0, 0)
		}
		for _, rec := range batch {
			res.Backfilled = append(res.Backfilled, rec.Key)
		}
		batch = batch[:0]
		return nil
	}

	for _, key := range absent {
		rec, found := byKey[key]
		if !found {
			e.logger.Warn("Unresolvable reference", zap.String("key", key))
			res.Unresolvable = append(res.Unresolvable, key)
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= e.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	sort.Strings(res.Backfilled)
	sort.Strings(res.Unresolvable)
	return res, nil
}

// uniqueKeys drops empties and duplicates while keeping a stable order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

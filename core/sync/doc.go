// Package sync implements the incremental reference-data synchronization
// engine.
//
// The engine pulls reference records (users, companies, departments) from a
// remote Source, diffs them against a local Store by key and content
// fingerprint, and applies only the changed subset in bounded atomic
// batches. Unchanged records are skipped, which makes re-applying the same
// remote page idempotent.
//
// # Cursor semantics
//
// Incremental pulls are bounded by an explicit cursor value passed into and
// returned from Synchronize. The boundary is inclusive, so clock-skew
// duplicates are re-fetched and naturally skipped by the fingerprint diff.
// The cursor advances only past durably committed batches: a failed batch
// aborts the run with the cursor at the last committed high-water mark,
// guaranteeing at-least-once delivery with idempotent re-application.
//
// # Missing references
//
// ResolveMissing backfills keys observed as foreign keys in transactional
// data but absent locally, using a single batched remote lookup. Keys the
// remote cannot resolve are reported, not fatal.
//
// The engine owns no storage or transport details: Source and Store are
// adapters implemented per record type (see feature/refdata).
package sync

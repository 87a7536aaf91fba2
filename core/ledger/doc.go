// Package ledger records execution summaries for synchronization runs.
//
// Each run opens a Run via Begin (persisted immediately with status=running)
// and accumulates raw counters: API attempts, per-batch record counts,
// per-table fetch totals, and archive sizes. Finish finalizes the summary
// exactly once with a terminal status (success, partial, failed); later
// calls are no-ops, so a deferred failure handler and the happy path can
// both call it safely.
//
// Derived figures (success rate, average request time, compression ratio)
// are computed from the raw counters at read time and never stored.
package ledger

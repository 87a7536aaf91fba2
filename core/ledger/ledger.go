package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger persists execution summaries.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a ledger over the given database.
func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// Prepare ensures the ledger table exists.
func (l *Ledger) Prepare() error {
	if err := l.db.AutoMigrate(&ExecutionRecord{}); err != nil {
		return fmt.Errorf("failed to migrate execution log: %w", err)
	}
	return nil
}

// Begin opens a run: a row with status=running is persisted immediately so a
// crashed process still leaves a trace. The returned Run owns all further
// mutation of the summary.
func (l *Ledger) Begin(mode string) (*Run, error) {
	hostname, _ := os.Hostname()
	rec := ExecutionRecord{
		ExecutionID: uuid.NewString(),
		Mode:        mode,
		StartedAt:   time.Now(),
		Status:      StatusRunning,
		Hostname:    hostname,
	}
	if err := l.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to open execution record: %w", err)
	}
	l.logger.Info("Execution started",
		zap.String("execution_id", rec.ExecutionID),
		zap.String("mode", mode),
	)
	return &Run{ledger: l, rec: rec, tables: make(map[string]int)}, nil
}

// Recent returns the latest executions, newest first.
func (l *Ledger) Recent(limit int) ([]ExecutionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []ExecutionRecord
	err := l.db.Order("started_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent executions: %w", err)
	}
	return records, nil
}

// Run accumulates counters for one execution. Safe for concurrent use: the
// remote client's call observer may fire from a fetch that is pipelined with
// a local apply.
type Run struct {
	mu       sync.Mutex
	ledger   *Ledger
	rec      ExecutionRecord
	tables   map[string]int
	finished bool
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.rec.ExecutionID
}

// RecordAPICall counts one HTTP attempt. Matches remote.CallFunc.
func (r *Run) RecordAPICall(success bool, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.rec.APIRequests++
	r.rec.APITimeSeconds += elapsed.Seconds()
	if !success {
		r.rec.APIFailures++
	}
}

// RecordBatch accumulates per-batch counters. A call with zero inserted and
// updated reports an unchanged-only page and is not counted as a committed
// batch.
func (r *Run) RecordBatch(inserted, updated, unchanged int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.rec.RecordsInserted += inserted
	r.rec.RecordsUpdated += updated
	r.rec.RecordsUnchanged += unchanged
	if inserted+updated > 0 {
		r.rec.BatchesCommitted++
	}
}

// RecordTable notes how many records were fetched for one table.
func (r *Run) RecordTable(name string, fetched int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.tables[name] += fetched
	r.rec.RecordsFetched += fetched
}

// RecordArchive accumulates snapshot archive sizes.
func (r *Run) RecordArchive(rawBytes, compressedBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.rec.ArchiveRawKB += float64(rawBytes) / 1024
	r.rec.ArchiveCompressedKB += float64(compressedBytes) / 1024
}

// Finish finalizes the summary exactly once. Later calls are ignored, which
// lets a deferred failure path and a happy path coexist without double
// accounting, and all counters freeze: a stray observer firing after
// finalization cannot mutate the persisted summary. No run is ever left in
// running status by a returning caller.
func (r *Run) Finish(status Status, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return nil
	}
	r.finished = true

	now := time.Now()
	r.rec.EndedAt = &now
	r.rec.DurationSeconds = now.Sub(r.rec.StartedAt).Seconds()
	r.rec.Status = status
	if runErr != nil {
		r.rec.ErrorMessage = runErr.Error()
	}
	if tablesJSON, err := json.Marshal(r.tables); err == nil {
		r.rec.TablesJSON = string(tablesJSON)
	}

	if err := r.ledger.db.Save(&r.rec).Error; err != nil {
		return fmt.Errorf("failed to finalize execution record: %w", err)
	}

	r.ledger.logger.Info("Execution finished",
		zap.String("execution_id", r.rec.ExecutionID),
		zap.String("status", string(status)),
		zap.Float64("duration_seconds", r.rec.DurationSeconds),
		zap.Int("fetched", r.rec.RecordsFetched),
		zap.Int("inserted", r.rec.RecordsInserted),
		zap.Int("updated", r.rec.RecordsUpdated),
		zap.Int("unchanged", r.rec.RecordsUnchanged),
	)
	return nil
}

// Finished reports whether Finish has run.
func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Snapshot returns a copy of the current summary.
func (r *Run) Snapshot() ExecutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec
}

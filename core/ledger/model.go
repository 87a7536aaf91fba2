package ledger

import (
	"encoding/json"
	"time"
)

// Status is the terminal (or in-flight) state of one execution.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	// StatusPartial marks a failed run that still committed at least one
	// batch; the committed work stands.
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// ExecutionRecord is one persisted synchronization run.
// Raw counters only; rates and averages are derived at read time.
type ExecutionRecord struct {
	ExecutionID     string     `gorm:"column:execution_id;primaryKey;size:36" json:"execution_id"`
	Mode            string     `gorm:"column:mode;size:16" json:"mode"`
	StartedAt       time.Time  `gorm:"column:started_at" json:"started_at"`
	EndedAt         *time.Time `gorm:"column:ended_at" json:"ended_at"`
	DurationSeconds float64    `gorm:"column:duration_seconds" json:"duration_seconds"`
	Status          Status     `gorm:"column:status;size:16" json:"status"`

	// Per-source counters
	APIRequests    int     `gorm:"column:api_requests" json:"api_requests"`
	APIFailures    int     `gorm:"column:api_failures" json:"api_failures"`
	APITimeSeconds float64 `gorm:"column:api_time_seconds" json:"api_time_seconds"`
	RecordsFetched int     `gorm:"column:records_fetched" json:"records_fetched"`

	// Per-target counters
	RecordsInserted  int `gorm:"column:records_inserted" json:"records_inserted"`
	RecordsUpdated   int `gorm:"column:records_updated" json:"records_updated"`
	RecordsUnchanged int `gorm:"column:records_unchanged" json:"records_unchanged"`
	BatchesCommitted int `gorm:"column:batches_committed" json:"batches_committed"`

	// Snapshot archive metrics (zero when archiving is disabled)
	ArchiveRawKB        float64 `gorm:"column:archive_raw_kb" json:"archive_raw_kb"`
	ArchiveCompressedKB float64 `gorm:"column:archive_compressed_kb" json:"archive_compressed_kb"`

	// TablesJSON is a JSON object of fetched record counts per table.
	TablesJSON   string `gorm:"column:tables_json;type:text" json:"-"`
	ErrorMessage string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	Hostname     string `gorm:"column:hostname;size:128" json:"hostname"`
}

// TableName sets the ledger table.
func (ExecutionRecord) TableName() string {
	return "etl_execution_log"
}

// SuccessRate returns the API success percentage, 0..100.
func (e *ExecutionRecord) SuccessRate() float64 {
	if e.APIRequests == 0 {
		return 0
	}
	return float64(e.APIRequests-e.APIFailures) / float64(e.APIRequests) * 100
}

// AvgAPISeconds returns the mean elapsed time per API request.
func (e *ExecutionRecord) AvgAPISeconds() float64 {
	if e.APIRequests == 0 {
		return 0
	}
	return e.APITimeSeconds / float64(e.APIRequests)
}

// CompressionRatio returns the archive size saving percentage.
func (e *ExecutionRecord) CompressionRatio() float64 {
	if e.ArchiveRawKB == 0 {
		return 0
	}
	return (1 - e.ArchiveCompressedKB/e.ArchiveRawKB) * 100
}

// Tables decodes the per-table fetched counts.
func (e *ExecutionRecord) Tables() map[string]int {
	out := make(map[string]int)
	if e.TablesJSON != "" {
		_ = json.Unmarshal([]byte(e.TablesJSON), &out)
	}
	return out
}

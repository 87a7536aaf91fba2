package executions

import (
	"time"

	"go.uber.org/zap"

	"ticket-etl/core/ledger"
)

// ExecutionView is one execution with its derived metrics resolved.
type ExecutionView struct {
	ExecutionID      string         `json:"execution_id"`
	Mode             string         `json:"mode"`
	Status           ledger.Status  `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	DurationSeconds  float64        `json:"duration_seconds"`
	RecordsFetched   int            `json:"records_fetched"`
	RecordsInserted  int            `json:"records_inserted"`
	RecordsUpdated   int            `json:"records_updated"`
	RecordsUnchanged int            `json:"records_unchanged"`
	BatchesCommitted int            `json:"batches_committed"`
	APIRequests      int            `json:"api_requests"`
	SuccessRate      float64        `json:"success_rate"`
	AvgAPISeconds    float64        `json:"avg_api_seconds"`
	CompressionRatio float64        `json:"compression_ratio"`
	Tables           map[string]int `json:"tables"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	Hostname         string         `json:"hostname"`
}

// Service reads recent executions from the ledger.
type Service struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewService creates the executions reporting service.
func NewService(led *ledger.Ledger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: led, logger: logger}
}

// Recent returns the latest executions, newest first, with derived metrics.
func (s *Service) Recent(limit int) ([]ExecutionView, error) {
	records, err := s.ledger.Recent(limit)
	if err != nil {
		return nil, err
	}

	views := make([]ExecutionView, 0, len(records))
	for i := range records {
		rec := &records[i]
		views = append(views, ExecutionView{
			ExecutionID:      rec.ExecutionID,
			Mode:             rec.Mode,
			Status:           rec.Status,
			StartedAt:        rec.StartedAt,
			EndedAt:          rec.EndedAt,
			DurationSeconds:  rec.DurationSeconds,
			RecordsFetched:   rec.RecordsFetched,
			RecordsInserted:  rec.RecordsInserted,
			RecordsUpdated:   rec.RecordsUpdated,
			RecordsUnchanged: rec.RecordsUnchanged,
			BatchesCommitted: rec.BatchesCommitted,
			APIRequests:      rec.APIRequests,
			SuccessRate:      rec.SuccessRate(),
			AvgAPISeconds:    rec.AvgAPISeconds(),
			CompressionRatio: rec.CompressionRatio(),
			Tables:           rec.Tables(),
			ErrorMessage:     rec.ErrorMessage,
			Hostname:         rec.Hostname,
		})
	}
	return views, nil
}

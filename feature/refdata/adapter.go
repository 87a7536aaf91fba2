package refdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ticket-etl/core/fingerprint"
	"ticket-etl/core/remote"
	"ticket-etl/core/sync"
)

// timeLayout is the platform's glide datetime format, always UTC.
const timeLayout = "2006-01-02 15:04:05"

// SourceAdapter exposes one remote table as a sync.Source.
type SourceAdapter struct {
	client *remote.Client
	desc   Descriptor
	logger *zap.Logger
}

// NewSource creates a source over the descriptor's remote endpoint.
func NewSource(client *remote.Client, desc Descriptor, logger *zap.Logger) *SourceAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceAdapter{client: client, desc: desc, logger: logger}
}

// FetchPage pulls one page ordered by modification time.
func (a *SourceAdapter) FetchPage(ctx context.Context, q sync.PageQuery) (*sync.Page, error) {
	rows, err := a.client.FetchPage(ctx, a.desc.Endpoint, remote.Query{
		Filter: buildFilter(q),
		Fields: a.desc.Fields,
	}, q.Offset)
	if err != nil {
		return nil, err
	}

	return &sync.Page{
		Records:    a.toRecords(rows),
		HasMore:    len(rows) == a.client.PageLimit(),
		NextOffset: q.Offset + len(rows),
	}, nil
}

// FetchByKeys pulls specific records by key. Keys the remote does not know
// are absent from the result.
func (a *SourceAdapter) FetchByKeys(ctx context.Context, keys []string) ([]sync.Record, error) {
	rows, err := a.client.FetchByKeys(ctx, a.desc.Endpoint, a.desc.Fields, keys)
	if err != nil {
		return nil, err
	}
	return a.toRecords(rows), nil
}

func buildFilter(q sync.PageQuery) string {
	var parts []string
	if q.Active != nil {
		parts = append(parts, fmt.Sprintf("active=%t", *q.Active))
	}
	if q.Since != nil {
		parts = append(parts, "sys_updated_on>="+q.Since.UTC().Format(timeLayout))
	}
	// Stable oldest-first ordering keeps cursor advancement monotonic.
	parts = append(parts, "ORDERBYsys_updated_on")
	return strings.Join(parts, "^")
}

func (a *SourceAdapter) toRecords(rows []remote.Row) []sync.Record {
	records := make([]sync.Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := a.toRecord(row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (a *SourceAdapter) toRecord(row remote.Row) (sync.Record, bool) {
	fields := make(map[string]string, len(row))
	for name, value := range row {
		fields[name] = flatten(value)
	}

	key := fields["sys_id"]
	if key == "" {
		a.logger.Warn("Skipping record without sys_id", zap.String("type", a.desc.Name))
		return sync.Record{}, false
	}

	// Types without an activation flag (departments) count as active.
	active := true
	if v, ok := fields["active"]; ok && v != "" {
		active = v == "true" || v == "1"
	}

	return sync.Record{
		Key:             key,
		Fields:          fields,
		Active:          active,
		RemoteCreatedAt: parseTime(fields["sys_created_on"]),
		RemoteUpdatedAt: parseTime(fields["sys_updated_on"]),
		Fingerprint:     fingerprint.Compute(fields),
	}, true
}

// flatten collapses the platform's {"value": ..., "link": ...} reference
// objects to their scalar key.
func flatten(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if inner, ok := v["value"]; ok {
			return flatten(inner)
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

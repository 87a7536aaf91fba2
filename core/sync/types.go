package sync

import (
	"context"
	"time"
)

// Mode selects how much of the remote table a run pulls.
type Mode string

const (
	// ModeFull pulls every active record plus recently modified inactive ones.
	ModeFull Mode = "full"
	// ModeIncremental pulls only records modified at or after the cursor.
	ModeIncremental Mode = "incremental"
)

// Record is one reference record in transit between the remote source and
// the local store. Instances are transient: constructed per fetch/diff cycle
// and discarded once their batch commits.
type Record struct {
	// Key is the opaque stable identifier, unique per record type.
	Key string

	// Fields is the domain-field bag (name, contact info, organizational
	// links). It is what the fingerprint covers.
	Fields map[string]string

	// Active is the remote-side activation flag. It is part of Fields as
	// well, so a deactivation always changes the fingerprint.
	Active bool

	// RemoteCreatedAt and RemoteUpdatedAt are remote audit timestamps.
	// They are excluded from the fingerprint.
	RemoteCreatedAt time.Time
	RemoteUpdatedAt time.Time

	// Fingerprint is the content digest over Fields.
	Fingerprint string
}

// PageQuery bounds one page fetch.
type PageQuery struct {
	// Since restricts the pull to records modified at or after the
	// timestamp. The boundary is inclusive to tolerate clock skew;
	// re-fetched duplicates are skipped by the fingerprint diff.
	Since *time.Time

	// Active filters by activation state; nil means both.
	Active *bool

	// Offset is the pagination position.
	Offset int
}

// Page is one fetched slice of remote records, ordered oldest-modified-first.
type Page struct {
	Records []Record

	// HasMore indicates another page may follow at NextOffset.
	HasMore    bool
	NextOffset int
}

// Source fetches reference records from the remote platform.
type Source interface {
	// FetchPage returns one page matching the query. Transient failures are
	// retried internally; whatever error escapes aborts the run.
	FetchPage(ctx context.Context, q PageQuery) (*Page, error)

	// FetchByKeys returns the records for the given keys. Keys the remote
	// cannot resolve are simply absent from the result.
	FetchByKeys(ctx context.Context, keys []string) ([]Record, error)
}

// Store reads and writes reference records in the local database.
type Store interface {
	// Get returns the stored record for a key, or nil when absent. The
	// field bag is not reconstructed; key, fingerprint, activation and
	// remote timestamps are populated.
	Get(ctx context.Context, key string) (*Record, error)

	// GetMany returns stored fingerprints indexed by key. Absent keys are
	// omitted from the map.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	// UpsertBatch applies the batch in one transaction: either every record
	// lands or none do. Returns the committed record count.
	UpsertBatch(ctx context.Context, records []Record) (int, error)

	// MaxModifiedSince returns the newest RemoteUpdatedAt present locally,
	// zero when the table is empty. Used to derive the starting cursor.
	MaxModifiedSince(ctx context.Context) (time.Time, error)
}

// Stats aggregates one synchronization run's per-target counters.
type Stats struct {
	Fetched   int
	Inserted  int
	Updated   int
	Unchanged int
	Batches   int
}

// BatchRecorder receives per-batch counters; the execution ledger implements
// it. Calls with zero inserted and updated report unchanged-only pages and
// do not represent a committed transaction.
type BatchRecorder interface {
	RecordBatch(inserted, updated, unchanged int)
}

// Resolution is the outcome of a missing-reference backfill. Every requested
// key ends up in exactly one of the two sets or was already present locally.
type Resolution struct {
	Backfilled   []string
	Unresolvable []string
}

package refdata

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ticket-etl/core/archive"
	"ticket-etl/core/ledger"
	"ticket-etl/core/remote"
	"ticket-etl/core/sync"
)

// Service orchestrates synchronization runs over the reference types. Every
// run is recorded in the execution ledger, including failed ones.
type Service struct {
	client   *remote.Client
	db       *gorm.DB
	ledger   *ledger.Ledger
	archiver *archive.Archiver
	cfg      sync.Config
	logger   *zap.Logger
}

// NewService creates the orchestrator. archiver may be nil when page
// snapshot archiving is disabled.
func NewService(client *remote.Client, db *gorm.DB, led *ledger.Ledger, archiver *archive.Archiver, cfg sync.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		db:       db,
		ledger:   led,
		archiver: archiver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Sync runs one synchronization over the given types, in order. The run is
// finalized exactly once on every exit path; a failure after at least one
// committed batch is recorded as partial.
func (s *Service) Sync(ctx context.Context, mode sync.Mode, types []Descriptor) (ledger.ExecutionRecord, error) {
	run, err := s.ledger.Begin(string(mode))
	if err != nil {
		return ledger.ExecutionRecord{}, err
	}
	s.client.OnCall(run.RecordAPICall)

	runErr := s.syncTypes(ctx, run, mode, types)
	s.finish(run, runErr)
	return run.Snapshot(), runErr
}

// Backfill mines the incident table for unresolved references of the given
// types and pulls the missing records. Unresolvable keys are reported, not
// fatal.
func (s *Service) Backfill(ctx context.Context, types []Descriptor) (map[string]*sync.Resolution, ledger.ExecutionRecord, error) {
	run, err := s.ledger.Begin("backfill")
	if err != nil {
		return nil, ledger.ExecutionRecord{}, err
	}
	s.client.OnCall(run.RecordAPICall)

	results := make(map[string]*sync.Resolution, len(types))
	var runErr error
	for _, desc := range types {
		// The mining subquery needs the local table in place.
		if err := NewStore(s.db, desc).Prepare(ctx); err != nil {
			runErr = err
			break
		}
		keys, err := s.mineKeys(ctx, desc)
		if err != nil {
			runErr = err
			break
		}
		res, err := s.resolve(ctx, run, desc, keys)
		if err != nil {
			runErr = err
			break
		}
		results[desc.Name] = res
	}

	s.finish(run, runErr)
	return results, run.Snapshot(), runErr
}

// BackfillLegacy resolves references embedded in deprecated wide incident
// rows, as exported by older extractors.
func (s *Service) BackfillLegacy(ctx context.Context, rows []remote.Row) (map[string]*sync.Resolution, ledger.ExecutionRecord, error) {
	run, err := s.ledger.Begin("backfill")
	if err != nil {
		return nil, ledger.ExecutionRecord{}, err
	}
	s.client.OnCall(run.RecordAPICall)

	byType := ReferenceKeys(rows)
	results := make(map[string]*sync.Resolution, len(byType))
	var runErr error
	for _, desc := range Descriptors {
		res, err := s.resolve(ctx, run, desc, byType[desc.Name])
		if err != nil {
			runErr = err
			break
		}
		results[desc.Name] = res
	}

	s.finish(run, runErr)
	return results, run.Snapshot(), runErr
}

// TypeStatus summarizes one reference type's local state.
type TypeStatus struct {
	Type             string    `json:"type"`
	Rows             int64     `json:"rows"`
	ActiveRows       int64     `json:"active_rows"`
	LastRemoteUpdate time.Time `json:"last_remote_update"`
}

// Status reports row counts and high-water marks per reference type.
func (s *Service) Status(ctx context.Context) ([]TypeStatus, error) {
	statuses := make([]TypeStatus, 0, len(Descriptors))
	for _, desc := range Descriptors {
		store := NewStore(s.db, desc)
		if err := store.Prepare(ctx); err != nil {
			return nil, err
		}

		var st TypeStatus
		st.Type = desc.Name
		if err := s.db.WithContext(ctx).Table(desc.Table).Count(&st.Rows).Error; err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Table(desc.Table).Where("active = ?", true).Count(&st.ActiveRows).Error; err != nil {
			return nil, err
		}
		max, err := store.MaxModifiedSince(ctx)
		if err != nil {
			return nil, err
		}
		st.LastRemoteUpdate = max
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (s *Service) syncTypes(ctx context.Context, run *ledger.Run, mode sync.Mode, types []Descriptor) error {
	for _, desc := range types {
		store := NewStore(s.db, desc)
		if err := store.Prepare(ctx); err != nil {
			return err
		}

		engine := s.newEngine(run, desc, store)
		cursor, err := s.deriveCursor(ctx, store)
		if err != nil {
			return err
		}

		log := s.logger.With(zap.String("type", desc.Name))
		log.Info("Synchronizing reference type",
			zap.String("mode", string(mode)),
			zap.Time("cursor", cursor),
		)

		stats, newCursor, err := engine.Synchronize(ctx, mode, cursor)
		run.RecordTable(desc.Name, stats.Fetched)
		if err != nil {
			return err
		}

		log.Info("Reference type synchronized",
			zap.Int("fetched", stats.Fetched),
			zap.Int("inserted", stats.Inserted),
			zap.Int("updated", stats.Updated),
			zap.Int("unchanged", stats.Unchanged),
			zap.Time("cursor", newCursor),
		)
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, run *ledger.Run, desc Descriptor, keys []string) (*sync.Resolution, error) {
	store := NewStore(s.db, desc)
	if err := store.Prepare(ctx); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return &sync.Resolution{}, nil
	}

	run.RecordTable(desc.Name, len(keys))
	res, err := s.newEngine(run, desc, store).ResolveMissing(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(res.Unresolvable) > 0 {
		s.logger.Warn("Some references could not be resolved",
			zap.String("type", desc.Name),
			zap.Strings("keys", res.Unresolvable),
		)
	}
	return res, nil
}

func (s *Service) mineKeys(ctx context.Context, desc Descriptor) ([]string, error) {
	keys, err := MissingIncidentRefs(ctx, s.db, desc)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Mined incident references",
		zap.String("type", desc.Name),
		zap.Int("missing", len(keys)),
	)
	return keys, nil
}

func (s *Service) newEngine(run *ledger.Run, desc Descriptor, store *StoreAdapter) *sync.Engine {
	var source sync.Source = NewSource(s.client, desc, s.logger)
	if s.archiver != nil {
		source = &archivingSource{
			inner:    source,
			archiver: s.archiver,
			table:    desc.Endpoint,
			runID:    run.ID(),
			run:      run,
			logger:   s.logger,
		}
	}
	return sync.New(source, store, sync.Options{
		BatchSize:      s.cfg.BatchSize,
		InactiveWindow: time.Duration(s.cfg.InactiveWindowDays) * 24 * time.Hour,
		Recorder:       run,
		Logger:         s.logger.With(zap.String("type", desc.Name)),
	})
}

func (s *Service) deriveCursor(ctx context.Context, store *StoreAdapter) (time.Time, error) {
	max, err := store.MaxModifiedSince(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if max.IsZero() {
		return time.Time{}, nil
	}
	overlap := time.Duration(s.cfg.OverlapMinutes) * time.Minute
	if overlap <= 0 {
		overlap = time.Hour
	}
	// Pull back behind the high-water mark so clock skew between the remote
	// platform and this host cannot hide updates.
	return max.Add(-overlap), nil
}

func (s *Service) finish(run *ledger.Run, runErr error) {
	// The client is shared across runs; detach the observer so nothing can
	// report into a finalized record.
	s.client.OnCall(nil)

	status := ledger.StatusSuccess
	if runErr != nil {
		status = ledger.StatusFailed
		if run.Snapshot().BatchesCommitted > 0 {
			status = ledger.StatusPartial
		}
	}
	if err := run.Finish(status, runErr); err != nil {
		s.logger.Error("Failed to finalize execution record", zap.Error(err))
	}
}

// archivingSource decorates a source with page snapshot uploads. Archive
// failures are logged and never abort the run.
type archivingSource struct {
	inner    sync.Source
	archiver *archive.Archiver
	table    string
	runID    string
	run      *ledger.Run
	logger   *zap.Logger
	page     int
}

func (a *archivingSource) FetchPage(ctx context.Context, q sync.PageQuery) (*sync.Page, error) {
	page, err := a.inner.FetchPage(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(page.Records) > 0 {
		res, aerr := a.archiver.StorePage(ctx, a.table, a.runID, a.page, page.Records)
		if aerr != nil {
			a.logger.Warn("Failed to archive page snapshot", zap.Error(aerr))
		} else {
			a.run.RecordArchive(res.RawBytes, res.CompressedBytes)
		}
		a.page++
	}
	return page, nil
}

func (a *archivingSource) FetchByKeys(ctx context.Context, keys []string) ([]sync.Record, error) {
	return a.inner.FetchByKeys(ctx, keys)
}

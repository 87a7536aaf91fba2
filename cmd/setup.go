package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ticket-etl/core/archive"
	"ticket-etl/core/config"
	"ticket-etl/core/database"
	"ticket-etl/core/ledger"
	"ticket-etl/core/logger"
	"ticket-etl/core/remote"
	"ticket-etl/core/storage"
	"ticket-etl/feature/refdata"
)

// app bundles the wired dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	ledger   *ledger.Ledger
	service  *refdata.Service
	archiver *archive.Archiver
}

// bootstrap loads configuration and wires the service stack. The database
// connection is mandatory; the snapshot archive only when enabled.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	led := ledger.New(db, logg)
	if err := led.Prepare(); err != nil {
		return nil, err
	}

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		archiver = archive.New(store, cfg.Storage.Bucket, cfg.Archive.Prefix, logg)
		if err := archiver.EnsureBucket(ctx); err != nil {
			return nil, err
		}
	}

	client := remote.NewClient(cfg.Remote, logg)
	svc := refdata.NewService(client, db, led, archiver, cfg.Sync, logg)

	return &app{cfg: cfg, logger: logg, ledger: led, service: svc, archiver: archiver}, nil
}

// descriptorsFor resolves the --types flag into descriptors, defaulting to
// all of them.
func descriptorsFor(names []string) ([]refdata.Descriptor, error) {
	if len(names) == 0 {
		return refdata.Descriptors, nil
	}
	descs := make([]refdata.Descriptor, 0, len(names))
	for _, name := range names {
		desc, ok := refdata.DescriptorByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown reference type %q", name)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

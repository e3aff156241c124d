package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/soaringjerry/tuneup/internal/api"
	"github.com/soaringjerry/tuneup/internal/catalog"
	"github.com/soaringjerry/tuneup/internal/config"
	dbstore "github.com/soaringjerry/tuneup/internal/db"
	"github.com/soaringjerry/tuneup/internal/metrics"
	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

// app holds everything a command needs once config is loaded.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	svc     *services.AssessmentService
	ping    func(context.Context) error
	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &app{cfg: cfg, logger: logger}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	a.catalog = cat

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	a.metrics = m

	kv, err := a.openStore()
	if err != nil {
		return nil, err
	}

	signer, err := services.NewShareSigner(cfg.Share.Secret)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.svc = services.NewAssessmentService(cat, api.NewStateStore(kv, cfg.Storage.StateKey), services.AssessmentOptions{
		SaveDelay:     cfg.Storage.SaveDelay,
		ToneThreshold: cfg.Scoring.ToneThreshold,
		GapThreshold:  cfg.Scoring.GapThreshold,
		ShareBaseURL:  cfg.Share.BaseURL,
		Signer:        signer,
		Recorder:      m,
		Logger:        logger.Named("assessment"),
	})
	source := a.svc.Open(ctx, "", "")
	logger.Debug("assessment opened", zap.String("source", string(source)))
	return a, nil
}

func (a *app) openStore() (api.KV, error) {
	st := a.cfg.Storage
	switch st.Driver {
	case "memory":
		store, err := api.NewMemoryStoreFromPath(st.SnapshotPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		if st.SnapshotPath != "" {
			if err := migrateIfNeeded(st.SnapshotPath, st.Path, st.MigrationsDir, a.logger); err != nil {
				return nil, err
			}
		}
		store, err := dbstore.Open(st.Path, st.MigrationsDir, a.logger.Named("sqlite"))
		if err != nil {
			return nil, err
		}
		a.ping = store.Ping
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

func (a *app) radarOptions() radar.Options {
	return radar.Options{
		Size:          float64(a.cfg.Radar.Size),
		WeakThreshold: a.cfg.Radar.WeakThreshold,
		GapThreshold:  a.cfg.Scoring.GapThreshold,
		IconHref:      catalog.IconDataURI,
	}
}

// Close flushes pending writes before closing storage.
func (a *app) Close() error {
	if a.svc != nil {
		a.svc.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// migrateIfNeeded copies a legacy JSON snapshot into a new SQLite database.
// An existing database or a missing snapshot is left alone.
func migrateIfNeeded(snapshotPath, sqlitePath, migrationsDir string, logger *zap.Logger) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}
	if _, err := os.Stat(snapshotPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	legacy, err := api.NewMemoryStoreFromPath(snapshotPath)
	if err != nil {
		return fmt.Errorf("load legacy snapshot: %w", err)
	}

	logger.Info("first run detected, migrating legacy snapshot", zap.String("snapshot", snapshotPath), zap.String("sqlite", sqlitePath))
	dst, err := dbstore.Open(sqlitePath, migrationsDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			logger.Warn("close sqlite after migration", zap.Error(cerr))
		}
	}()

	ctx := context.Background()
	keys := legacy.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		v, err := legacy.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("read %s: %w", k, err)
		}
		if err := dst.Put(ctx, k, v); err != nil {
			return fmt.Errorf("copy %s: %w", k, err)
		}
	}
	logger.Info("data migration completed", zap.Int("keys", len(keys)))
	return nil
}

// Package app wires configuration, storage, connectors and core services
// into a runnable process.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-ingest/internal/connectors/twitter"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// App holds the services of one process.
type App struct {
	Config    *file.Config
	Runner    *services.Runner
	Scheduler *services.Scheduler
	Cursors   *services.CursorAdmin
	Documents *services.DocumentService

	closers []func() error
}

// stores groups the driven storage ports selected by configuration.
type stores struct {
	metadata  driven.MetadataNamespace
	content   driven.ContentStore
	scheduler driven.SchedulerStore
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *file.Config) (*App, error) {
	a := &App{Config: cfg}

	st, err := a.openStores(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Runner = services.NewRunner(st.metadata, st.content)
	if err := a.registerWorkers(); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Scheduler = services.NewScheduler(cfg.SchedulerSettings(), st.scheduler, a.Runner)
	a.Cursors = services.NewCursorAdmin(st.metadata, a.Runner)
	a.Documents = services.NewDocumentService(st.content)

	logger.Debug("Initialised %d worker(s) on %s storage", len(a.Runner.Workers()), cfg.Storage.Backend)
	return a, nil
}

// Close releases every store the App opened.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	cfg := a.Config
	var st stores

	switch cfg.Storage.Backend {
	case file.BackendMemory:
		st = stores{
			metadata:  memory.NewMetadataNamespace(),
			content:   memory.NewContentStore(),
			scheduler: memory.NewSchedulerStore(),
		}
	case file.BackendSQLite:
		db, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return stores{}, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		st = stores{
			metadata:  db.MetadataNamespace(),
			content:   db.ContentStore(),
			scheduler: db.SchedulerStore(),
		}
	default:
		return stores{}, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, cfg.Storage.Backend)
	}

	if rc := cfg.Storage.Redis; rc != nil {
		ns, err := redis.NewMetadataNamespace(ctx, redis.Config{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		})
		if err != nil {
			return stores{}, fmt.Errorf("open redis metadata store: %w", err)
		}
		a.closers = append(a.closers, ns.Close)
		st.metadata = ns
	}
	return st, nil
}

func (a *App) registerWorkers() error {
	specs := a.Config.WorkerSpecs()
	if len(specs) == 0 {
		return nil
	}

	dialer, err := twitter.NewDialer(twitterConfig(a.Config.Twitter))
	if err != nil {
		return err
	}

	for _, spec := range specs {
		if spec.Type != domain.WorkerTypeTwitterImage {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, spec.Type)
		}
		extractorCfg, err := twitter.ParseExtractorConfig(spec)
		if err != nil {
			return fmt.Errorf("worker %s: %w", spec.WorkerID(), err)
		}
		worker := services.NewPollWorker(spec, dialer, twitter.NewMediaExtractor(extractorCfg))
		if err := a.Runner.Register(spec, worker); err != nil {
			return err
		}
	}
	return nil
}

func twitterConfig(c file.TwitterConfig) twitter.Config {
	return twitter.Config{
		BaseURL:        c.BaseURL,
		TokenURL:       c.TokenURL,
		BearerToken:    c.BearerToken,
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		Rate:           c.Rate,
		Burst:          c.Burst,
		Timeout:        c.Timeout.Std(),
	}
}

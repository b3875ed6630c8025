package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/entitymap/internal/adapter/memstore"
	"github.com/heartmarshall/entitymap/internal/adapter/postgres"
	"github.com/heartmarshall/entitymap/internal/adapter/postgres/lookups"
	"github.com/heartmarshall/entitymap/internal/adapter/postgres/store"
	"github.com/heartmarshall/entitymap/internal/config"
	"github.com/heartmarshall/entitymap/internal/lookup"
	"github.com/heartmarshall/entitymap/internal/mapper"
	"github.com/heartmarshall/entitymap/internal/service/dictionary"
)

// App holds the wired components of one process.
type App struct {
	Config     *config.Config
	Log        *slog.Logger
	Pool       *pgxpool.Pool
	Lookups    *lookup.Table
	Dictionary *dictionary.Service
}

// New connects to the database, loads the lookup tables and wires the
// dictionary service on top of the PostgreSQL unit of work.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("lookup_source", cfg.Lookup.Source),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	tbl, err := loadLookups(ctx, cfg.Lookup, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	st, err := store.NewDictionary(pool, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create store: %w", err)
	}

	m := mapper.New(tbl, logger)
	svc := dictionary.NewService(
		logger,
		postgres.NewTxManager(pool),
		func() dictionary.UnitOfWork { return st.Begin() },
		m.EntryVersion(),
		m.Summary(),
		cfg.Dictionary,
	)

	return &App{
		Config:     cfg,
		Log:        logger,
		Pool:       pool,
		Lookups:    tbl,
		Dictionary: svc,
	}, nil
}

// NewInMemory wires the dictionary service on an in-memory store. Nothing is
// persisted across processes; Pool is nil.
func NewInMemory(cfg *config.Config, logger *slog.Logger, tbl *lookup.Table) *App {
	st := memstore.New()
	m := mapper.New(tbl, logger)
	svc := dictionary.NewService(
		logger,
		st,
		func() dictionary.UnitOfWork { return st.Begin() },
		m.EntryVersion(),
		m.Summary(),
		cfg.Dictionary,
	)
	return &App{
		Config:     cfg,
		Log:        logger,
		Lookups:    tbl,
		Dictionary: svc,
	}
}

// Close releases the database pool.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func loadLookups(ctx context.Context, cfg config.LookupConfig, pool *pgxpool.Pool) (*lookup.Table, error) {
	switch cfg.Source {
	case config.LookupSourceYAML:
		tbl, err := lookup.LoadYAML(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("load lookups: %w", err)
		}
		return tbl, nil
	default:
		tbl, err := lookups.Load(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("load lookups: %w", err)
		}
		return tbl, nil
	}
}

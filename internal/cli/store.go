package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/assistloop/internal/config"
	"github.com/soyeahso/assistloop/internal/store"
)

// openStore opens the parameter store selected by cfg. The returned close
// func is never nil.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory parameter store, settings are lost on exit")
		return store.NewMemoryStore(nil), noop, nil

	case config.DriverPostgres:
		pg, err := store.OpenPostgres(ctx, cfg.DSN, cfg.Table, store.DefaultPostgresConfig())
		if err != nil {
			return nil, noop, fmt.Errorf("opening postgres parameter store: %w", err)
		}
		log.Info().Str("table", cfg.Table).Msg("using postgres parameter store")
		return pg, pg.Close, nil

	case config.DriverSQLite, "":
		if cfg.Path == "" {
			if err := paths.EnsureDirs(); err != nil {
				return nil, noop, fmt.Errorf("creating data directory: %w", err)
			}
		}
		path := paths.SQLitePath(cfg)
		db, err := store.Open(path, log)
		if err != nil {
			return nil, noop, fmt.Errorf("opening database: %w", err)
		}
		log.Debug().Str("path", path).Msg("using sqlite parameter store")
		return db, db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

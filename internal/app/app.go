// README: Application wiring: opens stores for the configured driver and builds the services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cabbook/internal/config"
	httptransport "cabbook/internal/http"
	"cabbook/internal/infra"
	"cabbook/internal/modules/booking"
	"cabbook/internal/modules/directory"
	"cabbook/internal/modules/report"
)

// Stores are the repositories for one database, plus its lifecycle hooks.
type Stores struct {
	Bookings  booking.Repository
	Directory directory.Repository
	Ping      func(ctx context.Context) error
	Close     func()
}

func OpenStores(ctx context.Context, cfg config.DBConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := infra.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := infra.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Stores{
			Bookings:  booking.NewStore(pool),
			Directory: directory.NewStore(pool),
			Ping:      pool.Ping,
			Close:     pool.Close,
		}, nil
	case config.DriverSQLite:
		db, err := infra.NewSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Bookings:  booking.NewSQLiteStore(db),
			Directory: directory.NewSQLiteStore(db),
			Ping:      db.PingContext,
			Close:     func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

type App struct {
	Handler   http.Handler
	Bookings  *booking.Service
	Directory *directory.Service
	Reports   *report.Service

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	a := &App{closers: []func() error{func() error { stores.Close(); return nil }}}

	var cache *directory.Cache
	if cfg.Redis.Addr != "" {
		rdb := infra.NewRedis(cfg.Redis.Addr)
		a.closers = append(a.closers, rdb.Close)
		cache = directory.NewCache(rdb, cfg.Redis.CacheTTL, log)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; directory cache will miss", "addr", cfg.Redis.Addr, "err", err)
		}
	}
	a.Directory = directory.NewService(stores.Directory, cache, log)

	opts := []booking.Option{booking.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		w := infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, w.Close)
		opts = append(opts, booking.WithPublisher(booking.NewKafkaPublisher(w)))
	}
	a.Bookings = booking.NewService(stores.Bookings, a.Directory, opts...)

	a.Reports = report.NewService(a.Bookings, a.Directory, report.NewFileSink(cfg.Report.Dir),
		report.WithLocation(cfg.Location()),
		report.WithLogger(log),
	)

	a.Handler = httptransport.NewServer(httptransport.ServerDeps{
		Bookings:    a.Bookings,
		Directory:   a.Directory,
		Reports:     a.Reports,
		Verifier:    infra.NewJWTVerifier(cfg.Auth.Secret),
		Logger:      log,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}).Routes()
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

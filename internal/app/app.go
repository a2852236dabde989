package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/config"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/idgen/simple"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/migration"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/storage/ledger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/storage/memory"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/storage/mongodb"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/transport/web"
)

type catalog interface {
	search.PropertyStore
	search.SiteStore
	search.HostStore
}

type bookingStore interface {
	search.BookingStore
	SaveBookings(ctx context.Context, bookings []*search.Booking) error
}

// stores holds the collaborators of the search engine and how to release them.
type stores struct {
	catalog  catalog
	bookings search.BookingStore
	closers  []func(ctx context.Context) error
}

func (s *stores) close(ctx context.Context, l *logger.Logger) {
	for _, closeFn := range s.closers {
		if err := closeFn(ctx); err != nil {
			l.LogErrorf("Failed to close storage: %v", err.Error())
		}
	}
}

func openStores(ctx context.Context, l *logger.Logger, conf *config.Config) (*stores, error) {
	st := &stores{}

	var seedCatalog *memory.DB

	switch conf.Store.Driver {
	case config.StoreMongo:
		mdb, err := mongodb.New(ctx, mongodb.Config{
			L:              l,
			URI:            conf.Store.MongoURI,
			Database:       conf.Store.MongoDatabase,
			ConnectTimeout: conf.Store.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}

		st.closers = append(st.closers, mdb.Close)

		if conf.Store.EnsureIndexes {
			if err := mdb.EnsureIndexes(ctx); err != nil {
				st.close(ctx, l)

				return nil, fmt.Errorf("ensure mongo indexes: %w", err)
			}
		}

		st.catalog, st.bookings = mdb, mdb

		l.LogInfo("Using mongo store %s", conf.Store.MongoDatabase)
	default:
		db := memory.New(memory.Config{L: l})
		st.catalog, st.bookings = db, db
		seedCatalog = db

		l.LogInfo("Using in-memory store")
	}

	var seedLedger bookingStore = seedCatalog

	if conf.Ledger.Driver == config.LedgerPostgres {
		lg, err := ledger.Open(ledger.Config{L: l, DSN: conf.Ledger.DatabaseURL, AutoMigrate: conf.Ledger.AutoMigrate})
		if err != nil {
			st.close(ctx, l)

			return nil, fmt.Errorf("open booking ledger: %w", err)
		}

		st.closers = append(st.closers, func(context.Context) error { return lg.Close() })
		st.bookings = lg
		seedLedger = lg

		l.LogInfo("Using postgres booking ledger")
	}

	if !conf.SeedDemoData {
		return st, nil
	}

	if seedCatalog == nil {
		l.LogInfo("Demo data is only seeded into the in-memory store, skipping")

		return st, nil
	}

	if err := migration.Up(ctx, l, seedCatalog, seedLedger, simple.New()); err != nil {
		st.close(ctx, l)

		return nil, fmt.Errorf("up demo migration: %w", err)
	}

	return st, nil
}

func Run(l *logger.Logger, conf *config.Config) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	l = l.WithDebug(conf.LogDebug)

	st, err := openStores(ctx, l, conf)
	if err != nil {
		return err
	}

	//nolint:contextcheck
	defer st.close(context.Background(), l)

	engine := search.New(search.Config{
		L: l,
		Defaults: search.Defaults{
			Limit:    conf.Search.DefaultLimit,
			MaxLimit: conf.Search.MaxLimit,
		},
		ConcurrentResolvers: conf.Search.ConcurrentResolvers,
		EnrichmentWorkers:   conf.Search.EnrichmentWorkers,
	}, st.catalog, st.catalog, st.bookings, st.catalog)

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      log.Default(),
		Host:              conf.HTTP.Host,
		Port:              conf.HTTP.Port,
		ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
		LivenessEndpoint:  conf.HTTP.LivenessEndpoint,
	}

	srv, err := web.New(ctx, webConf, engine)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}

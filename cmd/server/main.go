package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"drivewise/internal/device/audio"
	"drivewise/internal/device/cloud"
	devicehandler "drivewise/internal/device/handler"
	devicemetrics "drivewise/internal/device/metrics"
	"drivewise/internal/device/recovery"
	"drivewise/internal/device/registry"
	deviceservice "drivewise/internal/device/service"
	"drivewise/internal/device/sim"
	"drivewise/internal/device/store/cacheddevice"
	"drivewise/internal/device/store/deviceorder"
	"drivewise/internal/device/store/devicereturn"
	httpapi "drivewise/internal/http"
	participanthandler "drivewise/internal/participant/handler"
	participantservice "drivewise/internal/participant/service"
	accountstore "drivewise/internal/participant/store/account"
	participantstore "drivewise/internal/participant/store/participant"
	"drivewise/internal/platform/config"
	"drivewise/internal/platform/events"
	"drivewise/internal/platform/httpserver"
	"drivewise/internal/platform/logger"
	"drivewise/internal/platform/metrics"
	"drivewise/internal/platform/postgres"
	platformredis "drivewise/internal/platform/redis"
	"drivewise/pkg/platform/uow"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.New()
	deviceMetrics := devicemetrics.New()

	stores, db, err := buildStores(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var cache deviceservice.CachedDeviceStore = cacheddevice.NewInMemory()
	if redisClient != nil {
		defer redisClient.Close()
		cache = cacheddevice.NewRedis(redisClient.Client)
	}

	registryClient := registry.NewHTTPClient(cfg.RegistryBaseURL, registry.WithCallTimeout(cfg.RemoteTimeout))
	simClient := sim.NewHTTPClient(cfg.SIMBaseURL, sim.WithCallTimeout(cfg.RemoteTimeout))
	cloudClient := cloud.NewHTTPClient(cfg.CloudBaseURL, cloud.WithCallTimeout(cfg.RemoteTimeout))
	selector := audio.NewSelector(registryClient, cloudClient)

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	recoveryService := recovery.New(registryClient, simClient, stores.returns,
		recovery.WithLogger(log),
		recovery.WithMetrics(deviceMetrics))

	deviceSvc := deviceservice.New(
		stores.participants, stores.accounts, stores.orders, cache,
		registryClient, recoveryService, selector, stores.unit,
		deviceservice.WithLogger(log),
		deviceservice.WithMetrics(deviceMetrics),
		deviceservice.WithPublisher(publisher))

	participantSvc := participantservice.New(
		stores.participants, stores.accounts, stores.orders,
		registryClient, recoveryService, stores.unit,
		participantservice.WithLogger(log),
		participantservice.WithMetrics(deviceMetrics),
		participantservice.WithPublisher(publisher))

	checks := map[string]httpapi.HealthCheck{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Health
	}

	router := httpapi.NewRouter(checks,
		devicehandler.New(deviceSvc, log, appMetrics),
		participanthandler.New(participantSvc, log, appMetrics))
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// participantFacet is the union of what both orchestrators need from the
// participant store.
type participantFacet interface {
	deviceservice.ParticipantStore
	participantservice.ParticipantStore
}

// orderFacet is the union of the order store needs.
type orderFacet interface {
	deviceservice.DeviceOrderStore
	participantservice.DeviceOrderStore
}

// storeSet bundles the persistence facets with the unit of work spanning
// them.
type storeSet struct {
	participants participantFacet
	accounts     deviceservice.AccountStore
	orders       orderFacet
	returns      recovery.DeviceReturnStore
	unit         uow.UnitOfWork
}

// buildStores picks the persistence backend: Postgres when a DSN is
// configured, in-memory otherwise.
func buildStores(cfg config.Config) (storeSet, *sql.DB, error) {
	if cfg.PostgresDSN == "" {
		participants := participantstore.NewInMemory()
		accounts := accountstore.NewInMemory()
		orders := deviceorder.NewInMemory()
		returns := devicereturn.NewInMemory()
		return storeSet{
			participants: participants,
			accounts:     accounts,
			orders:       orders,
			returns:      returns,
			unit:         uow.NewMemory(participants, orders, returns),
		}, nil, nil
	}

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return storeSet{}, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.Migrate(db, cfg.MigrationsPath); err != nil {
		db.Close()
		return storeSet{}, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return storeSet{
		participants: participantstore.NewPostgres(db),
		accounts:     accountstore.NewPostgres(db),
		orders:       deviceorder.NewPostgres(db),
		returns:      devicereturn.NewPostgres(db),
		unit:         uow.NewPostgres(db),
	}, db, nil
}

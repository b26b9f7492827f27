package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	authHandler "github.com/Rolando1980/client-geo-logger/internal/auth/handler"
	authService "github.com/Rolando1980/client-geo-logger/internal/auth/service"
	"github.com/Rolando1980/client-geo-logger/internal/auth/store/revocation"
	userStore "github.com/Rolando1980/client-geo-logger/internal/auth/store/user"
	clientHandler "github.com/Rolando1980/client-geo-logger/internal/client/handler"
	clientService "github.com/Rolando1980/client-geo-logger/internal/client/service"
	clientStore "github.com/Rolando1980/client-geo-logger/internal/client/store"
	"github.com/Rolando1980/client-geo-logger/internal/geo"
	jwttoken "github.com/Rolando1980/client-geo-logger/internal/jwt_token"
	"github.com/Rolando1980/client-geo-logger/internal/location"
	"github.com/Rolando1980/client-geo-logger/internal/platform/config"
	"github.com/Rolando1980/client-geo-logger/internal/platform/httpserver"
	"github.com/Rolando1980/client-geo-logger/internal/platform/logger"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/platform/middleware"
	"github.com/Rolando1980/client-geo-logger/internal/platform/postgres"
	"github.com/Rolando1980/client-geo-logger/internal/platform/redis"
	httptransport "github.com/Rolando1980/client-geo-logger/internal/transport/http"
	visitHandler "github.com/Rolando1980/client-geo-logger/internal/visit/handler"
	visitService "github.com/Rolando1980/client-geo-logger/internal/visit/service"
	visitStore "github.com/Rolando1980/client-geo-logger/internal/visit/store"
	"github.com/Rolando1980/client-geo-logger/internal/watch"
)

// main wires dependencies and runs the server plus its two background
// workers (audit publisher, watch bridge) under one errgroup. Business logic
// lives in the internal service packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("postgres connected")
	} else {
		log.Info("postgres not configured, using in-memory stores")
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("redis connected")
	}

	// Stores: Postgres when configured, process-local otherwise.
	var (
		users   userStore.Store
		clients clientStore.Store
		visits  visitStore.Store
	)
	if db != nil {
		users = userStore.NewPostgres(db)
		clients = clientStore.NewPostgres(db)
		visits = visitStore.NewPostgres(db)
	} else {
		users = userStore.NewInMemory()
		clients = clientStore.NewInMemory()
		visits = visitStore.NewInMemory()
	}

	var revoked revocation.List
	if rdb != nil {
		revoked = revocation.NewRedisList(rdb.Client)
	} else {
		revoked = revocation.NewInMemory()
	}

	// Audit events flow through one worker goroutine into Kafka when brokers
	// are configured, into memory otherwise.
	var auditStore audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
		log.Info("kafka audit sink connected", "topic", cfg.Kafka.Topic)
	} else {
		auditStore = audit.NewInMemoryStore()
	}
	publisher := audit.NewPublisher(auditStore, log)

	hub := watch.NewHub()
	var bridge *watch.Bridge
	if rdb != nil {
		bridge = watch.NewBridge(hub, rdb.Client, log)
	} else {
		bridge = watch.NewBridge(hub, nil, log)
	}

	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	validator := jwttoken.NewJWTServiceAdapter(tokens)
	requireAuth := middleware.RequireAuth(validator, revoked, log)

	accounts := authService.New(users, revoked, tokens, cfg.Server.AccessTokenTTL, publisher, m, log)
	clientSvc := clientService.New(clients, bridge, publisher, m, log)
	visitSvc := visitService.New(visits, clients, bridge, publisher, m, log)
	locator := geo.NewLocator(cfg.Geo, m, log)

	checks := map[string]httptransport.HealthChecker{}
	if db != nil {
		checks["postgres"] = dbChecker{db: db}
	}
	if rdb != nil {
		checks["redis"] = rdb
	}

	router := httptransport.NewRouter(log, m, checks,
		authHandler.New(accounts, tokens, revoked, hub, bridge, log, m, requireAuth),
		clientHandler.New(clientSvc, hub, log, m, requireAuth),
		visitHandler.New(visitSvc, hub, log, m, requireAuth),
		geo.NewHandler(locator, requireAuth),
		location.NewHandler(requireAuth),
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return publisher.Run(gctx)
	})
	g.Go(func() error {
		return bridge.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting client-geo-logger", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// dbChecker adapts *sql.DB to the router's health contract.
type dbChecker struct {
	db *sql.DB
}

func (c dbChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

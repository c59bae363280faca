package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appservice "trouwen/internal/application/service"
	appstore "trouwen/internal/application/store"
	"trouwen/internal/audit"
	cataloghandler "trouwen/internal/catalog/handler"
	catalogservice "trouwen/internal/catalog/service"
	catalogstore "trouwen/internal/catalog/store"
	"trouwen/internal/fixtures"
	httpapi "trouwen/internal/http"
	officianthandler "trouwen/internal/officiant/handler"
	officiantservice "trouwen/internal/officiant/service"
	officiantstore "trouwen/internal/officiant/store"
	orghandler "trouwen/internal/organization/handler"
	orgservice "trouwen/internal/organization/service"
	orgstore "trouwen/internal/organization/store"
	"trouwen/internal/platform/config"
	"trouwen/internal/platform/metrics"
	"trouwen/internal/platform/postgres"
	platformredis "trouwen/internal/platform/redis"
	rolehandler "trouwen/internal/role/handler"
	roleservice "trouwen/internal/role/service"
	rolestore "trouwen/internal/role/store"
	tokenhandler "trouwen/internal/token/handler"
	tokenservice "trouwen/internal/token/service"
	tokenstore "trouwen/internal/token/store"
	txcontext "trouwen/pkg/platform/tx"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// stores groups the persistence layer of every module. Postgres backs it when
// a database URL is configured; otherwise everything lives in memory.
type stores struct {
	applications  appservice.Store
	organizations orgservice.OrganizationStore
	persons       orgservice.PersonStore
	officiants    officiantservice.Store
	roles         roleservice.Store
	catalog       catalogstore.Backend
	tokens        tokenservice.Store
	audit         audit.Store
	tx            txRunner
}

func memoryStores() stores {
	return stores{
		applications:  appstore.NewInMemory(),
		organizations: orgstore.NewOrganizationMemory(),
		persons:       orgstore.NewPersonMemory(),
		officiants:    officiantstore.NewInMemory(),
		roles:         rolestore.NewInMemory(),
		catalog:       catalogstore.NewInMemory(),
		tokens:        tokenstore.NewInMemory(),
		audit:         audit.NewInMemoryStore(),
		tx:            txcontext.NewMemoryRunner(),
	}
}

func postgresStores(db *sql.DB) stores {
	return stores{
		applications:  appstore.NewPostgres(db),
		organizations: orgstore.NewOrganizationPostgres(db),
		persons:       orgstore.NewPersonPostgres(db),
		officiants:    officiantstore.NewPostgres(db),
		roles:         rolestore.NewPostgres(db),
		catalog:       catalogstore.NewPostgres(db),
		tokens:        tokenstore.NewPostgres(db),
		audit:         audit.NewPostgresStore(db),
		tx:            txcontext.NewSQLRunner(db),
	}
}

// app is the assembled service graph.
type app struct {
	cfg          config.Server
	logger       *slog.Logger
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	applications *appservice.Service
	audit        *audit.Service
	fixtures     *fixtures.Loader
	handler      http.Handler
	closers      []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp connects the configured backends and wires every module.
// Redis and Kafka are optional; Postgres falls back to memory stores.
func buildApp(ctx context.Context, cfg config.Server, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)
	checks := map[string]httpapi.HealthCheck{}

	st := memoryStores()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		st = postgresStores(db)
		checks["postgres"] = db.PingContext
	} else {
		logger.WarnContext(ctx, "no database configured, records are kept in memory")
	}

	auditOpts := []audit.Option{audit.WithLogger(logger), audit.WithMetrics(a.metrics)}
	if len(cfg.Kafka.Brokers) > 0 {
		streamer, err := audit.NewKafkaStreamer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, streamer.Close)
		auditOpts = append(auditOpts, audit.WithStreamer(streamer, 0))
		checks["kafka"] = streamer.Ping
	}
	a.audit = audit.NewService(st.audit, auditOpts...)

	catalogStore := catalogservice.Store(st.catalog)
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		catalogStore = catalogstore.NewCached(st.catalog, redisClient.Client, cfg.Redis.CacheTTL,
			catalogstore.WithCacheLogger(logger),
			catalogstore.WithCacheMetrics(a.metrics),
		)
		checks["redis"] = redisClient.Health
	}

	a.applications = appservice.New(st.applications, appservice.WithLogger(logger))
	orgs := orgservice.New(st.organizations, st.persons, st.tx, a.audit,
		orgservice.WithLogger(logger), orgservice.WithMetrics(a.metrics))
	tokens := tokenservice.New(st.tokens,
		tokenservice.WithLogger(logger), tokenservice.WithMetrics(a.metrics))
	officiants := officiantservice.New(st.officiants, tokens, st.tx, a.audit,
		officiantservice.WithLogger(logger), officiantservice.WithMetrics(a.metrics))
	roles := roleservice.New(st.roles, st.tx, a.audit,
		roleservice.WithLogger(logger), roleservice.WithMetrics(a.metrics))
	catalog := catalogservice.New(catalogStore, st.tx, a.audit,
		catalogservice.WithLogger(logger), catalogservice.WithMetrics(a.metrics))
	a.fixtures = fixtures.NewLoader(a.applications, orgs, logger)

	a.handler = httpapi.NewRouter(httpapi.Config{
		Logger:        logger,
		Metrics:       a.metrics,
		Gatherer:      a.registry,
		Authenticator: a.applications,
		HealthChecks:  checks,
	},
		orghandler.New(orgs, logger),
		officianthandler.New(officiants, logger),
		rolehandler.New(roles, logger),
		cataloghandler.New(catalog, cfg.PublicBaseURL, logger),
		tokenhandler.New(tokens, logger),
	)
	return a, nil
}

// seed loads the fixtures and returns a fresh token for the fixture application.
func (a *app) seed(ctx context.Context) (*fixtures.Result, string, error) {
	res, err := a.fixtures.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	token, err := appservice.SignToken(res.Application.ClientID, res.Application.Secret, time.Now())
	if err != nil {
		return nil, "", err
	}
	return res, token, nil
}

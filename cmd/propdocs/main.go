package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redis "github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/propdocs/propdocs/pkg/access"
	"github.com/propdocs/propdocs/pkg/api"
	"github.com/propdocs/propdocs/pkg/audit"
	"github.com/propdocs/propdocs/pkg/config"
	"github.com/propdocs/propdocs/pkg/documents"
	"github.com/propdocs/propdocs/pkg/identity"
	"github.com/propdocs/propdocs/pkg/jobs"
	"github.com/propdocs/propdocs/pkg/observability"
	"github.com/propdocs/propdocs/pkg/permissions"
	"github.com/propdocs/propdocs/pkg/ratelimit"
	"github.com/propdocs/propdocs/pkg/storage"
	"github.com/propdocs/propdocs/pkg/subscriptions"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("loading configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	tokens, err := identity.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	identityStore := identity.NewPostgresStore(db)
	accessStore := access.NewStore(db)
	subStore := subscriptions.NewPostgresStore(db)
	docStore := documents.NewPostgresStore(db)

	capabilities := permissions.NewDefaultRegistry()
	resolver := access.NewResolver(accessStore, accessStore, access.WithExistenceCheck())
	gate := subscriptions.NewGate(subStore, subscriptions.WithTrialLimits(cfg.Trials))

	limiter := ratelimit.NewLimiter(cfg.RateLimits.PublicDocuments)
	var docLimiter documents.RateLimiter = limiter
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		distributed := ratelimit.NewDistributedLimiter(redisClient, cfg.RateLimits.PublicDocuments, "propdocs:ratelimit")
		docLimiter = &distributedAdapter{limiter: distributed, logger: logger}
		logger.WithField("addr", cfg.Redis.Addr).Info("using distributed rate limiter")
	}

	verifier := documents.NewStripeVerifier(cfg.Stripe.SecretKey,
		documents.WithStripeHTTPClient(&http.Client{Timeout: cfg.Stripe.Timeout}),
		documents.WithStripeLogger(logger))

	s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	deciderOpts := []documents.DeciderOption{documents.WithLogger(logger)}
	if metrics != nil {
		deciderOpts = append(deciderOpts, documents.WithMetrics(metrics))
	}
	decider := documents.NewDecider(capabilities, resolver, gate, docLimiter, verifier, deciderOpts...)

	auditor, err := audit.NewDBLogger(db)
	if err != nil {
		return err
	}

	auth := api.NewAuthMiddleware(tokens, identityStore, logger)
	serverOpts := []api.ServerOption{api.WithServerLogger(logger), api.WithAuditLogger(auditor)}
	if metrics != nil {
		serverOpts = append(serverOpts, api.WithServerMetrics(metrics))
	}
	server := api.NewServer(docStore, decider, gate, resolver, capabilities, s3Store, auth, serverOpts...)

	scheduler := jobs.NewScheduler(subStore, limiter, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	httpServer := api.NewHTTPServer(cfg.Server, server.Handler())

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("api server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("health server shutdown")
		}
		return nil
	})

	return g.Wait()
}

// distributedAdapter turns the redis-backed limiter into the request-scoped
// interface the decision engine expects. Redis failures fail open; the error
// is logged and the request proceeds.
type distributedAdapter struct {
	limiter *ratelimit.DistributedLimiter
	logger  *observability.Logger
}

func (a *distributedAdapter) CheckAndRecord(identifier string) ratelimit.Result {
	result, err := a.limiter.CheckAndRecord(context.Background(), identifier)
	if err != nil {
		a.logger.WithError(err).Warn("distributed rate limiter unavailable")
	}
	return result
}

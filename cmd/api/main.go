package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ceramicarte/preventivi-backend/api/controllers"
	"github.com/ceramicarte/preventivi-backend/api/routes"
	"github.com/ceramicarte/preventivi-backend/internal/catalog"
	"github.com/ceramicarte/preventivi-backend/internal/quotes"
	"github.com/ceramicarte/preventivi-backend/internal/render"
	"github.com/ceramicarte/preventivi-backend/internal/translate"
	"github.com/ceramicarte/preventivi-backend/pkg/config"
	"github.com/ceramicarte/preventivi-backend/pkg/db"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
	"github.com/ceramicarte/preventivi-backend/pkg/migrate"
	"github.com/ceramicarte/preventivi-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(cfg.DB, cfg.FeatureFlags, cfg.App.IsDev())
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), logg, dbClient, cfg); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis only backs the translation cache, so a missing instance
	// degrades to uncached translations instead of failing startup.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, translation cache disabled")
	}

	reg := metrics.New()

	var cache *translate.Cache
	if redisClient != nil {
		cache = translate.NewCache(redisClient, cfg.Translate.CacheTTL, reg)
	}
	gateway := translate.NewService(translate.Options{
		Backends: []translate.Backend{
			translate.NewGoogleBackend(cfg.Translate.GoogleURL, nil),
			translate.NewLibreBackend(cfg.Translate.LibreURL, nil),
		},
		Cache:           cache,
		Metrics:         reg,
		Log:             logg,
		AttemptTimeout:  cfg.Translate.AttemptTimeout,
		RetryPerBackend: 1,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := quotes.NewManager(cfg.Drafts.SessionTTL, logg)
	go manager.Start(ctx)

	catalogService := catalog.NewService(dbClient, logg)
	localizer := quotes.NewLocalizer(gateway, logg, reg)
	renderer := render.NewHTTPRenderer(cfg.Render.URL, cfg.Render.Timeout, nil)
	quoteService := quotes.NewService(dbClient, manager, catalogService, localizer, renderer, reg, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	logCtx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, reg, dbClient, pingerOrNil(redisClient), catalogService, quoteService),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

// pingerOrNil avoids handing the router a typed nil that would pass
// the interface nil check.
func pingerOrNil(c *redis.Client) controllers.Pinger {
	if c == nil {
		return nil
	}
	return c
}

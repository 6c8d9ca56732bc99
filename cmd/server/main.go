package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpattn/fishql/internal/cache"
	"github.com/rpattn/fishql/internal/config"
	"github.com/rpattn/fishql/internal/db"
	"github.com/rpattn/fishql/internal/export"
	"github.com/rpattn/fishql/internal/graphql"
	"github.com/rpattn/fishql/internal/ingestion"
	"github.com/rpattn/fishql/internal/middleware"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/referential"
	"github.com/rpattn/fishql/internal/server"
	"github.com/rpattn/fishql/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := os.Getenv("FISHQL_CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Local entity store
	entityStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer entityStore.Close()

	// Referential cache
	var refCache cache.Cache = cache.NewNoop()
	if cfg.Cache.Enabled {
		redisCache := cache.NewRedis(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("[CONFIG] redis at %s unreachable, referential cache disabled: %v", cfg.Cache.Addr, err)
			_ = redisCache.Close()
		} else {
			defer redisCache.Close()
			refCache = redisCache
		}
	}

	// Remote backend
	schema, err := graphql.LoadSchemaFile(cfg.GraphQL.SchemaPath)
	if err != nil {
		log.Fatalf("Failed to load backend schema: %v", err)
	}
	client := graphql.NewClient(cfg.GraphQL.Endpoint,
		graphql.WithSchema(schema),
		graphql.WithHTTPClient(&http.Client{Timeout: cfg.GraphQL.Timeout}),
	)
	fetcher := referential.FallbackFetcher{
		Primary:   referential.NewStoreFetcher(entityStore),
		Secondary: graphql.NewReferentialService(client),
	}

	srv := server.New(server.Dependencies{
		Store:     entityStore,
		Registry:  model.DefaultRegistry(),
		Exports:   export.NewService(export.WithExportDirectory(cfg.Export.Dir)),
		Ingestion: ingestion.NewService(entityStore),
		NewLoader: func() *referential.Loader {
			return referential.NewLoader(fetcher, referential.WithCache(refCache, cfg.Cache.TTL))
		},
		Metrics: middleware.NewMetrics(),
	}, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: 60 * time.Second,
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting fishql inspector on %s (store=%s, backend=%s)", cfg.Server.Addr, cfg.Store.Driver, cfg.GraphQL.Endpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Driver == db.DriverPostgres {
		pg, err := store.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := store.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

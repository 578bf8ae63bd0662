// Package main is the entry point for the agrimart server.
// It loads configuration, connects to services, hydrates the catalog
// snapshot, sets up routing, and starts the HTTP server with graceful
// shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrimart/internal/cache"
	"agrimart/internal/catalog"
	"agrimart/internal/config"
	"agrimart/internal/database"
	"agrimart/internal/handlers"
	"agrimart/internal/render"
	"agrimart/internal/router"
	"agrimart/internal/session"
	"agrimart/internal/storage"
	"agrimart/internal/store"
)

func main() {
	// Structured logger — text output, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session store backed by Valkey. In non-development environments,
	// session cookies are marked Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// HTML template renderer. In dev mode, templates load assets from
	// CDN; in production they use compiled files embedded in the binary.
	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	catalogSource := store.NewCatalogSource(categoryStore, productStore)

	// Connect to S3-compatible object storage (optional — the app works
	// without it, media uploads are just disabled).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			slog.Info("s3 storage connected",
				"endpoint", cfg.S3Endpoint,
				"bucket", cfg.S3Bucket,
			)
		}
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// Full-page HTML cache in Valkey.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Catalog snapshot: hydrate synchronously from the database, then let
	// the initializer run the once-per-session background refresh. A
	// failed initial load degrades to an empty snapshot — pages render
	// empty until the refresh succeeds.
	ctx := context.Background()
	catalogStore := catalog.NewStore()
	catalogSession := catalog.NewSession()
	initializer := catalog.NewInitializer(catalogStore, catalogSession, catalogSource)

	initialCategories, err := catalogSource.ListCategories(ctx)
	if err != nil {
		slog.Warn("initial category load failed", "error", err)
	}
	initialProducts, err := catalogSource.ListProducts(ctx)
	if err != nil {
		slog.Warn("initial product load failed", "error", err)
	}
	initializer.Run(ctx, initialCategories, initialProducts)
	slog.Info("catalog hydrated",
		"categories", len(initialCategories),
		"products", len(initialProducts),
	)

	// Handler groups.
	adminHandlers := handlers.NewAdmin(renderer, categoryStore, productStore, userStore,
		catalogStore, catalogSource, pageCache, storageClient)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, catalogSession)
	publicHandlers := handlers.NewPublic(renderer, catalogStore, productStore, categoryStore, pageCache)

	// Chi router with all middleware and routes.
	r := router.New(sessionStore, adminHandlers, authHandlers, publicHandlers)

	// HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let an in-flight catalog refresh finish before exiting.
	initializer.Wait()

	slog.Info("server stopped gracefully")
}

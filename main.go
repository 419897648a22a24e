package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blog-edge/internal/config"
	"blog-edge/internal/container"
	"blog-edge/internal/handler"
	"blog-edge/internal/middleware"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	kvClient *kv.Client
	server   *http.Server
	log      *logger.Logger
	mu       sync.Mutex
	closed   bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errors []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errors = append(errors, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	// Close KV connection with health check
	if r.kvClient != nil {
		r.log.Info("Closing KV connection...")

		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := r.kvClient.Health(healthCtx); err != nil {
			r.log.WithError(err).Warn("KV health check failed before closing")
		}
		healthCancel()

		if err := r.kvClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close KV connection")
			errors = append(errors, fmt.Errorf("KV close: %w", err))
		} else {
			r.log.Info("KV connection closed successfully")
		}
	}

	if len(errors) > 0 {
		r.log.WithField("error_count", len(errors)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errors), errors)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting blog-edge server")

	// Create dependency injection container
	c, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	// Setup router
	router := setupRouter(c)

	// Create HTTP server
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Create resources manager for cleanup
	resources := &Resources{
		kvClient: c.KV,
		server:   server,
		log:      log,
	}

	// Setup graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	// Cleanup runs regardless of how the program exits
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	log.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services

	r := chi.NewRouter()

	// Setup middlewares
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Telemetry(log))

	// Create handlers
	healthHandler := handler.NewHealthHandler(c.KV, c.Assets, log)
	blogHandler := handler.NewBlogHandler(services.Metadata, c.Assets, c.Site, log)
	metricsHandler := handler.NewMetricsHandler(services.Metrics, log)
	postsHandler := handler.NewPostsHandler(services.Catalog, services.Metadata, c.Site, log)
	newsletterHandler := handler.NewNewsletterHandler(services.Newsletter, log)
	feedbackHandler := handler.NewFeedbackHandler(services.Feedback, log)
	feedHandler := handler.NewFeedHandler(services.Catalog, c.Site, log)
	spaHandler := handler.NewSPAHandler(c.Assets, log)

	// Health check and operational metrics
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	// Public API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(middleware.PublicAPIConfig(), log))

		// Web Vitals beacons
		r.Post("/metrics", metricsHandler.Ingest)
		r.Post("/metrics/batch", metricsHandler.IngestBatch)

		// Read APIs over the metadata snapshot
		r.Get("/posts", postsHandler.List)
		r.Get("/posts/{slug}", postsHandler.Get)
		r.Get("/tags", postsHandler.Tags)
		r.Get("/search", postsHandler.Search)
		r.Get("/recommendations", postsHandler.Recommendations)

		// Feedback
		r.Post("/feedback", feedbackHandler.Submit)
	})

	// Newsletter endpoints use the site CORS policy
	r.Group(func(r chi.Router) {
		siteCORS := &middleware.CORSConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
			MaxAge:         86400,
		}
		r.Use(middleware.CORS(siteCORS, log))

		r.Post("/subscribe", newsletterHandler.Subscribe)
		r.Post("/unsubscribe", newsletterHandler.Unsubscribe)
		r.Get("/unsubscribe", newsletterHandler.Unsubscribe)
	})

	// Feeds
	r.Get("/rss.xml", feedHandler.RSS)
	r.Get("/atom.xml", feedHandler.Atom)

	// Blog post pages get crawler-aware rendering
	r.Get("/blog/{slug}", blogHandler.ServePost)

	// Everything else falls through to the SPA shell with streaming
	// head injection for crawler hits
	r.NotFound(middleware.MetaTags(services.Metadata, c.Site, log)(spaHandler).ServeHTTP)

	return r
}

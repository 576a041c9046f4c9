package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tharo/api/config"
	"tharo/api/database"
	"tharo/api/handlers"
	"tharo/api/metrics"
	"tharo/api/middleware"
	"tharo/api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL (catalog + admin accounts) ---
	dbClient, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Event store backend ---
	var eventStore store.EventStore
	switch cfg.EventStoreBackend {
	case "clickhouse":
		chClient, err := database.NewClickHouseDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize ClickHouse database: %v", err)
		}
		eventStore = store.NewClickHouseEventStore(chClient, cfg.EventMaxCount)
	case "file":
		fileStore, err := store.NewFileEventStore(cfg.EventFilePath, cfg.EventMaxCount)
		if err != nil {
			log.Fatalf("Failed to initialize file event store: %v", err)
		}
		eventStore = fileStore
	default:
		log.Fatalf("Unknown EVENT_STORE_BACKEND %q (want file or clickhouse)", cfg.EventStoreBackend)
	}
	defer eventStore.Close()

	// --- Stores ---
	adminStore := store.NewAdminStore(dbClient.DB)
	productStore := store.NewProductStore(dbClient.DB)

	// --- Metrics ---
	trackingMetrics := metrics.NewTrackingMetrics(prometheus.DefaultRegisterer)

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(adminStore, cfg.TokenLifetime)
	trackHandlers := handlers.NewTrackHandlers(eventStore, trackingMetrics)
	analyticsHandlers := handlers.NewAnalyticsHandlers(eventStore, productStore, trackingMetrics)
	productHandlers := handlers.NewProductHandlers(productStore)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware(cfg.FrontendOrigin))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Public tracking endpoint, called from the storefront. Rate
		// limited per IP so a single client can't churn the store.
		api.POST("/track",
			middleware.TrackRateLimit(cfg.TrackRatePerSec, cfg.TrackBurst, trackingMetrics),
			trackHandlers.TrackEvent,
		)

		// Public catalog reads for the storefront. Slug lookup rides the
		// list endpoint (?slug=) to keep the route tree wildcard-free.
		api.GET("/products", productHandlers.ListProducts)
		api.GET("/products/:id", productHandlers.GetProduct)

		// Admin surface (dashboard reports + catalog mutations).
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/analytics/realtime", analyticsHandlers.GetRealtime)
			protected.GET("/analytics/top-products", analyticsHandlers.GetTopProducts)

			protected.POST("/products", productHandlers.CreateProduct)
			protected.PUT("/products/:id", productHandlers.UpdateProduct)
			protected.DELETE("/products/:id", productHandlers.DeleteProduct)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Go API server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Go API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

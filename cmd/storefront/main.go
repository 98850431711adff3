package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Valency12/el-xolito-storefront/internal/backend"
	"github.com/Valency12/el-xolito-storefront/internal/cart"
	"github.com/Valency12/el-xolito-storefront/internal/catalog"
	"github.com/Valency12/el-xolito-storefront/internal/config"
	"github.com/Valency12/el-xolito-storefront/internal/handlers"
	"github.com/Valency12/el-xolito-storefront/internal/middleware"
	"github.com/Valency12/el-xolito-storefront/internal/session"
	"github.com/Valency12/el-xolito-storefront/internal/storage"
	"github.com/Valency12/el-xolito-storefront/internal/view"
	"github.com/Valency12/el-xolito-storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting storefront",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"backend", cfg.Backend.BaseURL,
		"log_level", cfg.LogLevel,
	)

	// Open the persisted store (cart, tokens, user)
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Error("failed to open storage", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	log.Info("storage opened", "path", store.Path())

	// Wire the backend client with persisted tokens
	tokens := session.NewTokens(store, log)
	client := backend.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.Timeout)*time.Second, tokens, log)

	// Prime the catalog cache with the visible product set. A dead backend
	// degrades to lazy per-id resolution, not a startup failure.
	cache := catalog.NewCache(client, log)
	active := true
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.Timeout)*time.Second)
	if err := cache.LoadAll(loadCtx, backend.ProductFilter{Active: &active}); err != nil {
		log.Warn("catalog preload failed, continuing with lazy resolution", "error", err)
	}
	cancelLoad()

	// Restore the cart ledger; every mutation re-projects the cart view
	var ledger *cart.Ledger
	ledger = cart.NewLedger(store, cache, log, cart.Options{
		MaxQuantity: cfg.Cart.MaxQuantity,
		OnChange: func() {
			log.Debug("cart re-projected", "items", ledger.ItemCount())
		},
	})
	log.Info("cart restored", "lines", len(ledger.Lines()), "total", view.FormatPrice(ledger.Total()))

	sessions := session.NewManager(client, store, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	productHandler := handlers.NewProductHandler(cache, log)
	cartHandler := handlers.NewCartHandler(ledger, log)
	sessionHandler := handlers.NewSessionHandler(sessions, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration: the static pages are served from a separate origin
	// during development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{productId}", productHandler.GetProduct)
		r.Get("/categories", productHandler.ListCategories)

		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{productId}", cartHandler.UpdateItem)
		r.Delete("/cart/items/{productId}", cartHandler.RemoveItem)

		r.Post("/session/register", sessionHandler.Register)
		r.Post("/session/login", sessionHandler.Login)
		r.Post("/session/logout", sessionHandler.Logout)
		r.Get("/session/me", sessionHandler.Me)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("storefront listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Retire the ledger so any in-flight resolution cannot commit after
	// shutdown has flushed the final state
	ledger.Retire()

	log.Info("storefront stopped gracefully")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/handy/api/internal/config"
	"github.com/forgo/handy/api/internal/database"
	"github.com/forgo/handy/api/internal/handler"
	"github.com/forgo/handy/api/internal/jobs"
	"github.com/forgo/handy/api/internal/messaging"
	"github.com/forgo/handy/api/internal/middleware"
	"github.com/forgo/handy/api/internal/repository"
	"github.com/forgo/handy/api/internal/service"
	"github.com/forgo/handy/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT verification
	jwtService, err := jwt.NewService(jwt.Config{
		PublicKeyPath: cfg.JWT.PublicKeyPath,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize event publishing. The API runs fine without it.
	var events service.EventPublisher
	if cfg.NATS.URL != "" {
		publisher, err := messaging.NewNATSPublisher(messaging.Config{
			URL:  cfg.NATS.URL,
			Name: cfg.NATS.Name,
		})
		if err != nil {
			slog.Error("failed to connect to NATS, continuing without events",
				slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Initialize services
	accountService := service.NewAccountService(service.AccountServiceConfig{
		Accounts: accountRepo,
	})
	listingService := service.NewListingService(service.ListingServiceConfig{
		Listings: listingRepo,
		Accounts: accountRepo,
		Events:   events,
	})
	bookingService := service.NewBookingService(service.BookingServiceConfig{
		Bookings: bookingRepo,
		Listings: listingRepo,
		Accounts: accountRepo,
		Events:   events,
	})
	reconciler := service.NewReconciler(service.ReconcilerConfig{
		Accounts: accountRepo,
		Listings: listingRepo,
		Bookings: bookingRepo,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Start the reconciliation sweep
	if cfg.Reconciler.Enabled {
		reconcilerJob := jobs.NewReconcilerJob(reconciler, cfg.Reconciler.Interval)
		reconcilerJob.Start()
		defer reconcilerJob.Stop()
	}

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService)
	listingHandler := handler.NewListingHandler(listingService)
	bookingHandler := handler.NewBookingHandler(bookingService)

	// Create router and register routes
	mux := http.NewServeMux()
	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	// Health check endpoint
	mux.HandleFunc("GET /health", handler.NewHealthHandler(db))

	// Account endpoints
	mux.Handle("POST /v1/accounts/register", authMiddleware(http.HandlerFunc(accountHandler.Register)))
	mux.Handle("POST /v1/accounts/register-provider", authMiddleware(http.HandlerFunc(accountHandler.RegisterProvider)))
	mux.Handle("GET /v1/accounts/me", authMiddleware(http.HandlerFunc(accountHandler.Me)))

	// Listing endpoints - writes require auth; catalog reads accept a
	// token but do not require one
	mux.Handle("GET /v1/listings", optionalAuth(http.HandlerFunc(listingHandler.List)))
	mux.Handle("GET /v1/listings/search", optionalAuth(http.HandlerFunc(listingHandler.Search)))
	mux.Handle("GET /v1/listings/featured", optionalAuth(http.HandlerFunc(listingHandler.Featured)))
	mux.Handle("GET /v1/listings/owned", authMiddleware(http.HandlerFunc(listingHandler.Owned)))
	mux.Handle("GET /v1/listings/{listingId}", optionalAuth(http.HandlerFunc(listingHandler.Get)))
	mux.Handle("POST /v1/listings", authMiddleware(http.HandlerFunc(listingHandler.Create)))
	mux.Handle("PUT /v1/listings/{listingId}", authMiddleware(http.HandlerFunc(listingHandler.Update)))
	mux.Handle("DELETE /v1/listings/{listingId}", authMiddleware(http.HandlerFunc(listingHandler.Delete)))

	// Booking endpoints
	mux.Handle("POST /v1/bookings", authMiddleware(http.HandlerFunc(bookingHandler.Book)))
	mux.Handle("GET /v1/bookings/requested", authMiddleware(http.HandlerFunc(bookingHandler.Requested)))
	mux.Handle("GET /v1/bookings/to-fulfill", authMiddleware(http.HandlerFunc(bookingHandler.ToFulfill)))
	mux.Handle("PATCH /v1/bookings/{bookingId}/status", authMiddleware(http.HandlerFunc(bookingHandler.UpdateStatus)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

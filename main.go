package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/phuy1125/vin2/internal/adapter/llm"
	"github.com/phuy1125/vin2/internal/adapter/search"
	"github.com/phuy1125/vin2/internal/auth"
	"github.com/phuy1125/vin2/internal/config"
	"github.com/phuy1125/vin2/internal/logging"
	store "github.com/phuy1125/vin2/internal/repository"
	"github.com/phuy1125/vin2/internal/service"
	"github.com/phuy1125/vin2/internal/tools"
	handler "github.com/phuy1125/vin2/internal/transport/http"
	"github.com/phuy1125/vin2/policy"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := run(cfg, logger); err != nil {
		logger.Error("travel assistant stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	logger.Info("starting travel assistant",
		"port", cfg.HTTP.Port,
		"store", cfg.Store.Driver,
		"sessions", cfg.Session.Driver,
		"llm", cfg.LLM.Provider,
	)

	// Initialize stores
	itineraries, err := openItineraryStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize itinerary store: %w", err)
	}
	defer itineraries.Close()

	sessions, closeSessions, err := openSessionStore(ctx, cfg, itineraries)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer closeSessions()

	// Initialize LLM client
	generator, err := llm.NewGenerator(llm.Options{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize llm client: %w", err)
	}

	// Initialize search provider
	if cfg.Search.APIKey == "" {
		logger.Warn("TAVILY_API_KEY is not set; search requests will fail")
	}
	provider := search.NewCachedProvider(
		search.NewTavilyClient(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.RateLimit, cfg.Timeouts.Tool),
		cfg.Search.CacheTTL,
		cfg.Timeouts.Tool,
	)

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	// Initialize capabilities and service
	toolbox := tools.NewToolbox(itineraries, provider, policyEngine,
		tools.WithTimeouts(tools.Timeouts{
			Search: cfg.Timeouts.Tool,
			Store:  cfg.Timeouts.Tool,
			Commit: cfg.Timeouts.Commit,
		}),
		tools.WithMaxResults(cfg.Search.MaxResults),
	)
	svc := service.New(itineraries, sessions, generator, toolbox, logger, service.Options{
		MaxMessages:     cfg.Session.MaxMessages,
		ClassifyTimeout: cfg.Timeouts.Classification,
		GenerateTimeout: cfg.Timeouts.Generation,
	})

	// Create Echo server
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	if !verifier.Enabled() {
		logger.Warn("AUTH_JWT_SECRET is not set; requests are trusted to carry their own user_id")
	}
	server := handler.NewServer(svc, tools.NewRegistryFor(toolbox), verifier, logger)

	// Start server
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	logger.Info("API started", "port", cfg.HTTP.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("shutting down travel assistant")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("travel assistant stopped")
	return nil
}

func openItineraryStore(ctx context.Context, cfg *config.Config) (store.ItineraryStore, error) {
	switch cfg.Store.Driver {
	case "mongo":
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDB)
	default:
		return store.NewSQLiteStore(cfg.Store.SQLite)
	}
}

// openSessionStore returns the session store and its cleanup. The sqlite
// driver reuses the itinerary database when that is SQLite too.
func openSessionStore(ctx context.Context, cfg *config.Config, itineraries store.ItineraryStore) (store.SessionStore, func(), error) {
	switch cfg.Session.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return store.NewRedisSessionStore(client, cfg.Session.TTL), func() { client.Close() }, nil
	case "sqlite":
		if db, ok := itineraries.(*store.SQLiteStore); ok {
			return db.Sessions(), func() {}, nil
		}
		db, err := store.NewSQLiteStore(cfg.Store.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return db.Sessions(), func() { db.Close() }, nil
	default:
		return store.NewMemorySessionStore(), func() {}, nil
	}
}

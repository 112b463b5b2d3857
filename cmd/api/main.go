// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"newsradar/internal/adapter/classifier"
	"newsradar/internal/adapter/market"
	"newsradar/internal/adapter/scraper"
	"newsradar/internal/adapter/storage"
	"newsradar/internal/config"
	"newsradar/internal/logger"
	"newsradar/internal/server"
	"newsradar/internal/service/analysis"
	"newsradar/internal/service/trends"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS, log)
	if err != nil {
		// The API and pipeline work without a broker; only the live
		// feed degrades.
		log.WithError(err).Warn("NATS unavailable, analysis feed disabled")
	} else {
		defer natsConn.Close()
	}

	// Initialize storage
	articleStore := storage.NewArticleStore(db)
	if err := articleStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Initialize trend aggregation
	limiter := trends.NewProviderLimiter(cfg.Trend.ProviderInterval)
	cache := trends.NewCache(cfg.Trend.CacheSize, cfg.Trend.CacheTTL)

	googleClient := trends.NewGoogleTrendsClient(cfg.Trend.GoogleBaseURL, cfg.Trend.ProviderTimeout, limiter, log)
	redditClient := trends.NewRedditClient(cfg.Trend.RedditBaseURL, cfg.Trend.ProviderTimeout, limiter, log)
	hnClient := trends.NewHackerNewsClient(cfg.Trend.HNBaseURL, cfg.Trend.ProviderTimeout, limiter, log)

	aggregator := trends.NewAggregator(
		googleClient,
		redditClient,
		hnClient,
		trends.NewSynthesizer(),
		cache,
		log,
		trends.AggregatorConfig{
			GoogleWeight:   cfg.Trend.GoogleWeight,
			RedditWeight:   cfg.Trend.RedditWeight,
			HNWeight:       cfg.Trend.HNWeight,
			DefaultKeyword: cfg.Trend.DefaultKeyword,
			LookbackMonths: cfg.Trend.LookbackMonths,
		},
	)

	// Initialize pipeline collaborators
	extractor := scraper.NewExtractor(cfg.Analysis.ScraperTimeout, log)
	quotes := market.NewYahooQuoteClient(cfg.Market.BaseURL, cfg.Market.Timeout, log)

	var articleClassifier analysis.Classifier
	if cfg.Classifier.APIKey != "" {
		articleClassifier = classifier.NewOpenAIClassifier(
			cfg.Classifier.BaseURL,
			cfg.Classifier.APIKey,
			cfg.Classifier.Model,
			cfg.Classifier.Timeout,
			log,
		)
	} else {
		log.Warn("classifier api key not set, analysis will use default classifications")
	}

	var events analysis.EventPublisher
	if natsConn != nil {
		events = natsConn
	}

	// Initialize the analysis pipeline and batch scheduler
	pipeline := analysis.NewPipeline(
		articleStore,
		extractor,
		articleClassifier,
		aggregator,
		quotes,
		events,
		log,
		analysis.PipelineConfig{
			CooldownMin:    cfg.Analysis.CooldownMin,
			CooldownMax:    cfg.Analysis.CooldownMax,
			LookbackMonths: cfg.Trend.LookbackMonths,
		},
	)
	scheduler := analysis.NewScheduler(pipeline, articleStore, log, cfg.Analysis.MaxParallel)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		natsConn,
		articleStore,
		pipeline,
		scheduler,
		aggregator,
		log,
	)

	// Start HTTP server
	go func() {
		log.Infof("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	log.Info("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log *logrus.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

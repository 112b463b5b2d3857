// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Trend       TrendConfig
	Analysis    AnalysisConfig
	Classifier  ClassifierConfig
	Market      MarketConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// TrendConfig holds trend aggregation configuration
type TrendConfig struct {
	GoogleWeight   float64
	RedditWeight   float64
	HNWeight       float64
	DefaultKeyword string
	LookbackMonths int

	CacheTTL  time.Duration
	CacheSize int

	ProviderInterval time.Duration
	ProviderTimeout  time.Duration

	GoogleBaseURL string
	RedditBaseURL string
	HNBaseURL     string
}

// AnalysisConfig holds pipeline and scheduler configuration
type AnalysisConfig struct {
	CooldownMin  time.Duration
	CooldownMax  time.Duration
	MaxParallel  int
	BacklogLimit int

	ScraperTimeout time.Duration
}

// ClassifierConfig holds AI classifier configuration
type ClassifierConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// MarketConfig holds quote provider configuration
type MarketConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "newsradar"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Trend: TrendConfig{
			GoogleWeight:     getEnvAsFloat("TREND_GOOGLE_WEIGHT", 0.50),
			RedditWeight:     getEnvAsFloat("TREND_REDDIT_WEIGHT", 0.25),
			HNWeight:         getEnvAsFloat("TREND_HN_WEIGHT", 0.25),
			DefaultKeyword:   getEnv("TREND_DEFAULT_KEYWORD", "cybersecurity"),
			LookbackMonths:   getEnvAsInt("TREND_LOOKBACK_MONTHS", 6),
			CacheTTL:         getEnvAsDuration("TREND_CACHE_TTL", 30*time.Minute),
			CacheSize:        getEnvAsInt("TREND_CACHE_SIZE", 512),
			ProviderInterval: getEnvAsDuration("TREND_PROVIDER_INTERVAL", 2*time.Second),
			ProviderTimeout:  getEnvAsDuration("TREND_PROVIDER_TIMEOUT", 15*time.Second),
			GoogleBaseURL:    getEnv("TREND_GOOGLE_BASE_URL", "http://localhost:8081"),
			RedditBaseURL:    getEnv("TREND_REDDIT_BASE_URL", "https://www.reddit.com"),
			HNBaseURL:        getEnv("TREND_HN_BASE_URL", "https://hn.algolia.com"),
		},
		Analysis: AnalysisConfig{
			CooldownMin:    getEnvAsDuration("ANALYSIS_COOLDOWN_MIN", 3*time.Second),
			CooldownMax:    getEnvAsDuration("ANALYSIS_COOLDOWN_MAX", 5*time.Second),
			MaxParallel:    getEnvAsInt("ANALYSIS_MAX_PARALLEL", 5),
			BacklogLimit:   getEnvAsInt("ANALYSIS_BACKLOG_LIMIT", 50),
			ScraperTimeout: getEnvAsDuration("ANALYSIS_SCRAPER_TIMEOUT", 30*time.Second),
		},
		Classifier: ClassifierConfig{
			BaseURL: getEnv("CLASSIFIER_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("CLASSIFIER_API_KEY", ""),
			Model:   getEnv("CLASSIFIER_MODEL", "gpt-4o"),
			Timeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 60*time.Second),
		},
		Market: MarketConfig{
			BaseURL: getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout: getEnvAsDuration("MARKET_TIMEOUT", 10*time.Second),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	weights := config.Trend.GoogleWeight + config.Trend.RedditWeight + config.Trend.HNWeight
	if weights < 0.99 || weights > 1.01 {
		return fmt.Errorf("trend source weights must sum to 1.0, got %.2f", weights)
	}

	if config.Analysis.CooldownMax < config.Analysis.CooldownMin {
		return fmt.Errorf("analysis cooldown max must be >= min")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

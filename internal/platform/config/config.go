package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// Bankfeed holds the external aggregation service settings.
	Bankfeed BankfeedConfig

	// KafkaBrokers enables the ledger event publisher when non-empty.
	KafkaBrokers []string

	// RateLimit is an ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// BankfeedConfig configures the external transaction feed client.
type BankfeedConfig struct {
	BaseURL       string
	ClientID      string
	Secret        string
	WebhookSecret string
	PageSize      int
	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("BANKFEED_BASE_URL", "https://sandbox.bankfeed.example.com")
	viper.SetDefault("BANKFEED_CLIENT_ID", "")
	viper.SetDefault("BANKFEED_SECRET", "")
	viper.SetDefault("BANKFEED_WEBHOOK_SECRET", "")
	viper.SetDefault("BANKFEED_PAGE_SIZE", 500)
	viper.SetDefault("BANKFEED_TIMEOUT", "30s")
	viper.SetDefault("BANKFEED_MAX_RETRIES", 3)
	viper.SetDefault("BANKFEED_RETRY_BACKOFF", "2s")
	viper.SetDefault("KAFKA_BROKERS", []string{})
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.Bankfeed = BankfeedConfig{
		BaseURL:       viper.GetString("BANKFEED_BASE_URL"),
		ClientID:      viper.GetString("BANKFEED_CLIENT_ID"),
		Secret:        viper.GetString("BANKFEED_SECRET"),
		WebhookSecret: viper.GetString("BANKFEED_WEBHOOK_SECRET"),
		PageSize:      viper.GetInt("BANKFEED_PAGE_SIZE"),
	}

	timeoutStr := viper.GetString("BANKFEED_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		log.Printf("Warning: Invalid value for BANKFEED_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.Bankfeed.Timeout = timeout

	backoffStr := viper.GetString("BANKFEED_RETRY_BACKOFF")
	backoff, err := time.ParseDuration(backoffStr)
	if err != nil {
		backoff = 2 * time.Second
		log.Printf("Warning: Invalid value for BANKFEED_RETRY_BACKOFF ('%s'). Defaulting to %s.\n", backoffStr, backoff)
	}
	cfg.Bankfeed.RetryBackoff = backoff
	cfg.Bankfeed.MaxRetries = viper.GetInt("BANKFEED_MAX_RETRIES")

	if cfg.Bankfeed.ClientID == "" || cfg.Bankfeed.Secret == "" {
		log.Println("Warning: BANKFEED_CLIENT_ID/BANKFEED_SECRET not set. Transaction sync will not function.")
	}

	cfg.KafkaBrokers = viper.GetStringSlice("KAFKA_BROKERS")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// MaxTransactionAmount caps a single posting; zero disables the cap.
	MaxTransactionAmount decimal.Decimal

	// StatementFormatsPath points at a YAML registry of statement formats that
	// extends or overrides the built-ins. Empty means built-ins only.
	StatementFormatsPath string

	// Upload guards for statement imports.
	ImportMaxBytes int64
	ImportMaxRows  int

	// RateLimit is a ulule/limiter formatted rate such as "120-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MAX_TRANSACTION_AMOUNT", "1000000000")
	viper.SetDefault("STATEMENT_FORMATS_PATH", "")
	viper.SetDefault("IMPORT_MAX_BYTES", 5*1024*1024)
	viper.SetDefault("IMPORT_MAX_ROWS", 10000)
	viper.SetDefault("RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	maxAmountStr := viper.GetString("MAX_TRANSACTION_AMOUNT")
	maxAmount, err := decimal.NewFromString(maxAmountStr)
	if err != nil {
		log.Printf("Warning: Invalid value for MAX_TRANSACTION_AMOUNT (%q). Disabling the cap.\n", maxAmountStr)
		maxAmount = decimal.Zero
	}
	cfg.MaxTransactionAmount = maxAmount

	cfg.StatementFormatsPath = viper.GetString("STATEMENT_FORMATS_PATH")
	cfg.ImportMaxBytes = viper.GetInt64("IMPORT_MAX_BYTES")
	cfg.ImportMaxRows = viper.GetInt("IMPORT_MAX_ROWS")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

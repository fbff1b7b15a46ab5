package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"google.golang.org/api/gmail/v1"

	"jobtracker/internal/infrastructure/logger"
)

// DefaultSearchQuery matches application acknowledgements from the last year.
const DefaultSearchQuery = `("thank you for applying" OR "application received" OR "thanks for applying" OR "thanks for your interest in") newer_than:365d`

type Config struct {
	// Google OAuth
	CredentialsPath string `env:"CREDENTIALS_PATH" envDefault:"credentials.json"`
	TokenPath       string `env:"TOKEN_PATH" envDefault:"token.json"`

	// Gmail search
	SearchQuery string `env:"SEARCH_QUERY"`

	// Local state
	ProcessedIDsPath string `env:"PROCESSED_IDS_PATH" envDefault:"processed_ids.txt"`
	LedgerPath       string `env:"LEDGER_PATH" envDefault:"job_applications.csv"`
	DatabasePath     string `env:"DATABASE_PATH"`

	Logger *logger.Config

	// Scope is fixed to read-only access and not read from the environment.
	Scope string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{
		Logger: &logger.Config{},
		Scope:  gmail.GmailReadonlyScope,
	}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	if cfg.SearchQuery == "" {
		cfg.SearchQuery = DefaultSearchQuery
	}

	required := []struct {
		key, value string
	}{
		{"CREDENTIALS_PATH", cfg.CredentialsPath},
		{"TOKEN_PATH", cfg.TokenPath},
		{"PROCESSED_IDS_PATH", cfg.ProcessedIDsPath},
		{"LEDGER_PATH", cfg.LedgerPath},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, errors.Errorf("%s must not be empty", r.key)
		}
	}

	return cfg, nil
}

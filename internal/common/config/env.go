package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// AWS-specific configuration
	AWSRegion         string
	DynamoDBTableName string

	// Environment and region info
	Environment string
	Region      string

	// Auth configuration
	SigningKeySecret string
	TokenTTL         time.Duration

	// Ledger configuration
	AssertOrder     bool
	DefaultCurrency string

	// Lambda detection flag (cached)
	isLambda bool
}

// LoadFromEnv loads the configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.DynamoDBTableName = os.Getenv("DYNAMODB_TABLE_NAME")

	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}

	cfg.Region = os.Getenv("REGION")
	if cfg.Region == "" {
		cfg.Region = "in"
	}

	cfg.AWSRegion = os.Getenv("AWS_REGION")
	if cfg.AWSRegion == "" {
		// Default AWS regions based on our region code
		switch cfg.Region {
		case "us":
			cfg.AWSRegion = "us-west-2"
		case "jp":
			cfg.AWSRegion = "ap-northeast-1"
		default:
			cfg.AWSRegion = "ap-south-1"
		}
	}

	cfg.SigningKeySecret = os.Getenv("SIGNING_KEY_SECRET")
	if cfg.SigningKeySecret == "" {
		cfg.SigningKeySecret = fmt.Sprintf("trade-ledger/%s/signing-key", cfg.Environment)
	}

	cfg.TokenTTL = 12 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL must be a positive duration, got %q", v)
		}
		cfg.TokenTTL = ttl
	}

	// History order is asserted everywhere except production unless set explicitly
	cfg.AssertOrder = !cfg.IsProd()
	if v := os.Getenv("LEDGER_ASSERT_ORDER"); v != "" {
		assert, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LEDGER_ASSERT_ORDER must be a boolean, got %q", v)
		}
		cfg.AssertOrder = assert
	}

	cfg.DefaultCurrency = os.Getenv("DEFAULT_CURRENCY")
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}

	// Check if running in Lambda
	cfg.isLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	return cfg, nil
}

// RequireTable fails when no DynamoDB table is configured. Only binaries that open the table call it.
func (c *Config) RequireTable() error {
	if c.DynamoDBTableName == "" {
		return errors.New("DYNAMODB_TABLE_NAME environment variable is required")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsLambda returns true if the application is running in AWS Lambda
func (c *Config) IsLambda() bool {
	return c.isLambda
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/minibank/internal/flagx"
	"github.com/dmitrijs2005/minibank/internal/timex"
	"github.com/shopspring/decimal"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields let
// an absent key keep the value set by defaults.
type JsonConfig struct {
	EndpointAddrGRPC       *string          `json:"endpoint_addr_grpc"`
	DatabaseDSN            *string          `json:"database_dsn"`
	SecretKey              *string          `json:"secret_key"`
	TokenTTL               *timex.Duration  `json:"token_ttl"`
	MinPasswordLength      *int             `json:"min_password_length"`
	BcryptCost             *int             `json:"bcrypt_cost"`
	OpeningBalance         *decimal.Decimal `json:"opening_balance"`
	HistoryLimit           *int             `json:"history_limit"`
	MaxHistoryLimit        *int             `json:"max_history_limit"`
	LogLevel               *string          `json:"log_level"`
	RedisURL               *string          `json:"redis_url"`
	LoginAttemptsPerMinute *int             `json:"login_attempts_per_minute"`
	S3RootUser             *string          `json:"s3_root_user"`
	S3RootPassword         *string          `json:"s3_root_password"`
	S3Bucket               *string          `json:"s3_bucket"`
	S3Region               *string          `json:"s3_region"`
	S3BaseEndpoint         *string          `json:"s3_base_endpoint"`
	StatementURLTTL        *timex.Duration  `json:"statement_url_ttl"`
}

// parseJson overlays values from the file given by -c/-config in args.
// No flag means nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.MinPasswordLength, c.MinPasswordLength)
	setIf(&config.BcryptCost, c.BcryptCost)
	setIf(&config.OpeningBalance, c.OpeningBalance)
	setIf(&config.HistoryLimit, c.HistoryLimit)
	setIf(&config.MaxHistoryLimit, c.MaxHistoryLimit)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.RedisURL, c.RedisURL)
	setIf(&config.LoginAttemptsPerMinute, c.LoginAttemptsPerMinute)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.StatementURLTTL != nil {
		config.StatementURLTTL = c.StatementURLTTL.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

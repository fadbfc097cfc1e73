package config

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/money"
	"golang.org/x/crypto/bcrypt"
)

const MinSecretKeyLength = 32

// Validate reports every invalid setting at once. The returned error
// matches common.ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	} else if len(c.SecretKey) < MinSecretKeyLength {
		errs = append(errs, fmt.Errorf("secret key must be at least %d characters", MinSecretKeyLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}
	if c.MinPasswordLength <= 0 {
		errs = append(errs, errors.New("minimum password length must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if _, err := money.Parse(c.OpeningBalance.String()); err != nil {
		errs = append(errs, fmt.Errorf("opening balance: %s", common.MessageOf(err)))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, errors.New("history limit must be positive"))
	}
	if c.MaxHistoryLimit <= 0 {
		errs = append(errs, errors.New("max history limit must be positive"))
	} else if c.HistoryLimit > c.MaxHistoryLimit {
		errs = append(errs, fmt.Errorf("history limit must not exceed max history limit %d", c.MaxHistoryLimit))
	}
	if c.RedisURL != "" && c.LoginAttemptsPerMinute <= 0 {
		errs = append(errs, errors.New("login attempts per minute must be positive"))
	}
	if c.StatementURLTTL <= 0 {
		errs = append(errs, errors.New("statement URL TTL must be positive"))
	}

	if len(errs) == 0 {
		return nil
	}
	return common.WrapError(common.CodeConfiguration, "invalid configuration", errors.Join(errs...))
}

// Package accounts is the Postgres-backed credential store.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetBalance(ctx context.Context, username string) (decimal.Decimal, error)
	// GetBalanceForUpdate reads the balance and holds a row lock until the
	// surrounding transaction ends.
	GetBalanceForUpdate(ctx context.Context, username string) (decimal.Decimal, error)
	// AdjustBalance adds delta (which may be negative) and returns the new balance.
	AdjustBalance(ctx context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error)
}

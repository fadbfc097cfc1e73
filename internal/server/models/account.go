// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer record. Balance is the only field that changes
// after registration, and only through a transfer.
type Account struct {
	UID          string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

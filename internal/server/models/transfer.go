package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransferTypeTransfer   = "transfer"
	TransferStatusComplete = "completed"
)

// Transfer is an append-only record of money moved between two accounts.
type Transfer struct {
	ID               int64
	SenderUsername   string
	ReceiverUsername string
	Amount           decimal.Decimal
	Type             string
	Status           string
	CreatedAt        time.Time
}

// Direction tells whether a transfer left or entered an account.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// HistoryEntry is a transfer as seen from one of its two accounts.
type HistoryEntry struct {
	Transfer
	Direction Direction
}

// DirectionFor reports how t looks from username's side.
func (t Transfer) DirectionFor(username string) Direction {
	if t.SenderUsername == username {
		return DirectionSent
	}
	return DirectionReceived
}

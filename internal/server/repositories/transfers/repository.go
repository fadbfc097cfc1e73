// Package transfers stores the append-only transfer history.
package transfers

import (
	"context"

	"github.com/dmitrijs2005/minibank/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transfer) (*models.Transfer, error)
	// ListByUsername returns transfers sent or received by username,
	// newest first.
	ListByUsername(ctx context.Context, username string, limit int) ([]models.Transfer, error)
}

// Package sessions is the token ledger: an audit trail of issued session
// tokens. It is never used to authorize a request.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/minibank/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.SessionToken) (*models.SessionToken, error)
	Exists(ctx context.Context, token string) (bool, error)
}

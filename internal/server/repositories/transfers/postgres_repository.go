package transfers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) (*models.Transfer, error) {
	query :=
		`INSERT INTO transfers (sender_username, receiver_username, amount, transfer_type, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.SenderUsername, t.ReceiverUsername, t.Amount, t.Type, t.Status).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByUsername(ctx context.Context, username string, limit int) ([]models.Transfer, error) {
	query :=
		`SELECT id, sender_username, receiver_username, amount, transfer_type, status, created_at
		 FROM transfers
		 WHERE sender_username = $1 OR receiver_username = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Transfer, 0, limit)
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.SenderUsername, &t.ReceiverUsername, &t.Amount, &t.Type, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/server/models"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (uid, username, email, phone, password_hash, role, balance)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.UID, a.Username, a.Email, a.Phone, a.PasswordHash, a.Role, a.Balance).Scan(&a.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT uid, username, email, phone, password_hash, role, balance, created_at
		 FROM accounts WHERE username = $1`

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&a.UID, &a.Username, &a.Email, &a.Phone, &a.PasswordHash, &a.Role, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	return r.balance(ctx, `SELECT balance FROM accounts WHERE username = $1`, username)
}

func (r *PostgresRepository) GetBalanceForUpdate(ctx context.Context, username string) (decimal.Decimal, error) {
	return r.balance(ctx, `SELECT balance FROM accounts WHERE username = $1 FOR UPDATE`, username)
}

func (r *PostgresRepository) balance(ctx context.Context, query, username string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, common.ErrorNotFound
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) AdjustBalance(ctx context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error) {
	query :=
		`UPDATE accounts SET balance = balance + $1
		 WHERE username = $2
		 RETURNING balance`

	var balance decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, delta, username).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, common.ErrorNotFound
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

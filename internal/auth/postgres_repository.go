package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements AccountRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new AccountRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) AccountRepository {
	return &PostgresRepository{pool: pool}
}

const accountColumns = `id, name, role, api_key_prefix, api_key_hash, created_at, revoked_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Role, &a.ApiKeyPrefix, &a.ApiKeyHash, &a.CreatedAt, &a.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("scanning account row: %w", err)
	}
	return &a, nil
}

// Create inserts a new account record.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (name, role, api_key_prefix, api_key_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, a.Name, a.Role, a.ApiKeyPrefix, a.ApiKeyHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

// GetByID retrieves a single account by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// FindByPrefix returns active (non-revoked) accounts matching the given API key prefix.
func (r *PostgresRepository) FindByPrefix(ctx context.Context, prefix string) ([]Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE api_key_prefix = $1 AND revoked_at IS NULL`
	return r.list(ctx, query, prefix)
}

// List retrieves all accounts ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at ASC`)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Account, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

// Revoke sets revoked_at on an account. Returns ErrAccountNotFound if the
// account does not exist, and ErrAccountRevoked if already revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoking account: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking account existence: %w", err)
		}
		if !exists {
			return ErrAccountNotFound
		}
		return ErrAccountRevoked
	}

	return nil
}

// CountAll returns the total number of accounts (including revoked).
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

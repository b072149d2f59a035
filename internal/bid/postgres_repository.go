package bid

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/automarket/automarket/internal/database"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Repository backed by the given connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const bidColumns = `id, solution_id, buyer_id, status, created_at, updated_at`

func scanBid(row pgx.Row) (*Bid, error) {
	var b Bid
	if err := row.Scan(&b.ID, &b.SolutionID, &b.BuyerID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning bid row: %w", err)
	}
	return &b, nil
}

// Create inserts a new bid.
func (r *PostgresRepository) Create(ctx context.Context, b *Bid) error {
	query := `
		INSERT INTO bids (solution_id, buyer_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + bidColumns

	created, err := scanBid(database.Conn(ctx, r.pool).QueryRow(ctx, query, b.SolutionID, b.BuyerID, b.Status))
	if err != nil {
		return fmt.Errorf("inserting bid: %w", err)
	}
	*b = *created
	return nil
}

// GetByID retrieves a bid by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Bid, error) {
	return scanBid(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE id = $1`, id))
}

// SetStatus moves a bid to status.
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Bid, error) {
	query := `
		UPDATE bids SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bidColumns
	return scanBid(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, status))
}

// FindActiveForSolution returns the oldest active bid on a solution.
func (r *PostgresRepository) FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE solution_id = $1 AND status = ANY($2)
		ORDER BY created_at ASC
		LIMIT 1`
	return scanBid(database.Conn(ctx, r.pool).QueryRow(ctx, query, solutionID, ActiveStatuses))
}

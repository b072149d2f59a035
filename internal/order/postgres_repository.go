package order

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const orderColumns = `id, solution_id, specialist_id, buyer_id, status, gross_cents,
	commission_rate::float8, platform_fee_cents, payout_cents, created_at, updated_at, completed_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.SolutionID, &o.SpecialistID, &o.BuyerID, &o.Status, &o.GrossCents,
		&o.CommissionRate, &o.PlatformFeeCents, &o.PayoutCents, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning order row: %w", err)
	}
	return &o, nil
}

// Create inserts a new order.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (solution_id, specialist_id, buyer_id, status, gross_cents,
		                    commission_rate, platform_fee_cents, payout_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + orderColumns

	created, err := scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx, query,
		o.SolutionID, o.SpecialistID, o.BuyerID, o.Status, o.GrossCents,
		o.CommissionRate, o.PlatformFeeCents, o.PayoutCents,
	))
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	*o = *created
	return nil
}

// GetByID retrieves an order by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// GetForUpdate retrieves an order and locks its row for the rest of the transaction.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

// SetStatus moves an order to status.
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	query := `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns
	return scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, status))
}

// MarkCompleted sets status=completed and the completion timestamp.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (*Order, error) {
	query := `
		UPDATE orders SET status = 'completed', completed_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns
	return scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, at))
}

// FindActiveForSolution returns the oldest active order on a solution.
func (r *PostgresRepository) FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE solution_id = $1 AND status = ANY($2)
		ORDER BY created_at ASC
		LIMIT 1`
	return scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx, query, solutionID, ActiveStatuses))
}

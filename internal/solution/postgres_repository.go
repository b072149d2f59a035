package solution

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

const solutionColumns = `id, specialist_id, slug, status, title, category, short_description,
	long_description, integrations, included, implementation_price_cents,
	monthly_cost_min_cents, monthly_cost_max_cents, delivery_days, support_days,
	access_requirements, payback_period, commission_rate::float8, moderation_status,
	published_at, archived_at, created_at, updated_at`

func scanSolution(row pgx.Row) (*Solution, error) {
	var s Solution
	err := row.Scan(
		&s.ID, &s.SpecialistID, &s.Slug, &s.Status, &s.Title, &s.Category, &s.ShortDescription,
		&s.LongDescription, &s.Integrations, &s.Included, &s.ImplementationPriceCents,
		&s.MonthlyCostMinCents, &s.MonthlyCostMaxCents, &s.DeliveryDays, &s.SupportDays,
		&s.AccessRequirements, &s.PaybackPeriod, &s.CommissionRate, &s.ModerationStatus,
		&s.PublishedAt, &s.ArchivedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning solution row: %w", err)
	}
	if s.Integrations == nil {
		s.Integrations = []string{}
	}
	if s.Included == nil {
		s.Included = []string{}
	}
	return &s, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// Create inserts a new solution. Status and moderation take their column defaults.
func (r *PostgresRepository) Create(ctx context.Context, s *Solution) error {
	query := `
		INSERT INTO solutions (specialist_id, slug, title, category, short_description,
		                       long_description, integrations, included, implementation_price_cents,
		                       monthly_cost_min_cents, monthly_cost_max_cents, delivery_days, support_days,
		                       access_requirements, payback_period, commission_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + solutionColumns

	created, err := scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.SpecialistID, s.Slug, s.Title, s.Category, s.ShortDescription,
		s.LongDescription, nonNil(s.Integrations), nonNil(s.Included), s.ImplementationPriceCents,
		s.MonthlyCostMinCents, s.MonthlyCostMaxCents, s.DeliveryDays, s.SupportDays,
		s.AccessRequirements, s.PaybackPeriod, s.CommissionRate,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("inserting solution: %w", err)
	}

	*s = *created
	return nil
}

// GetByID retrieves a single solution by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE id = $1`
	return scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

// GetForUpdate retrieves a solution and locks its row for the rest of the transaction.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE id = $1 FOR UPDATE`
	return scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

// GetForShare retrieves a solution holding a share lock, which blocks
// concurrent lifecycle mutations until the transaction ends.
func (r *PostgresRepository) GetForShare(ctx context.Context, id uuid.UUID) (*Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE id = $1 FOR SHARE`
	return scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

// ListBySpecialist returns a specialist's solutions, newest first.
func (r *PostgresRepository) ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]Solution, error) {
	query := `SELECT ` + solutionColumns + `
		FROM solutions
		WHERE specialist_id = $1
		ORDER BY created_at DESC`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, specialistID)
	if err != nil {
		return nil, fmt.Errorf("listing solutions: %w", err)
	}
	defer rows.Close()

	solutions := []Solution{}
	for rows.Next() {
		s, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating solution rows: %w", err)
	}

	return solutions, nil
}

// Update writes the editable fields of s and refreshes s from the stored row.
func (r *PostgresRepository) Update(ctx context.Context, s *Solution) error {
	query := `
		UPDATE solutions
		SET title = $2, category = $3, short_description = $4, long_description = $5,
		    integrations = $6, included = $7, implementation_price_cents = $8,
		    monthly_cost_min_cents = $9, monthly_cost_max_cents = $10, delivery_days = $11,
		    support_days = $12, access_requirements = $13, payback_period = $14,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + solutionColumns

	updated, err := scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.ID, s.Title, s.Category, s.ShortDescription, s.LongDescription,
		nonNil(s.Integrations), nonNil(s.Included), s.ImplementationPriceCents,
		s.MonthlyCostMinCents, s.MonthlyCostMaxCents, s.DeliveryDays,
		s.SupportDays, s.AccessRequirements, s.PaybackPeriod,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("updating solution: %w", err)
	}

	*s = *updated
	return nil
}

// MarkPublished sets status=published, the publish timestamp and approves moderation.
func (r *PostgresRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) (*Solution, error) {
	query := `
		UPDATE solutions
		SET status = 'published', published_at = $2, moderation_status = 'approved', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + solutionColumns
	return scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, at))
}

// MarkArchived sets status=archived and the archive timestamp.
func (r *PostgresRepository) MarkArchived(ctx context.Context, id uuid.UUID, at time.Time) (*Solution, error) {
	query := `
		UPDATE solutions
		SET status = 'archived', archived_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + solutionColumns
	return scanSolution(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, at))
}

// AppendEvent records a status transition.
func (r *PostgresRepository) AppendEvent(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO solution_events (solution_id, from_status, to_status, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		e.SolutionID, e.FromStatus, e.ToStatus, e.ActorID, e.OccurredAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("inserting solution event: %w", err)
	}
	return nil
}

// ListEvents returns a solution's transitions in the order they occurred.
func (r *PostgresRepository) ListEvents(ctx context.Context, solutionID uuid.UUID) ([]Event, error) {
	query := `
		SELECT id, solution_id, from_status, to_status, actor_id, occurred_at
		FROM solution_events
		WHERE solution_id = $1
		ORDER BY occurred_at ASC, id ASC`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, solutionID)
	if err != nil {
		return nil, fmt.Errorf("listing solution events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SolutionID, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning solution event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating solution event rows: %w", err)
	}

	return events, nil
}

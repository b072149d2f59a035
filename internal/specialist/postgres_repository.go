package specialist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/automarket/automarket/internal/database"
)

// PostgresRepository implements Repository using pgxpool. Statements join a
// transaction started by database.DB.InTx when one is bound to the context.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Repository backed by the given connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = `id, account_id, status, is_verified, is_founding, founding_rank,
	completed_sales, commission_override::float8, tools, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Status, &p.IsVerified, &p.IsFounding, &p.FoundingRank,
		&p.CompletedSales, &p.CommissionOverride, &p.Tools, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning specialist profile row: %w", err)
	}
	if p.Tools == nil {
		p.Tools = []string{}
	}
	return &p, nil
}

// Create inserts a new profile for p.AccountID.
func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	tools := p.Tools
	if tools == nil {
		tools = []string{}
	}

	query := `
		INSERT INTO specialist_profiles (account_id, tools)
		VALUES ($1, $2)
		RETURNING ` + profileColumns

	created, err := scanProfile(database.Conn(ctx, r.pool).QueryRow(ctx, query, p.AccountID, tools))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateProfile
		}
		return fmt.Errorf("inserting specialist profile: %w", err)
	}

	*p = *created
	return nil
}

// GetByID retrieves a profile by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM specialist_profiles WHERE id = $1`
	return scanProfile(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

// GetByAccountID retrieves the profile owned by an account.
func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM specialist_profiles WHERE account_id = $1`
	return scanProfile(database.Conn(ctx, r.pool).QueryRow(ctx, query, accountID))
}

// SetCommissionOverride stores or clears the admin override.
func (r *PostgresRepository) SetCommissionOverride(ctx context.Context, id uuid.UUID, percent *float64) (*Profile, error) {
	query := `
		UPDATE specialist_profiles
		SET commission_override = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, percent))
}

// SetVerified sets the verification flag.
func (r *PostgresRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*Profile, error) {
	query := `
		UPDATE specialist_profiles
		SET is_verified = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, verified))
}

// PromoteFounding makes the specialist a founding member. The rank is taken
// under a table lock so concurrent promotions cannot collide on the unique
// founding_rank constraint.
func (r *PostgresRepository) PromoteFounding(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var promoted *Profile
	err := database.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		conn := database.Conn(ctx, r.pool)

		current, err := scanProfile(conn.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM specialist_profiles WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if current.IsFounding {
			promoted = current
			return nil
		}

		if _, err := conn.Exec(ctx, `LOCK TABLE specialist_profiles IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("locking specialist profiles: %w", err)
		}

		query := `
			UPDATE specialist_profiles
			SET is_founding = TRUE,
			    founding_rank = (SELECT COALESCE(MAX(founding_rank), 0) + 1 FROM specialist_profiles),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING ` + profileColumns
		promoted, err = scanProfile(conn.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// IncrementCompletedSales adds one to the completed-sales counter.
func (r *PostgresRepository) IncrementCompletedSales(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE specialist_profiles
		SET completed_sales = completed_sales + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("incrementing completed sales: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package conversation

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

const conversationColumns = `id, solution_id, buyer_id, status, created_at, updated_at`

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	if err := row.Scan(&c.ID, &c.SolutionID, &c.BuyerID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning conversation row: %w", err)
	}
	return &c, nil
}

// Create inserts a new conversation.
func (r *PostgresRepository) Create(ctx context.Context, c *Conversation) error {
	query := `
		INSERT INTO conversations (solution_id, buyer_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + conversationColumns

	created, err := scanConversation(database.Conn(ctx, r.pool).QueryRow(ctx, query, c.SolutionID, c.BuyerID, c.Status))
	if err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}
	*c = *created
	return nil
}

// GetByID retrieves a conversation by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	return scanConversation(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id))
}

// SetStatus moves a conversation to status.
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Conversation, error) {
	query := `
		UPDATE conversations SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + conversationColumns
	return scanConversation(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, status))
}

// FindActiveForSolution returns the oldest active conversation about a solution.
func (r *PostgresRepository) FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE solution_id = $1 AND status = ANY($2)
		ORDER BY created_at ASC
		LIMIT 1`
	return scanConversation(database.Conn(ctx, r.pool).QueryRow(ctx, query, solutionID, ActiveStatuses))
}

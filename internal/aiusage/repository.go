package aiusage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, event *Event) error
	CountWindows(ctx context.Context, userID uuid.UUID, hourStart, dayStart, monthStart time.Time) (WindowCounts, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// id and created_at are database-assigned, so the insert never binds them.
const insertEventQuery = `
	INSERT INTO ai_usage_events (user_id, kind, succeeded, error_message, tokens_used)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at`

func (r *postgresRepository) Insert(ctx context.Context, event *Event) error {
	err := r.pool.QueryRow(ctx, insertEventQuery,
		event.UserID, event.Kind,
		event.Succeeded, event.ErrorMessage, event.TokensUsed,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting usage event: %w", err)
	}
	return nil
}

// CountWindows counts the user's events at or after each window start in a
// single pass. Events never postdate the evaluation instant, so lower bounds
// are sufficient.
func (r *postgresRepository) CountWindows(ctx context.Context, userID uuid.UUID, hourStart, dayStart, monthStart time.Time) (WindowCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3),
			COUNT(*) FILTER (WHERE created_at >= $4)
		FROM ai_usage_events
		WHERE user_id = $1 AND created_at >= LEAST($2, $4)`

	var counts WindowCounts
	err := r.pool.QueryRow(ctx, query, userID, hourStart, dayStart, monthStart).
		Scan(&counts.Hourly, &counts.Daily, &counts.Monthly)
	if err != nil {
		return WindowCounts{}, fmt.Errorf("counting usage events: %w", err)
	}
	return counts, nil
}

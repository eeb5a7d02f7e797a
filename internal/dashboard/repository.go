package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DateTotal is an aggregated integer per date, as read from the store.
type DateTotal struct {
	Date  time.Time
	Total int
}

// DateWeight is a single weight row as read from the store.
type DateWeight struct {
	Date     time.Time
	WeightKg float64
}

type Repository interface {
	DailyCalories(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateTotal, error)
	DailyExerciseMinutes(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateTotal, error)
	WeightsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateWeight, error)
	LatestWeight(ctx context.Context, userID uuid.UUID) (*DateWeight, error)
	LatestEntryDate(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	ActivityCounts(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateTotal, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) DailyCalories(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateTotal, error) {
	query := `
		SELECT entry_date, COALESCE(SUM(calories), 0)
		FROM dietary_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		GROUP BY entry_date
		ORDER BY entry_date`
	return r.queryTotals(ctx, query, userID, start, end)
}

func (r *postgresRepository) DailyExerciseMinutes(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateTotal, error) {
	query := `
		SELECT entry_date, COALESCE(SUM(duration_minutes), 0)
		FROM exercise_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		GROUP BY entry_date
		ORDER BY entry_date`
	return r.queryTotals(ctx, query, userID, start, end)
}

func (r *postgresRepository) WeightsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateWeight, error) {
	query := `
		SELECT entry_date, weight_kg
		FROM weight_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date, id`

	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying weights: %w", err)
	}
	defer rows.Close()

	var weights []DateWeight
	for rows.Next() {
		var w DateWeight
		if err := rows.Scan(&w.Date, &w.WeightKg); err != nil {
			return nil, fmt.Errorf("scanning weight row: %w", err)
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

func (r *postgresRepository) LatestWeight(ctx context.Context, userID uuid.UUID) (*DateWeight, error) {
	query := `
		SELECT entry_date, weight_kg
		FROM weight_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT 1`

	w := &DateWeight{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&w.Date, &w.WeightKg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest weight: %w", err)
	}
	return w, nil
}

// LatestEntryDate returns the user's most recent dietary or exercise date,
// nil when the user has no such records.
func (r *postgresRepository) LatestEntryDate(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	query := `
		SELECT MAX(entry_date) FROM (
			SELECT entry_date FROM dietary_entries WHERE user_id = $1
			UNION ALL
			SELECT entry_date FROM exercise_entries WHERE user_id = $1
		) AS dates`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("querying latest entry date: %w", err)
	}
	return latest, nil
}

func (r *postgresRepository) ActivityCounts(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DateTotal, error) {
	query := `
		SELECT entry_date, COUNT(*) FROM (
			SELECT entry_date FROM dietary_entries
			WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
			UNION ALL
			SELECT entry_date FROM exercise_entries
			WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
			UNION ALL
			SELECT entry_date FROM weight_entries
			WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		) AS activity
		GROUP BY entry_date
		ORDER BY entry_date`
	return r.queryTotals(ctx, query, userID, start, end)
}

func (r *postgresRepository) queryTotals(ctx context.Context, query string, userID uuid.UUID, start, end time.Time) ([]DateTotal, error) {
	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DateTotal
	for rows.Next() {
		var t DateTotal
		if err := rows.Scan(&t.Date, &t.Total); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

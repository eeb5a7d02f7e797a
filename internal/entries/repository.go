package entries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	InsertDietary(ctx context.Context, entry *DietaryEntry) error
	InsertExercise(ctx context.Context, entry *ExerciseEntry) error
	InsertWeight(ctx context.Context, entry *WeightEntry) error

	RecentDietary(ctx context.Context, userID uuid.UUID, limit int) ([]*DietaryEntry, error)
	RecentExercise(ctx context.Context, userID uuid.UUID, limit int) ([]*ExerciseEntry, error)
	RecentWeight(ctx context.Context, userID uuid.UUID, limit int) ([]*WeightEntry, error)

	DietaryByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*DietaryEntry, error)
	ExerciseByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*ExerciseEntry, error)
	WeightByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*WeightEntry, error)

	DeleteDietary(ctx context.Context, userID uuid.UUID, id int64) (bool, error)
	DeleteExercise(ctx context.Context, userID uuid.UUID, id int64) (bool, error)
	DeleteWeight(ctx context.Context, userID uuid.UUID, id int64) (bool, error)

	CaloriesForDate(ctx context.Context, userID uuid.UUID, date time.Time) (int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) InsertDietary(ctx context.Context, entry *DietaryEntry) error {
	query := `
		INSERT INTO dietary_entries (user_id, entry_date, item, calories, notes, remarks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.UserID, entry.Date, entry.Item, entry.Calories, entry.Notes, entry.Remarks,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting dietary entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) InsertExercise(ctx context.Context, entry *ExerciseEntry) error {
	query := `
		INSERT INTO exercise_entries (user_id, entry_date, activity, duration_minutes, calories_burned, remarks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.UserID, entry.Date, entry.Activity, entry.DurationMin, entry.CaloriesBurned, entry.Remarks,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) InsertWeight(ctx context.Context, entry *WeightEntry) error {
	query := `
		INSERT INTO weight_entries (user_id, entry_date, weight_kg, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.UserID, entry.Date, entry.WeightKg, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting weight entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) RecentDietary(ctx context.Context, userID uuid.UUID, limit int) ([]*DietaryEntry, error) {
	query := `
		SELECT id, user_id, entry_date, item, calories, notes, remarks, created_at
		FROM dietary_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT $2`
	return r.queryDietary(ctx, query, userID, limit)
}

func (r *postgresRepository) DietaryByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*DietaryEntry, error) {
	query := `
		SELECT id, user_id, entry_date, item, calories, notes, remarks, created_at
		FROM dietary_entries
		WHERE user_id = $1 AND entry_date = $2
		ORDER BY id`
	return r.queryDietary(ctx, query, userID, date)
}

func (r *postgresRepository) queryDietary(ctx context.Context, query string, args ...any) ([]*DietaryEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dietary entries: %w", err)
	}
	defer rows.Close()

	var result []*DietaryEntry
	for rows.Next() {
		entry := &DietaryEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Item,
			&entry.Calories, &entry.Notes, &entry.Remarks, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning dietary entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *postgresRepository) RecentExercise(ctx context.Context, userID uuid.UUID, limit int) ([]*ExerciseEntry, error) {
	query := `
		SELECT id, user_id, entry_date, activity, duration_minutes, calories_burned, remarks, created_at
		FROM exercise_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT $2`
	return r.queryExercise(ctx, query, userID, limit)
}

func (r *postgresRepository) ExerciseByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*ExerciseEntry, error) {
	query := `
		SELECT id, user_id, entry_date, activity, duration_minutes, calories_burned, remarks, created_at
		FROM exercise_entries
		WHERE user_id = $1 AND entry_date = $2
		ORDER BY id`
	return r.queryExercise(ctx, query, userID, date)
}

func (r *postgresRepository) queryExercise(ctx context.Context, query string, args ...any) ([]*ExerciseEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercise entries: %w", err)
	}
	defer rows.Close()

	var result []*ExerciseEntry
	for rows.Next() {
		entry := &ExerciseEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Activity,
			&entry.DurationMin, &entry.CaloriesBurned, &entry.Remarks, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *postgresRepository) RecentWeight(ctx context.Context, userID uuid.UUID, limit int) ([]*WeightEntry, error) {
	query := `
		SELECT id, user_id, entry_date, weight_kg, notes, created_at
		FROM weight_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT $2`
	return r.queryWeight(ctx, query, userID, limit)
}

func (r *postgresRepository) WeightByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*WeightEntry, error) {
	query := `
		SELECT id, user_id, entry_date, weight_kg, notes, created_at
		FROM weight_entries
		WHERE user_id = $1 AND entry_date = $2
		ORDER BY id`
	return r.queryWeight(ctx, query, userID, date)
}

func (r *postgresRepository) queryWeight(ctx context.Context, query string, args ...any) ([]*WeightEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying weight entries: %w", err)
	}
	defer rows.Close()

	var result []*WeightEntry
	for rows.Next() {
		entry := &WeightEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Date,
			&entry.WeightKg, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning weight entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// The DELETE statements carry the user_id predicate so ownership is enforced
// in SQL rather than by a separate lookup.

func (r *postgresRepository) DeleteDietary(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return r.deleteOwned(ctx, `DELETE FROM dietary_entries WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *postgresRepository) DeleteExercise(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return r.deleteOwned(ctx, `DELETE FROM exercise_entries WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *postgresRepository) DeleteWeight(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return r.deleteOwned(ctx, `DELETE FROM weight_entries WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *postgresRepository) deleteOwned(ctx context.Context, query string, id int64, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresRepository) CaloriesForDate(ctx context.Context, userID uuid.UUID, date time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(calories), 0)
		FROM dietary_entries
		WHERE user_id = $1 AND entry_date = $2`

	var total int
	if err := r.pool.QueryRow(ctx, query, userID, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing calories for date: %w", err)
	}
	return total, nil
}

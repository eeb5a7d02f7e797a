package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	CreateProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
	SetPartner(ctx context.Context, userID uuid.UUID, partnerID *uuid.UUID) error

	InGroup(ctx context.Context, userID uuid.UUID, group string) (bool, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`

	user := &User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return user, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`

	user := &User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CreateProfile(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO user_profiles
			(user_id, display_name, gender, birth_date, height_cm,
			 activity_level, fitness_goal, partner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		profile.UserID, profile.DisplayName, profile.Gender, profile.BirthDate,
		profile.HeightCm, profile.ActivityLevel, profile.FitnessGoal,
		profile.PartnerUserID, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `
		SELECT user_id, display_name, gender, birth_date, height_cm,
		       activity_level, fitness_goal, partner_user_id, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	profile := &Profile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.DisplayName, &profile.Gender, &profile.BirthDate,
		&profile.HeightCm, &profile.ActivityLevel, &profile.FitnessGoal,
		&profile.PartnerUserID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return profile, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE user_profiles
		SET display_name = $2, gender = $3, birth_date = $4, height_cm = $5,
		    activity_level = $6, fitness_goal = $7, updated_at = $8
		WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query,
		profile.UserID, profile.DisplayName, profile.Gender, profile.BirthDate,
		profile.HeightCm, profile.ActivityLevel, profile.FitnessGoal, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetPartner(ctx context.Context, userID uuid.UUID, partnerID *uuid.UUID) error {
	query := `UPDATE user_profiles SET partner_user_id = $2, updated_at = NOW() WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID, partnerID)
	if err != nil {
		return fmt.Errorf("updating partner link: %w", err)
	}
	return nil
}

func (r *postgresRepository) InGroup(ctx context.Context, userID uuid.UUID, group string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_groups WHERE user_id = $1 AND group_name = $2)`

	var member bool
	err := r.pool.QueryRow(ctx, query, userID, group).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("checking group membership: %w", err)
	}
	return member, nil
}

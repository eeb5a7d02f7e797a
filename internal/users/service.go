package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPartnerNotFound = errors.New("partner account not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create makes the user together with an empty profile row, so profile reads
// never have to handle a missing row for a registered account.
func (s *Service) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &Profile{UserID: user.ID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, profile *Profile) error {
	profile.UpdatedAt = time.Now()
	return s.repo.UpdateProfile(ctx, profile)
}

// SetPartnerByEmail links the caller to the account registered under email.
// An empty email clears the link.
func (s *Service) SetPartnerByEmail(ctx context.Context, userID uuid.UUID, email string) error {
	if email == "" {
		return s.repo.SetPartner(ctx, userID, nil)
	}

	partner, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if partner == nil || partner.ID == userID {
		return ErrPartnerNotFound
	}
	return s.repo.SetPartner(ctx, userID, &partner.ID)
}

// PartnerID resolves the caller's partner link, uuid.Nil when none is set.
func (s *Service) PartnerID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if profile == nil || profile.PartnerUserID == nil {
		return uuid.Nil, nil
	}
	return *profile.PartnerUserID, nil
}

// HasUnlimitedAI reports whether the user is exempt from AI usage quotas.
func (s *Service) HasUnlimitedAI(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.InGroup(ctx, userID, UnlimitedAIGroup)
}

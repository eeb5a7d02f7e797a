package calories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/entries"
	"github.com/avicenna-health/avicenna/internal/users"
)

// Status is the user's intake position against their daily goal. Progress is
// capped at 150 percent for display.
type Status struct {
	DailyGoal         int     `json:"daily_goal"`
	CaloriesConsumed  int     `json:"calories_consumed"`
	CaloriesRemaining int     `json:"calories_remaining"`
	FitnessGoal       string  `json:"fitness_goal"`
	ProgressPercent   float64 `json:"progress_percent"`
	Status            string  `json:"status"`
}

const (
	StatusUnder   = "under"
	StatusOnTrack = "on_track"
	StatusOver    = "over"
)

type Service struct {
	userSvc  *users.Service
	entrySvc *entries.Service
}

func NewService(userSvc *users.Service, entrySvc *entries.Service) *Service {
	return &Service{userSvc: userSvc, entrySvc: entrySvc}
}

// DailyStatus computes today's calorie status. It returns nil with no error
// when the calorie profile is incomplete or the user has no weight entry yet;
// there is no goal to measure against in either case.
func (s *Service) DailyStatus(ctx context.Context, userID uuid.UUID, today time.Time) (*Status, error) {
	profile, err := s.userSvc.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profileReady(profile) {
		return nil, nil
	}

	latest, err := s.entrySvc.LatestWeight(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}

	consumed, err := s.entrySvc.CaloriesForDate(ctx, userID, dateOnly(today))
	if err != nil {
		return nil, err
	}

	goal := DailyGoal(
		latest.WeightKg,
		*profile.HeightCm,
		ageAt(*profile.BirthDate, today),
		profile.Gender,
		profile.ActivityLevel,
		profile.FitnessGoal,
	)

	remaining := goal - consumed
	progress := 0.0
	if goal > 0 {
		progress = float64(consumed) / float64(goal) * 100
	}
	if progress > 150 {
		progress = 150
	}

	return &Status{
		DailyGoal:         goal,
		CaloriesConsumed:  consumed,
		CaloriesRemaining: remaining,
		FitnessGoal:       profile.FitnessGoal,
		ProgressPercent:   progress,
		Status:            statusFor(profile.FitnessGoal, remaining),
	}, nil
}

// statusFor grades today's remaining calories against the fitness goal.
// Lose and gain allow a 100 kcal overshoot before "over"; maintain uses a
// symmetric 200 kcal band around the goal.
func statusFor(fitnessGoal string, remaining int) string {
	if fitnessGoal == "maintain" {
		switch {
		case remaining > 200:
			return StatusUnder
		case remaining >= -200:
			return StatusOnTrack
		default:
			return StatusOver
		}
	}
	switch {
	case remaining > 200:
		return StatusUnder
	case remaining >= -100:
		return StatusOnTrack
	default:
		return StatusOver
	}
}

func profileReady(profile *users.Profile) bool {
	if profile == nil {
		return false
	}
	return profile.Gender != "" &&
		profile.BirthDate != nil &&
		profile.HeightCm != nil &&
		profile.ActivityLevel != "" &&
		profile.FitnessGoal != ""
}

func ageAt(birthDate, today time.Time) int {
	age := today.Year() - birthDate.Year()
	if today.YearDay() < birthDate.YearDay() {
		age--
	}
	return age
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

package entries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddDietary(ctx context.Context, entry *DietaryEntry) error {
	return s.repo.InsertDietary(ctx, entry)
}

func (s *Service) AddExercise(ctx context.Context, entry *ExerciseEntry) error {
	return s.repo.InsertExercise(ctx, entry)
}

func (s *Service) AddWeight(ctx context.Context, entry *WeightEntry) error {
	return s.repo.InsertWeight(ctx, entry)
}

func (s *Service) RecentDietary(ctx context.Context, userID uuid.UUID) ([]*DietaryEntry, error) {
	return s.repo.RecentDietary(ctx, userID, RecentDietaryLimit)
}

func (s *Service) RecentExercise(ctx context.Context, userID uuid.UUID) ([]*ExerciseEntry, error) {
	return s.repo.RecentExercise(ctx, userID, RecentExerciseLimit)
}

func (s *Service) RecentWeight(ctx context.Context, userID uuid.UUID) ([]*WeightEntry, error) {
	return s.repo.RecentWeight(ctx, userID, RecentWeightLimit)
}

func (s *Service) DeleteDietary(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return s.repo.DeleteDietary(ctx, userID, id)
}

func (s *Service) DeleteExercise(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return s.repo.DeleteExercise(ctx, userID, id)
}

func (s *Service) DeleteWeight(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return s.repo.DeleteWeight(ctx, userID, id)
}

func (s *Service) CaloriesForDate(ctx context.Context, userID uuid.UUID, date time.Time) (int, error) {
	return s.repo.CaloriesForDate(ctx, userID, date)
}

// LatestWeight returns the user's most recent weight entry, nil when the user
// has never logged one.
func (s *Service) LatestWeight(ctx context.Context, userID uuid.UUID) (*WeightEntry, error) {
	list, err := s.repo.RecentWeight(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// Recap assembles one date's entries and totals. The top-level remarks is the
// first non-empty remarks from the dietary list, then the exercise list; which
// item supplies it when several carry remarks is arbitrary and not meaningful.
func (s *Service) Recap(ctx context.Context, userID uuid.UUID, date time.Time) (*DailyRecap, error) {
	dietary, err := s.repo.DietaryByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	exercise, err := s.repo.ExerciseByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	weight, err := s.repo.WeightByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	recap := &DailyRecap{
		Date:     date.Format(dateLayout),
		Dietary:  dietary,
		Exercise: exercise,
		Weight:   weight,
	}
	if recap.Dietary == nil {
		recap.Dietary = []*DietaryEntry{}
	}
	if recap.Exercise == nil {
		recap.Exercise = []*ExerciseEntry{}
	}
	if recap.Weight == nil {
		recap.Weight = []*WeightEntry{}
	}

	for _, d := range dietary {
		recap.Summary.TotalCaloriesIn += d.Calories
	}
	for _, e := range exercise {
		recap.Summary.TotalCaloriesBurned += e.CaloriesBurned
		recap.Summary.TotalExerciseMin += e.DurationMin
	}
	recap.Summary.NetCalories = recap.Summary.TotalCaloriesIn - recap.Summary.TotalCaloriesBurned

	recap.Remarks = firstRemarks(dietary, exercise)
	return recap, nil
}

func firstRemarks(dietary []*DietaryEntry, exercise []*ExerciseEntry) string {
	for _, d := range dietary {
		if d.Remarks != "" {
			return d.Remarks
		}
	}
	for _, e := range exercise {
		if e.Remarks != "" {
			return e.Remarks
		}
	}
	return ""
}

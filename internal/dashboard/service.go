package dashboard

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

// AnchorWindow returns the [start, end] date range for a charted dashboard:
// end is the user's most recent dietary or exercise date, falling back to
// today when the user has no entries, and start reaches back days-1 before it.
// Anchoring on the data rather than the clock keeps a lapsed user's last
// active week on screen instead of an empty chart.
func (s *Service) AnchorWindow(ctx context.Context, userID uuid.UUID, days int, today time.Time) (time.Time, time.Time, error) {
	anchor := dateOnly(today)
	latest, err := s.repo.LatestEntryDate(ctx, userID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if latest != nil {
		anchor = dateOnly(*latest)
	}
	if days < 1 {
		days = 1
	}
	return anchor.AddDate(0, 0, -(days - 1)), anchor, nil
}

// ChartSeries aggregates the three chart series over [start, end]. Dates with
// no rows are omitted from the calorie and exercise series; weight rows are
// kept as individual points, never summed. LatestWeight ignores the window.
// An inverted range yields empty series without touching the store.
func (s *Service) ChartSeries(ctx context.Context, userID uuid.UUID, start, end time.Time) (*ChartData, error) {
	data := &ChartData{
		CaloriesPerDay:        []DatePoint{},
		ExerciseMinutesPerDay: []DatePoint{},
		WeightPerDate:         []WeightPoint{},
	}

	if end.Before(start) {
		return data, nil
	}

	calories, err := s.repo.DailyCalories(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, row := range calories {
		data.CaloriesPerDay = append(data.CaloriesPerDay, DatePoint{
			Date:  row.Date.Format(dateLayout),
			Value: row.Total,
		})
	}

	minutes, err := s.repo.DailyExerciseMinutes(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, row := range minutes {
		data.ExerciseMinutesPerDay = append(data.ExerciseMinutesPerDay, DatePoint{
			Date:  row.Date.Format(dateLayout),
			Value: row.Total,
		})
	}

	weights, err := s.repo.WeightsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, row := range weights {
		data.WeightPerDate = append(data.WeightPerDate, WeightPoint{
			Date:     row.Date.Format(dateLayout),
			WeightKg: row.WeightKg,
		})
	}

	latest, err := s.repo.LatestWeight(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		data.LatestWeight = &WeightPoint{
			Date:     latest.Date.Format(dateLayout),
			WeightKg: latest.WeightKg,
		}
	}

	return data, nil
}

// Heatmap counts activity rows per date across all three entry tables, over a
// calendar window from the first day of the month monthsBack before today to
// the last day of the month monthsForward after it. Dates with zero activity
// are omitted. Negative offsets yield an empty result.
func (s *Service) Heatmap(ctx context.Context, userID uuid.UUID, monthsBack, monthsForward int, today time.Time) ([]HeatmapPoint, error) {
	points := []HeatmapPoint{}
	if monthsBack < 0 || monthsForward < 0 {
		return points, nil
	}

	year, month, _ := today.Date()
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := firstOfMonth.AddDate(0, -monthsBack, 0)
	end := firstOfMonth.AddDate(0, monthsForward+1, -1)

	counts, err := s.repo.ActivityCounts(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, row := range counts {
		points = append(points, HeatmapPoint{
			Date:  row.Date.Format(dateLayout),
			Count: row.Total,
		})
	}
	return points, nil
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

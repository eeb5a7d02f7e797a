package entries

import (
	"time"

	"github.com/google/uuid"
)

// How many of each entry kind the recent lists return.
const (
	RecentDietaryLimit  = 25
	RecentExerciseLimit = 15
	RecentWeightLimit   = 10
)

type DietaryEntry struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Date      time.Time `json:"date"`
	Item      string    `json:"item"`
	Calories  int       `json:"calories"`
	Notes     string    `json:"notes,omitempty"`
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ExerciseEntry struct {
	ID             int64     `json:"id"`
	UserID         uuid.UUID `json:"-"`
	Date           time.Time `json:"date"`
	Activity       string    `json:"activity"`
	DurationMin    int       `json:"duration_minutes"`
	CaloriesBurned int       `json:"calories_burned"`
	Remarks        string    `json:"remarks,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type WeightEntry struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Date      time.Time `json:"date"`
	WeightKg  float64   `json:"weight_kg"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecapSummary totals one day's entries. Net is intake minus burned.
type RecapSummary struct {
	TotalCaloriesIn     int `json:"total_calories_in"`
	TotalCaloriesBurned int `json:"total_calories_burned"`
	TotalExerciseMin    int `json:"total_exercise_min"`
	NetCalories         int `json:"net_calories"`
}

// DailyRecap is one date's full picture: every entry, day totals and a
// top-level remarks string.
type DailyRecap struct {
	Date     string           `json:"date"`
	Dietary  []*DietaryEntry  `json:"dietary"`
	Exercise []*ExerciseEntry `json:"exercise"`
	Weight   []*WeightEntry   `json:"weight"`
	Remarks  string           `json:"remarks"`
	Summary  RecapSummary     `json:"summary"`
}

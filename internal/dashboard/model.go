package dashboard

// All dates are rendered as ISO-8601 YYYY-MM-DD strings; comparisons upstream
// are done on the date component only.

// DatePoint is one aggregated value for a date that has at least one record.
// Dates without records are omitted, not zero-filled.
type DatePoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// WeightPoint is a single weight measurement. Same-day measurements are kept
// as separate points, ordered by date ascending.
type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

// HeatmapPoint is a sparse per-date activity count across all three entry
// kinds. Dates with zero activity are absent from the list.
type HeatmapPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ChartData holds the dashboard chart series for one user and window.
// LatestWeight is the user's most recent measurement regardless of the
// charted window, nil when the user has never logged a weight.
type ChartData struct {
	CaloriesPerDay        []DatePoint   `json:"calories_per_day"`
	ExerciseMinutesPerDay []DatePoint   `json:"exercise_minutes_per_day"`
	WeightPerDate         []WeightPoint `json:"weight_per_date"`
	LatestWeight          *WeightPoint  `json:"latest_weight"`
}

// TotalCalories sums the calorie series, treating omitted dates as zero.
func (c *ChartData) TotalCalories() int {
	total := 0
	for _, p := range c.CaloriesPerDay {
		total += p.Value
	}
	return total
}

// TotalExerciseMinutes sums the exercise series, treating omitted dates as zero.
func (c *ChartData) TotalExerciseMinutes() int {
	total := 0
	for _, p := range c.ExerciseMinutesPerDay {
		total += p.Value
	}
	return total
}

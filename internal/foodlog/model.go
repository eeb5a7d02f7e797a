package foodlog

// ParseResult is the structured food log the model returns. A populated Error
// means the model could not find anything trackable in the input.
type ParseResult struct {
	Date          string           `json:"date"`
	Dietary       []ParsedFood     `json:"dietary"`
	Exercise      []ParsedExercise `json:"exercise"`
	Remarks       string           `json:"remarks,omitempty"`
	CoachFeedback string           `json:"coach_feedback,omitempty"`
	Error         string           `json:"error,omitempty"`
}

type ParsedFood struct {
	Item     string `json:"item"`
	Calories int    `json:"calories"`
	Notes    string `json:"notes,omitempty"`
}

type ParsedExercise struct {
	Activity       string `json:"activity"`
	DurationMin    int    `json:"duration_minutes"`
	CaloriesBurned int    `json:"calories_burned"`
	Remarks        string `json:"remarks,omitempty"`
}

// CoachContext carries the calorie profile numbers the coach prompt needs.
type CoachContext struct {
	Goal              string
	DailyCalorieGoal  int
	CaloriesToday     int
	CaloriesRemaining int
}

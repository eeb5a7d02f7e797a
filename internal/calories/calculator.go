package calories

import "math"

// Daily energy math per the Mifflin-St Jeor equation, with TDEE activity
// multipliers and a fixed surplus/deficit for weight goals.

var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
	"extra":     1.9,
}

// calorieAdjustment is the daily deficit or surplus for lose/gain goals,
// roughly half a kilogram per week.
const calorieAdjustment = 500

// Minimum healthy daily intake, never undercut by a goal.
const (
	minCaloriesMale   = 1500
	minCaloriesFemale = 1200
)

// BMR computes the basal metabolic rate in kcal per day.
//
//	men:   10*weight + 6.25*height - 5*age + 5
//	women: 10*weight + 6.25*height - 5*age - 161
func BMR(weightKg, heightCm float64, age int, gender string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == "male" {
		return base + 5
	}
	return base - 161
}

// TDEE scales BMR by the activity multiplier. Unknown levels count as
// sedentary.
func TDEE(bmr float64, activityLevel string) float64 {
	multiplier, ok := activityMultipliers[activityLevel]
	if !ok {
		multiplier = activityMultipliers["sedentary"]
	}
	return bmr * multiplier
}

// DailyGoal computes the target daily intake for the given profile and
// fitness goal ("lose", "gain" or "maintain"), clamped to the gender minimum.
func DailyGoal(weightKg, heightCm float64, age int, gender, activityLevel, fitnessGoal string) int {
	tdee := TDEE(BMR(weightKg, heightCm, age, gender), activityLevel)

	goal := tdee
	switch fitnessGoal {
	case "lose":
		goal = tdee - calorieAdjustment
	case "gain":
		goal = tdee + calorieAdjustment
	}

	min := float64(minCaloriesFemale)
	if gender == "male" {
		min = minCaloriesMale
	}
	if goal < min {
		goal = min
	}
	return int(math.Round(goal))
}

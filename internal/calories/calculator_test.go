package calories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBMR(t *testing.T) {
	// 80kg, 180cm, 30y male: 800 + 1125 - 150 + 5 = 1780
	assert.InDelta(t, 1780.0, BMR(80, 180, 30, "male"), 0.001)
	// 60kg, 165cm, 25y female: 600 + 1031.25 - 125 - 161 = 1345.25
	assert.InDelta(t, 1345.25, BMR(60, 165, 25, "female"), 0.001)
}

func TestTDEE_Multipliers(t *testing.T) {
	assert.InDelta(t, 1200.0, TDEE(1000, "sedentary"), 0.001)
	assert.InDelta(t, 1375.0, TDEE(1000, "light"), 0.001)
	assert.InDelta(t, 1550.0, TDEE(1000, "moderate"), 0.001)
	assert.InDelta(t, 1725.0, TDEE(1000, "active"), 0.001)
	assert.InDelta(t, 1900.0, TDEE(1000, "extra"), 0.001)
}

func TestTDEE_UnknownLevelIsSedentary(t *testing.T) {
	assert.InDelta(t, 1200.0, TDEE(1000, "astronaut"), 0.001)
}

func TestDailyGoal_Adjustments(t *testing.T) {
	maintain := DailyGoal(80, 180, 30, "male", "moderate", "maintain")
	lose := DailyGoal(80, 180, 30, "male", "moderate", "lose")
	gain := DailyGoal(80, 180, 30, "male", "moderate", "gain")

	assert.Equal(t, 2759, maintain) // round(1780 * 1.55)
	assert.Equal(t, maintain-500, lose)
	assert.Equal(t, maintain+500, gain)
}

func TestDailyGoal_GenderMinimums(t *testing.T) {
	// A tiny sedentary profile losing weight would land under the floor.
	assert.Equal(t, 1500, DailyGoal(40, 140, 80, "male", "sedentary", "lose"))
	assert.Equal(t, 1200, DailyGoal(35, 140, 80, "female", "sedentary", "lose"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusUnder, statusFor("lose", 300))
	assert.Equal(t, StatusOnTrack, statusFor("lose", 150))
	assert.Equal(t, StatusOnTrack, statusFor("lose", -100))
	assert.Equal(t, StatusOver, statusFor("lose", -101))

	// Maintain tolerates a symmetric band.
	assert.Equal(t, StatusOnTrack, statusFor("maintain", -200))
	assert.Equal(t, StatusOver, statusFor("maintain", -201))
	assert.Equal(t, StatusUnder, statusFor("maintain", 201))
}

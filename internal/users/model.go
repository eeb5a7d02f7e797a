package users

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedAIGroup marks accounts exempt from AI usage quotas.
const UnlimitedAIGroup = "special"

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the per-user tracker settings. Calorie fields are optional
// until the user fills in enough of them for goal computation; PartnerUserID
// links the read-only couples view.
type Profile struct {
	UserID        uuid.UUID  `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	Gender        string     `json:"gender,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	HeightCm      *float64   `json:"height_cm,omitempty"`
	ActivityLevel string     `json:"activity_level,omitempty"`
	FitnessGoal   string     `json:"fitness_goal,omitempty"`
	PartnerUserID *uuid.UUID `json:"partner_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

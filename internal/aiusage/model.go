package aiusage

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies which input modality an AI request used.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Quota window names, in check order.
const (
	WindowHourly  = "hourly"
	WindowDaily   = "daily"
	WindowMonthly = "monthly"
)

// UnlimitedRemaining is the sentinel remaining value reported for exempt users.
const UnlimitedRemaining = 999999

// Event matches the ai_usage_events table schema. Events are append-only:
// created_at is assigned by the database at insert and rows are never updated.
type Event struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Kind         Kind      `json:"kind"`
	Succeeded    bool      `json:"succeeded"`
	ErrorMessage string    `json:"error_message,omitempty"`
	TokensUsed   int       `json:"tokens_used"`
	CreatedAt    time.Time `json:"created_at"`
}

// WindowCounts is a triple of per-window values (counts, limits or remaining).
type WindowCounts struct {
	Hourly  int `json:"hourly"`
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

// Decision is the structured outcome of a quota check. On rejection, Reason
// names the first violated window and Remaining still carries the true
// remaining counts for all three windows.
type Decision struct {
	Allowed   bool         `json:"allowed"`
	Reason    string       `json:"reason,omitempty"`
	Message   string       `json:"message,omitempty"`
	Remaining WindowCounts `json:"remaining"`
	Unlimited bool         `json:"unlimited,omitempty"`
}

// QuotaInfo is the API response for the quota status endpoint.
type QuotaInfo struct {
	Unlimited          bool          `json:"unlimited"`
	Limits             *WindowCounts `json:"limits,omitempty"`
	Usage              WindowCounts  `json:"usage"`
	Remaining          WindowCounts  `json:"remaining"`
	PercentUsedDaily   float64       `json:"percent_used_daily"`
	PercentUsedMonthly float64       `json:"percent_used_monthly"`
}

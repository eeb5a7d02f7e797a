package entries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/metrics"
)

var ErrImportNotArray = errors.New("import payload must be an array of day objects")

type ImportResult struct {
	DietaryCount  int `json:"dietary_count"`
	ExerciseCount int `json:"exercise_count"`
	SkippedDays   int `json:"skipped_days"`
}

func (r ImportResult) Message() string {
	msg := fmt.Sprintf("Imported %d dietary and %d exercise entries.", r.DietaryCount, r.ExerciseCount)
	if r.SkippedDays > 0 {
		msg += fmt.Sprintf(" Skipped %d invalid day record(s).", r.SkippedDays)
	}
	return msg
}

// Exported JSON from other tools is messy: the food list appears under
// "dietary" or "food", duration under "duration_minutes" or "duration_min",
// and per-item notes under "notes" or "note". The day-level remarks applies
// to every item that does not carry its own.
type importDay struct {
	Date     string          `json:"date"`
	Remarks  string          `json:"remarks"`
	Dietary  json.RawMessage `json:"dietary"`
	Food     json.RawMessage `json:"food"`
	Exercise json.RawMessage `json:"exercise"`
}

type importFood struct {
	Item     string `json:"item"`
	Calories int    `json:"calories"`
	Notes    string `json:"notes"`
	Note     string `json:"note"`
	Remarks  string `json:"remarks"`
}

type importExercise struct {
	Activity        string `json:"activity"`
	DurationMinutes *int   `json:"duration_minutes"`
	DurationMin     int    `json:"duration_min"`
	CaloriesBurned  int    `json:"calories_burned"`
	Remarks         string `json:"remarks"`
}

// Import loads an array of day records for the user. Malformed day records
// are skipped and counted, never aborting the whole import; malformed items
// within a valid day are silently dropped.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, payload []byte) (*ImportResult, error) {
	var days []json.RawMessage
	if err := json.Unmarshal(payload, &days); err != nil {
		return nil, ErrImportNotArray
	}

	result := &ImportResult{}
	for _, raw := range days {
		var day importDay
		if err := json.Unmarshal(raw, &day); err != nil {
			result.SkippedDays++
			continue
		}
		if day.Date == "" {
			result.SkippedDays++
			continue
		}
		date, err := time.Parse(dateLayout, day.Date)
		if err != nil {
			result.SkippedDays++
			continue
		}

		if err := s.importDietary(ctx, userID, date, &day, result); err != nil {
			return nil, err
		}
		if err := s.importExercise(ctx, userID, date, &day, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) importDietary(ctx context.Context, userID uuid.UUID, date time.Time, day *importDay, result *ImportResult) error {
	foodList := day.Dietary
	if len(foodList) == 0 || string(foodList) == "null" {
		foodList = day.Food
	}

	for _, raw := range decodeList(foodList) {
		var item importFood
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		notes := item.Notes
		if notes == "" {
			notes = item.Note
		}
		remarks := item.Remarks
		if remarks == "" {
			remarks = day.Remarks
		}

		entry := &DietaryEntry{
			UserID:   userID,
			Date:     date,
			Item:     item.Item,
			Calories: item.Calories,
			Notes:    notes,
			Remarks:  remarks,
		}
		if err := s.repo.InsertDietary(ctx, entry); err != nil {
			return err
		}
		result.DietaryCount++
		metrics.ImportedEntriesTotal.WithLabelValues("dietary").Inc()
	}
	return nil
}

func (s *Service) importExercise(ctx context.Context, userID uuid.UUID, date time.Time, day *importDay, result *ImportResult) error {
	for _, raw := range decodeList(day.Exercise) {
		var item importExercise
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		duration := item.DurationMin
		if item.DurationMinutes != nil {
			duration = *item.DurationMinutes
		}
		remarks := item.Remarks
		if remarks == "" {
			remarks = day.Remarks
		}

		entry := &ExerciseEntry{
			UserID:         userID,
			Date:           date,
			Activity:       item.Activity,
			DurationMin:    duration,
			CaloriesBurned: item.CaloriesBurned,
			Remarks:        remarks,
		}
		if err := s.repo.InsertExercise(ctx, entry); err != nil {
			return err
		}
		result.ExerciseCount++
		metrics.ImportedEntriesTotal.WithLabelValues("exercise").Inc()
	}
	return nil
}

// decodeList tolerates absent, null, or non-array values by returning nothing.
func decodeList(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

package foodlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/aiusage"
	"github.com/avicenna-health/avicenna/internal/calories"
	"github.com/avicenna-health/avicenna/internal/entries"
	"github.com/avicenna-health/avicenna/internal/metrics"
	"github.com/avicenna-health/avicenna/internal/users"
)

const dateLayout = "2006-01-02"

// QuotaExceededError carries the rejection so the handler can build the 429
// payload with the remaining counts.
type QuotaExceededError struct {
	Decision *aiusage.Decision
}

func (e *QuotaExceededError) Error() string {
	return e.Decision.Message
}

type Service struct {
	client   Completer
	usage    *aiusage.Service
	userSvc  *users.Service
	calSvc   *calories.Service
	entrySvc *entries.Service
}

func NewService(client Completer, usage *aiusage.Service, userSvc *users.Service, calSvc *calories.Service, entrySvc *entries.Service) *Service {
	return &Service{
		client:   client,
		usage:    usage,
		userSvc:  userSvc,
		calSvc:   calSvc,
		entrySvc: entrySvc,
	}
}

// ParseText runs a natural-language food description through the model.
// Every attempt past the quota gate is recorded in the usage ledger, success
// or not, so the window counts stay honest.
func (s *Service) ParseText(ctx context.Context, userID uuid.UUID, text string, now time.Time) (*ParseResult, error) {
	prompt, err := s.gate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	completion, err := s.client.CompleteText(ctx, prompt, text)
	return s.finish(ctx, userID, aiusage.KindText, completion, err)
}

// ParseImage runs a food photo through the model's vision input. The image is
// validated against the MIME allowlist before anything is sent.
func (s *Service) ParseImage(ctx context.Context, userID uuid.UUID, image []byte, contentType, imageContext string, now time.Time) (*ParseResult, error) {
	prompt, err := s.gate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	completion, err := s.client.CompleteImage(ctx, prompt, image, contentType, imageContext)
	return s.finish(ctx, userID, aiusage.KindImage, completion, err)
}

// gate checks the quota and builds the system prompt. The coach variant is
// used when the user's calorie profile is complete; a failed status lookup
// just falls back to the plain prompt.
func (s *Service) gate(ctx context.Context, userID uuid.UUID, now time.Time) (string, error) {
	unlimited, err := s.userSvc.HasUnlimitedAI(ctx, userID)
	if err != nil {
		return "", err
	}

	decision, err := s.usage.CheckQuota(ctx, userID, unlimited, now)
	if err != nil {
		return "", err
	}
	if !decision.Allowed {
		return "", &QuotaExceededError{Decision: decision}
	}

	var coach *CoachContext
	if status, err := s.calSvc.DailyStatus(ctx, userID, now); err == nil && status != nil {
		coach = &CoachContext{
			Goal:              status.FitnessGoal,
			DailyCalorieGoal:  status.DailyGoal,
			CaloriesToday:     status.CaloriesConsumed,
			CaloriesRemaining: status.CaloriesRemaining,
		}
	}

	return systemPrompt(now.Format(dateLayout), coach), nil
}

func (s *Service) finish(ctx context.Context, userID uuid.UUID, kind aiusage.Kind, completion *Completion, callErr error) (*ParseResult, error) {
	if callErr != nil {
		metrics.AIRequestsTotal.WithLabelValues(string(kind), "error").Inc()
		if err := s.record(ctx, userID, kind, false, callErr.Error(), 0); err != nil {
			return nil, err
		}
		return nil, callErr
	}

	var result ParseResult
	if err := json.Unmarshal([]byte(completion.Content), &result); err != nil {
		metrics.AIRequestsTotal.WithLabelValues(string(kind), "error").Inc()
		if recErr := s.record(ctx, userID, kind, false, "failed to parse AI response", completion.TokensUsed); recErr != nil {
			return nil, recErr
		}
		return nil, fmt.Errorf("parsing AI response: %w", err)
	}

	if result.Error != "" {
		metrics.AIRequestsTotal.WithLabelValues(string(kind), "error").Inc()
		if err := s.record(ctx, userID, kind, false, result.Error, completion.TokensUsed); err != nil {
			return nil, err
		}
		return &result, nil
	}

	metrics.AIRequestsTotal.WithLabelValues(string(kind), "success").Inc()
	if err := s.record(ctx, userID, kind, true, "", completion.TokensUsed); err != nil {
		return nil, err
	}
	return &result, nil
}

// record writes the ledger event. The ledger backs quota enforcement, so a
// write failure fails the request rather than letting usage go uncounted.
func (s *Service) record(ctx context.Context, userID uuid.UUID, kind aiusage.Kind, succeeded bool, errorMessage string, tokens int) error {
	if err := s.usage.RecordUsage(ctx, userID, kind, succeeded, errorMessage, tokens); err != nil {
		return fmt.Errorf("recording AI usage: %w", err)
	}
	return nil
}

type SaveResult struct {
	DietaryCount  int `json:"dietary_count"`
	ExerciseCount int `json:"exercise_count"`
}

// Save persists a confirmed parse result as regular entries.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, result *ParseResult, now time.Time) (*SaveResult, error) {
	date := now
	if parsed, err := time.Parse(dateLayout, result.Date); err == nil {
		date = parsed
	}

	saved := &SaveResult{}
	for _, item := range result.Dietary {
		entry := &entries.DietaryEntry{
			UserID:   userID,
			Date:     date,
			Item:     item.Item,
			Calories: item.Calories,
			Notes:    item.Notes,
			Remarks:  result.Remarks,
		}
		if err := s.entrySvc.AddDietary(ctx, entry); err != nil {
			return nil, err
		}
		saved.DietaryCount++
	}

	for _, item := range result.Exercise {
		remarks := item.Remarks
		if remarks == "" {
			remarks = result.Remarks
		}
		entry := &entries.ExerciseEntry{
			UserID:         userID,
			Date:           date,
			Activity:       item.Activity,
			DurationMin:    item.DurationMin,
			CaloriesBurned: item.CaloriesBurned,
			Remarks:        remarks,
		}
		if err := s.entrySvc.AddExercise(ctx, entry); err != nil {
			return nil, err
		}
		saved.ExerciseCount++
	}
	return saved, nil
}

// Quota reports the user's current usage and remaining allowance.
func (s *Service) Quota(ctx context.Context, userID uuid.UUID, now time.Time) (*aiusage.QuotaInfo, error) {
	unlimited, err := s.userSvc.HasUnlimitedAI(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.usage.QuotaInfo(ctx, userID, unlimited, now)
}

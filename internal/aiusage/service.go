package aiusage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/config"
	"github.com/avicenna-health/avicenna/internal/metrics"
)

// Service is the usage ledger for AI food logging: an append-only event log
// plus three-window quota checks (sliding hour, calendar day, calendar month).
//
// CheckQuota and RecordUsage are deliberately separate calls with no atomicity
// across them. Two concurrent requests from the same user can both pass the
// check before either records, overshooting a ceiling by a small burst; at
// human request rates this is an accepted tolerance.
type Service struct {
	repo Repository
	cfg  config.QuotaConfig
	loc  *time.Location
}

// NewService creates a quota Service. Quota ceilings and the calendar
// timezone come from the explicit config struct, never from process globals.
func NewService(repo Repository, cfg config.QuotaConfig) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading quota timezone %q: %w", cfg.Timezone, err)
	}
	return &Service{repo: repo, cfg: cfg, loc: loc}, nil
}

// CheckQuota decides whether the user may issue another AI request at instant
// now. It is a pure read and safe to call speculatively. The unlimited flag is
// resolved by the caller from group membership; exempt users always pass with
// a sentinel remaining value.
//
// Windows are checked hourly → daily → monthly; the first violated window
// names the rejection, but the remaining triple is always filled completely.
func (s *Service) CheckQuota(ctx context.Context, userID uuid.UUID, unlimited bool, now time.Time) (*Decision, error) {
	if unlimited {
		return &Decision{
			Allowed:   true,
			Unlimited: true,
			Remaining: WindowCounts{
				Hourly:  UnlimitedRemaining,
				Daily:   UnlimitedRemaining,
				Monthly: UnlimitedRemaining,
			},
		}, nil
	}

	counts, err := s.countWindows(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	remaining := WindowCounts{
		Hourly:  clampRemaining(s.cfg.HourlyLimit, counts.Hourly),
		Daily:   clampRemaining(s.cfg.DailyLimit, counts.Daily),
		Monthly: clampRemaining(s.cfg.MonthlyLimit, counts.Monthly),
	}

	if counts.Hourly >= s.cfg.HourlyLimit {
		metrics.AIQuotaRejectionsTotal.WithLabelValues(WindowHourly).Inc()
		return &Decision{
			Reason:    WindowHourly,
			Message:   fmt.Sprintf("Rate limit exceeded: %d requests per hour. Please try again later.", s.cfg.HourlyLimit),
			Remaining: remaining,
		}, nil
	}

	if counts.Daily >= s.cfg.DailyLimit {
		metrics.AIQuotaRejectionsTotal.WithLabelValues(WindowDaily).Inc()
		return &Decision{
			Reason:    WindowDaily,
			Message:   fmt.Sprintf("Daily limit exceeded: %d requests per day. Reset at midnight.", s.cfg.DailyLimit),
			Remaining: remaining,
		}, nil
	}

	if counts.Monthly >= s.cfg.MonthlyLimit {
		metrics.AIQuotaRejectionsTotal.WithLabelValues(WindowMonthly).Inc()
		return &Decision{
			Reason:    WindowMonthly,
			Message:   fmt.Sprintf("Monthly limit exceeded: %d requests per month. Reset next month.", s.cfg.MonthlyLimit),
			Remaining: remaining,
		}, nil
	}

	return &Decision{Allowed: true, Remaining: remaining}, nil
}

// RecordUsage appends one event to the ledger. Callers must record every
// attempted AI invocation, success or failure, so that the counts stay
// honest. Persistence failures propagate; the ledger never retries.
func (s *Service) RecordUsage(ctx context.Context, userID uuid.UUID, kind Kind, succeeded bool, errorMessage string, tokensUsed int) error {
	if tokensUsed < 0 {
		tokensUsed = 0
	}
	event := &Event{
		UserID:       userID,
		Kind:         kind,
		Succeeded:    succeeded,
		ErrorMessage: errorMessage,
		TokensUsed:   tokensUsed,
	}
	return s.repo.Insert(ctx, event)
}

// QuotaInfo returns the user's usage and remaining quota for display.
func (s *Service) QuotaInfo(ctx context.Context, userID uuid.UUID, unlimited bool, now time.Time) (*QuotaInfo, error) {
	counts, err := s.countWindows(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if unlimited {
		return &QuotaInfo{
			Unlimited: true,
			Usage:     counts,
			Remaining: WindowCounts{
				Hourly:  UnlimitedRemaining,
				Daily:   UnlimitedRemaining,
				Monthly: UnlimitedRemaining,
			},
		}, nil
	}

	limits := WindowCounts{
		Hourly:  s.cfg.HourlyLimit,
		Daily:   s.cfg.DailyLimit,
		Monthly: s.cfg.MonthlyLimit,
	}
	return &QuotaInfo{
		Limits: &limits,
		Usage:  counts,
		Remaining: WindowCounts{
			Hourly:  clampRemaining(limits.Hourly, counts.Hourly),
			Daily:   clampRemaining(limits.Daily, counts.Daily),
			Monthly: clampRemaining(limits.Monthly, counts.Monthly),
		},
		PercentUsedDaily:   percentUsed(counts.Daily, limits.Daily),
		PercentUsedMonthly: percentUsed(counts.Monthly, limits.Monthly),
	}, nil
}

func (s *Service) countWindows(ctx context.Context, userID uuid.UUID, now time.Time) (WindowCounts, error) {
	hourStart, dayStart, monthStart := s.windowStarts(now)
	return s.repo.CountWindows(ctx, userID, hourStart, dayStart, monthStart)
}

// windowStarts computes the three lower bounds for counting: one hour before
// now, and midnight / first-of-month in the configured timezone.
func (s *Service) windowStarts(now time.Time) (hourStart, dayStart, monthStart time.Time) {
	local := now.In(s.loc)
	year, month, day := local.Date()
	hourStart = now.Add(-time.Hour)
	dayStart = time.Date(year, month, day, 0, 0, 0, 0, s.loc)
	monthStart = time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	return hourStart, dayStart, monthStart
}

func clampRemaining(limit, count int) int {
	if remaining := limit - count; remaining > 0 {
		return remaining
	}
	return 0
}

func percentUsed(count, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(limit)*1000) / 10
}

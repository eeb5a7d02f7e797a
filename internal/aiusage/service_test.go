package aiusage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avicenna-health/avicenna/internal/config"
)

type fakeRepository struct {
	counts     WindowCounts
	countErr   error
	insertErr  error
	events     []*Event
	countCalls int
}

func (f *fakeRepository) Insert(_ context.Context, event *Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	event.ID = int64(len(f.events) + 1)
	event.CreatedAt = time.Now()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRepository) CountWindows(_ context.Context, _ uuid.UUID, _, _, _ time.Time) (WindowCounts, error) {
	f.countCalls++
	if f.countErr != nil {
		return WindowCounts{}, f.countErr
	}
	return f.counts, nil
}

func testConfig() config.QuotaConfig {
	return config.QuotaConfig{HourlyLimit: 10, DailyLimit: 30, MonthlyLimit: 200, Timezone: "UTC"}
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, testConfig())
	require.NoError(t, err)
	return svc
}

func TestCheckQuota_Allowed(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 3, Daily: 12, Monthly: 50}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
	assert.Equal(t, WindowCounts{Hourly: 7, Daily: 18, Monthly: 150}, decision.Remaining)
}

func TestCheckQuota_HourlyExceeded(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 10, Daily: 15, Monthly: 40}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, WindowHourly, decision.Reason)
	// The failing window reports 0 but the others are still backfilled.
	assert.Equal(t, WindowCounts{Hourly: 0, Daily: 15, Monthly: 160}, decision.Remaining)
}

func TestCheckQuota_HourlyWinsOverDaily(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 11, Daily: 31, Monthly: 201}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, WindowHourly, decision.Reason)
	assert.Equal(t, WindowCounts{}, decision.Remaining)
}

func TestCheckQuota_DailyExceeded(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 2, Daily: 30, Monthly: 90}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, WindowDaily, decision.Reason)
	assert.Equal(t, WindowCounts{Hourly: 8, Daily: 0, Monthly: 110}, decision.Remaining)
}

func TestCheckQuota_MonthlyExceeded(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 0, Daily: 0, Monthly: 200}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, WindowMonthly, decision.Reason)
	assert.Equal(t, WindowCounts{Hourly: 10, Daily: 30, Monthly: 0}, decision.Remaining)
}

func TestCheckQuota_AtExactLimitRejects(t *testing.T) {
	cfg := testConfig()
	repo := &fakeRepository{counts: WindowCounts{Hourly: cfg.HourlyLimit}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, WindowHourly, decision.Reason)
	assert.Zero(t, decision.Remaining.Hourly)
}

func TestCheckQuota_UnlimitedShortCircuits(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 9999, Daily: 9999, Monthly: 9999}}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), true, time.Now())
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.True(t, decision.Unlimited)
	assert.Equal(t, UnlimitedRemaining, decision.Remaining.Hourly)
	assert.Equal(t, UnlimitedRemaining, decision.Remaining.Daily)
	assert.Equal(t, UnlimitedRemaining, decision.Remaining.Monthly)
	assert.Zero(t, repo.countCalls, "exempt users should not hit storage")
}

func TestCheckQuota_PureRead(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 4}}
	svc := newTestService(t, repo)

	first, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Empty(t, repo.events, "check must never append events")
}

func TestCheckQuota_StorageErrorPropagates(t *testing.T) {
	repo := &fakeRepository{countErr: errors.New("connection refused")}
	svc := newTestService(t, repo)

	decision, err := svc.CheckQuota(context.Background(), uuid.New(), false, time.Now())
	assert.Error(t, err)
	assert.Nil(t, decision, "storage failure is an error, not a decision")
}

func TestRecordUsage_AppendsOneEvent(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo)
	userID := uuid.New()

	err := svc.RecordUsage(context.Background(), userID, KindImage, false, "unsupported image type", 0)
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, KindImage, event.Kind)
	assert.False(t, event.Succeeded)
	assert.Equal(t, "unsupported image type", event.ErrorMessage)
	assert.Zero(t, event.TokensUsed)
}

func TestRecordUsage_NegativeTokensClampedToZero(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo)

	err := svc.RecordUsage(context.Background(), uuid.New(), KindText, true, "", -12)
	require.NoError(t, err)
	require.Len(t, repo.events, 1)
	assert.Zero(t, repo.events[0].TokensUsed)
}

func TestRecordUsage_InsertErrorPropagates(t *testing.T) {
	repo := &fakeRepository{insertErr: errors.New("disk full")}
	svc := newTestService(t, repo)

	err := svc.RecordUsage(context.Background(), uuid.New(), KindText, true, "", 100)
	assert.Error(t, err)
}

func TestQuotaInfo_Percentages(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 1, Daily: 15, Monthly: 50}}
	svc := newTestService(t, repo)

	info, err := svc.QuotaInfo(context.Background(), uuid.New(), false, time.Now())
	require.NoError(t, err)

	require.NotNil(t, info.Limits)
	assert.Equal(t, WindowCounts{Hourly: 10, Daily: 30, Monthly: 200}, *info.Limits)
	assert.Equal(t, WindowCounts{Hourly: 9, Daily: 15, Monthly: 150}, info.Remaining)
	assert.InDelta(t, 50.0, info.PercentUsedDaily, 0.001)
	assert.InDelta(t, 25.0, info.PercentUsedMonthly, 0.001)
}

func TestQuotaInfo_UnlimitedStillReportsUsage(t *testing.T) {
	repo := &fakeRepository{counts: WindowCounts{Hourly: 3, Daily: 7, Monthly: 21}}
	svc := newTestService(t, repo)

	info, err := svc.QuotaInfo(context.Background(), uuid.New(), true, time.Now())
	require.NoError(t, err)

	assert.True(t, info.Unlimited)
	assert.Nil(t, info.Limits)
	assert.Equal(t, WindowCounts{Hourly: 3, Daily: 7, Monthly: 21}, info.Usage)
	assert.Equal(t, UnlimitedRemaining, info.Remaining.Daily)
}

func TestWindowStarts_CalendarBoundaries(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, config.QuotaConfig{
		HourlyLimit: 10, DailyLimit: 30, MonthlyLimit: 200, Timezone: "Asia/Kuala_Lumpur",
	})
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Kuala_Lumpur")
	require.NoError(t, err)

	// 00:30 local on March 1st: the hour window reaches back into February,
	// while day and month both start at local midnight.
	now := time.Date(2025, time.March, 1, 0, 30, 0, 0, loc)
	hourStart, dayStart, monthStart := svc.windowStarts(now)

	assert.Equal(t, time.Date(2025, time.February, 28, 23, 30, 0, 0, loc), hourStart.In(loc))
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, loc), dayStart)
	assert.Equal(t, dayStart, monthStart)
	assert.True(t, hourStart.Before(monthStart))
}

func TestWindowStarts_MidMonth(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	now := time.Date(2025, time.July, 17, 14, 45, 0, 0, time.UTC)
	hourStart, dayStart, monthStart := svc.windowStarts(now)

	assert.Equal(t, now.Add(-time.Hour), hourStart)
	assert.Equal(t, time.Date(2025, time.July, 17, 0, 0, 0, 0, time.UTC), dayStart)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), monthStart)
}

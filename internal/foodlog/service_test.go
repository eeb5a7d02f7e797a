package foodlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avicenna-health/avicenna/internal/aiusage"
	"github.com/avicenna-health/avicenna/internal/calories"
	"github.com/avicenna-health/avicenna/internal/config"
	"github.com/avicenna-health/avicenna/internal/entries"
	"github.com/avicenna-health/avicenna/internal/users"
)

type fakeCompleter struct {
	completion *Completion
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeCompleter) CompleteText(_ context.Context, systemPrompt, _ string) (*Completion, error) {
	f.calls++
	f.lastPrompt = systemPrompt
	return f.completion, f.err
}

func (f *fakeCompleter) CompleteImage(_ context.Context, systemPrompt string, _ []byte, _, _ string) (*Completion, error) {
	f.calls++
	f.lastPrompt = systemPrompt
	return f.completion, f.err
}

type fakeUsageRepo struct {
	counts    aiusage.WindowCounts
	insertErr error
	events    []*aiusage.Event
}

func (f *fakeUsageRepo) Insert(_ context.Context, event *aiusage.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	event.ID = int64(len(f.events) + 1)
	event.CreatedAt = time.Now()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeUsageRepo) CountWindows(_ context.Context, _ uuid.UUID, _, _, _ time.Time) (aiusage.WindowCounts, error) {
	return f.counts, nil
}

type fakeUserRepo struct {
	unlimited bool
	profile   *users.Profile
}

func (f *fakeUserRepo) Create(context.Context, *users.User) error { return nil }
func (f *fakeUserRepo) GetByID(context.Context, uuid.UUID) (*users.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*users.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }
func (f *fakeUserRepo) CreateProfile(context.Context, *users.Profile) error { return nil }
func (f *fakeUserRepo) GetProfile(context.Context, uuid.UUID) (*users.Profile, error) {
	return f.profile, nil
}
func (f *fakeUserRepo) UpdateProfile(context.Context, *users.Profile) error { return nil }
func (f *fakeUserRepo) SetPartner(context.Context, uuid.UUID, *uuid.UUID) error {
	return nil
}
func (f *fakeUserRepo) InGroup(context.Context, uuid.UUID, string) (bool, error) {
	return f.unlimited, nil
}

type fakeEntriesRepo struct {
	dietary  []*entries.DietaryEntry
	exercise []*entries.ExerciseEntry
	weights  []*entries.WeightEntry
	calories int
}

func (f *fakeEntriesRepo) InsertDietary(_ context.Context, e *entries.DietaryEntry) error {
	f.dietary = append(f.dietary, e)
	return nil
}
func (f *fakeEntriesRepo) InsertExercise(_ context.Context, e *entries.ExerciseEntry) error {
	f.exercise = append(f.exercise, e)
	return nil
}
func (f *fakeEntriesRepo) InsertWeight(_ context.Context, e *entries.WeightEntry) error {
	f.weights = append(f.weights, e)
	return nil
}
func (f *fakeEntriesRepo) RecentDietary(context.Context, uuid.UUID, int) ([]*entries.DietaryEntry, error) {
	return nil, nil
}
func (f *fakeEntriesRepo) RecentExercise(context.Context, uuid.UUID, int) ([]*entries.ExerciseEntry, error) {
	return nil, nil
}
func (f *fakeEntriesRepo) RecentWeight(context.Context, uuid.UUID, int) ([]*entries.WeightEntry, error) {
	return f.weights, nil
}
func (f *fakeEntriesRepo) DietaryByDate(context.Context, uuid.UUID, time.Time) ([]*entries.DietaryEntry, error) {
	return nil, nil
}
func (f *fakeEntriesRepo) ExerciseByDate(context.Context, uuid.UUID, time.Time) ([]*entries.ExerciseEntry, error) {
	return nil, nil
}
func (f *fakeEntriesRepo) WeightByDate(context.Context, uuid.UUID, time.Time) ([]*entries.WeightEntry, error) {
	return nil, nil
}
func (f *fakeEntriesRepo) DeleteDietary(context.Context, uuid.UUID, int64) (bool, error) {
	return false, nil
}
func (f *fakeEntriesRepo) DeleteExercise(context.Context, uuid.UUID, int64) (bool, error) {
	return false, nil
}
func (f *fakeEntriesRepo) DeleteWeight(context.Context, uuid.UUID, int64) (bool, error) {
	return false, nil
}
func (f *fakeEntriesRepo) CaloriesForDate(context.Context, uuid.UUID, time.Time) (int, error) {
	return f.calories, nil
}

type fixture struct {
	svc       *Service
	completer *fakeCompleter
	usageRepo *fakeUsageRepo
	entryRepo *fakeEntriesRepo
}

func newFixture(t *testing.T, completer *fakeCompleter, usageRepo *fakeUsageRepo, userRepo *fakeUserRepo) *fixture {
	t.Helper()
	usageSvc, err := aiusage.NewService(usageRepo, config.QuotaConfig{
		HourlyLimit: 10, DailyLimit: 30, MonthlyLimit: 200, Timezone: "UTC",
	})
	require.NoError(t, err)

	userSvc := users.NewService(userRepo)
	entryRepo := &fakeEntriesRepo{}
	entrySvc := entries.NewService(entryRepo)
	calSvc := calories.NewService(userSvc, entrySvc)

	return &fixture{
		svc:       NewService(completer, usageSvc, userSvc, calSvc, entrySvc),
		completer: completer,
		usageRepo: usageRepo,
		entryRepo: entryRepo,
	}
}

func TestParseText_Success(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Content:    `{"date": "2025-06-01", "dietary": [{"item": "nasi lemak", "calories": 650}], "exercise": [], "remarks": "lunch"}`,
		TokensUsed: 420,
	}}
	fx := newFixture(t, completer, &fakeUsageRepo{}, &fakeUserRepo{})
	userID := uuid.New()

	result, err := fx.svc.ParseText(context.Background(), userID, "nasi lemak for lunch", time.Now())
	require.NoError(t, err)

	require.Len(t, result.Dietary, 1)
	assert.Equal(t, "nasi lemak", result.Dietary[0].Item)
	assert.Equal(t, 650, result.Dietary[0].Calories)
	assert.Empty(t, result.Error)

	require.Len(t, fx.usageRepo.events, 1)
	event := fx.usageRepo.events[0]
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, aiusage.KindText, event.Kind)
	assert.True(t, event.Succeeded)
	assert.Equal(t, 420, event.TokensUsed)
}

func TestParseText_QuotaExceeded(t *testing.T) {
	completer := &fakeCompleter{}
	usageRepo := &fakeUsageRepo{counts: aiusage.WindowCounts{Hourly: 10}}
	fx := newFixture(t, completer, usageRepo, &fakeUserRepo{})

	_, err := fx.svc.ParseText(context.Background(), uuid.New(), "pizza", time.Now())

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, aiusage.WindowHourly, quotaErr.Decision.Reason)
	assert.Zero(t, completer.calls, "rejected requests must never reach the model")
	assert.Empty(t, usageRepo.events, "rejected requests are not ledger events")
}

func TestParseText_UnlimitedUserSkipsQuota(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Content: `{"date": "2025-06-01", "dietary": [], "exercise": []}`,
	}}
	usageRepo := &fakeUsageRepo{counts: aiusage.WindowCounts{Hourly: 9999, Daily: 9999, Monthly: 9999}}
	fx := newFixture(t, completer, usageRepo, &fakeUserRepo{unlimited: true})

	_, err := fx.svc.ParseText(context.Background(), uuid.New(), "water", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, completer.calls)
	assert.Len(t, usageRepo.events, 1, "exempt usage is still recorded")
}

func TestParseText_ModelErrorRecorded(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Content:    `{"error": "Could not identify any trackable items"}`,
		TokensUsed: 50,
	}}
	fx := newFixture(t, completer, &fakeUsageRepo{}, &fakeUserRepo{})

	result, err := fx.svc.ParseText(context.Background(), uuid.New(), "asdfgh", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Could not identify any trackable items", result.Error)

	require.Len(t, fx.usageRepo.events, 1)
	assert.False(t, fx.usageRepo.events[0].Succeeded)
	assert.Equal(t, "Could not identify any trackable items", fx.usageRepo.events[0].ErrorMessage)
}

func TestParseText_CallFailureRecorded(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream timeout")}
	fx := newFixture(t, completer, &fakeUsageRepo{}, &fakeUserRepo{})

	_, err := fx.svc.ParseText(context.Background(), uuid.New(), "toast", time.Now())
	require.Error(t, err)

	require.Len(t, fx.usageRepo.events, 1)
	event := fx.usageRepo.events[0]
	assert.False(t, event.Succeeded)
	assert.Equal(t, "upstream timeout", event.ErrorMessage)
	assert.Zero(t, event.TokensUsed)
}

func TestParseText_LedgerWriteFailureFailsRequest(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Content:    `{"date": "2025-06-01", "dietary": [{"item": "toast", "calories": 120}], "exercise": []}`,
		TokensUsed: 80,
	}}
	usageRepo := &fakeUsageRepo{insertErr: errors.New("disk full")}
	fx := newFixture(t, completer, usageRepo, &fakeUserRepo{})

	result, err := fx.svc.ParseText(context.Background(), uuid.New(), "toast", time.Now())
	require.Error(t, err, "unrecorded usage must not produce a successful parse")
	assert.ErrorContains(t, err, "disk full")
	assert.Nil(t, result)
}

func TestParseText_MalformedModelOutput(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{Content: "not json", TokensUsed: 12}}
	fx := newFixture(t, completer, &fakeUsageRepo{}, &fakeUserRepo{})

	_, err := fx.svc.ParseText(context.Background(), uuid.New(), "toast", time.Now())
	require.Error(t, err)

	require.Len(t, fx.usageRepo.events, 1)
	assert.False(t, fx.usageRepo.events[0].Succeeded)
	assert.Equal(t, 12, fx.usageRepo.events[0].TokensUsed)
}

func TestParse_CoachPromptWhenProfileComplete(t *testing.T) {
	birthDate := time.Date(1995, 3, 10, 0, 0, 0, 0, time.UTC)
	height := 180.0
	userRepo := &fakeUserRepo{profile: &users.Profile{
		Gender:        "male",
		BirthDate:     &birthDate,
		HeightCm:      &height,
		ActivityLevel: "moderate",
		FitnessGoal:   "lose",
	}}
	completer := &fakeCompleter{completion: &Completion{
		Content: `{"date": "2025-06-01", "dietary": [], "exercise": []}`,
	}}
	fx := newFixture(t, completer, &fakeUsageRepo{}, userRepo)
	fx.entryRepo.weights = []*entries.WeightEntry{{WeightKg: 82}}

	_, err := fx.svc.ParseText(context.Background(), uuid.New(), "eggs", time.Now())
	require.NoError(t, err)
	assert.Contains(t, completer.lastPrompt, "fitness coach")
	assert.Contains(t, completer.lastPrompt, "Goal: lose weight")
}

func TestParse_BasePromptWithoutProfile(t *testing.T) {
	completer := &fakeCompleter{completion: &Completion{
		Content: `{"date": "2025-06-01", "dietary": [], "exercise": []}`,
	}}
	fx := newFixture(t, completer, &fakeUsageRepo{}, &fakeUserRepo{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := fx.svc.ParseText(context.Background(), uuid.New(), "eggs", now)
	require.NoError(t, err)
	assert.False(t, strings.Contains(completer.lastPrompt, "coach"))
	assert.Contains(t, completer.lastPrompt, "2025-06-01")
}

func TestSave_PersistsEntries(t *testing.T) {
	fx := newFixture(t, &fakeCompleter{}, &fakeUsageRepo{}, &fakeUserRepo{})

	result := &ParseResult{
		Date:    "2025-06-01",
		Remarks: "lunch",
		Dietary: []ParsedFood{
			{Item: "nasi lemak", Calories: 650, Notes: "large"},
			{Item: "teh tarik", Calories: 180},
		},
		Exercise: []ParsedExercise{
			{Activity: "walk", DurationMin: 20, CaloriesBurned: 90},
		},
	}

	saved, err := fx.svc.Save(context.Background(), uuid.New(), result, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, saved.DietaryCount)
	assert.Equal(t, 1, saved.ExerciseCount)
	require.Len(t, fx.entryRepo.dietary, 2)
	assert.Equal(t, "lunch", fx.entryRepo.dietary[0].Remarks)
	require.Len(t, fx.entryRepo.exercise, 1)
	assert.Equal(t, "lunch", fx.entryRepo.exercise[0].Remarks, "day remarks fill in for items without their own")
	assert.Equal(t, "2025-06-01", fx.entryRepo.dietary[0].Date.Format("2006-01-02"))
}

func TestCompleteImage_RejectsUnsupportedType(t *testing.T) {
	client := NewClient(config.AIConfig{APIKey: "test", Model: "gpt-4o"})

	_, err := client.CompleteImage(context.Background(), "prompt", []byte{0x42}, "image/bmp", "")
	assert.ErrorIs(t, err, ErrUnsupportedImageType)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/readiness"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"
)

var testNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

type fakeRecords struct {
	submitted records.Candidate
	result    *records.Result
}

func (f *fakeRecords) List(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error) {
	return []models.PersonalRecord{}, nil
}

func (f *fakeRecords) Submit(ctx context.Context, userID int, c records.Candidate) (*records.Result, error) {
	f.submitted = c
	return f.result, nil
}

func (f *fakeRecords) EvaluateWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*records.Result, error) {
	return nil, fmt.Errorf("loading workout %s: %w", workoutID, models.ErrNotFound)
}

type fakeSummaries struct {
	start, end time.Time
	baseline   summary.Period
	current    summary.Period
}

func (f *fakeSummaries) Location() *time.Location { return time.UTC }

func (f *fakeSummaries) Generate(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*models.TrainingSummary, error) {
	return &models.TrainingSummary{UserID: userID, PeriodType: pt, TotalWorkouts: 3}, nil
}

func (f *fakeSummaries) History(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error) {
	return nil, nil
}

func (f *fakeSummaries) Compare(ctx context.Context, userID int, baseline, current summary.Period) (*summary.Comparison, error) {
	f.baseline, f.current = baseline, current
	return &summary.Comparison{}, nil
}

func (f *fakeSummaries) ComparePrevious(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*summary.Comparison, error) {
	return &summary.Comparison{}, nil
}

func (f *fakeSummaries) Streaks(ctx context.Context, userID int, now time.Time, weeks int) (*summary.StreakReport, error) {
	return &summary.StreakReport{Weeks: weeks}, nil
}

func (f *fakeSummaries) MuscleVolume(ctx context.Context, userID int, start, end time.Time) ([]summary.WeekMuscleVolume, error) {
	f.start, f.end = start, end
	return nil, nil
}

func (f *fakeSummaries) Progression(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) (*summary.Progression, error) {
	f.start, f.end = start, end
	return &summary.Progression{}, nil
}

type fakeReadiness struct {
	checkIn models.DailyCheckIn
}

func (f *fakeReadiness) Readiness(ctx context.Context, userID int, now time.Time) (*readiness.Result, error) {
	return &readiness.Result{Score: 72, Recommendation: readiness.RecommendHard}, nil
}

func (f *fakeReadiness) CheckIn(ctx context.Context, c models.DailyCheckIn, now time.Time) (*models.DailyCheckIn, error) {
	f.checkIn = c
	return &c, nil
}

func (f *fakeReadiness) RefreshRecovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error) {
	return nil, nil
}

func (f *fakeReadiness) Recovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error) {
	return nil, nil
}

// fakeGoals returns err from every call when set.
type fakeGoals struct {
	err     error
	reason  string
	created models.Goal
}

func (f *fakeGoals) goal(id uuid.UUID, status models.GoalStatus) (*models.Goal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Goal{ID: id, Status: status}, nil
}

func (f *fakeGoals) Create(ctx context.Context, g models.Goal) (*models.Goal, error) {
	f.created = g
	if f.err != nil {
		return nil, f.err
	}
	return &g, nil
}

func (f *fakeGoals) Get(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return f.goal(goalID, models.GoalActive)
}

func (f *fakeGoals) List(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error) {
	return nil, f.err
}

func (f *fakeGoals) RecordProgress(ctx context.Context, userID int, goalID uuid.UUID, u goals.Update) (*goals.ProgressResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &goals.ProgressResult{Goal: models.Goal{ID: goalID, Status: models.GoalCompleted}, AutoCompleted: true}, nil
}

func (f *fakeGoals) Complete(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return f.goal(goalID, models.GoalCompleted)
}

func (f *fakeGoals) Abandon(ctx context.Context, userID int, goalID uuid.UUID, reason string) (*models.Goal, error) {
	f.reason = reason
	return f.goal(goalID, models.GoalAbandoned)
}

func (f *fakeGoals) Pause(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return f.goal(goalID, models.GoalPaused)
}

func (f *fakeGoals) Resume(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return f.goal(goalID, models.GoalActive)
}

func (f *fakeGoals) History(ctx context.Context, userID int, goalID uuid.UUID) ([]models.GoalProgress, error) {
	return nil, f.err
}

func (f *fakeGoals) SyncFrequency(ctx context.Context, userID int, now time.Time) ([]goals.ProgressResult, error) {
	return nil, f.err
}

type fakeLogger struct {
	got []models.Workout
}

func (f *fakeLogger) Log(ctx context.Context, userID int, workouts []models.Workout) (*ingest.Result, error) {
	f.got = workouts
	return &ingest.Result{WorkoutsReceived: len(workouts), WorkoutsInserted: len(workouts)}, nil
}

type fakeAlpha struct {
	body   string
	userID int
}

func (f *fakeAlpha) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.body, f.userID = string(b), userID
	return &ingest.Result{WorkoutsInserted: 2}, nil
}

type fakeStore struct {
	fakeUsers
	pingErr    error
	start, end time.Time
}

func (f *fakeStore) ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error) {
	f.start, f.end = start, end
	return nil, nil
}

func (f *fakeStore) GetWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	return nil, fmt.Errorf("workout %s: %w", workoutID, models.ErrNotFound)
}

func (f *fakeStore) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return nil, nil
}

func (f *fakeStore) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	return &models.Exercise{ID: id, Name: "Back Squat"}, nil
}

func (f *fakeStore) GetTrainingIntensity(ctx context.Context, userID int, start, end time.Time) (*storage.TrainingIntensityResult, error) {
	f.start, f.end = start, end
	return &storage.TrainingIntensityResult{}, nil
}

func (f *fakeStore) GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error) {
	return &storage.DataStats{}, nil
}

func (f *fakeStore) QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error) {
	return nil, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

type testDeps struct {
	records   *fakeRecords
	summaries *fakeSummaries
	readiness *fakeReadiness
	goals     *fakeGoals
	workouts  *fakeLogger
	alpha     *fakeAlpha
	store     *fakeStore
	metrics   *metrics.Manager
}

func newTestAPI(t *testing.T) (*Server, *testDeps) {
	t.Helper()
	d := &testDeps{
		records:   &fakeRecords{result: &records.Result{}},
		summaries: &fakeSummaries{},
		readiness: &fakeReadiness{},
		goals:     &fakeGoals{},
		workouts:  &fakeLogger{},
		alpha:     &fakeAlpha{},
		store:     &fakeStore{},
		metrics:   metrics.NewTestManager(),
	}
	s := New(Services{
		Records:   d.records,
		Summaries: d.summaries,
		Readiness: d.readiness,
		Goals:     d.goals,
		Workouts:  d.workouts,
		Alpha:     d.alpha,
		Store:     d.store,
	}, "secret", d.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return testNow }
	return s, d
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.ID != 1 {
		t.Errorf("id = %d, want 1", info.ID)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{ID: 3, Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

// TestHealth verifies the health check reports database reachability.
func TestHealth(t *testing.T) {
	s, d := newTestAPI(t)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", "").Code)

	d.store.pingErr = errors.New("connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/health", "").Code)
}

// TestErrorStatusMapping verifies domain errors map to 404, 409 and 422 and
// anything else to 500.
func TestErrorStatusMapping(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("loading goal: %w", models.ErrNotFound), http.StatusNotFound},
		{"transition", fmt.Errorf("complete paused goal: %w", models.ErrInvalidTransition), http.StatusConflict},
		{"range", fmt.Errorf("target: %w", models.ErrDomainRange), http.StatusUnprocessableEntity},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newTestAPI(t)
			d.goals.err = tt.err
			rec := do(s, http.MethodPost, "/api/v1/goals/"+id+"/complete", "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

// TestBadRequests verifies malformed input is rejected before reaching the
// services.
func TestBadRequests(t *testing.T) {
	tests := []struct {
		name, method, target, body string
	}{
		{"bad workout id", http.MethodGet, "/api/v1/workouts/nope", ""},
		{"bad exercise filter", http.MethodGet, "/api/v1/records?exercise_id=x", ""},
		{"bad period", http.MethodGet, "/api/v1/summaries/fortnight", ""},
		{"bad date", http.MethodGet, "/api/v1/summaries/week?date=yesterday", ""},
		{"bad start", http.MethodGet, "/api/v1/workouts?start=03/01/2024", ""},
		{"bad status", http.MethodGet, "/api/v1/goals?status=archived", ""},
		{"missing compare bound", http.MethodGet, "/api/v1/compare?baseline_start=2024-01-01", ""},
		{"bad goal body", http.MethodPost, "/api/v1/goals", "{"},
		{"bad workout body", http.MethodPost, "/api/v1/workouts", "[{]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestAPI(t)
			rec := do(s, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

// TestGetWorkoutNotFound verifies a missing workout is a 404.
func TestGetWorkoutNotFound(t *testing.T) {
	s, _ := newTestAPI(t)
	rec := do(s, http.MethodGet, "/api/v1/workouts/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestGetExercise verifies the exercise route decodes the path ID.
func TestGetExercise(t *testing.T) {
	s, _ := newTestAPI(t)
	id := uuid.New()

	rec := do(s, http.MethodGet, "/api/v1/exercises/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var e models.Exercise
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "Back Squat", e.Name)
}

// TestLogWorkoutsSingleOrArray verifies both body shapes reach the pipeline
// and imported workouts are counted.
func TestLogWorkoutsSingleOrArray(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodPost, "/api/v1/workouts", `{"name":"Push","started_at":"2024-03-05T18:00:00Z","exercises":[]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, d.workouts.got, 1)
	assert.Equal(t, "Push", d.workouts.got[0].Name)

	rec = do(s, http.MethodPost, "/api/v1/workouts", `[{"name":"Pull","started_at":"2024-03-06T18:00:00Z"},{"name":"Legs","started_at":"2024-03-07T18:00:00Z"}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, d.workouts.got, 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(d.metrics.CounterImportedWorkouts))
}

// TestListWorkoutsTimeRange verifies the default lookback and that a
// date-only end covers the whole day.
func TestListWorkoutsTimeRange(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodGet, "/api/v1/workouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, testNow, d.store.end)
	assert.Equal(t, testNow.AddDate(0, 0, -7), d.store.start)

	rec = do(s, http.MethodGet, "/api/v1/workouts?start=2024-01-01&end=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d.store.start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), d.store.end)
}

// TestMuscleVolumeInclusiveDays verifies the day-range engines receive the
// last included instant rather than the exclusive bound.
func TestMuscleVolumeInclusiveDays(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodGet, "/api/v1/muscle-volume?start=2024-01-01&end=2024-01-07", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d.summaries.start)
	assert.Equal(t, "2024-01-07", d.summaries.end.Format(time.DateOnly))
}

// TestCompareRanges verifies custom ranges are built from the four bounds
// and an inverted range is a 422.
func TestCompareRanges(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodGet, "/api/v1/compare?baseline_start=2024-01-01&baseline_end=2024-01-07&current_start=2024-01-08&current_end=2024-01-14", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, d.summaries.baseline.Days())
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), d.summaries.current.Start)

	rec = do(s, http.MethodGet, "/api/v1/compare?baseline_start=2024-01-07&baseline_end=2024-01-01&current_start=2024-01-08&current_end=2024-01-14", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// TestSummaryCountsMetric verifies generated summaries are counted per period
// type.
func TestSummaryCountsMetric(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodGet, "/api/v1/summaries/month?date=2024-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum models.TrainingSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sum))
	assert.Equal(t, models.PeriodMonth, sum.PeriodType)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.CounterSummariesGenerated.WithLabelValues("month")))
}

// TestReadinessMetrics verifies readiness requests are counted and scored.
func TestReadinessMetrics(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodGet, "/api/v1/readiness", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), readiness.RecommendHard)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.CounterReadiness))
}

// TestCheckInUsesCaller verifies the check-in owner comes from the request
// identity, not the body.
func TestCheckInUsesCaller(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodPost, "/api/v1/checkins", `{"user_id":99,"sleep_hours":7.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, d.readiness.checkIn.UserID)
	require.NotNil(t, d.readiness.checkIn.SleepHours)
	assert.Equal(t, 7.5, *d.readiness.checkIn.SleepHours)
}

// TestSubmitRecordDefaultsTime verifies a record without achieved_at is
// stamped with the current time.
func TestSubmitRecordDefaultsTime(t *testing.T) {
	s, d := newTestAPI(t)
	d.records.result = &records.Result{NewRecords: []records.NewRecord{
		{PersonalRecord: models.PersonalRecord{Type: models.RecordBestTime, Value: 1260}},
	}, Checked: 1}

	body := fmt.Sprintf(`{"exercise_id":%q,"record_type":"best_time","value":1260,"unit":"s"}`, uuid.New())
	rec := do(s, http.MethodPost, "/api/v1/records", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testNow, d.records.submitted.AchievedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.CounterRecordsSet.WithLabelValues("best_time")))
}

// TestCreateGoalUsesCaller verifies the goal owner is taken from the request
// identity.
func TestCreateGoalUsesCaller(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodPost, "/api/v1/goals",
		`{"user_id":5,"title":"Cut","goal_type":"weight","payload":{"start":90,"current":90,"target":80,"unit":"kg"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, d.goals.created.UserID)
	assert.Equal(t, models.GoalWeight, d.goals.created.Type)
}

// TestGoalActions verifies each action route, the abandon reason body and
// the unknown-action 404.
func TestGoalActions(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		action, body string
		want         int
		status       models.GoalStatus
	}{
		{"complete", "", http.StatusOK, models.GoalCompleted},
		{"abandon", `{"reason":"injury"}`, http.StatusOK, models.GoalAbandoned},
		{"abandon", "", http.StatusOK, models.GoalAbandoned},
		{"pause", "", http.StatusOK, models.GoalPaused},
		{"resume", "", http.StatusOK, models.GoalActive},
		{"archive", "", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.action+tt.body, func(t *testing.T) {
			s, d := newTestAPI(t)
			rec := do(s, http.MethodPost, "/api/v1/goals/"+id+"/"+tt.action, tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.status == "" {
				return
			}
			var g models.Goal
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&g))
			assert.Equal(t, tt.status, g.Status)
			if tt.body != "" {
				assert.Equal(t, "injury", d.goals.reason)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.CounterGoalTransitions.WithLabelValues(string(tt.status))))
		})
	}
}

// TestGoalProgressAutoComplete verifies an auto-completing update counts as a
// completed transition.
func TestGoalProgressAutoComplete(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodPost, "/api/v1/goals/"+uuid.New().String()+"/progress", `{"value":80}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"auto_completed":true`)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.CounterGoalTransitions.WithLabelValues("completed")))
}

// TestAlphaImport verifies the import requires the API key and hands the raw
// body to the importer for the calling user.
func TestAlphaImport(t *testing.T) {
	s, d := newTestAPI(t)

	rec := do(s, http.MethodPost, "/api/v1/import/alpha", "csv")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/alpha", strings.NewReader("csv body"))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv body", d.alpha.body)
	assert.Equal(t, 1, d.alpha.userID)
	assert.Equal(t, 2.0, testutil.ToFloat64(d.metrics.CounterImportedWorkouts))
}

// TestTailscaleRouting verifies SetTailscale switches the API to WhoIs
// identity.
func TestTailscaleRouting(t *testing.T) {
	s, d := newTestAPI(t)
	d.store.ids = map[string]int{"alice@example.com": 4}
	s.SetTailscale(fakeWhoIs{resp: &apitype.WhoIsResponse{
		UserProfile: &tailcfg.UserProfile{LoginName: "alice@example.com", DisplayName: "Alice"},
	}})

	rec := do(s, http.MethodGet, "/api/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info UserInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, 4, info.ID)
	assert.Equal(t, 1, d.store.calls)
}

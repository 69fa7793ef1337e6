package readiness

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain runs goleak after all tests in the package have finished.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

func workout(end time.Time, muscles []string, sets int) models.Workout {
	ex := models.Exercise{ID: uuid.New(), Name: "Lift", MuscleGroups: muscles}
	we := models.WorkoutExercise{Exercise: ex}
	we.Sets = append(we.Sets, models.Set{ID: uuid.New(), Type: models.SetWarmup, Weight: formula.Ptr(20.0), Reps: formula.Ptr(10)})
	for i := 0; i < sets; i++ {
		we.Sets = append(we.Sets, models.Set{ID: uuid.New(), Type: models.SetNormal, Weight: formula.Ptr(100.0), Reps: formula.Ptr(5)})
	}
	return models.Workout{ID: uuid.New(), UserID: 1, StartedAt: end.Add(-time.Hour), CompletedAt: &end, Exercises: []models.WorkoutExercise{we}}
}

// TestFactorScores verifies the documented check-in example.
func TestFactorScores(t *testing.T) {
	c := &models.DailyCheckIn{
		SleepQuality:  formula.Ptr(4.0),
		EnergyLevel:   formula.Ptr(7.0),
		SorenessLevel: formula.Ptr(3.0),
		StressLevel:   formula.Ptr(4.0),
	}
	f := FactorScores(c, nil)
	require.NotNil(t, f.Sleep)
	assert.Equal(t, 75.0, *f.Sleep)
	assert.Equal(t, 66.67, *f.Energy)
	assert.Equal(t, 77.78, *f.Soreness)
	assert.Equal(t, 66.67, *f.Stress)
	assert.Nil(t, f.MuscleRecovery)

	assert.Equal(t, 72, Score(f))
}

// TestScoreAbsentFactors verifies absent inputs are excluded, not zeroed.
func TestScoreAbsentFactors(t *testing.T) {
	assert.Equal(t, NeutralScore, Score(Factors{}))
	assert.Equal(t, NeutralScore, Score(FactorScores(nil, nil)))

	sleepOnly := FactorScores(&models.DailyCheckIn{SleepQuality: formula.Ptr(5.0)}, nil)
	assert.Equal(t, 100, Score(sleepOnly))

	recoveryOnly := FactorScores(nil, []models.MuscleRecovery{{RecoveryScore: 80}, {RecoveryScore: 100}})
	require.NotNil(t, recoveryOnly.MuscleRecovery)
	assert.Equal(t, 90.0, *recoveryOnly.MuscleRecovery)
	assert.Equal(t, 90, Score(recoveryOnly))
}

// TestRecommend verifies band boundaries are inclusive on the lower bound.
func TestRecommend(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, RecommendHard},
		{70, RecommendHard},
		{69, RecommendLight},
		{40, RecommendLight},
		{39, RecommendRest},
		{0, RecommendRest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommend(tt.score), "score %d", tt.score)
	}
}

// TestScoreRoundsBeforeBanding verifies the composite is rounded to the
// reported whole-number score and the band follows that score.
func TestScoreRoundsBeforeBanding(t *testing.T) {
	tests := []struct {
		composite float64
		score     int
		want      string
	}{
		{69.6, 70, RecommendHard},
		{69.5, 70, RecommendHard},
		{69.4, 69, RecommendLight},
		{39.5, 40, RecommendLight},
		{39.4, 39, RecommendRest},
	}
	for _, tt := range tests {
		score := Score(Factors{Sleep: formula.Ptr(tt.composite)})
		assert.Equal(t, tt.score, score, "composite %v", tt.composite)
		assert.Equal(t, tt.want, Recommend(score), "composite %v", tt.composite)
	}
}

// TestComputeRecovery verifies fatigue load, linear decay and the horizon.
func TestComputeRecovery(t *testing.T) {
	workouts := []models.Workout{
		workout(t0, []string{"chest", "triceps"}, 5),
		workout(t0.Add(-10*24*time.Hour), []string{"back"}, 5), // outside the window
	}
	rows := ComputeRecovery(1, workouts, t0.Add(22*time.Hour))
	require.Len(t, rows, 2)

	chest := rows[0]
	assert.Equal(t, "chest", chest.MuscleGroup)
	// 5 sets load 40 fatigue over a 44h horizon; half of it is gone after 22h.
	assert.Equal(t, 20.0, chest.FatigueLevel)
	assert.Equal(t, 80.0, chest.RecoveryScore)
	assert.Equal(t, 5, chest.SetsLast7Days)
	assert.Equal(t, 2500.0, chest.VolumeLast7Days)
	require.NotNil(t, chest.EstimatedFullRecovery)
	assert.Equal(t, t0.Add(44*time.Hour), *chest.EstimatedFullRecovery)
	assert.Equal(t, t0, *chest.LastWorkedAt)
	assert.Equal(t, "triceps", rows[1].MuscleGroup)
}

// TestComputeRecoveryCaps verifies fatigue and the horizon are capped.
func TestComputeRecoveryCaps(t *testing.T) {
	rows := ComputeRecovery(1, []models.Workout{
		workout(t0, []string{"quads"}, 15),
		workout(t0.Add(-time.Hour), []string{"quads"}, 15),
	}, t0)
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].FatigueLevel)
	assert.Equal(t, 0.0, rows[0].RecoveryScore)
	assert.Equal(t, t0.Add(84*time.Hour), *rows[0].EstimatedFullRecovery)

	rows = ComputeRecovery(1, []models.Workout{workout(t0, []string{"quads"}, 30)}, t0.Add(95*time.Hour))
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.04, rows[0].FatigueLevel, 0.01)
}

// TestDecay verifies stored fatigue fades linearly until full recovery.
func TestDecay(t *testing.T) {
	full := t0.Add(44 * time.Hour)
	r := models.MuscleRecovery{
		MuscleGroup:           "chest",
		FatigueLevel:          20,
		RecoveryScore:         80,
		EstimatedFullRecovery: &full,
		UpdatedAt:             t0.Add(22 * time.Hour),
	}

	mid := Decay(r, t0.Add(33*time.Hour))
	assert.Equal(t, 10.0, mid.FatigueLevel)
	assert.Equal(t, 90.0, mid.RecoveryScore)

	done := Decay(r, full)
	assert.Equal(t, 100.0, done.RecoveryScore)
	assert.Nil(t, done.EstimatedFullRecovery)

	same := Decay(r, r.UpdatedAt)
	assert.Equal(t, 80.0, same.RecoveryScore)
}

type fakeStore struct {
	checkIns map[time.Time]models.DailyCheckIn
	recovery map[string]models.MuscleRecovery
	workouts []models.Workout
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		checkIns: map[time.Time]models.DailyCheckIn{},
		recovery: map[string]models.MuscleRecovery{},
	}
}

func (f *fakeStore) GetCheckIn(_ context.Context, _ int, date time.Time) (*models.DailyCheckIn, error) {
	c, ok := f.checkIns[date]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) LatestCheckInDate(context.Context, int) (*time.Time, error) {
	var latest *time.Time
	for d := range f.checkIns {
		if latest == nil || d.After(*latest) {
			d := d
			latest = &d
		}
	}
	return latest, nil
}

func (f *fakeStore) UpsertCheckIn(_ context.Context, c models.DailyCheckIn) (models.DailyCheckIn, error) {
	if existing, ok := f.checkIns[c.Date]; ok {
		c.ID = existing.ID
	} else {
		c.ID = uuid.New()
	}
	f.checkIns[c.Date] = c
	return c, nil
}

func (f *fakeStore) ListMuscleRecovery(context.Context, int) ([]models.MuscleRecovery, error) {
	out := make([]models.MuscleRecovery, 0, len(f.recovery))
	for _, r := range f.recovery {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) UpsertMuscleRecovery(_ context.Context, rows []models.MuscleRecovery) error {
	for _, r := range rows {
		f.recovery[r.MuscleGroup] = r
	}
	return nil
}

func (f *fakeStore) ListWorkouts(_ context.Context, _ int, start, end time.Time) ([]models.Workout, error) {
	var out []models.Workout
	for _, w := range f.workouts {
		if !w.StartedAt.Before(start) && w.StartedAt.Before(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func newTestScorer(store Store) *Scorer {
	return NewScorer(store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
}

// TestScorerReadinessNoData verifies a new user gets the neutral score.
func TestScorerReadinessNoData(t *testing.T) {
	res, err := newTestScorer(newFakeStore()).Readiness(context.Background(), 1, t0)
	require.NoError(t, err)
	assert.Equal(t, NeutralScore, res.Score)
	assert.Equal(t, RecommendLight, res.Recommendation)
	assert.False(t, res.HasCheckInToday)
	assert.Nil(t, res.LastCheckInDate)
}

// TestScorerCheckInUpsert verifies one check-in per day and that it feeds readiness.
func TestScorerCheckInUpsert(t *testing.T) {
	store := newFakeStore()
	s := newTestScorer(store)
	ctx := context.Background()

	first, err := s.CheckIn(ctx, models.DailyCheckIn{UserID: 1, SleepQuality: formula.Ptr(2.0)}, t0)
	require.NoError(t, err)
	second, err := s.CheckIn(ctx, models.DailyCheckIn{UserID: 1, SleepQuality: formula.Ptr(5.0), Date: t0.Add(2 * time.Hour)}, t0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.checkIns, 1)

	res, err := s.Readiness(ctx, 1, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, res.HasCheckInToday)
	assert.Equal(t, 100, res.Score)
	require.NotNil(t, res.LastCheckInDate)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), *res.LastCheckInDate)

	tomorrow, err := s.Readiness(ctx, 1, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, tomorrow.HasCheckInToday)
	assert.NotNil(t, tomorrow.LastCheckInDate)
}

// TestScorerCheckInRejectsOutOfRange verifies values are rejected, not clamped.
func TestScorerCheckInRejectsOutOfRange(t *testing.T) {
	store := newFakeStore()
	_, err := newTestScorer(store).CheckIn(context.Background(), models.DailyCheckIn{UserID: 1, SleepQuality: formula.Ptr(6.0)}, t0)
	assert.ErrorIs(t, err, models.ErrDomainRange)
	assert.Empty(t, store.checkIns)
}

// TestScorerRefreshRecovery verifies refreshed rows and the reset of muscles
// that fell out of the window.
func TestScorerRefreshRecovery(t *testing.T) {
	store := newFakeStore()
	store.recovery["back"] = models.MuscleRecovery{UserID: 1, MuscleGroup: "back", RecoveryScore: 40, FatigueLevel: 60}
	store.workouts = []models.Workout{workout(t0, []string{"chest"}, 5)}
	s := newTestScorer(store)
	ctx := context.Background()

	rows, err := s.RefreshRecovery(ctx, 1, t0.Add(22*time.Hour))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 80.0, store.recovery["chest"].RecoveryScore)
	assert.Equal(t, 100.0, store.recovery["back"].RecoveryScore)

	res, err := s.Readiness(ctx, 1, t0.Add(22*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, res.Factors.MuscleRecovery)
	assert.Equal(t, 90.0, *res.Factors.MuscleRecovery)
	assert.Equal(t, 90, res.Score)
}

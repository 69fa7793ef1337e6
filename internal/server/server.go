package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/readiness"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RecordService reads and evaluates personal records.
type RecordService interface {
	List(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error)
	Submit(ctx context.Context, userID int, c records.Candidate) (*records.Result, error)
	EvaluateWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*records.Result, error)
}

// SummaryService computes training summaries and trends.
type SummaryService interface {
	Location() *time.Location
	Generate(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*models.TrainingSummary, error)
	History(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error)
	Compare(ctx context.Context, userID int, baseline, current summary.Period) (*summary.Comparison, error)
	ComparePrevious(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*summary.Comparison, error)
	Streaks(ctx context.Context, userID int, now time.Time, weeks int) (*summary.StreakReport, error)
	MuscleVolume(ctx context.Context, userID int, start, end time.Time) ([]summary.WeekMuscleVolume, error)
	Progression(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) (*summary.Progression, error)
}

// ReadinessService scores readiness and tracks muscle recovery.
type ReadinessService interface {
	Readiness(ctx context.Context, userID int, now time.Time) (*readiness.Result, error)
	CheckIn(ctx context.Context, c models.DailyCheckIn, now time.Time) (*models.DailyCheckIn, error)
	RefreshRecovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error)
	Recovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error)
}

// GoalService runs goal CRUD, progress and lifecycle operations.
type GoalService interface {
	Create(ctx context.Context, g models.Goal) (*models.Goal, error)
	Get(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error)
	List(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error)
	RecordProgress(ctx context.Context, userID int, goalID uuid.UUID, u goals.Update) (*goals.ProgressResult, error)
	Complete(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error)
	Abandon(ctx context.Context, userID int, goalID uuid.UUID, reason string) (*models.Goal, error)
	Pause(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error)
	Resume(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error)
	History(ctx context.Context, userID int, goalID uuid.UUID) ([]models.GoalProgress, error)
	SyncFrequency(ctx context.Context, userID int, now time.Time) ([]goals.ProgressResult, error)
}

// WorkoutLogger stores workouts and runs the follow-up analytics.
type WorkoutLogger interface {
	Log(ctx context.Context, userID int, workouts []models.Workout) (*ingest.Result, error)
}

// AlphaImporter ingests an Alpha Progression CSV export.
type AlphaImporter interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Store is the direct storage reads the API exposes.
type Store interface {
	UserStore
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error)
	GetWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	GetTrainingIntensity(ctx context.Context, userID int, start, end time.Time) (*storage.TrainingIntensityResult, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	Ping(ctx context.Context) error
}

// Services groups the handler dependencies.
type Services struct {
	Records   RecordService
	Summaries SummaryService
	Readiness ReadinessService
	Goals     GoalService
	Workouts  WorkoutLogger
	Alpha     AlphaImporter
	Store     Store
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc     Services
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	router  chi.Router
	whois   WhoIser
	now     func() time.Time
}

// New creates a new Server with all routes configured. m may be nil to
// disable request metrics.
func New(svc Services, apiKey string, m *metrics.Manager, log *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the dev user to Tailscale
// WhoIs lookups.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

// identify dispatches to the identity middleware in effect for the request.
func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.svc.Store, s.log)(next).ServeHTTP(w, r)
	})
}

// Mount attaches an extra handler (metrics exporter) under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

// MountIdentified attaches a handler under pattern and everything below it.
// The handler sees the resolved caller identity.
func (s *Server) MountIdentified(pattern string, h http.Handler) {
	s.router.With(s.identify).Handle(pattern, h)
	s.router.With(s.identify).Handle(pattern+"/*", h)
}

// MCPContext copies the caller identity of r into ctx for MCP handlers.
func MCPContext(ctx context.Context, r *http.Request) context.Context {
	return mcp.WithUserID(ctx, userIDFromContext(r))
}

func (s *Server) routes() {
	s.router.Use(PanicRecovery(s.metrics, s.log))
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)

		// Import endpoints (API key required)
		r.With(APIKeyAuth(s.apiKey)).Post("/import/alpha", s.handleAlphaImport)

		// Analytics API (no auth; tsnet handles access)
		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleLogWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Post("/workouts/{id}/evaluate", s.handleEvaluateWorkout)

		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Get("/exercises/{id}/progression", s.handleProgression)

		r.Get("/records", s.handleListRecords)
		r.Post("/records", s.handleSubmitRecord)

		r.Get("/summaries/{period}", s.handleSummary)
		r.Get("/summaries/{period}/history", s.handleSummaryHistory)
		r.Get("/summaries/{period}/compare", s.handleComparePrevious)
		r.Get("/compare", s.handleCompareRanges)
		r.Get("/streaks", s.handleStreaks)
		r.Get("/muscle-volume", s.handleMuscleVolume)
		r.Get("/training/intensity", s.handleTrainingIntensity)

		r.Get("/readiness", s.handleReadiness)
		r.Post("/checkins", s.handleCheckIn)
		r.Get("/recovery", s.handleRecovery)
		r.Post("/recovery/refresh", s.handleRefreshRecovery)

		r.Get("/goals", s.handleListGoals)
		r.Post("/goals", s.handleCreateGoal)
		r.Post("/goals/sync", s.handleSyncGoals)
		r.Get("/goals/{id}", s.handleGetGoal)
		r.Get("/goals/{id}/history", s.handleGoalHistory)
		r.Post("/goals/{id}/progress", s.handleGoalProgress)
		r.Post("/goals/{id}/{action}", s.handleGoalAction)
	})
}

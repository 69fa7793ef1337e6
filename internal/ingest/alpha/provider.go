package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Source is the import log source name for Alpha Progression exports.
const Source = "alpha_progression"

// WorkoutLogger stores workouts and runs their follow-up analytics.
type WorkoutLogger interface {
	Log(ctx context.Context, userID int, workouts []models.Workout) (*ingest.Result, error)
}

// ImportLogStore records the outcome of each import.
type ImportLogStore interface {
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	workouts WorkoutLogger
	logs     ImportLogStore
	log      *slog.Logger
	loc      *time.Location
}

// NewProvider creates a new Alpha Progression ingest provider. Session
// times in exports are interpreted in loc.
func NewProvider(workouts WorkoutLogger, logs ImportLogStore, log *slog.Logger, loc *time.Location) *Provider {
	if loc == nil {
		loc = time.UTC
	}
	return &Provider{workouts: workouts, logs: logs, log: log, loc: loc}
}

// Ingest parses a CSV export and logs every session as a completed workout.
// The outcome is written to the import log whether or not it succeeds.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	start := time.Now()
	logID, err := p.logs.InsertImportLog(ctx, storage.ImportLog{UserID: userID, Source: Source, Status: "running"})
	if err != nil {
		p.log.Error("failed to create import log", "source", Source, "error", err)
	}

	result, err := p.ingest(ctx, r, userID)
	p.finish(ctx, logID, userID, result, err, time.Since(start))
	return result, err
}

func (p *Provider) ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r, p.loc)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(sessions) == 0 {
		return &ingest.Result{Message: "no sessions found"}, nil
	}

	workouts := make([]models.Workout, 0, len(sessions))
	for _, s := range sessions {
		workouts = append(workouts, s.Workout(userID))
	}
	return p.workouts.Log(ctx, userID, workouts)
}

func (p *Provider) finish(ctx context.Context, logID int64, userID int, result *ingest.Result, importErr error, elapsed time.Duration) {
	if logID == 0 {
		return
	}
	ms := int(elapsed.Milliseconds())
	entry := storage.ImportLog{UserID: userID, Source: Source, Status: "success", DurationMs: &ms}
	if result != nil {
		entry.WorkoutsReceived = result.WorkoutsReceived
		entry.WorkoutsInserted = result.WorkoutsInserted
		entry.SetsInserted = result.SetsInserted
		entry.RecordsSet = len(result.NewRecords)
	}
	if importErr != nil {
		entry.Status = "error"
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if err := p.logs.UpdateImportLog(context.WithoutCancel(ctx), logID, entry); err != nil {
		p.log.Error("failed to update import log", "id", logID, "error", err)
	}
}

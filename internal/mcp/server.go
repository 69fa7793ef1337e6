package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog training analytics server. Query personal records, training summaries, streaks, readiness, muscle recovery and goal progress. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, catalog: newCatalog(ds, log), log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetSummaryHistory, Handler: h.getSummaryHistory},
		server.ServerTool{Tool: toolComparePeriods, Handler: h.comparePeriods},
		server.ServerTool{Tool: toolGetStreaks, Handler: h.getStreaks},
		server.ServerTool{Tool: toolGetMuscleVolume, Handler: h.getMuscleVolume},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolGetReadiness, Handler: h.getReadiness},
		server.ServerTool{Tool: toolGetMuscleRecovery, Handler: h.getMuscleRecovery},
		server.ServerTool{Tool: toolListGoals, Handler: h.listGoals},
		server.ServerTool{Tool: toolGetGoalHistory, Handler: h.getGoalHistory},
		server.ServerTool{Tool: toolRecordGoalProgress, Handler: h.recordGoalProgress},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetTrainingIntensity, Handler: h.getTrainingIntensity},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resReadinessToday, Handler: h.readinessToday},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	catalog *catalog
	log     *slog.Logger
	now     func() time.Time
}

// --- Resource definitions ---

var resReadinessToday = mcp.NewResource(
	"liftlog://readiness_today",
	"Readiness Today",
	mcp.WithResourceDescription("Today's readiness score with factor breakdown, muscle recovery and streaks"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days with exercises and sets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"liftlog://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercises with muscle groups and type"),
	mcp.WithMIMEType("application/json"),
)

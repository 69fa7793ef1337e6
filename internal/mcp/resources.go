package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) readinessToday(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	result, err := h.ds.Readiness(ctx, uid)
	if err != nil {
		return nil, err
	}

	recovery, err := h.ds.MuscleRecovery(ctx, uid)
	if err != nil {
		h.log.Warn("readiness_today: recovery query failed", "error", err)
	}

	streaks, err := h.ds.Streaks(ctx, uid, 4)
	if err != nil {
		h.log.Warn("readiness_today: streak query failed", "error", err)
	}

	return jsonResource(req.Params.URI, map[string]any{
		"readiness":       result,
		"muscle_recovery": recovery,
		"streaks":         streaks,
	})
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := h.now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.Workouts(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, workouts)
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.catalog.exercises(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exercises)
}

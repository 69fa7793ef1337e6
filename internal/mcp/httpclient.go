package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/readiness"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// resolves the caller's identity, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) PersonalRecords(ctx context.Context, _ int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error) {
	params := url.Values{}
	if exerciseID != nil {
		params.Set("exercise_id", exerciseID.String())
	}
	var recs []models.PersonalRecord
	if err := c.get(ctx, "/api/v1/records", params, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *HTTPClient) TrainingSummary(ctx context.Context, _ int, pt models.PeriodType, ref time.Time) (*models.TrainingSummary, error) {
	params := url.Values{}
	params.Set("date", ref.Format(time.RFC3339))
	var s models.TrainingSummary
	if err := c.get(ctx, "/api/v1/summaries/"+string(pt), params, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) SummaryHistory(ctx context.Context, _ int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var list []models.TrainingSummary
	if err := c.get(ctx, "/api/v1/summaries/"+string(pt)+"/history", params, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) ComparePrevious(ctx context.Context, _ int, pt models.PeriodType, ref time.Time) (*summary.Comparison, error) {
	params := url.Values{}
	params.Set("date", ref.Format(time.RFC3339))
	var cmp summary.Comparison
	if err := c.get(ctx, "/api/v1/summaries/"+string(pt)+"/compare", params, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (c *HTTPClient) CompareRanges(ctx context.Context, _ int, baselineStart, baselineEnd, currentStart, currentEnd time.Time) (*summary.Comparison, error) {
	params := url.Values{}
	params.Set("baseline_start", baselineStart.Format(time.RFC3339))
	params.Set("baseline_end", baselineEnd.Format(time.RFC3339))
	params.Set("current_start", currentStart.Format(time.RFC3339))
	params.Set("current_end", currentEnd.Format(time.RFC3339))
	var cmp summary.Comparison
	if err := c.get(ctx, "/api/v1/compare", params, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (c *HTTPClient) Streaks(ctx context.Context, _ int, weeks int) (*summary.StreakReport, error) {
	params := url.Values{}
	params.Set("weeks", strconv.Itoa(weeks))
	var report summary.StreakReport
	if err := c.get(ctx, "/api/v1/streaks", params, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) MuscleVolume(ctx context.Context, _ int, start, end time.Time) ([]summary.WeekMuscleVolume, error) {
	var weeks []summary.WeekMuscleVolume
	if err := c.get(ctx, "/api/v1/muscle-volume", timeParams(start, end), &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

func (c *HTTPClient) Progression(ctx context.Context, _ int, exerciseID uuid.UUID, start, end time.Time) (*summary.Progression, error) {
	var prog summary.Progression
	path := "/api/v1/exercises/" + exerciseID.String() + "/progression"
	if err := c.get(ctx, path, timeParams(start, end), &prog); err != nil {
		return nil, err
	}
	return &prog, nil
}

func (c *HTTPClient) Readiness(ctx context.Context, _ int) (*readiness.Result, error) {
	var result readiness.Result
	if err := c.get(ctx, "/api/v1/readiness", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) MuscleRecovery(ctx context.Context, _ int) ([]models.MuscleRecovery, error) {
	var rows []models.MuscleRecovery
	if err := c.get(ctx, "/api/v1/recovery", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) Goals(ctx context.Context, _ int, status *models.GoalStatus) ([]models.Goal, error) {
	params := url.Values{}
	if status != nil {
		params.Set("status", string(*status))
	}
	var list []models.Goal
	if err := c.get(ctx, "/api/v1/goals", params, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) GoalHistory(ctx context.Context, _ int, goalID uuid.UUID) ([]models.GoalProgress, error) {
	var history []models.GoalProgress
	if err := c.get(ctx, "/api/v1/goals/"+goalID.String()+"/history", nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *HTTPClient) RecordGoalProgress(ctx context.Context, _ int, goalID uuid.UUID, u goals.Update) (*goals.ProgressResult, error) {
	var result goals.ProgressResult
	path := "/api/v1/goals/" + goalID.String() + "/progress"
	if err := c.do(ctx, http.MethodPost, path, nil, u, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Workouts(ctx context.Context, _ int, start, end time.Time) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := c.get(ctx, "/api/v1/workouts", timeParams(start, end), &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) TrainingIntensity(ctx context.Context, _ int, start, end time.Time) (*storage.TrainingIntensityResult, error) {
	var result storage.TrainingIntensityResult
	if err := c.get(ctx, "/api/v1/training/intensity", timeParams(start, end), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := c.get(ctx, "/api/v1/exercises", nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

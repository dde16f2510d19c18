package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
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

// statusError is a non-200 response from the API.
type statusError struct {
	path   string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{path: path, status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

// getJSON fetches path and decodes the response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, what string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func intParam(key string, n int) url.Values {
	v := url.Values{}
	v.Set(key, strconv.Itoa(n))
	return v
}

func (c *HTTPClient) SummaryStats(ctx context.Context, days int) (*history.Summary, error) {
	var s history.Summary
	if err := c.getJSON(ctx, "/api/v1/stats/summary", intParam("days", days), "summary stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) VolumeByWeek(ctx context.Context, weeks int) ([]history.WeekVolume, error) {
	var out []history.WeekVolume
	if err := c.getJSON(ctx, "/api/v1/stats/volume/weekly", intParam("weeks", weeks), "weekly volume", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) VolumeByMuscle(ctx context.Context) ([]history.MuscleVolume, error) {
	var out []history.MuscleVolume
	if err := c.getJSON(ctx, "/api/v1/stats/volume/muscle", nil, "muscle volume", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ExerciseProgress(ctx context.Context, exerciseID string) ([]history.ProgressPoint, error) {
	var out []history.ProgressPoint
	path := "/api/v1/exercises/" + url.PathEscape(exerciseID) + "/progress"
	if err := c.getJSON(ctx, path, nil, "exercise progress", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) StrengthProgress(ctx context.Context, exerciseID string) (*history.StrengthProgress, error) {
	var sp history.StrengthProgress
	path := "/api/v1/exercises/" + url.PathEscape(exerciseID) + "/strength"
	if err := c.getJSON(ctx, path, nil, "strength progress", &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context) ([]models.PersonalRecord, error) {
	var out []models.PersonalRecord
	if err := c.getJSON(ctx, "/api/v1/records", nil, "personal records", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) RecentWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	var out []models.Workout
	if err := c.getJSON(ctx, "/api/v1/workouts", intParam("limit", limit), "workouts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]models.ExerciseDefinition, error) {
	var out []models.ExerciseDefinition
	if err := c.getJSON(ctx, "/api/v1/exercises", nil, "exercises", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchExercise treats a 404 from the match endpoint as no match.
func (c *HTTPClient) MatchExercise(ctx context.Context, name string) (*models.ExerciseDefinition, error) {
	params := url.Values{}
	params.Set("name", name)
	var def models.ExerciseDefinition
	err := c.getJSON(ctx, "/api/v1/exercises/match", params, "exercise", &def)
	if se, ok := err.(*statusError); ok && se.status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (c *HTTPClient) TodaysWorkout(ctx context.Context) (*program.ScheduledDay, error) {
	var d program.ScheduledDay
	if err := c.getJSON(ctx, "/api/v1/programs/today", nil, "today's workout", &d); err != nil {
		return nil, programErr(err)
	}
	return &d, nil
}

func (c *HTTPClient) UpcomingWorkouts(ctx context.Context, days int) ([]program.ScheduledDay, error) {
	var out []program.ScheduledDay
	if err := c.getJSON(ctx, "/api/v1/programs/upcoming", intParam("days", days), "upcoming workouts", &out); err != nil {
		return nil, programErr(err)
	}
	return out, nil
}

// programErr maps the server's 409 for a missing program back to the
// sentinel.
func programErr(err error) error {
	if se, ok := err.(*statusError); ok && se.status == http.StatusConflict &&
		strings.Contains(se.body, program.ErrNoActiveProgram.Error()) {
		return fmt.Errorf("%s: %w", se.path, program.ErrNoActiveProgram)
	}
	return err
}

package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/claude/liftlog/internal/program"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetSummaryStats = mcp.NewTool("get_summary_stats",
	mcp.WithDescription("Training totals over a trailing window: workouts, working sets, reps, volume (weight x reps), XP and average workout duration."),
	mcp.WithNumber("days", mcp.Description("Window length in days. Defaults to 30.")),
)

var toolGetVolumeByWeek = mcp.NewTool("get_volume_by_week",
	mcp.WithDescription("Total working-set volume per ISO week (Monday start), oldest first. Weeks without training are included with zero volume."),
	mcp.WithNumber("weeks", mcp.Description("Number of weeks ending with the current week. Defaults to 8.")),
)

var toolGetVolumeByMuscle = mcp.NewTool("get_volume_by_muscle",
	mcp.WithDescription("All-time working-set volume and set counts per muscle group."),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-workout history for one exercise: top weight, volume, estimated one-rep max and set count."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name or id (e.g. 'Bench Press (Barbell)' or 'bench_press')")),
)

var toolGetStrengthProgress = mcp.NewTool("get_strength_progress",
	mcp.WithDescription("Estimated one-rep max trend for one exercise, with the current PR and change since the first session."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name or id")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records per exercise. Optionally filtered to one exercise."),
	mcp.WithString("exercise", mcp.Description("Exercise name or id. Omit for all records.")),
)

var toolGetTodaysWorkout = mcp.NewTool("get_todays_workout",
	mcp.WithDescription("The active program's current day with its template and per-exercise prescriptions (weight, rep range, progression state)."),
)

var toolGetUpcomingWorkouts = mcp.NewTool("get_upcoming_workouts",
	mcp.WithDescription("The next program days starting with the current one, including rest days, with prescriptions computed from current history."),
	mcp.WithNumber("days", mcp.Description("Number of days to preview. Defaults to 7.")),
)

var toolMatchExercise = mcp.NewTool("match_exercise",
	mcp.WithDescription("Resolve a free-text exercise name (as written by other apps) to a catalog exercise."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name, e.g. 'Squat (Barbell)' or 'DB Bench Press'")),
)

// --- Tool handlers ---

func (h *handlers) getSummaryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 30)
	if days <= 0 {
		return mcp.NewToolResultError("days must be positive"), nil
	}
	stats, err := h.ds.SummaryStats(ctx, days)
	if err != nil {
		h.log.Error("mcp get_summary_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getVolumeByWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := req.GetInt("weeks", 8)
	if weeks <= 0 {
		return mcp.NewToolResultError("weeks must be positive"), nil
	}
	vols, err := h.ds.VolumeByWeek(ctx, weeks)
	if err != nil {
		h.log.Error("mcp get_volume_by_week", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(vols)
}

func (h *handlers) getVolumeByMuscle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vols, err := h.ds.VolumeByMuscle(ctx)
	if err != nil {
		h.log.Error("mcp get_volume_by_muscle", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(vols)
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	id, err := h.resolveExercise(ctx, name)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	points, err := h.ds.ExerciseProgress(ctx, id)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "exercise_id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"exercise_id": id, "points": points})
}

func (h *handlers) getStrengthProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	id, err := h.resolveExercise(ctx, name)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	sp, err := h.ds.StrengthProgress(ctx, id)
	if err != nil {
		h.log.Error("mcp get_strength_progress", "exercise_id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sp)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := h.ds.PersonalRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if name := req.GetString("exercise", ""); name != "" {
		id, err := h.resolveExercise(ctx, name)
		if err != nil {
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		filtered := recs[:0]
		for _, r := range recs {
			if r.ExerciseID == id {
				filtered = append(filtered, r)
			}
		}
		recs = filtered
	}
	return jsonResult(recs)
}

func (h *handlers) getTodaysWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := h.ds.TodaysWorkout(ctx)
	if err != nil {
		return programError("get_todays_workout", h, err), nil
	}
	return jsonResult(day)
}

func (h *handlers) getUpcomingWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 7)
	if days <= 0 {
		return mcp.NewToolResultError("days must be positive"), nil
	}
	upcoming, err := h.ds.UpcomingWorkouts(ctx, days)
	if err != nil {
		return programError("get_upcoming_workouts", h, err), nil
	}
	return jsonResult(upcoming)
}

func (h *handlers) matchExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	def, err := h.ds.MatchExercise(ctx, name)
	if err != nil {
		h.log.Error("mcp match_exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if def == nil {
		return mcp.NewToolResultError("no exercise matches " + name), nil
	}
	return jsonResult(def)
}

// resolveExercise maps a name to a catalog id, passing the input through
// unchanged when nothing matches so raw ids still work.
func (h *handlers) resolveExercise(ctx context.Context, name string) (string, error) {
	def, err := h.ds.MatchExercise(ctx, name)
	if err != nil {
		return "", err
	}
	if def == nil {
		return strings.TrimSpace(name), nil
	}
	return def.ID, nil
}

// programError reports a missing program as a plain message rather than a
// failure.
func programError(tool string, h *handlers, err error) *mcp.CallToolResult {
	if errors.Is(err, program.ErrNoActiveProgram) {
		return mcp.NewToolResultError("no program is active; start one first")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// Package mcp exposes training history and program queries as MCP tools
// and resources.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training server. Query workout volume, personal records, estimated one-rep max progress, and the active program's scheduled workouts. Weights are in the units the lifter logged."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSummaryStats, Handler: h.getSummaryStats},
		server.ServerTool{Tool: toolGetVolumeByWeek, Handler: h.getVolumeByWeek},
		server.ServerTool{Tool: toolGetVolumeByMuscle, Handler: h.getVolumeByMuscle},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetStrengthProgress, Handler: h.getStrengthProgress},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetTodaysWorkout, Handler: h.getTodaysWorkout},
		server.ServerTool{Tool: toolGetUpcomingWorkouts, Handler: h.getUpcomingWorkouts},
		server.ServerTool{Tool: toolMatchExercise, Handler: h.matchExercise},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPersonalRecords, Handler: h.personalRecords},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resPersonalRecords = mcp.NewResource(
	"liftlog://personal_records",
	"Personal Records",
	mcp.WithResourceDescription("Heaviest working-set weight per exercise, with date and whether it was imported or edited"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The ten most recent workouts with every set"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"liftlog://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All built-in and custom exercises with muscle groups and equipment"),
	mcp.WithMIMEType("application/json"),
)

// Package server exposes the tracker over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// defaultMaxBody bounds request bodies when no import limit is configured.
const defaultMaxBody = 32 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker  *tracker.Tracker
	log      *slog.Logger
	apiKey   string
	maxBytes int64
	router   chi.Router
}

// New creates a new Server with all routes configured. maxBytes caps the
// CSV upload size; zero uses a 32 MiB default.
func New(t *tracker.Tracker, apiKey string, maxBytes int64, log *slog.Logger) *Server {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBody
	}
	s := &Server{
		tracker:  t,
		log:      log,
		apiKey:   apiKey,
		maxBytes: maxBytes,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handle attaches an extra handler, such as the MCP endpoint, at pattern.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Reads (no auth, tsnet handles access)
		r.Get("/import/logs", s.handleImportLogs)
		r.Get("/stats/summary", s.handleSummaryStats)
		r.Get("/stats/volume/weekly", s.handleVolumeByWeek)
		r.Get("/stats/volume/muscle", s.handleVolumeByMuscle)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/match", s.handleMatchExercise)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Get("/exercises/{id}/substitutes", s.handleSubstitutes)
		r.Get("/exercises/{id}/progress", s.handleExerciseProgress)
		r.Get("/exercises/{id}/strength", s.handleStrengthProgress)
		r.Get("/records", s.handleListRecords)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workout/active", s.handleGetActiveWorkout)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/programs", s.handleListPrograms)
		r.Get("/programs/state", s.handleProgramState)
		r.Get("/programs/today", s.handleTodaysWorkout)
		r.Get("/programs/upcoming", s.handleUpcomingWorkouts)
		r.Get("/prescriptions/{exerciseID}", s.handlePrescription)

		// Writes (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/import/csv", s.handleImportCSV)
			r.Post("/exercises/custom", s.handleAddCustomExercise)
			r.Put("/records/{id}", s.handleEditRecord)
			r.Post("/records/recalculate", s.handleRecalculateRecords)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)
			r.Post("/workout/active", s.handleStartWorkout)
			r.Delete("/workout/active", s.handleDiscardWorkout)
			r.Post("/workout/active/exercises", s.handleAddExercise)
			r.Post("/workout/active/sets", s.handleLogSet)
			r.Put("/workout/active/sets", s.handleUpdateSet)
			r.Delete("/workout/active/sets", s.handleRemoveSet)
			r.Post("/workout/active/finish", s.handleFinishWorkout)
			r.Post("/templates", s.handlePutTemplate)
			r.Post("/programs/wizard", s.handleProgramWizard)
			r.Post("/programs/{id}/start", s.handleStartProgram)
			r.Put("/programs/position", s.handleNavigateProgram)
			r.Post("/programs/day/{day}/start", s.handleStartProgramDay)
		})
	})
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/ingest/csvlog"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// importResponse is the import result without the parsed workouts.
type importResponse struct {
	ImportedCount         int      `json:"imported_count"`
	UnmappedExerciseNames []string `json:"unmapped_exercise_names"`
	RowsTotal             int      `json:"rows_total"`
	RowsSkipped           int      `json:"rows_skipped"`
	SetsImported          int      `json:"sets_imported"`
	Message               string   `json:"message"`
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.readCSVBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := s.tracker.ImportCSV(r.Context(), data, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		ImportedCount:         res.ImportedCount,
		UnmappedExerciseNames: res.UnmappedExerciseNames,
		RowsTotal:             res.RowsTotal,
		RowsSkipped:           res.RowsSkipped,
		SetsImported:          res.SetsImported,
		Message:               res.Message,
	})
}

// readCSVBody accepts either a raw CSV body or a multipart form with the
// export in a "file" field.
func (s *Server) readCSVBody(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		f, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("empty request body")
	}
	return string(b), nil
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	logs, err := s.tracker.ImportLogs(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleSummaryStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.SummaryStats(queryInt(r, "days", 30)))
}

func (s *Server) handleVolumeByWeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.VolumeByWeek(queryInt(r, "weeks", 8)))
}

func (s *Server) handleVolumeByMuscle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.VolumeByMuscle())
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Exercises())
}

func (s *Server) handleMatchExercise(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	def, ok := s.tracker.MatchExercise(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no matching exercise"})
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	def, ok := s.tracker.Exercise(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleSubstitutes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.tracker.Exercise(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	subs := s.tracker.Substitutes(id)
	if subs == nil {
		subs = []string{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.ExerciseProgressData(chi.URLParam(r, "id")))
}

func (s *Server) handleStrengthProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.StrengthProgress(chi.URLParam(r, "id")))
}

func (s *Server) handleAddCustomExercise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		MuscleGroup string `json:"muscle_group"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	def, created, err := s.tracker.AddCustomExercise(r.Context(), body.Name, body.MuscleGroup)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, def)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Records())
}

func (s *Server) handleEditRecord(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Weight *float64 `json:"weight"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Weight == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight is required"})
		return
	}
	id := chi.URLParam(r, "id")
	if _, ok := s.tracker.Exercise(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	rec, err := s.tracker.EditPR(r.Context(), id, *body.Weight)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRecalculateRecords(w http.ResponseWriter, r *http.Request) {
	n, err := s.tracker.RecalculatePRsFromHistory(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"records": n})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts := s.tracker.Workouts()
	if limit := queryInt(r, "limit", 0); limit > 0 && len(workouts) > limit {
		workouts = workouts[len(workouts)-limit:]
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	if err := s.tracker.DeleteWorkout(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors to status codes. Anything unrecognized is
// logged and returned as 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var verr *csvlog.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrWorkoutNotFound),
		errors.Is(err, program.ErrUnknownProgram),
		errors.Is(err, program.ErrUnknownTemplate),
		errors.Is(err, tracker.ErrUnknownExercise),
		errors.Is(err, tracker.ErrUnknownRule):
		return http.StatusNotFound
	case errors.Is(err, history.ErrNoActiveWorkout),
		errors.Is(err, history.ErrWorkoutInProgress),
		errors.Is(err, history.ErrEmptyWorkout),
		errors.Is(err, program.ErrNoActiveProgram),
		errors.Is(err, program.ErrRestDay):
		return http.StatusConflict
	case errors.Is(err, history.ErrIndexOutOfRange),
		errors.Is(err, history.ErrInvalidReps),
		errors.Is(err, history.ErrInvalidWeight),
		errors.Is(err, history.ErrInvalidRPE),
		errors.Is(err, program.ErrInvalidPosition),
		errors.Is(err, program.ErrInvalidProgram),
		errors.Is(err, program.ErrInvalidTemplate),
		errors.Is(err, catalog.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// queryInt parses an integer query parameter, falling back to def when it
// is missing or malformed.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

package server

import (
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Templates())
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl models.Template
	if !decodeBody(w, r, &tpl) {
		return
	}
	if err := s.tracker.PutTemplate(r.Context(), tpl); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Programs())
}

func (s *Server) handleProgramState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.tracker.ProgramState()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": program.ErrNoActiveProgram.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleProgramWizard(w http.ResponseWriter, r *http.Request) {
	var d program.WizardData
	if !decodeBody(w, r, &d) {
		return
	}
	p, err := s.tracker.UpdateProgramWizardData(r.Context(), d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStartProgram(w http.ResponseWriter, r *http.Request) {
	st, err := s.tracker.StartProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleNavigateProgram(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Week int `json:"week"`
		Day  int `json:"day"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	st, err := s.tracker.NavigateProgram(r.Context(), body.Week, body.Day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleStartProgramDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return
	}
	a, err := s.tracker.StartProgramWorkoutForDay(day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleTodaysWorkout(w http.ResponseWriter, r *http.Request) {
	day, err := s.tracker.TodaysWorkout()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *Server) handleUpcomingWorkouts(w http.ResponseWriter, r *http.Request) {
	days, err := s.tracker.UpcomingWorkouts(queryInt(r, "days", 7))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handlePrescription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exerciseID")
	if _, ok := s.tracker.Exercise(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	rx, err := s.tracker.Prescription(id, r.URL.Query().Get("rule"), queryInt(r, "set", -1))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rx)
}

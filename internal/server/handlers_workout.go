package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/history"
)

func (s *Server) handleGetActiveWorkout(w http.ResponseWriter, r *http.Request) {
	a, ok := s.tracker.ActiveWorkout()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": history.ErrNoActiveWorkout.Error()})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	a, err := s.tracker.StartWorkout(body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleDiscardWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DiscardWorkout(); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ExerciseID string `json:"exercise_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	idx, err := s.tracker.AddExercise(body.ExerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"entry": idx})
}

// setRequest addresses a set in the active workout. Set is ignored when
// logging a new set.
type setRequest struct {
	Entry int `json:"entry"`
	Set   int `json:"set"`
	history.SetInput
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var body setRequest
	if !decodeBody(w, r, &body) {
		return
	}
	set, err := s.tracker.LogSet(r.Context(), body.Entry, body.SetInput)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var body setRequest
	if !decodeBody(w, r, &body) {
		return
	}
	set, err := s.tracker.UpdateSet(r.Context(), body.Entry, body.Set, body.SetInput)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	var body setRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.tracker.RemoveSet(body.Entry, body.Set); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	wo, err := s.tracker.FinishWorkout(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

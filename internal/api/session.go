package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/paulmach/orb"

	"campusnav/pkg/model"
	"campusnav/pkg/nav"
)

// SessionHandler fronts the navigation session: origin, sensor inlets
// and status.
type SessionHandler struct {
	session *nav.Session
}

func NewSessionHandler(session *nav.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

// OriginRequest places the user on a floor.
type OriginRequest struct {
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	Floor model.FloorID `json:"floor"`
}

func (h *SessionHandler) HandleOrigin(w http.ResponseWriter, r *http.Request) {
	var req OriginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Floor == "" {
		http.Error(w, "floor is required", http.StatusBadRequest)
		return
	}

	h.session.Start(r.Context(), orb.Point{req.X, req.Y}, req.Floor)
	writeJSON(w, h.session.Status())
}

// StepRequest is one footstep sample.
type StepRequest struct {
	IntervalMs float64 `json:"interval_ms"`
	Heading    float64 `json:"heading"`
}

func (h *SessionHandler) HandleStep(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.session.Step(req.IntervalMs, req.Heading)
	w.WriteHeader(http.StatusAccepted)
}

// HeadingRequest is one heading-only sample.
type HeadingRequest struct {
	Heading float64 `json:"heading"`
}

func (h *SessionHandler) HandleHeading(w http.ResponseWriter, r *http.Request) {
	var req HeadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.session.Heading(req.Heading)
	w.WriteHeader(http.StatusAccepted)
}

func (h *SessionHandler) HandleLabel(w http.ResponseWriter, r *http.Request) {
	var req model.ClassifierLabel
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Label == "" {
		http.Error(w, "label is required", http.StatusBadRequest)
		return
	}
	h.session.Label(req)
	w.WriteHeader(http.StatusAccepted)
}

func (h *SessionHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.session.Status())
}

func (h *SessionHandler) HandleLastOrigin(w http.ResponseWriter, r *http.Request) {
	pos, floorID, ok := h.session.LastOrigin(r.Context())
	if !ok {
		http.Error(w, "no stored origin", http.StatusNotFound)
		return
	}
	writeJSON(w, OriginRequest{X: pos[0], Y: pos[1], Floor: floorID})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paulmach/orb"

	"campusnav/pkg/model"
	"campusnav/pkg/nav"
	"campusnav/pkg/router"
)

// RouteHandler serves route planning and the grid debug view.
type RouteHandler struct {
	session *nav.Session
	router  *router.Router
}

func NewRouteHandler(session *nav.Session, r *router.Router) *RouteHandler {
	return &RouteHandler{session: session, router: r}
}

// RouteRequest asks for a route from the current tracked position.
// Either a room query (building + room) or an explicit goal is given.
type RouteRequest struct {
	Building model.BuildingID `json:"building,omitempty"`
	Room     string           `json:"room,omitempty"`

	GoalFloor model.FloorID `json:"goal_floor,omitempty"`
	GoalX     float64       `json:"goal_x,omitempty"`
	GoalY     float64       `json:"goal_y,omitempty"`
}

// RouteResponse wraps the planned route.
type RouteResponse struct {
	Route model.Route `json:"route"`
}

func (h *RouteHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var route model.Route
	var err error
	switch {
	case req.Room != "":
		route, err = h.session.RouteToRoom(req.Building, req.Room)
	case req.GoalFloor != "":
		route, err = h.session.Route(req.GoalFloor, orb.Point{req.GoalX, req.GoalY})
	default:
		http.Error(w, "room or goal_floor is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeRouteError(w, err)
		return
	}
	writeJSON(w, RouteResponse{Route: route})
}

func writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, router.ErrNoEntrance), errors.Is(err, router.ErrUnknownFloor):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, router.ErrNoPath):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, context.Canceled):
		http.Error(w, "route computation superseded", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *RouteHandler) HandleGrid(w http.ResponseWriter, r *http.Request) {
	floorID := model.FloorID(r.URL.Query().Get("floor"))
	if floorID == "" {
		http.Error(w, "floor query parameter is required", http.StatusBadRequest)
		return
	}

	info, err := h.router.Grid(floorID)
	if err != nil {
		if errors.Is(err, router.ErrUnknownFloor) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, info)
}

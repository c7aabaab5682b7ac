package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/route"
	"github.com/theoremus-urban-solutions/routesim/sim"
)

// startRequest is the body of POST /api/vehicles. An empty vehicleId gets a generated one.
type startRequest struct {
	VehicleID  string     `json:"vehicleId" validate:"omitempty,max=64"`
	RouteID    string     `json:"routeId" validate:"required"`
	Mode       string     `json:"mode" validate:"omitempty,oneof=loop oneshot"`
	DriverName string     `json:"driverName"`
	Passengers int        `json:"passengers" validate:"gte=0"`
	Capacity   int        `json:"capacity" validate:"gte=0"`
	DepartAt   *time.Time `json:"departAt"`
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshots())
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, ok := s.engine.Snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "getVehicle", "no active vehicle "+id)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStartVehicle(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "startVehicle", "invalid body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "startVehicle", err.Error())
		return
	}
	mode, err := sim.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startVehicle", err.Error())
		return
	}
	if req.VehicleID == "" {
		req.VehicleID = uuid.NewString()
	}

	start := sim.StartRequest{
		VehicleID: req.VehicleID,
		RouteID:   req.RouteID,
		Mode:      mode,
		Metadata: sim.Metadata{
			DriverName: req.DriverName,
			Passengers: req.Passengers,
			Capacity:   req.Capacity,
		},
	}
	if req.DepartAt != nil {
		start.DepartAt = *req.DepartAt
	}

	err = s.engine.StartVehicle(start)
	switch {
	case errors.Is(err, route.ErrRouteNotFound):
		writeError(w, http.StatusNotFound, "startVehicle", err.Error())
		return
	case errors.Is(err, sim.ErrVehicleExists):
		writeError(w, http.StatusConflict, "startVehicle", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "startVehicle", err.Error())
		return
	}

	snap, _ := s.engine.Snapshot(req.VehicleID)
	writeJSON(w, http.StatusCreated, snap)
}

// handleCancelVehicle always answers 204; cancelling an unknown id is a no-op.
func (s *Server) handleCancelVehicle(w http.ResponseWriter, r *http.Request) {
	s.engine.CancelVehicle(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	log.Info("simulation paused")
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.engine.Resume()
	log.Info("simulation resumed")
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

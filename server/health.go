package server

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Paused      bool      `json:"paused"`
	Active      int       `json:"active"`
	Tick        int64     `json:"tick"`
	LastTick    time.Time `json:"lastTick"`
	Routes      int       `json:"routes"`
	Subscribers int       `json:"subscribers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Paused:      stats.Paused,
		Active:      stats.Active,
		Tick:        stats.Tick,
		LastTick:    stats.LastTick,
		Routes:      s.routes.Len(),
		Subscribers: s.engine.Publisher().Len(),
	})
}

package server

import (
	"errors"
	"net/http"

	"github.com/theoremus-urban-solutions/routesim/route"
)

type routeView struct {
	*route.Route
	Segments int     `json:"segments"`
	LengthKM float64 `json:"lengthKm"`
}

func newRouteView(r *route.Route) routeView {
	return routeView{Route: r, Segments: r.SegmentCount(), LengthKM: r.LengthKM()}
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := s.routes.Routes()
	out := make([]routeView, 0, len(routes))
	for _, rt := range routes {
		out = append(out, newRouteView(rt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	rt, err := s.routes.GetRoute(r.PathValue("id"))
	if errors.Is(err, route.ErrRouteNotFound) {
		writeError(w, http.StatusNotFound, "getRoute", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "getRoute", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newRouteView(rt))
}

package server

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/formatter"
	"github.com/theoremus-urban-solutions/routesim/gtfsrt"
)

func (s *Server) handleVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	s.serveVehicleMonitoring(w, r, "json")
}

func (s *Server) handleVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	s.serveVehicleMonitoring(w, r, "xml")
}

func (s *Server) serveVehicleMonitoring(w http.ResponseWriter, r *http.Request, format string) {
	if format == "xml" {
		w.Header().Set("Content-Type", "application/xml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	q, err := parseVehicleMonitoringQuery(r.URL.Query())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(buildSiriErrorPayload(err.Error()))
		return
	}

	revision := s.engine.Stats().Revision
	buf, err := s.cache.get(revision, memoKey("vm", format, q.key()), func() ([]byte, error) {
		return s.buildVehicleMonitoring(q, format)
	})
	if err != nil {
		log.Errorf("vehicle monitoring: %v", err)
		writeError(w, http.StatusInternalServerError, "vehicleMonitoring", err.Error())
		return
	}
	_, _ = w.Write(buf)
}

func (s *Server) buildVehicleMonitoring(q vmQuery, format string) ([]byte, error) {
	vm := s.conv.BuildVehicleMonitoring(s.engine.Snapshots(), time.Now())
	vm = formatter.FilterVehicleMonitoring(vm, q.LineRef, q.VehicleRef)
	if q.MaximumVehicles >= 0 && len(vm.VehicleActivity) > q.MaximumVehicles {
		vm.VehicleActivity = vm.VehicleActivity[:q.MaximumVehicles]
	}
	res := formatter.WrapVehicleMonitoringResponse(vm, s.producerRef)
	rb := formatter.NewResponseBuilder()
	if format == "xml" {
		return rb.BuildXML(res), nil
	}
	return rb.BuildJSON(res)
}

func (s *Server) handleVehiclePositions(w http.ResponseWriter, r *http.Request) {
	revision := s.engine.Stats().Revision
	buf, err := s.cache.get(revision, memoKey("gtfsrt", "vp"), func() ([]byte, error) {
		return gtfsrt.MarshalVehiclePositions(s.engine.Snapshots(), time.Now())
	})
	if err != nil {
		log.Errorf("vehicle positions feed: %v", err)
		writeError(w, http.StatusInternalServerError, "vehiclePositions", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(buf)
}

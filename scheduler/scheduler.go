// Package scheduler starts configured tours, either once at boot or on a cron
// schedule.
package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/config"
	"github.com/theoremus-urban-solutions/routesim/sim"
)

// Starter puts vehicles on routes; *sim.Engine implements it.
type Starter interface {
	StartVehicle(req sim.StartRequest) error
}

// TourScheduler launches tours through a Starter
type TourScheduler struct {
	cronScheduler *cron.Cron
	starter       Starter

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a scheduler using the standard five-field cron syntax
// ("0 8 * * *") plus descriptors like "@every 30m".
func New(starter Starter) *TourScheduler {
	return &TourScheduler{
		cronScheduler: cron.New(),
		starter:       starter,
		entries:       map[string]cron.EntryID{},
	}
}

// RequestFor builds the start request of a tour run under vehicleID.
func RequestFor(t config.Tour, vehicleID string) (sim.StartRequest, error) {
	mode, err := sim.ParseMode(t.Mode)
	if err != nil {
		return sim.StartRequest{}, fmt.Errorf("tour %s: %w", t.VehicleID, err)
	}
	return sim.StartRequest{
		VehicleID: vehicleID,
		RouteID:   t.RouteID,
		Mode:      mode,
		Metadata: sim.Metadata{
			DriverName: t.DriverName,
			Passengers: t.Passengers,
			Capacity:   t.Capacity,
		},
	}, nil
}

// StartImmediate starts every tour under its configured vehicle id. All tours
// are attempted; the failures are returned joined.
func (s *TourScheduler) StartImmediate(tours []config.Tour) error {
	var errs []error
	for _, t := range tours {
		req, err := RequestFor(t, t.VehicleID)
		if err == nil {
			err = s.starter.StartVehicle(req)
		}
		if err != nil {
			log.WithFields(log.Fields{"vehicle": t.VehicleID, "route": t.RouteID}).Errorf("tour not started: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Schedule registers a cron entry per tour. Each firing starts a new vehicle
// named <vehicleId>-<short uuid> so runs never collide.
func (s *TourScheduler) Schedule(tours []config.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tours {
		if _, err := RequestFor(t, t.VehicleID); err != nil {
			return err
		}
		tour := t
		id, err := s.cronScheduler.AddFunc(tour.Schedule, func() {
			if _, err := s.Launch(tour); err != nil {
				log.WithField("tour", tour.VehicleID).Errorf("scheduled tour failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("error scheduling tour %s (%q): %w", t.VehicleID, t.Schedule, err)
		}
		if old, ok := s.entries[t.VehicleID]; ok {
			s.cronScheduler.Remove(old)
		}
		s.entries[t.VehicleID] = id
		log.WithFields(log.Fields{"tour": t.VehicleID, "schedule": t.Schedule}).Info("tour scheduled")
	}
	return nil
}

// Launch starts one run of a tour now and returns the vehicle id used.
func (s *TourScheduler) Launch(t config.Tour) (string, error) {
	vehicleID := t.VehicleID + "-" + uuid.NewString()[:8]
	req, err := RequestFor(t, vehicleID)
	if err != nil {
		return "", err
	}
	if err := s.starter.StartVehicle(req); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"tour": t.VehicleID, "vehicle": vehicleID, "route": t.RouteID}).Info("tour launched")
	return vehicleID, nil
}

// Entries returns the number of scheduled tours
func (s *TourScheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start runs the cron scheduler in the background
func (s *TourScheduler) Start() {
	s.cronScheduler.Start()
}

// Stop stops the scheduler and waits for running launches to finish
func (s *TourScheduler) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
		log.Info("tour scheduler stopped")
	}
}

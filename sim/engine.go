package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/route"
)

var (
	// ErrVehicleExists is returned when starting an id that is already active
	ErrVehicleExists = errors.New("vehicle already active")
	// ErrInvalidVehicleID is returned for an empty vehicle id
	ErrInvalidVehicleID = errors.New("vehicle id is required")
)

// DefaultTickInterval matches the animation cadence of the original map view
const DefaultTickInterval = 800 * time.Millisecond

// RouteSource resolves route ids; *route.Registry implements it.
type RouteSource interface {
	GetRoute(id string) (*route.Route, error)
}

// EngineOptions configures an Engine
type EngineOptions struct {
	Seed             int64
	Speed            SpeedConfig
	TickInterval     time.Duration
	SubscriberBuffer int
}

// StartRequest describes a vehicle to put on a route
type StartRequest struct {
	VehicleID string
	RouteID   string
	Mode      Mode
	Metadata  Metadata
	DepartAt  time.Time // zero departs immediately
}

// EngineStats is a point-in-time view of the engine
type EngineStats struct {
	Tick     int64     `json:"tick"`
	LastTick time.Time `json:"lastTick"`
	Active   int       `json:"active"`
	Paused   bool      `json:"paused"`
	Revision int64     `json:"revision"` // bumped on every tick, start and cancel
}

// Engine owns every active vehicle and advances them once per Tick
type Engine struct {
	mu       sync.Mutex
	routes   RouteSource
	model    *SpeedModel
	pub      *Publisher
	seed     int64
	interval time.Duration

	vehicles map[string]*VehicleState
	latest   map[string]Snapshot
	tick     int64
	lastTick time.Time
	revision int64
	warnings *WarningAggregator

	paused atomic.Bool
}

// NewEngine creates an engine reading routes from routes
func NewEngine(routes RouteSource, opts EngineOptions) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Engine{
		routes:   routes,
		model:    NewSpeedModel(opts.Speed),
		pub:      NewPublisher(opts.SubscriberBuffer),
		seed:     opts.Seed,
		interval: opts.TickInterval,
		vehicles: map[string]*VehicleState{},
		latest:   map[string]Snapshot{},
		warnings: NewWarningAggregator(),
	}
}

// Publisher returns the snapshot fan-out
func (e *Engine) Publisher() *Publisher { return e.pub }

// Interval returns the simulated time applied per tick
func (e *Engine) Interval() time.Duration { return e.interval }

// StartVehicle binds a new vehicle to a route. Unknown routes return an error
// wrapping route.ErrRouteNotFound and create nothing.
func (e *Engine) StartVehicle(req StartRequest) error {
	if req.VehicleID == "" {
		return ErrInvalidVehicleID
	}
	r, err := e.routes.GetRoute(req.RouteID)
	if err != nil {
		return fmt.Errorf("start vehicle %s: %w", req.VehicleID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.vehicles[req.VehicleID]; ok {
		return fmt.Errorf("start vehicle %s: %w", req.VehicleID, ErrVehicleExists)
	}

	v := &VehicleState{
		ID:       req.VehicleID,
		RouteID:  r.ID,
		Status:   Scheduled,
		Mode:     req.Mode,
		Metadata: req.Metadata,
		DepartAt: req.DepartAt,
		route:    r,
		rng:      NewRNG(e.seed, req.VehicleID),
	}
	v.refresh()

	fields := log.Fields{"vehicle": v.ID, "route": r.ID, "mode": v.Mode.String()}
	switch {
	case r.IsDegenerate():
		v.Status = Stopped
		e.warnings.Add(WarningDegenerateRoute, v.ID)
		log.WithFields(fields).Warnf("route has %d waypoints, vehicle pinned", len(r.Waypoints))
	case req.DepartAt.IsZero():
		v.Status = Moving
		log.WithFields(fields).Info("vehicle started")
	default:
		log.WithFields(fields).Infof("vehicle scheduled to depart at %s", req.DepartAt.UTC().Format(time.RFC3339))
	}

	e.vehicles[v.ID] = v
	e.latest[v.ID] = v.snapshot(e.lastTick, e.tick)
	e.revision++
	return nil
}

// CancelVehicle removes a vehicle from the active set. Unknown ids are ignored.
func (e *Engine) CancelVehicle(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vehicles[id]
	if !ok {
		return
	}
	v.Status = Cancelled
	delete(e.vehicles, id)
	delete(e.latest, id)
	e.revision++
	log.WithFields(log.Fields{"vehicle": id, "route": v.RouteID}).Info("vehicle cancelled")
}

// Pause stops vehicles from advancing from the next tick on.
func (e *Engine) Pause() { e.paused.Store(true) }

// Resume undoes Pause from the next tick on.
func (e *Engine) Resume() { e.paused.Store(false) }

// Paused reports whether ticks are currently ignored
func (e *Engine) Paused() bool { return e.paused.Load() }

// Tick advances every active vehicle once and publishes their snapshots.
// It returns false without doing anything while paused.
func (e *Engine) Tick(now time.Time) bool {
	_, ok := e.TickSnapshots(now)
	return ok
}

// TickSnapshots is Tick returning the snapshots it published, in vehicle id
// order. Callers that must not lose snapshots read them here instead of
// through a bounded subscription.
func (e *Engine) TickSnapshots(now time.Time) ([]Snapshot, bool) {
	if e.paused.Load() {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	e.revision++
	e.lastTick = now
	elapsed := e.interval.Seconds()

	ids := make([]string, 0, len(e.vehicles))
	for id := range e.vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snaps := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		v := e.vehicles[id]
		e.advance(v, now, elapsed)
		snap := v.snapshot(now, e.tick)
		snaps = append(snaps, snap)
		if v.Status == Completed {
			delete(e.vehicles, id)
			delete(e.latest, id)
			log.WithFields(log.Fields{"vehicle": id, "route": v.RouteID}).Info("vehicle completed route")
			continue
		}
		e.latest[id] = snap
	}

	e.warnings.Flush(e.tick)
	e.pub.Publish(snaps)
	return snaps, true
}

func (e *Engine) advance(v *VehicleState, now time.Time, elapsed float64) {
	if v.Status == Scheduled {
		if !v.DepartAt.IsZero() && now.Before(v.DepartAt) {
			return
		}
		v.Status = Moving
	}
	if v.route.IsDegenerate() {
		v.Progress = 0
		v.SpeedEstimate = 0
		v.Status = Stopped
		v.refresh()
		return
	}
	step := e.model.NextProgress(v.route, v, elapsed, v.rng)
	for _, w := range step.Warnings {
		e.warnings.Add(w, v.ID)
	}
	v.Progress = step.Progress
	v.SpeedEstimate = step.SpeedEstimate
	v.Status = step.Status
	v.Ticks++
	v.refresh()
}

// Snapshots returns the latest snapshot of every active vehicle ordered by id.
func (e *Engine) Snapshots() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Snapshot, 0, len(e.latest))
	for _, s := range e.latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// Snapshot returns the latest snapshot of one active vehicle.
func (e *Engine) Snapshot(id string) (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.latest[id]
	return s, ok
}

// Vehicle returns a copy of an active vehicle's state.
func (e *Engine) Vehicle(id string) (VehicleState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vehicles[id]
	if !ok {
		return VehicleState{}, false
	}
	return *v, true
}

// Stats returns tick counters and the active vehicle count
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStats{
		Tick:     e.tick,
		LastTick: e.lastTick,
		Active:   len(e.vehicles),
		Paused:   e.paused.Load(),
		Revision: e.revision,
	}
}

// WarningTotal reports how many data-integrity warnings of a type were recorded.
func (e *Engine) WarningTotal(warningType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warnings.Total(warningType)
}

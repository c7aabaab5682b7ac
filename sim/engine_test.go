package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/routesim/route"
)

var t0 = time.Date(2025, 10, 3, 8, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, speed SpeedConfig) *Engine {
	t.Helper()
	return NewEngine(newTestRegistry(t), EngineOptions{
		Seed:             7,
		Speed:            speed,
		TickInterval:     time.Second,
		SubscriberBuffer: 256,
	})
}

func TestEngine_StartVehicle_UnknownRoute(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())

	err := e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, route.ErrRouteNotFound))
	assert.Equal(t, 0, e.Stats().Active)
	assert.Empty(t, e.Snapshots())

	_, ok := e.Vehicle("v1")
	assert.False(t, ok)
}

func TestEngine_StartVehicle_Validation(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())

	assert.ErrorIs(t, e.StartVehicle(StartRequest{RouteID: "line"}), ErrInvalidVehicleID)

	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "line"}))
	assert.ErrorIs(t, e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "diag"}), ErrVehicleExists)

	v, ok := e.Vehicle("v1")
	require.True(t, ok)
	assert.Equal(t, Moving, v.Status)
	assert.Equal(t, "line", v.RouteID)
	assert.Equal(t, "West", v.Label)
	assert.Equal(t, route.Waypoint{Lat: 0, Lng: 0}, v.Position)
}

func TestEngine_TickPublishesSnapshots(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())
	sub := e.Publisher().Subscribe(AllVehicles)

	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "b", RouteID: "line"}))
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "a", RouteID: "diag"}))

	assert.True(t, e.Tick(t0))

	got := drainSub(sub)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].VehicleID)
	assert.Equal(t, "b", got[1].VehicleID)
	for _, snap := range got {
		assert.Equal(t, int64(1), snap.Tick)
		assert.Equal(t, t0, snap.TickTimestamp)
		assert.Greater(t, snap.Progress, 0.0)
		assert.Less(t, snap.Progress, 1.0)
	}

	snaps := e.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, got, snaps)
}

func TestEngine_CancelVehicle(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())
	sub := e.Publisher().Subscribe("v1")

	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "line"}))
	e.Tick(t0)
	assert.Len(t, drainSub(sub), 1)

	e.CancelVehicle("v1")
	e.CancelVehicle("v1")
	e.CancelVehicle("never-started")

	for i := 1; i <= 3; i++ {
		e.Tick(t0.Add(time.Duration(i) * time.Second))
	}
	assert.Empty(t, drainSub(sub), "no snapshots after cancel")
	assert.Empty(t, e.Snapshots())
	assert.Equal(t, 0, e.Stats().Active)

	// the id can be reused
	assert.NoError(t, e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "line"}))
}

func TestEngine_OneShotCompletesOnce(t *testing.T) {
	speed := calmSpeedConfig()
	speed.BaseRate = 0.5
	e := newTestEngine(t, speed)
	sub := e.Publisher().Subscribe("v1")

	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "diag", Mode: OneShot}))

	var snaps []Snapshot
	for i := 0; i < 10; i++ {
		e.Tick(t0.Add(time.Duration(i) * time.Second))
		snaps = append(snaps, drainSub(sub)...)
	}

	completed := 0
	for _, s := range snaps {
		if s.Status == Completed {
			completed++
			assert.Equal(t, 1.0, s.Progress)
			assert.InDelta(t, 10, s.Position.Lat, 1e-9)
			assert.InDelta(t, 10, s.Position.Lng, 1e-9)
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, Completed, snaps[len(snaps)-1].Status, "completed snapshot is the last one")
	assert.Len(t, snaps, 2)
	assert.Equal(t, 0, e.Stats().Active)
}

func TestEngine_ScheduledDeparture(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())
	require.NoError(t, e.StartVehicle(StartRequest{
		VehicleID: "v1",
		RouteID:   "line",
		DepartAt:  t0.Add(5 * time.Second),
	}))

	e.Tick(t0.Add(time.Second))
	v, _ := e.Vehicle("v1")
	assert.Equal(t, Scheduled, v.Status)
	assert.Equal(t, 0.0, v.Progress)

	e.Tick(t0.Add(5 * time.Second))
	v, _ = e.Vehicle("v1")
	assert.Equal(t, Moving, v.Status)
	assert.Greater(t, v.Progress, 0.0)
}

func TestEngine_DegenerateRoute(t *testing.T) {
	e := newTestEngine(t, DefaultSpeedConfig())
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "pinned", RouteID: "dot", Mode: OneShot}))
	assert.Equal(t, 1, e.WarningTotal(WarningDegenerateRoute))

	for i := 0; i < 5; i++ {
		e.Tick(t0.Add(time.Duration(i) * time.Second))
	}
	v, ok := e.Vehicle("pinned")
	require.True(t, ok, "degenerate vehicles never complete")
	assert.Equal(t, Stopped, v.Status)
	assert.Equal(t, route.Waypoint{Lat: 16.05, Lng: 108.2}, v.Position)
	assert.Equal(t, InTransitLabel, v.Label)
}

func TestEngine_PauseResume(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "v1", RouteID: "line"}))
	require.True(t, e.Tick(t0))
	before, _ := e.Vehicle("v1")

	e.Pause()
	assert.True(t, e.Paused())
	assert.False(t, e.Tick(t0.Add(time.Second)))
	after, _ := e.Vehicle("v1")
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, int64(1), e.Stats().Tick)
	assert.True(t, e.Stats().Paused)

	e.Resume()
	assert.True(t, e.Tick(t0.Add(2*time.Second)))
	resumed, _ := e.Vehicle("v1")
	assert.Greater(t, resumed.Progress, before.Progress)
}

func runSeeded(t *testing.T, seed int64) []byte {
	t.Helper()
	e := NewEngine(newTestRegistry(t), EngineOptions{
		Seed:             seed,
		Speed:            DefaultSpeedConfig(),
		TickInterval:     800 * time.Millisecond,
		SubscriberBuffer: 1024,
	})
	sub := e.Publisher().Subscribe(AllVehicles)
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "bus-1", RouteID: "line"}))
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "bus-2", RouteID: "line"}))
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "van-1", RouteID: "diag", Mode: OneShot}))

	var all []Snapshot
	for i := 1; i <= 200; i++ {
		e.Tick(t0.Add(time.Duration(i) * e.Interval()))
		all = append(all, drainSub(sub)...)
	}
	data, err := json.Marshal(all)
	require.NoError(t, err)
	return data
}

func TestEngine_DeterministicForSeed(t *testing.T) {
	first := runSeeded(t, 42)
	second := runSeeded(t, 42)
	assert.Equal(t, string(first), string(second))

	other := runSeeded(t, 43)
	assert.NotEqual(t, string(first), string(other))
}

func TestEngine_TickSnapshots(t *testing.T) {
	e := newTestEngine(t, calmSpeedConfig())
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "b", RouteID: "line"}))
	require.NoError(t, e.StartVehicle(StartRequest{VehicleID: "a", RouteID: "line"}))

	snaps, ok := e.TickSnapshots(t0)
	require.True(t, ok)
	require.Len(t, snaps, 2)
	assert.Equal(t, "a", snaps[0].VehicleID)
	assert.Equal(t, "b", snaps[1].VehicleID)

	e.Pause()
	snaps, ok = e.TickSnapshots(t0.Add(time.Second))
	assert.False(t, ok)
	assert.Empty(t, snaps)
}

// Cancels racing with ticks: every vehicle is either part of a whole tick or
// absent from it, and nothing is published for it once CancelVehicle returns.
func TestEngine_CancelDuringTicks(t *testing.T) {
	const vehicles, ticks = 40, 200
	e := newTestEngine(t, calmSpeedConfig())
	for i := 0; i < vehicles; i++ {
		require.NoError(t, e.StartVehicle(StartRequest{VehicleID: fmt.Sprintf("v%02d", i), RouteID: "line"}))
	}

	var (
		wg          sync.WaitGroup
		published   [][]Snapshot
		cancelledAt = map[string]int64{}
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		now := t0
		for i := 0; i < ticks; i++ {
			now = now.Add(time.Second)
			snaps, _ := e.TickSnapshots(now)
			published = append(published, snaps)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < vehicles; i += 2 {
			id := fmt.Sprintf("v%02d", i)
			e.CancelVehicle(id)
			cancelledAt[id] = e.Stats().Tick
			time.Sleep(time.Millisecond)
		}
	}()
	wg.Wait()

	seen := map[string][]int64{}
	for _, snaps := range published {
		require.NotEmpty(t, snaps)
		tick := snaps[0].Tick
		ids := map[string]bool{}
		for _, snap := range snaps {
			assert.Equal(t, tick, snap.Tick, "one tick never mixes snapshot generations")
			assert.False(t, ids[snap.VehicleID], "vehicle %s published twice in tick %d", snap.VehicleID, tick)
			ids[snap.VehicleID] = true
			seen[snap.VehicleID] = append(seen[snap.VehicleID], snap.Tick)
		}
	}

	for i := 0; i < vehicles; i++ {
		id := fmt.Sprintf("v%02d", i)
		got := seen[id]
		for j, tick := range got {
			require.Equal(t, int64(j+1), tick, "vehicle %s skipped a tick before it was cancelled", id)
		}
		if at, ok := cancelledAt[id]; ok {
			if len(got) > 0 {
				assert.LessOrEqual(t, got[len(got)-1], at, "vehicle %s published after cancellation", id)
			}
			_, active := e.Vehicle(id)
			assert.False(t, active)
			continue
		}
		assert.Len(t, got, ticks, "untouched vehicle %s missed ticks", id)
	}
	assert.Equal(t, vehicles/2, e.Stats().Active)
}

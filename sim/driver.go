package sim

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tickable is advanced by a Driver; *Engine implements it.
type Tickable interface {
	Tick(now time.Time) bool
}

// DriverStats counts what a Driver did
type DriverStats struct {
	Ticks    int64 `json:"ticks"`
	Paused   int64 `json:"paused"`
	Overruns int64 `json:"overruns"`
	Skipped  int64 `json:"skipped"`
}

// Driver is the simulation clock: it calls Tick at a fixed interval from a
// single goroutine, so ticks never overlap. A tick that takes longer than the
// interval causes the pending ticks to be skipped rather than queued.
type Driver struct {
	target   Tickable
	clock    Clock
	interval time.Duration

	ticks    atomic.Int64
	paused   atomic.Int64
	overruns atomic.Int64
	skipped  atomic.Int64
}

// NewDriver creates a driver; a nil clock means the wall clock.
func NewDriver(target Tickable, clock Clock, interval time.Duration) *Driver {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Driver{target: target, clock: clock, interval: interval}
}

// Run ticks until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	t := d.clock.NewTicker(d.interval)
	defer t.Stop()
	log.Infof("simulation clock running every %s", d.interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("simulation clock stopped")
			return nil
		case now := <-t.C():
			d.step(now, t)
		}
	}
}

func (d *Driver) step(now time.Time, t Ticker) {
	start := d.clock.Now()
	if !d.target.Tick(now) {
		d.paused.Add(1)
		return
	}
	d.ticks.Add(1)
	took := d.clock.Now().Sub(start)
	if took <= d.interval {
		return
	}
	d.overruns.Add(1)
	skipped := drain(t)
	d.skipped.Add(skipped)
	log.WithFields(log.Fields{
		"drift":    took - d.interval,
		"interval": d.interval,
		"skipped":  skipped,
	}).Warn("tick overran its interval, skipping to the next aligned tick")
}

func drain(t Ticker) int64 {
	var n int64
	for {
		select {
		case <-t.C():
			n++
		default:
			return n
		}
	}
}

// Stats returns the driver counters
func (d *Driver) Stats() DriverStats {
	return DriverStats{
		Ticks:    d.ticks.Load(),
		Paused:   d.paused.Load(),
		Overruns: d.overruns.Load(),
		Skipped:  d.skipped.Load(),
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/theoremus-urban-solutions/routesim/config"
	"github.com/theoremus-urban-solutions/routesim/scheduler"
	"github.com/theoremus-urban-solutions/routesim/sim"
)

// oneshot starts the boot tours, runs a fixed number of ticks on a synthetic
// clock and writes every snapshot of every tick as one JSON line.
// Scheduled tours are ignored; with a fixed seed the output is reproducible.
func oneshot(engine *sim.Engine, cfg *config.AppConfig, ticks int, w io.Writer) error {
	if ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", ticks)
	}
	immediate, _ := config.SelectTours(cfg.Tours)
	if err := scheduler.New(engine).StartImmediate(immediate); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < ticks; i++ {
		now = now.Add(engine.Interval())
		snaps, _ := engine.TickSnapshots(now)
		for _, snap := range snaps {
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
		}
	}
	return nil
}

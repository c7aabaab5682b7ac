package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/config"
	"github.com/theoremus-urban-solutions/routesim/internal"
	"github.com/theoremus-urban-solutions/routesim/route"
	"github.com/theoremus-urban-solutions/routesim/scheduler"
	"github.com/theoremus-urban-solutions/routesim/server"
	"github.com/theoremus-urban-solutions/routesim/sim"
)

func main() {
	mode := flag.String("mode", "serve", "serve|oneshot")
	logLevel := flag.String("log-level", "info", "debug|info|warn|error")
	routesPath := flag.String("routes", "", "route catalog path (overrides config)")
	ticks := flag.Int("ticks", 10, "number of ticks to run in oneshot mode")
	seed := flag.Int64("seed", -1, "RNG seed (overrides config when >= 0)")
	flag.Parse()

	internal.InitLogging(*logLevel)
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.Config

	path := cfg.Simulation.RoutesPath
	if *routesPath != "" {
		path = *routesPath
	}
	routes, err := route.LoadCatalogFile(path)
	if err != nil {
		log.Fatalf("load routes: %v", err)
	}
	log.WithField("routes", routes.Len()).Infof("route catalog loaded from %s", path)

	opts := cfg.EngineOptions()
	if *seed >= 0 {
		opts.Seed = *seed
	}
	engine := sim.NewEngine(routes, opts)

	switch *mode {
	case "serve":
		serve(engine, routes, &cfg)
	case "oneshot":
		// stdout carries the snapshot stream
		log.SetOutput(os.Stderr)
		if err := oneshot(engine, &cfg, *ticks, os.Stdout); err != nil {
			log.Fatalf("oneshot: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func serve(engine *sim.Engine, routes *route.Registry, cfg *config.AppConfig) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	immediate, scheduled := config.SelectTours(cfg.Tours)
	tours := scheduler.New(engine)
	if err := tours.StartImmediate(immediate); err != nil {
		log.Warnf("some tours failed to start: %v", err)
	}
	if err := tours.Schedule(scheduled); err != nil {
		log.Fatalf("schedule tours: %v", err)
	}
	tours.Start()

	driver := sim.NewDriver(engine, nil, engine.Interval())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Run(ctx)
	}()

	srv := server.New(engine, routes, server.Options{
		Port:        cfg.Server.Port,
		AgencyID:    cfg.Feed.AgencyID,
		ProducerRef: cfg.Feed.ProducerRef,
	})
	srv.Start()

	<-ctx.Done()
	log.Info("shutting down")

	tours.Stop()
	<-done
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	log.WithField("driver", driver.Stats()).Info("bye")
}

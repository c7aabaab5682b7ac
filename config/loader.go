package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/routesim/sim"
)

// Config is the global application configuration
var Config AppConfig

const (
	DefaultPort             = 16181
	DefaultTickIntervalMS   = 800
	DefaultSubscriberBuffer = 64
	DefaultRoutesPath       = "routes.yml"
	DefaultAgencyID         = "ROUTESIM"
)

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	cfg, err := LoadAppConfigFromBytes(data)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// LoadAppConfigFromBytes decodes, validates and fills defaults without touching Config
func LoadAppConfigFromBytes(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if lo, hi := cfg.Speed.MinLengthFactor, cfg.Speed.MaxLengthFactor; lo != nil && hi != nil && *hi > 0 && *lo > *hi {
		return nil, fmt.Errorf("invalid config: minLengthFactor %g exceeds maxLengthFactor %g", *lo, *hi)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Simulation.TickIntervalMS == 0 {
		cfg.Simulation.TickIntervalMS = DefaultTickIntervalMS
	}
	if cfg.Simulation.SubscriberBuffer == 0 {
		cfg.Simulation.SubscriberBuffer = DefaultSubscriberBuffer
	}
	if cfg.Simulation.RoutesPath == "" {
		cfg.Simulation.RoutesPath = DefaultRoutesPath
	}
	if cfg.Feed.AgencyID == "" {
		cfg.Feed.AgencyID = DefaultAgencyID
	}
	if cfg.Feed.ProducerRef == "" {
		cfg.Feed.ProducerRef = cfg.Feed.AgencyID
	}
	for i := range cfg.Tours {
		if cfg.Tours[i].Mode == "" {
			cfg.Tours[i].Mode = "loop"
		}
	}
}

// SelectTours returns the tours started at boot and the ones with a cron schedule.
func SelectTours(tours []Tour) (immediate, scheduled []Tour) {
	for _, t := range tours {
		if t.Schedule == "" {
			immediate = append(immediate, t)
		} else {
			scheduled = append(scheduled, t)
		}
	}
	return immediate, scheduled
}

// EngineOptions maps the simulation and speed sections onto engine options.
// Speed values left out of the file keep the stock tuning.
func (c *AppConfig) EngineOptions() sim.EngineOptions {
	speed := sim.DefaultSpeedConfig()
	override := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	override(&speed.BaseRate, c.Speed.BaseRate)
	override(&speed.StopThreshold, c.Speed.StopThreshold)
	override(&speed.SlowdownWindow, c.Speed.SlowdownWindow)
	override(&speed.SlowdownProbability, c.Speed.SlowdownProbability)
	override(&speed.SlowdownFactor, c.Speed.SlowdownFactor)
	override(&speed.MinLengthFactor, c.Speed.MinLengthFactor)
	override(&speed.MaxLengthFactor, c.Speed.MaxLengthFactor)
	override(&speed.NominalSpeedKMH, c.Speed.NominalSpeedKMH)

	return sim.EngineOptions{
		Seed:             c.Simulation.Seed,
		Speed:            speed,
		TickInterval:     time.Duration(c.Simulation.TickIntervalMS) * time.Millisecond,
		SubscriberBuffer: c.Simulation.SubscriberBuffer,
	}
}

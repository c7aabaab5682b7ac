// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// It covers the HTTP server, the simulation clock, the speed model defaults,
// feed identifiers and the list of tours started at boot or on a schedule.
package config

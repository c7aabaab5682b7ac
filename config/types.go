package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// SimulationConfig contains clock and engine configuration
type SimulationConfig struct {
	TickIntervalMS   int    `yaml:"tickIntervalMS" validate:"gte=0"`
	Seed             int64  `yaml:"seed"`
	SubscriberBuffer int    `yaml:"subscriberBuffer" validate:"gte=0"`
	RoutesPath       string `yaml:"routesPath"`
}

// SpeedConfig contains the speed model tunables. Omitted values keep the stock
// tuning; an explicit 0 is applied as given.
type SpeedConfig struct {
	BaseRate            *float64 `yaml:"baseRate" validate:"omitempty,gte=0"`
	StopThreshold       *float64 `yaml:"stopThreshold" validate:"omitempty,gte=0"`
	SlowdownWindow      *float64 `yaml:"slowdownWindow" validate:"omitempty,gte=0,lte=0.5"`
	SlowdownProbability *float64 `yaml:"slowdownProbability" validate:"omitempty,gte=0,lte=1"`
	SlowdownFactor      *float64 `yaml:"slowdownFactor" validate:"omitempty,gte=0,lte=1"`
	MinLengthFactor     *float64 `yaml:"minLengthFactor" validate:"omitempty,gte=0"`
	MaxLengthFactor     *float64 `yaml:"maxLengthFactor" validate:"omitempty,gte=0"`
	NominalSpeedKMH     *float64 `yaml:"nominalSpeedKMH" validate:"omitempty,gte=0"`
}

// FeedConfig contains identifiers used by the SIRI and GTFS-RT outputs
type FeedConfig struct {
	AgencyID    string `yaml:"agencyId"`
	ProducerRef string `yaml:"producerRef"`
}

// Tour is a vehicle started at boot (empty Schedule) or by a cron schedule
type Tour struct {
	VehicleID  string `yaml:"vehicleId" validate:"required"`
	RouteID    string `yaml:"routeId" validate:"required"`
	Mode       string `yaml:"mode" validate:"omitempty,oneof=loop oneshot"`
	Schedule   string `yaml:"schedule"` // cron spec, e.g. "0 8 * * *"
	DriverName string `yaml:"driverName"`
	Passengers int    `yaml:"passengers" validate:"gte=0"`
	Capacity   int    `yaml:"capacity" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Speed      SpeedConfig      `yaml:"speed"`
	Feed       FeedConfig       `yaml:"feed"`
	Tours      []Tour           `yaml:"tours" validate:"dive"`
}

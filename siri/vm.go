package siri

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil,omitempty"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	ProgressBetweenStops    *ProgressBetweenStops   `json:"ProgressBetweenStops,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
	Extensions              *ActivityExtensions     `json:"Extensions,omitempty"`
}

// ProgressBetweenStops reports how far along its route the vehicle is.
// For a simulated route the "link" is the whole route.
type ProgressBetweenStops struct {
	LinkDistance float64 `json:"LinkDistance"` // meters
	Percentage   float64 `json:"Percentage"`
}

// ActivityExtensions carries simulator fields with no SIRI equivalent
type ActivityExtensions struct {
	LocationLabel string `json:"LocationLabel,omitempty"`
	DriverName    string `json:"DriverName,omitempty"`
	Tick          int64  `json:"Tick"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                 string                   `json:"LineRef"`
	DirectionRef            string                   `json:"DirectionRef,omitempty"`
	FramedVehicleJourneyRef *FramedVehicleJourneyRef `json:"FramedVehicleJourneyRef,omitempty"`
	VehicleMode             string                   `json:"VehicleMode,omitempty"`
	PublishedLineName       string                   `json:"PublishedLineName,omitempty"`
	OperatorRef             string                   `json:"OperatorRef,omitempty"`
	OriginName              string                   `json:"OriginName,omitempty"`
	DestinationName         string                   `json:"DestinationName,omitempty"`
	Monitored               bool                     `json:"Monitored"`
	DataSource              string                   `json:"DataSource"`
	VehicleLocation         *VehicleLocation         `json:"VehicleLocation,omitempty"`
	Bearing                 *float64                 `json:"Bearing,omitempty"`
	Velocity                *int                     `json:"Velocity,omitempty"` // km/h
	Occupancy               string                   `json:"Occupancy,omitempty"`
	Delay                   string                   `json:"Delay"`
	InCongestion            *bool                    `json:"InCongestion,omitempty"`
	VehicleStatus           string                   `json:"VehicleStatus,omitempty"`
	VehicleRef              string                   `json:"VehicleRef"`
	IsCompleteStopSequence  bool                     `json:"IsCompleteStopSequence"`
}

// FramedVehicleJourneyRef identifies one run of a vehicle on a route
type FramedVehicleJourneyRef struct {
	DataFrameRef           string `json:"DataFrameRef"`
	DatedVehicleJourneyRef string `json:"DatedVehicleJourneyRef"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

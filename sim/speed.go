package sim

import (
	"math"

	"github.com/theoremus-urban-solutions/routesim/route"
)

// SpeedConfig tunes the speed model. Values are used as given; start from
// DefaultSpeedConfig and override what you need.
type SpeedConfig struct {
	BaseRate            float64 // progress per second at multiplier 1
	StopThreshold       float64 // multiplier below which a vehicle counts as stopped
	SlowdownWindow      float64 // half-width of the localT window around the segment midpoint
	SlowdownProbability float64
	SlowdownFactor      float64
	MinLengthFactor     float64 // <= 0 disables the lower clamp
	MaxLengthFactor     float64 // <= 0 disables the upper clamp
	NominalSpeedKMH     float64 // display speed at multiplier 1
}

// DefaultSpeedConfig returns the stock tuning
func DefaultSpeedConfig() SpeedConfig {
	return SpeedConfig{
		BaseRate:            0.01,
		StopThreshold:       0.2,
		SlowdownWindow:      0.1,
		SlowdownProbability: 0.3,
		SlowdownFactor:      0.1,
		MinLengthFactor:     0.25,
		MaxLengthFactor:     4,
		NominalSpeedKMH:     60,
	}
}

// Step is the outcome of one speed model evaluation
type Step struct {
	Progress      float64
	SpeedEstimate float64
	Multiplier    float64
	Status        Status
	Completed     bool // true only on the evaluation that first reaches the end of a OneShot route
	Warnings      []string
}

// SpeedModel computes how far a vehicle moves in one tick
type SpeedModel struct {
	cfg SpeedConfig
}

func NewSpeedModel(cfg SpeedConfig) *SpeedModel {
	return &SpeedModel{cfg: cfg}
}

// Config returns the tuning the model was built with.
func (m *SpeedModel) Config() SpeedConfig { return m.cfg }

// LengthFactor scales progress speed inversely to the segment's length so that
// ground speed stays comparable between short and long segments.
func (m *SpeedModel) LengthFactor(r *route.Route, seg int) float64 {
	mean := r.MeanSegmentKM()
	if mean <= 0 {
		return 1
	}
	f := 1.0
	segKM := r.SegmentKM(seg)
	switch {
	case segKM > 0:
		f = mean / segKM
	case m.cfg.MaxLengthFactor > 0:
		f = m.cfg.MaxLengthFactor
	}
	if m.cfg.MinLengthFactor > 0 && f < m.cfg.MinLengthFactor {
		f = m.cfg.MinLengthFactor
	}
	if m.cfg.MaxLengthFactor > 0 && f > m.cfg.MaxLengthFactor {
		f = m.cfg.MaxLengthFactor
	}
	return f
}

// SegmentMultiplier is the deterministic part of the multiplier: route base,
// the segment override and the length factor.
func (m *SpeedModel) SegmentMultiplier(r *route.Route, seg int) float64 {
	return r.SpeedProfile.Base * r.SpeedProfile.OverrideFor(seg) * m.LengthFactor(r, seg)
}

// NextProgress advances v along r by elapsedSeconds.
func (m *SpeedModel) NextProgress(r *route.Route, v *VehicleState, elapsedSeconds float64, rng RNG) Step {
	var step Step

	progress := v.Progress
	if bad(progress) || progress < 0 {
		step.Warnings = append(step.Warnings, WarningInvalidProgress)
		progress = 0
	}
	if progress >= 1 {
		if v.Mode == OneShot {
			return Step{Progress: 1, Status: Completed, Warnings: step.Warnings}
		}
		progress = math.Mod(progress, 1)
	}

	if r.IsDegenerate() {
		step.Progress = 0
		step.Status = Stopped
		return step
	}

	seg, localT := SegmentAt(r, progress)
	mult := m.SegmentMultiplier(r, seg)
	if math.Abs(localT-0.5) <= m.cfg.SlowdownWindow && m.cfg.SlowdownProbability > 0 && rng != nil {
		if rng.Float64() < m.cfg.SlowdownProbability {
			mult *= m.cfg.SlowdownFactor
		}
	}
	if bad(mult) || mult < 0 {
		step.Warnings = append(step.Warnings, WarningInvalidMultiplier)
		mult = 0
	}
	if bad(elapsedSeconds) || elapsedSeconds < 0 {
		step.Warnings = append(step.Warnings, WarningInvalidElapsed)
		elapsedSeconds = 0
	}

	delta := m.cfg.BaseRate * mult * elapsedSeconds
	if bad(delta) || delta < 0 {
		step.Warnings = append(step.Warnings, WarningInvalidDelta)
		delta = 0
	}

	step.Multiplier = mult
	step.SpeedEstimate = mult * m.cfg.NominalSpeedKMH
	if bad(step.SpeedEstimate) || step.SpeedEstimate < 0 {
		step.SpeedEstimate = 0
	}
	step.Status = Moving
	if mult < m.cfg.StopThreshold {
		step.Status = Stopped
	}

	next := progress + delta
	if v.Mode == OneShot {
		if next >= 1 {
			step.Progress = 1
			step.Status = Completed
			step.Completed = true
			return step
		}
		step.Progress = next
		return step
	}
	step.Progress = math.Mod(next, 1)
	return step
}

func bad(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }

// Package sim is the position-simulation engine.
//
// It advances vehicles along routes from the route package once per clock
// tick and publishes a Snapshot of every active vehicle to subscribers.
//
// The pure parts are Interpolate, SegmentAt, ResolveLabel and
// SpeedModel.NextProgress. Engine owns all VehicleState values and mutates
// them only inside Tick. Driver is the periodic loop that calls Tick on a
// Clock, which can be a ManualClock in tests.
//
// Given the same catalog, seed, start requests and tick timestamps, two
// engines emit identical snapshot sequences.
package sim

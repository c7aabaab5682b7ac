// Package gtfsrt encodes simulation snapshots as a GTFS-Realtime
// VehiclePositions feed.
//
// Each active vehicle becomes one FeedEntity carrying a VehiclePosition with
// its trip (route id plus a per-vehicle trip id), position, bearing, speed in
// m/s, stop status, congestion level and occupancy. The feed is always a
// FULL_DATASET snapshot of the vehicles currently on the road.
package gtfsrt

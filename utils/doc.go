// Package utils provides time formatting helpers shared by the SIRI and
// GTFS-RT encoders.
package utils

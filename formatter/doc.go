// Package formatter serializes SIRI VehicleMonitoring responses to JSON and XML
// and wraps deliveries into a complete Siri/ServiceDelivery envelope.
package formatter

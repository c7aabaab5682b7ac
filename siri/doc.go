// Package siri defines the SIRI (Service Interface for Real-time Information)
// VehicleMonitoring types published for simulated vehicles.
//
// SIRI is a European standard (CEN/TS 15531) for real-time public transport
// information. Only the VehicleMonitoringDelivery (VM) module is modelled here;
// each simulated vehicle becomes one VehicleActivity entry.
//
// All types carry JSON tags; XML is written by the formatter package.
package siri

// Package converter turns simulation snapshots into SIRI VehicleMonitoring
// deliveries.
//
// # Usage
//
//	conv := converter.NewConverter(registry, converter.ConverterOptions{
//	    AgencyID: "VNTOURS",
//	    ValidFor: engine.Interval(),
//	})
//	vm := conv.BuildVehicleMonitoring(engine.Snapshots(), time.Now())
//	res := formatter.WrapVehicleMonitoringResponse(vm, "VNTOURS")
//
// # Reference formats
//
// References follow the Nordic SIRI profile the service has always produced:
//
//	LineRef                 {agency}:Line:{route_id}
//	VehicleRef              {agency}:VehicleRef:{vehicle_id}
//	DatedVehicleJourneyRef  {agency}:ServiceJourney:{route_id}-{vehicle_id}
//
// Occupancy is derived from the passenger and capacity metadata supplied when
// the vehicle was started; see OccupancyFor.
package converter

package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/routesim/siri"
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// BuildXML serializes a SIRI response to XML
func (rb *responseBuilder) BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeText(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeText(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery>")
	writeText(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeText(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeText(b, "RecordedAtTime", va.RecordedAtTime)
		writeText(b, "ValidUntilTime", va.ValidUntilTime)
		if p := va.ProgressBetweenStops; p != nil {
			b.WriteString("<ProgressBetweenStops>")
			writeRaw(b, "LinkDistance", strconv.FormatFloat(p.LinkDistance, 'f', 0, 64))
			writeRaw(b, "Percentage", strconv.FormatFloat(p.Percentage, 'f', 2, 64))
			b.WriteString("</ProgressBetweenStops>")
		}
		writeMVJXML(b, va.MonitoredVehicleJourney)
		if ext := va.Extensions; ext != nil {
			b.WriteString("<Extensions>")
			writeText(b, "LocationLabel", ext.LocationLabel)
			writeText(b, "DriverName", ext.DriverName)
			writeRaw(b, "Tick", strconv.FormatInt(ext.Tick, 10))
			b.WriteString("</Extensions>")
		}
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

// writeMVJXML keeps the element order of the SIRI VM schema
func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeText(b, "LineRef", mvj.LineRef)
	writeText(b, "DirectionRef", mvj.DirectionRef)
	if fr := mvj.FramedVehicleJourneyRef; fr != nil {
		b.WriteString("<FramedVehicleJourneyRef>")
		writeText(b, "DataFrameRef", fr.DataFrameRef)
		writeText(b, "DatedVehicleJourneyRef", fr.DatedVehicleJourneyRef)
		b.WriteString("</FramedVehicleJourneyRef>")
	}
	writeText(b, "VehicleMode", mvj.VehicleMode)
	writeText(b, "PublishedLineName", mvj.PublishedLineName)
	writeText(b, "OperatorRef", mvj.OperatorRef)
	writeText(b, "OriginName", mvj.OriginName)
	writeText(b, "DestinationName", mvj.DestinationName)
	writeRaw(b, "Monitored", strconv.FormatBool(mvj.Monitored))
	if mvj.InCongestion != nil {
		writeRaw(b, "InCongestion", strconv.FormatBool(*mvj.InCongestion))
	}
	writeText(b, "DataSource", mvj.DataSource)
	if loc := mvj.VehicleLocation; loc != nil {
		b.WriteString("<VehicleLocation>")
		writeRaw(b, "Longitude", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
		writeRaw(b, "Latitude", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
		b.WriteString("</VehicleLocation>")
	}
	if mvj.Bearing != nil {
		writeRaw(b, "Bearing", strconv.FormatFloat(*mvj.Bearing, 'f', 2, 64))
	}
	if mvj.Velocity != nil {
		writeRaw(b, "Velocity", strconv.Itoa(*mvj.Velocity))
	}
	writeText(b, "Occupancy", mvj.Occupancy)
	writeText(b, "Delay", mvj.Delay)
	writeText(b, "VehicleStatus", mvj.VehicleStatus)
	writeText(b, "VehicleRef", mvj.VehicleRef)
	writeRaw(b, "IsCompleteStopSequence", strconv.FormatBool(mvj.IsCompleteStopSequence))
	b.WriteString("</MonitoredVehicleJourney>")
}

// writeText writes an escaped element, skipping empty values
func writeText(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	writeRaw(b, name, xmlEscape(value))
}

func writeRaw(b *strings.Builder, name, value string) {
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(value)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

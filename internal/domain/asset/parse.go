package asset

import (
	"github.com/tidwall/gjson"
)

// Parsing helpers for ledger object content. Field content arrives as the
// JSON rendering of move struct fields; numeric u64 fields are encoded as
// strings by the node and option fields as null or nested values.

// ParseAircraft builds an Aircraft from object content fields.
func ParseAircraft(objectID string, fields []byte) Aircraft {
	f := gjson.ParseBytes(fields)
	return Aircraft{
		ID:               objectID,
		TailNumber:       f.Get("tail_number").String(),
		Model:            f.Get("model").String(),
		Manufacturer:     f.Get("manufacturer").String(),
		ManufactureDate:  f.Get("manufacture_date").Uint(),
		Operator:         f.Get("operator").String(),
		TotalFlightHours: f.Get("total_flight_hours").Uint(),
		TotalCycles:      f.Get("total_cycles").Uint(),
		Status:           f.Get("status").String(),
	}
}

// ParsePart builds a Part from object content fields.
func ParsePart(objectID string, fields []byte) Part {
	f := gjson.ParseBytes(fields)
	return Part{
		ID:                  objectID,
		SerialNumber:        f.Get("serial_number").String(),
		PartType:            f.Get("part_type").String(),
		Manufacturer:        f.Get("manufacturer").String(),
		ManufactureDate:     f.Get("manufacture_date").Uint(),
		MaintenanceInterval: f.Get("maintenance_interval").Uint(),
		MaintenanceDueHours: f.Get("maintenance_due_hours").Uint(),
		TotalFlightHours:    f.Get("total_flight_hours").Uint(),
		ParentID:            optionalID(f.Get("parent_id")),
		AircraftID:          optionalID(f.Get("aircraft_id")),
		Status:              f.Get("status").String(),
		AnomalyCount:        f.Get("anomaly_count").Uint(),
	}
}

// ParseBuilding builds a Building from object content fields.
func ParseBuilding(objectID string, fields []byte) Building {
	f := gjson.ParseBytes(fields)
	return Building{
		ID:               objectID,
		Name:             f.Get("building_name").String(),
		Location:         f.Get("location").String(),
		ConstructionYear: f.Get("construction_year").Uint(),
		BuildingType:     f.Get("building_type").String(),
		NumFloors:        f.Get("num_floors").Uint(),
		SeismicZone:      f.Get("seismic_zone").String(),
		Status:           f.Get("status").String(),
	}
}

// ParseColumn builds a Column from object content fields.
func ParseColumn(objectID string, fields []byte) Column {
	f := gjson.ParseBytes(fields)
	return Column{
		ID:                  objectID,
		ColumnID:            f.Get("column_id").String(),
		FloorLevel:          f.Get("floor_level").Uint(),
		ColumnType:          f.Get("column_type").String(),
		Material:            f.Get("material").String(),
		MaxTiltDegrees:      f.Get("max_tilt_degrees").Uint(),
		MaxVibration:        f.Get("max_vibration").Uint(),
		CrackWidthThreshold: f.Get("crack_width_threshold").Uint(),
		CurrentTilt:         f.Get("current_tilt").Uint(),
		CurrentVibration:    f.Get("current_vibration").Uint(),
		CurrentCrackWidth:   f.Get("current_crack_width").Uint(),
		BuildingID:          optionalID(f.Get("building_id")),
		AnomalyCount:        f.Get("anomaly_count").Uint(),
		Status:              f.Get("status").String(),
	}
}

// optionalID unwraps a move Option<ID> field: null, a plain string, or a
// vec-wrapped single element depending on node version.
func optionalID(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return ""
		}
		return arr[0].String()
	}
	return v.String()
}

// Package telemetry defines sensor readings and their synthetic generation.
package telemetry

import "fmt"

// Well-known sensor kinds. The scheduler accepts any non-empty kind;
// unknown kinds report the unit "unknown".
const (
	KindTemperature = "temperature"
	KindVibration   = "vibration"
	KindPressure    = "pressure"
)

// units maps sensor kinds to their reporting unit.
var units = map[string]string{
	KindTemperature: "celsius",
	KindVibration:   "hz",
	KindPressure:    "psi",
}

// UnitFor returns the reporting unit for a sensor kind.
func UnitFor(kind string) string {
	if unit, ok := units[kind]; ok {
		return unit
	}
	return "unknown"
}

// DefaultBaseValue returns the demo-tuned base value for a kind: hundredths
// of the displayed unit (75.00°C, 2.50 Hz, 35.00 PSI). Unknown kinds get a
// round default.
func DefaultBaseValue(kind string) float64 {
	switch kind {
	case KindTemperature:
		return 7500
	case KindVibration:
		return 250
	case KindPressure:
		return 3500
	default:
		return 1000
	}
}

// SensorID derives the stable sensor identifier for an asset and kind. Only
// the first eight characters of the asset id participate, matching the
// identifiers recorded on the ledger.
func SensorID(assetID, kind string) string {
	short := assetID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-sensor-%s", kind, short)
}

// Reading is one telemetry sample for one tick. Immutable once produced:
// written once to the ledger, broadcast once.
type Reading struct {
	AssetID   string `json:"assetId"`
	SensorID  string `json:"sensorId"`
	Kind      string `json:"kind"`
	Value     int64  `json:"value"`
	Unit      string `json:"unit"`
	IsAnomaly bool   `json:"isAnomaly"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

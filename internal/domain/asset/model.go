// Package asset defines typed read-only views of the asset records stored
// on the ledger. The service never mutates these fields directly; all
// writes go through transaction submission.
package asset

// Aircraft statuses as recorded by the contract.
const (
	StatusActive          = "active"
	StatusMaintenance     = "maintenance"
	StatusUnderInspection = "under_inspection"
	StatusRetired         = "retired"
)

// Aircraft is an airframe record.
type Aircraft struct {
	ID               string `json:"id"`
	TailNumber       string `json:"tailNumber"`
	Model            string `json:"model"`
	Manufacturer     string `json:"manufacturer"`
	ManufactureDate  uint64 `json:"manufactureDate"`
	Operator         string `json:"operator,omitempty"`
	TotalFlightHours uint64 `json:"totalFlightHours"`
	TotalCycles      uint64 `json:"totalCycles"`
	Status           string `json:"status"`
}

// Part is a serialized aircraft component. ParentID and AircraftID carry
// the attachment linkage; both are empty for unattached spares.
type Part struct {
	ID                  string `json:"id"`
	SerialNumber        string `json:"serialNumber"`
	PartType            string `json:"partType"`
	Manufacturer        string `json:"manufacturer"`
	ManufactureDate     uint64 `json:"manufactureDate"`
	MaintenanceInterval uint64 `json:"maintenanceInterval"`
	MaintenanceDueHours uint64 `json:"maintenanceDueHours"`
	TotalFlightHours    uint64 `json:"totalFlightHours"`
	ParentID            string `json:"parentId,omitempty"`
	AircraftID          string `json:"aircraftId,omitempty"`
	Status              string `json:"status"`
	AnomalyCount        uint64 `json:"anomalyCount"`
}

// Building is a tracked structure.
type Building struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Location         string `json:"location"`
	ConstructionYear uint64 `json:"constructionYear"`
	BuildingType     string `json:"buildingType"`
	NumFloors        uint64 `json:"numFloors"`
	SeismicZone      string `json:"seismicZone"`
	Status           string `json:"status"`
}

// Column is an instrumented structural column, optionally attached to a
// building. Thresholds and current values use tenths of the displayed
// unit, matching the contract encoding.
type Column struct {
	ID                  string `json:"id"`
	ColumnID            string `json:"columnId"`
	FloorLevel          uint64 `json:"floorLevel"`
	ColumnType          string `json:"columnType"`
	Material            string `json:"material"`
	MaxTiltDegrees      uint64 `json:"maxTiltDegrees"`
	MaxVibration        uint64 `json:"maxVibration"`
	CrackWidthThreshold uint64 `json:"crackWidthThreshold"`
	CurrentTilt         uint64 `json:"currentTilt"`
	CurrentVibration    uint64 `json:"currentVibration"`
	CurrentCrackWidth   uint64 `json:"currentCrackWidth"`
	BuildingID          string `json:"buildingId,omitempty"`
	AnomalyCount        uint64 `json:"anomalyCount"`
	Status              string `json:"status"`
}

package assets

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/unw4/TrustChain/internal/domain/asset"
	"github.com/unw4/TrustChain/internal/sui"
)

// CreatePartRequest carries the fields for a new part record.
type CreatePartRequest struct {
	SerialNumber        string `json:"serialNumber"`
	PartType            string `json:"partType"`
	Manufacturer        string `json:"manufacturer"`
	ManufactureDate     uint64 `json:"manufactureDate"`
	MaintenanceInterval uint64 `json:"maintenanceInterval"`
}

// CreatePart registers a new part on the ledger.
func (s *Service) CreatePart(ctx context.Context, req CreatePartRequest) (CommandResult, error) {
	if err := sui.RequireField("serialNumber", req.SerialNumber); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("partType", req.PartType); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("manufacturer", req.Manufacturer); err != nil {
		return CommandResult{}, err
	}
	if req.ManufactureDate == 0 {
		return CommandResult{}, sui.InvalidParameterf("manufactureDate is required")
	}
	if req.MaintenanceInterval == 0 {
		return CommandResult{}, sui.InvalidParameterf("maintenanceInterval is required")
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("part", "create_part"),
		sui.PureString(req.SerialNumber),
		sui.PureString(req.PartType),
		sui.PureString(req.Manufacturer),
		sui.PureU64(req.ManufactureDate),
		sui.PureU64(req.MaintenanceInterval),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	objectID, ok := sui.CreatedObjectID(result.ObjectChanges, "::part::Part")
	if !ok {
		return CommandResult{}, sui.InvalidParameterf("transaction confirmed but no part object was created")
	}

	s.log.WithField("part_id", objectID).Info("part created")
	return CommandResult{Success: true, Digest: result.Digest, ObjectID: objectID}, nil
}

// GetPart fetches one part record.
func (s *Service) GetPart(ctx context.Context, id string) (asset.Part, error) {
	obj, err := s.gw.GetObject(ctx, id)
	if err != nil {
		return asset.Part{}, err
	}
	return asset.ParsePart(obj.ObjectID, fields(obj)), nil
}

// ListPartsByOwner lists all parts owned by an address.
func (s *Service) ListPartsByOwner(ctx context.Context, owner string) ([]asset.Part, error) {
	objects, err := s.gw.GetOwnedObjects(ctx, owner, "part::Part")
	if err != nil {
		return nil, err
	}

	parts := make([]asset.Part, 0, len(objects))
	for _, obj := range objects {
		parts = append(parts, asset.ParsePart(obj.ObjectID, fields(&obj)))
	}
	return parts, nil
}

// AttachPart links a part to a parent assembly and its owning aircraft.
func (s *Service) AttachPart(ctx context.Context, partID, parentID, aircraftID string) (CommandResult, error) {
	if err := sui.RequireField("partId", partID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("parentId", parentID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("aircraftId", aircraftID); err != nil {
		return CommandResult{}, err
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("part", "attach_to_parent"),
		sui.Object(partID),
		sui.PureID(parentID),
		sui.PureID(aircraftID),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("part_id", partID).
		WithField("parent_id", parentID).
		Info("part attached")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// TransferPart moves a part to another aircraft: when currently attached it
// is detached and re-attached within the same transaction block.
func (s *Service) TransferPart(ctx context.Context, partID, toAircraftID string) (CommandResult, error) {
	if err := sui.RequireField("partId", partID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("aircraftId", toAircraftID); err != nil {
		return CommandResult{}, err
	}

	part, err := s.GetPart(ctx, partID)
	if err != nil {
		return CommandResult{}, err
	}

	block := sui.NewTxBuilder()
	if part.AircraftID != "" {
		block.MoveCall(s.gw.Target("part", "detach_from_aircraft"), sui.Object(partID))
	}
	block.MoveCall(s.gw.Target("part", "attach_to_parent"),
		sui.Object(partID),
		sui.PureID(toAircraftID),
		sui.PureID(toAircraftID),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("part_id", partID).
		WithField("aircraft_id", toAircraftID).
		Info("part transferred")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// UpdatePartFlightHours adds flight hours to a single part.
func (s *Service) UpdatePartFlightHours(ctx context.Context, partID string, additionalHours uint64) (CommandResult, error) {
	if err := sui.RequireField("partId", partID); err != nil {
		return CommandResult{}, err
	}
	if additionalHours == 0 {
		return CommandResult{}, sui.InvalidParameterf("additionalHours must be positive")
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("part", "update_flight_hours"),
		sui.Object(partID),
		sui.PureU64(additionalHours),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("part_id", partID).
		WithField("hours", additionalHours).
		Info("part flight hours updated")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// PerformMaintenance records completed maintenance and the next due horizon.
func (s *Service) PerformMaintenance(ctx context.Context, partID, maintenanceType string, nextMaintenanceHours uint64) (CommandResult, error) {
	if err := sui.RequireField("partId", partID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("maintenanceType", maintenanceType); err != nil {
		return CommandResult{}, err
	}
	if nextMaintenanceHours == 0 {
		return CommandResult{}, sui.InvalidParameterf("nextMaintenanceHours must be positive")
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("part", "perform_maintenance"),
		sui.Object(partID),
		sui.PureString(maintenanceType),
		sui.PureU64(s.nowMillis()),
		sui.PureU64(nextMaintenanceHours),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("part_id", partID).
		WithField("maintenance_type", maintenanceType).
		Info("maintenance performed")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// ActivatePart marks a part as in service.
func (s *Service) ActivatePart(ctx context.Context, partID string) (CommandResult, error) {
	if err := sui.RequireField("partId", partID); err != nil {
		return CommandResult{}, err
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("part", "mark_active"), sui.Object(partID))

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("part_id", partID).Info("part marked active")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// PartReadings returns recent sensor readings recorded for a part, newest
// first, reconstructed from the contract's SensorDataAdded events.
func (s *Service) PartReadings(ctx context.Context, partID string, limit int) ([]json.RawMessage, error) {
	if err := sui.RequireField("partId", partID); err != nil {
		return nil, err
	}

	events, err := s.gw.QueryEvents(ctx, "part::SensorDataAdded", limit)
	if err != nil {
		return nil, err
	}

	readings := make([]json.RawMessage, 0, len(events))
	for _, ev := range events {
		if gjson.GetBytes(ev.ParsedJSON, "part_id").String() == partID {
			readings = append(readings, ev.ParsedJSON)
		}
	}
	return readings, nil
}

package assets

import (
	"context"

	"github.com/unw4/TrustChain/internal/domain/asset"
	"github.com/unw4/TrustChain/internal/sui"
)

// CreateAircraftRequest carries the fields for a new airframe record.
type CreateAircraftRequest struct {
	TailNumber      string `json:"tailNumber"`
	Model           string `json:"model"`
	Manufacturer    string `json:"manufacturer"`
	ManufactureDate uint64 `json:"manufactureDate"`
}

// CreateAircraft registers a new aircraft on the ledger.
func (s *Service) CreateAircraft(ctx context.Context, req CreateAircraftRequest) (CommandResult, error) {
	if err := sui.RequireField("tailNumber", req.TailNumber); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("model", req.Model); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("manufacturer", req.Manufacturer); err != nil {
		return CommandResult{}, err
	}
	if req.ManufactureDate == 0 {
		return CommandResult{}, sui.InvalidParameterf("manufactureDate is required")
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("aircraft", "create_aircraft"),
		sui.PureString(req.TailNumber),
		sui.PureString(req.Model),
		sui.PureString(req.Manufacturer),
		sui.PureU64(req.ManufactureDate),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	objectID, ok := sui.CreatedObjectID(result.ObjectChanges, "::aircraft::Aircraft")
	if !ok {
		return CommandResult{}, sui.InvalidParameterf("transaction confirmed but no aircraft object was created")
	}

	s.log.WithField("aircraft_id", objectID).Info("aircraft created")
	return CommandResult{Success: true, Digest: result.Digest, ObjectID: objectID}, nil
}

// GetAircraft fetches one aircraft record.
func (s *Service) GetAircraft(ctx context.Context, id string) (asset.Aircraft, error) {
	obj, err := s.gw.GetObject(ctx, id)
	if err != nil {
		return asset.Aircraft{}, err
	}
	return asset.ParseAircraft(obj.ObjectID, fields(obj)), nil
}

// ListAircraftByOwner lists all aircraft owned by an address.
func (s *Service) ListAircraftByOwner(ctx context.Context, owner string) ([]asset.Aircraft, error) {
	objects, err := s.gw.GetOwnedObjects(ctx, owner, "aircraft::Aircraft")
	if err != nil {
		return nil, err
	}

	aircraft := make([]asset.Aircraft, 0, len(objects))
	for _, obj := range objects {
		aircraft = append(aircraft, asset.ParseAircraft(obj.ObjectID, fields(&obj)))
	}
	return aircraft, nil
}

// CompleteFlight records flight hours on the aircraft and on every part
// currently attached to it, all within one atomic transaction block.
func (s *Service) CompleteFlight(ctx context.Context, aircraftID string, hours uint64) (CommandResult, error) {
	if err := sui.RequireField("aircraftId", aircraftID); err != nil {
		return CommandResult{}, err
	}
	if hours == 0 {
		return CommandResult{}, sui.InvalidParameterf("flightHours must be positive")
	}

	parts, err := s.attachedParts(ctx, aircraftID)
	if err != nil {
		return CommandResult{}, err
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("aircraft", "complete_flight"),
		sui.Object(aircraftID),
		sui.PureU64(hours),
		sui.PureU64(s.nowMillis()),
	)
	for _, part := range parts {
		block.MoveCall(s.gw.Target("part", "update_flight_hours"),
			sui.Object(part.ID),
			sui.PureU64(hours),
		)
	}

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("aircraft_id", aircraftID).
		WithField("hours", hours).
		WithField("parts_updated", len(parts)).
		Info("flight completed")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// ChangeAircraftStatus transitions an aircraft between operational states.
func (s *Service) ChangeAircraftStatus(ctx context.Context, aircraftID, status string) (CommandResult, error) {
	if err := sui.RequireField("aircraftId", aircraftID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("status", status); err != nil {
		return CommandResult{}, err
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("aircraft", "change_status"),
		sui.Object(aircraftID),
		sui.PureString(status),
		sui.PureU64(s.nowMillis()),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.log.WithField("aircraft_id", aircraftID).
		WithField("status", status).
		Info("aircraft status changed")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// attachedParts returns the service-owned parts attached to an aircraft.
func (s *Service) attachedParts(ctx context.Context, aircraftID string) ([]asset.Part, error) {
	objects, err := s.gw.GetOwnedObjects(ctx, s.gw.Address(), "part::Part")
	if err != nil {
		return nil, err
	}

	var attached []asset.Part
	for _, obj := range objects {
		part := asset.ParsePart(obj.ObjectID, fields(&obj))
		if part.AircraftID == aircraftID {
			attached = append(attached, part)
		}
	}
	return attached, nil
}

package assets

import (
	"context"

	"github.com/unw4/TrustChain/internal/domain/asset"
	"github.com/unw4/TrustChain/internal/sui"
)

// CreateColumnRequest carries the fields for a new structural column.
// Thresholds use tenths of the displayed unit, matching the contract.
// When BuildingID is set the column is attached within the same block.
type CreateColumnRequest struct {
	ColumnID            string `json:"columnId"`
	FloorLevel          uint64 `json:"floorLevel"`
	ColumnType          string `json:"columnType"`
	Material            string `json:"material"`
	MaxTiltDegrees      uint64 `json:"maxTiltDegrees"`
	MaxVibration        uint64 `json:"maxVibration"`
	CrackWidthThreshold uint64 `json:"crackWidthThreshold"`
	BuildingID          string `json:"buildingId,omitempty"`
}

// CreateColumn registers a new structural column, optionally chaining the
// attachment to its building onto the creation result.
func (s *Service) CreateColumn(ctx context.Context, req CreateColumnRequest) (CommandResult, error) {
	if err := sui.RequireField("columnId", req.ColumnID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("columnType", req.ColumnType); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("material", req.Material); err != nil {
		return CommandResult{}, err
	}
	if req.MaxTiltDegrees == 0 || req.MaxVibration == 0 || req.CrackWidthThreshold == 0 {
		return CommandResult{}, sui.InvalidParameterf("tilt, vibration, and crack thresholds are required")
	}

	block := sui.NewTxBuilder()
	created := block.MoveCall(s.gw.Target("column", "create_column"),
		sui.PureString(req.ColumnID),
		sui.PureU64(req.FloorLevel),
		sui.PureString(req.ColumnType),
		sui.PureString(req.Material),
		sui.PureU64(s.nowMillis()),
		sui.PureU64(req.MaxTiltDegrees),
		sui.PureU64(req.MaxVibration),
		sui.PureU64(req.CrackWidthThreshold),
	)
	if req.BuildingID != "" {
		block.MoveCall(s.gw.Target("column", "attach_to_building"),
			created,
			sui.PureID(req.BuildingID),
		)
	}

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	objectID, ok := sui.CreatedObjectID(result.ObjectChanges, "::column::Column")
	if !ok {
		return CommandResult{}, sui.InvalidParameterf("transaction confirmed but no column object was created")
	}

	s.log.WithField("column_id", objectID).
		WithField("building_id", req.BuildingID).
		Info("column created")
	return CommandResult{Success: true, Digest: result.Digest, ObjectID: objectID}, nil
}

// GetColumn fetches one column record.
func (s *Service) GetColumn(ctx context.Context, id string) (asset.Column, error) {
	obj, err := s.gw.GetObject(ctx, id)
	if err != nil {
		return asset.Column{}, err
	}
	return asset.ParseColumn(obj.ObjectID, fields(obj)), nil
}

// ListColumnsByOwner lists all columns owned by an address.
func (s *Service) ListColumnsByOwner(ctx context.Context, owner string) ([]asset.Column, error) {
	objects, err := s.gw.GetOwnedObjects(ctx, owner, "column::Column")
	if err != nil {
		return nil, err
	}

	columns := make([]asset.Column, 0, len(objects))
	for _, obj := range objects {
		columns = append(columns, asset.ParseColumn(obj.ObjectID, fields(&obj)))
	}
	return columns, nil
}

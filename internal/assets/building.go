package assets

import (
	"context"

	"github.com/unw4/TrustChain/internal/domain/asset"
	"github.com/unw4/TrustChain/internal/sui"
)

// CreateBuildingRequest carries the fields for a new building record.
type CreateBuildingRequest struct {
	Name             string `json:"name"`
	Location         string `json:"location"`
	ConstructionYear uint64 `json:"constructionYear"`
	BuildingType     string `json:"buildingType"`
	NumFloors        uint64 `json:"numFloors"`
	SeismicZone      string `json:"seismicZone"`
}

// CreateBuilding registers a new building on the ledger.
func (s *Service) CreateBuilding(ctx context.Context, req CreateBuildingRequest) (CommandResult, error) {
	if err := sui.RequireField("name", req.Name); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("location", req.Location); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("buildingType", req.BuildingType); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("seismicZone", req.SeismicZone); err != nil {
		return CommandResult{}, err
	}
	if req.ConstructionYear == 0 {
		return CommandResult{}, sui.InvalidParameterf("constructionYear is required")
	}
	if req.NumFloors == 0 {
		return CommandResult{}, sui.InvalidParameterf("numFloors is required")
	}

	block := sui.NewTxBuilder()
	block.MoveCall(s.gw.Target("building", "create_building"),
		sui.PureString(req.Name),
		sui.PureString(req.Location),
		sui.PureU64(req.ConstructionYear),
		sui.PureString(req.BuildingType),
		sui.PureU64(req.NumFloors),
		sui.PureString(req.SeismicZone),
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	objectID, ok := sui.CreatedObjectID(result.ObjectChanges, "::building::Building")
	if !ok {
		return CommandResult{}, sui.InvalidParameterf("transaction confirmed but no building object was created")
	}

	s.log.WithField("building_id", objectID).Info("building created")
	return CommandResult{Success: true, Digest: result.Digest, ObjectID: objectID}, nil
}

// GetBuilding fetches one building record.
func (s *Service) GetBuilding(ctx context.Context, id string) (asset.Building, error) {
	obj, err := s.gw.GetObject(ctx, id)
	if err != nil {
		return asset.Building{}, err
	}
	return asset.ParseBuilding(obj.ObjectID, fields(obj)), nil
}

// ListBuildingsByOwner lists all buildings owned by an address.
func (s *Service) ListBuildingsByOwner(ctx context.Context, owner string) ([]asset.Building, error) {
	objects, err := s.gw.GetOwnedObjects(ctx, owner, "building::Building")
	if err != nil {
		return nil, err
	}

	buildings := make([]asset.Building, 0, len(objects))
	for _, obj := range objects {
		buildings = append(buildings, asset.ParseBuilding(obj.ObjectID, fields(&obj)))
	}
	return buildings, nil
}

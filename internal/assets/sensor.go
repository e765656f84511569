package assets

import (
	"context"
	"strings"

	"github.com/unw4/TrustChain/internal/domain/telemetry"
	"github.com/unw4/TrustChain/internal/fanout"
	"github.com/unw4/TrustChain/internal/scheduler"
	"github.com/unw4/TrustChain/internal/sui"
)

// RecordReadingRequest carries a manually submitted sensor reading.
type RecordReadingRequest struct {
	AssetID   string `json:"assetId"`
	SensorID  string `json:"sensorId"`
	Kind      string `json:"kind"`
	Value     uint64 `json:"value"`
	Unit      string `json:"unit"`
	IsAnomaly bool   `json:"isAnomaly"`
}

// RecordReading writes one externally supplied reading to the ledger and,
// after confirmation, broadcasts it to the asset's live viewers.
func (s *Service) RecordReading(ctx context.Context, req RecordReadingRequest) (CommandResult, error) {
	if err := sui.RequireField("assetId", req.AssetID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("sensorId", req.SensorID); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("kind", req.Kind); err != nil {
		return CommandResult{}, err
	}
	if err := sui.RequireField("unit", req.Unit); err != nil {
		return CommandResult{}, err
	}

	module, err := s.sensorModule(ctx, req.AssetID)
	if err != nil {
		return CommandResult{}, err
	}

	reading := telemetry.Reading{
		AssetID:   req.AssetID,
		SensorID:  req.SensorID,
		Kind:      req.Kind,
		Value:     int64(req.Value),
		Unit:      req.Unit,
		IsAnomaly: req.IsAnomaly,
		Timestamp: s.now().UnixMilli(),
	}

	block := sui.NewTxBuilder()
	ref := block.MoveCall(s.gw.Target("sensor_data", "new_reading"),
		sui.PureString(reading.SensorID),
		sui.PureU64(uint64(reading.Timestamp)),
		sui.PureString(reading.Kind),
		sui.PureU64(req.Value),
		sui.PureString(reading.Unit),
		sui.PureBool(reading.IsAnomaly),
	)
	block.MoveCall(s.gw.Target(module, "add_sensor_reading"),
		sui.Object(req.AssetID),
		ref,
	)

	result, err := s.gw.Submit(ctx, block)
	if err != nil {
		return CommandResult{}, err
	}

	s.hub.Publish(req.AssetID, fanout.Event{Type: fanout.EventReading, Reading: reading})
	if reading.IsAnomaly {
		s.hub.Publish(req.AssetID, fanout.Event{Type: fanout.EventAnomaly, Reading: reading})
	}

	s.log.WithField("asset_id", req.AssetID).
		WithField("sensor_id", req.SensorID).
		Info("sensor reading recorded")
	return CommandResult{Success: true, Digest: result.Digest}, nil
}

// StartSimulationRequest configures a recurring simulation job. Zero-value
// tuning fields fall back to the per-kind defaults. AnomalyProbability is a
// pointer so an explicit 0 (never anomalous) is distinct from absent.
type StartSimulationRequest struct {
	AssetID            string   `json:"assetId"`
	Kind               string   `json:"kind"`
	IntervalMillis     int64    `json:"intervalMillis"`
	BaseValue          float64  `json:"baseValue,omitempty"`
	Variance           float64  `json:"variance,omitempty"`
	AnomalyProbability *float64 `json:"anomalyProbability,omitempty"`
}

// StartSimulation creates or replaces the recurring simulation job for
// (assetId, kind). The asset must exist on the ledger; its record type
// decides which contract module receives the readings.
func (s *Service) StartSimulation(ctx context.Context, req StartSimulationRequest) (scheduler.Job, error) {
	if err := sui.RequireField("assetId", req.AssetID); err != nil {
		return scheduler.Job{}, err
	}
	if err := sui.RequireField("kind", req.Kind); err != nil {
		return scheduler.Job{}, err
	}

	module, err := s.sensorModule(ctx, req.AssetID)
	if err != nil {
		return scheduler.Job{}, err
	}

	anomalyProbability := telemetry.DefaultAnomalyProbability
	if req.AnomalyProbability != nil {
		anomalyProbability = *req.AnomalyProbability
	}

	job := scheduler.Job{
		AssetID:            req.AssetID,
		Kind:               req.Kind,
		TargetModule:       module,
		BaseValue:          req.BaseValue,
		Variance:           req.Variance,
		AnomalyProbability: anomalyProbability,
		IntervalMillis:     req.IntervalMillis,
	}
	return s.sched.AddJob(ctx, job)
}

// StopSimulation removes the recurring simulation job for (assetId, kind).
// Removing a job that does not exist is not an error.
func (s *Service) StopSimulation(ctx context.Context, assetID, kind string) error {
	if err := sui.RequireField("assetId", assetID); err != nil {
		return err
	}
	if err := sui.RequireField("kind", kind); err != nil {
		return err
	}
	return s.sched.RemoveJob(ctx, scheduler.Key{AssetID: assetID, Kind: kind})
}

// ListSimulations returns every registered simulation job.
func (s *Service) ListSimulations(ctx context.Context) ([]scheduler.Job, error) {
	return s.sched.ListJobs(ctx)
}

// sensorModule resolves which contract module holds add_sensor_reading for
// the asset, from its on-ledger record type.
func (s *Service) sensorModule(ctx context.Context, assetID string) (string, error) {
	obj, err := s.gw.GetObject(ctx, assetID)
	if err != nil {
		return "", err
	}
	switch {
	case strings.Contains(obj.Type, "::column::Column"):
		return "column", nil
	default:
		return "part", nil
	}
}

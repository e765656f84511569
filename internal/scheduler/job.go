// Package scheduler maintains recurring sensor-simulation jobs and drives
// their periodic execution: each tick generates a synthetic reading,
// records it on the ledger, and fans it out to live viewers.
package scheduler

import (
	"time"

	"github.com/unw4/TrustChain/internal/domain/telemetry"
	"github.com/unw4/TrustChain/internal/sui"
)

// Key identifies a job: at most one enabled job exists per key at any time.
type Key struct {
	AssetID string `json:"assetId"`
	Kind    string `json:"kind"`
}

// Job is one recurring simulation task. Owned exclusively by the
// Scheduler; callers pass copies in and out.
type Job struct {
	AssetID            string    `json:"assetId"`
	Kind               string    `json:"kind"`
	TargetModule       string    `json:"targetModule"` // contract module holding add_sensor_reading
	BaseValue          float64   `json:"baseValue"`
	Variance           float64   `json:"variance"`
	AnomalyProbability float64   `json:"anomalyProbability"`
	IntervalMillis     int64     `json:"intervalMillis"`
	Enabled            bool      `json:"enabled"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Key returns the job's identity.
func (j Job) Key() Key {
	return Key{AssetID: j.AssetID, Kind: j.Kind}
}

// Interval returns the tick interval as a duration.
func (j Job) Interval() time.Duration {
	return time.Duration(j.IntervalMillis) * time.Millisecond
}

// normalize fills defaults and validates. Returns ErrInvalidParameter for
// caller mistakes; never mutates the receiver's identity.
func (j Job) normalize(now time.Time) (Job, error) {
	if j.AssetID == "" {
		return Job{}, sui.InvalidParameterf("asset id is required")
	}
	if j.Kind == "" {
		return Job{}, sui.InvalidParameterf("sensor kind is required")
	}
	if j.IntervalMillis <= 0 {
		return Job{}, sui.InvalidParameterf("interval must be positive, got %dms", j.IntervalMillis)
	}
	if j.AnomalyProbability < 0 || j.AnomalyProbability > 1 {
		return Job{}, sui.InvalidParameterf("anomaly probability must be in [0,1], got %v", j.AnomalyProbability)
	}
	if j.Variance < 0 {
		return Job{}, sui.InvalidParameterf("variance must be non-negative, got %v", j.Variance)
	}

	if j.TargetModule == "" {
		j.TargetModule = "part"
	}
	if j.BaseValue == 0 {
		j.BaseValue = telemetry.DefaultBaseValue(j.Kind)
	}
	if j.Variance == 0 {
		j.Variance = j.BaseValue * 0.1
	}

	j.Enabled = true
	j.UpdatedAt = now.UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = j.UpdatedAt
	}
	return j, nil
}

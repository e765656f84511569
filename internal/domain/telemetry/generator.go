package telemetry

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// DefaultAnomalyProbability is the demo-tuned chance of an anomalous tick.
const DefaultAnomalyProbability = 0.05

// DefaultAnomalyFactor amplifies anomalous values before truncation.
const DefaultAnomalyFactor = 1.5

// Generator produces synthetic readings. The zero value is not usable;
// construct with NewGenerator. Safe for concurrent use.
type Generator struct {
	mu            sync.Mutex
	rng           *rand.Rand
	anomalyFactor float64
	now           func() time.Time
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithRandSource injects a deterministic random source.
func WithRandSource(src rand.Source) GeneratorOption {
	return func(g *Generator) { g.rng = rand.New(src) }
}

// WithAnomalyFactor overrides the anomaly amplification factor.
func WithAnomalyFactor(factor float64) GeneratorOption {
	return func(g *Generator) {
		if factor > 0 {
			g.anomalyFactor = factor
		}
	}
}

// WithClock injects a time source.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a reading generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		anomalyFactor: DefaultAnomalyFactor,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Params describes the distribution a reading is drawn from.
type Params struct {
	BaseValue          float64
	Variance           float64
	AnomalyProbability float64
}

// Generate draws one reading for the asset: base ± uniform variance, an
// independent anomaly draw, anomalous values amplified before the floor.
func (g *Generator) Generate(assetID, kind string, p Params) Reading {
	g.mu.Lock()
	value := p.BaseValue + (g.rng.Float64()*2-1)*p.Variance
	isAnomaly := g.rng.Float64() < p.AnomalyProbability
	g.mu.Unlock()

	if isAnomaly {
		value *= g.anomalyFactor
	}
	// The ledger stores values as u64; clamp here so the broadcast copy
	// matches what gets written.
	if value < 0 {
		value = 0
	}

	return Reading{
		AssetID:   assetID,
		SensorID:  SensorID(assetID, kind),
		Kind:      kind,
		Value:     int64(math.Floor(value)),
		Unit:      UnitFor(kind),
		IsAnomaly: isAnomaly,
		Timestamp: g.now().UnixMilli(),
	}
}

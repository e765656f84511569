package telemetry

import (
	"math/rand"
	"testing"
	"time"
)

func TestSensorID(t *testing.T) {
	id := SensorID("0x1234567890abcdef", "temperature")
	if id != "temperature-sensor-0x123456" {
		t.Fatalf("unexpected sensor id: %s", id)
	}

	// Short asset ids are used whole.
	id = SensorID("0x12", "pressure")
	if id != "pressure-sensor-0x12" {
		t.Fatalf("unexpected sensor id for short asset: %s", id)
	}
}

func TestUnitFor(t *testing.T) {
	cases := map[string]string{
		KindTemperature: "celsius",
		KindVibration:   "hz",
		KindPressure:    "psi",
		"humidity":      "unknown",
	}
	for kind, want := range cases {
		if got := UnitFor(kind); got != want {
			t.Fatalf("UnitFor(%s) = %s, want %s", kind, got, want)
		}
	}
}

func TestDefaultBaseValue(t *testing.T) {
	if v := DefaultBaseValue(KindTemperature); v != 7500 {
		t.Fatalf("temperature base = %v", v)
	}
	if v := DefaultBaseValue(KindVibration); v != 250 {
		t.Fatalf("vibration base = %v", v)
	}
	if v := DefaultBaseValue(KindPressure); v != 3500 {
		t.Fatalf("pressure base = %v", v)
	}
	if v := DefaultBaseValue("humidity"); v != 1000 {
		t.Fatalf("unknown base = %v", v)
	}
}

func TestGenerateStaysWithinVariance(t *testing.T) {
	g := NewGenerator(WithRandSource(rand.NewSource(1)))
	p := Params{BaseValue: 7500, Variance: 750, AnomalyProbability: 0}

	for i := 0; i < 1000; i++ {
		r := g.Generate("0xabc", KindTemperature, p)
		if r.IsAnomaly {
			t.Fatalf("anomaly produced with zero probability")
		}
		// Floor can take the value one below the open lower bound.
		if r.Value < 6749 || r.Value > 8250 {
			t.Fatalf("value %d outside variance window", r.Value)
		}
	}
}

func TestGenerateAlwaysAnomalous(t *testing.T) {
	g := NewGenerator(WithRandSource(rand.NewSource(7)))
	p := Params{BaseValue: 1000, Variance: 0, AnomalyProbability: 1}

	r := g.Generate("0xabc", KindPressure, p)
	if !r.IsAnomaly {
		t.Fatalf("expected anomaly with probability 1")
	}
	if r.Value != 1500 {
		t.Fatalf("anomalous value = %d, want amplified 1500", r.Value)
	}
}

func TestGenerateAnomalyFactorOverride(t *testing.T) {
	g := NewGenerator(
		WithRandSource(rand.NewSource(7)),
		WithAnomalyFactor(2),
	)
	r := g.Generate("0xabc", KindVibration, Params{BaseValue: 250, AnomalyProbability: 1})
	if r.Value != 500 {
		t.Fatalf("value = %d, want 500 with factor 2", r.Value)
	}
}

func TestGenerateClampsNegativeValues(t *testing.T) {
	g := NewGenerator(WithRandSource(rand.NewSource(7)))
	for i := 0; i < 100; i++ {
		r := g.Generate("0xabc", KindTemperature, Params{BaseValue: -500, Variance: 100, AnomalyProbability: 0.5})
		if r.Value != 0 {
			t.Fatalf("value = %d, want 0 for negative draw", r.Value)
		}
	}
}

func TestGenerateReadingShape(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	g := NewGenerator(
		WithRandSource(rand.NewSource(3)),
		WithClock(func() time.Time { return at }),
	)

	r := g.Generate("0x1234567890", KindVibration, Params{BaseValue: 250, AnomalyProbability: 0})
	if r.AssetID != "0x1234567890" {
		t.Fatalf("asset id = %s", r.AssetID)
	}
	if r.SensorID != "vibration-sensor-0x123456" {
		t.Fatalf("sensor id = %s", r.SensorID)
	}
	if r.Unit != "hz" {
		t.Fatalf("unit = %s", r.Unit)
	}
	if r.Timestamp != at.UnixMilli() {
		t.Fatalf("timestamp = %d", r.Timestamp)
	}
}

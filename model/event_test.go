package model

import "testing"

func TestNewBasicEventValidatesProbability(t *testing.T) {
	if _, err := NewBasicEvent("a", 1.5, nil); err == nil {
		t.Error("expected error for probability > 1")
	}
	if _, err := NewBasicEvent("a", -0.1, nil); err == nil {
		t.Error("expected error for probability < 0")
	}
	be, err := NewBasicEvent("PumpFailsToStart", 0.01, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if be.ID != "pumpfailstostart" {
		t.Errorf("expected lowercased id, got %q", be.ID)
	}
	if be.OrigID != "PumpFailsToStart" {
		t.Errorf("expected original casing preserved, got %q", be.OrigID)
	}
	if !be.IsConstant() {
		t.Error("expected a basic event with no distribution to be constant")
	}
}

func TestBasicEventWithDistribution(t *testing.T) {
	dist := &Distribution{Kind: DistUniform, A: 0.1, B: 0.2}
	be, err := NewBasicEvent("a", 0.15, dist)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if be.IsConstant() {
		t.Error("expected a basic event with an attached distribution to not be constant")
	}

	bad := &Distribution{Kind: DistUniform, A: 0.3, B: 0.2}
	if _, err := NewBasicEvent("b", 0.15, bad); err == nil {
		t.Error("expected error for a >= b in uniform distribution")
	}
}

func TestDistributionValidate(t *testing.T) {
	cases := []struct {
		name string
		dist Distribution
		ok   bool
	}{
		{"uniform ok", Distribution{Kind: DistUniform, A: 0, B: 1}, true},
		{"uniform bad", Distribution{Kind: DistUniform, A: 1, B: 0}, false},
		{"triangular ok", Distribution{Kind: DistTriangular, Lower: 0, Mode: 0.5, Upper: 1}, true},
		{"triangular bad order", Distribution{Kind: DistTriangular, Lower: 0.5, Mode: 0.1, Upper: 1}, false},
		{"normal ok", Distribution{Kind: DistNormal, Mean: 0, Sigma: 1}, true},
		{"normal bad sigma", Distribution{Kind: DistNormal, Mean: 0, Sigma: 0}, false},
		{"gamma ok", Distribution{Kind: DistGamma, Shape: 2, Scale: 1}, true},
		{"beta ok", Distribution{Kind: DistBeta, Alpha: 2, Beta: 3}, true},
		{"weibull ok", Distribution{Kind: DistWeibull, Shape: 1, Scale: 1}, true},
		{"exponential ok", Distribution{Kind: DistExponential, Rate: 0.5}, true},
		{"exponential bad", Distribution{Kind: DistExponential, Rate: 0}, false},
		{"poisson ok", Distribution{Kind: DistPoisson, Mean: 3}, true},
		{"poisson bad", Distribution{Kind: DistPoisson, Mean: -1}, false},
		{"histogram ok", Distribution{Kind: DistHistogram, Intervals: []float64{0, 1, 2}, Weights: []float64{1, 2}}, true},
		{"histogram too few intervals", Distribution{Kind: DistHistogram, Intervals: []float64{0}, Weights: nil}, false},
		{"piecewise ok", Distribution{Kind: DistPiecewiseLinear, Intervals: []float64{0, 1, 2}, Weights: []float64{1, 1, 1}}, true},
	}
	for _, c := range cases {
		err := c.dist.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: expected no error, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected an error, got none", c.name)
		}
	}
}

func TestNewHouseEvent(t *testing.T) {
	he, err := NewHouseEvent("MaintenanceMode", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !he.State {
		t.Error("expected house event state to be true")
	}
	if _, err := NewHouseEvent("  ", false); err == nil {
		t.Error("expected error for blank house event id")
	}
}

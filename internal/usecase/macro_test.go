package usecase

import (
	"testing"

	"MarketPulse/internal/domain/models"
)

func TestMacroUnknownWithoutDominance(t *testing.T) {
	cfg := testConfig(t)
	m := NewMacroScorer(cfg.Thresholds.Macro)

	got := m.Assess(&models.Snapshot{Assets: []models.AssetRecord{asset("BTC", 1, 1)}})
	if got.Score != 50 {
		t.Fatalf("expected baseline 50, got %d", got.Score)
	}
	if got.Regime != models.RegimeUnknown {
		t.Fatalf("expected Unknown regime, got %q", got.Regime)
	}
}

func TestMacroHighDominanceScoresRiskOff(t *testing.T) {
	cfg := testConfig(t)
	m := NewMacroScorer(cfg.Thresholds.Macro)

	snap := &models.Snapshot{
		Assets: []models.AssetRecord{asset("BTC", 1, 1)},
		Global: models.GlobalMacroRecord{BTCDominance: f64(56)},
	}

	got := m.Assess(snap)
	if got.Score != 35 {
		t.Fatalf("expected score 35, got %d", got.Score)
	}
	if got.Regime != models.RegimeRiskOff {
		t.Fatalf("expected Risk-Off, got %q", got.Regime)
	}
	if len(got.Signals) != 1 {
		t.Fatalf("expected one signal, got %v", got.Signals)
	}
}

func TestMacroLowDominanceAndStrongEthScoresRiskOn(t *testing.T) {
	cfg := testConfig(t)
	m := NewMacroScorer(cfg.Thresholds.Macro)

	btc := asset("BTC", 0, 0)
	btc.Price = 100
	eth := asset("ETH", 0, 0)
	eth.Price = 8 // ratio 0.08, above the upper bound

	snap := &models.Snapshot{
		Assets: []models.AssetRecord{btc, eth},
		Global: models.GlobalMacroRecord{BTCDominance: f64(39)},
	}

	got := m.Assess(snap)
	if got.Score != 75 {
		t.Fatalf("expected score 75, got %d", got.Score)
	}
	if got.Regime != models.RegimeRiskOn {
		t.Fatalf("expected Risk-On, got %q", got.Regime)
	}
}

func TestMacroScoreClamped(t *testing.T) {
	cfg := testConfig(t)
	th := cfg.Thresholds.Macro
	th.Baseline = 95
	m := NewMacroScorer(th)

	btc := asset("BTC", 0, 0)
	btc.Price = 100
	eth := asset("ETH", 0, 0)
	eth.Price = 8

	snap := &models.Snapshot{
		Assets: []models.AssetRecord{btc, eth},
		Global: models.GlobalMacroRecord{BTCDominance: f64(39)},
	}

	got := m.Assess(snap)
	if got.Score != 100 {
		t.Fatalf("expected clamp at 100, got %d", got.Score)
	}
}

func TestMacroBtcDropAddsDelta(t *testing.T) {
	cfg := testConfig(t)
	m := NewMacroScorer(cfg.Thresholds.Macro)

	snap := &models.Snapshot{
		Assets: []models.AssetRecord{asset("BTC", -5, 0)},
		Global: models.GlobalMacroRecord{BTCDominance: f64(50)},
	}

	got := m.Assess(snap)
	if got.Score != 60 {
		t.Fatalf("expected 50+10=60, got %d", got.Score)
	}
	if got.Regime != models.RegimeNeutral {
		t.Fatalf("expected Neutral, got %q", got.Regime)
	}
}

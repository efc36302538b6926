package usecase

import (
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
)

func TestComposeActionsSilentWhenNothingFired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Policy = config.PolicyActions
	c := NewComposer(cfg)

	report := &models.RunReport{At: time.Now()}
	text, send := c.Compose(report, &models.Snapshot{})
	if send || text != "" {
		t.Fatalf("actions policy with no alerts must not send, got %q", text)
	}
}

func TestComposeActionsMessage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Policy = config.PolicyActions
	c := NewComposer(cfg)

	report := &models.RunReport{
		At: time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC),
		Alerts: []models.Alert{
			{Topic: "XYZ", Category: models.CategoryAnomaly, Lines: []string{"<b>XYZ</b> anomaly detected"}},
		},
	}
	text, send := c.Compose(report, &models.Snapshot{})
	if !send {
		t.Fatalf("actions policy with an alert must send")
	}
	if !strings.Contains(text, "ACTION ALERT") {
		t.Fatalf("missing header: %s", text)
	}
	if !strings.Contains(text, "01 Mar 2026 | 14:30 UTC") {
		t.Fatalf("missing timestamp: %s", text)
	}
	if !strings.Contains(text, "XYZ</b> anomaly detected") {
		t.Fatalf("missing alert body: %s", text)
	}
}

func TestComposeDigestAlwaysSends(t *testing.T) {
	cfg := testConfig(t)
	c := NewComposer(cfg)

	report := &models.RunReport{
		At:    time.Now(),
		Macro: models.MacroAssessment{Score: 35, Regime: models.RegimeRiskOff},
		Baskets: []models.BasketReport{
			{Name: "AI", Mean7d: 18, Strength: StrengthHot, Velocity: VelocityRising},
		},
	}
	text, send := c.Compose(report, &models.Snapshot{})
	if !send {
		t.Fatalf("digest policy must always send")
	}
	if !strings.Contains(text, "Risk Regime: Risk-Off") {
		t.Fatalf("missing regime line: %s", text)
	}
	if !strings.Contains(text, "Macro Score: 35/100") {
		t.Fatalf("missing score line: %s", text)
	}
	if !strings.Contains(text, "AI: Strong/Hot (Rising, +18.0% 7d)") {
		t.Fatalf("missing heatmap line: %s", text)
	}
	if !strings.Contains(text, "NONE — Observe only") {
		t.Fatalf("quiet run must end with the observe footer: %s", text)
	}
}

func TestComposeDigestDegradedRun(t *testing.T) {
	cfg := testConfig(t)
	c := NewComposer(cfg)

	report := &models.RunReport{
		At:        time.Now(),
		Macro:     models.MacroAssessment{Score: 50, Regime: models.RegimeUnknown},
		Baskets:   []models.BasketReport{{Name: "AI", DataError: true, Strength: StatusDataError}},
		DataError: true,
	}
	text, send := c.Compose(report, &models.Snapshot{})
	if !send {
		t.Fatalf("degraded digest must still send")
	}
	if !strings.Contains(text, "Data error") {
		t.Fatalf("missing data error marker: %s", text)
	}
	if !strings.Contains(text, "Risk Regime: Unknown") {
		t.Fatalf("missing unknown regime: %s", text)
	}
}

func TestComposeDigestGoldProxy(t *testing.T) {
	cfg := testConfig(t)
	c := NewComposer(cfg)
	report := &models.RunReport{At: time.Now(), Macro: models.MacroAssessment{Regime: models.RegimeNeutral}}

	paxg := asset("PAXG", 0, 0)
	paxg.Price = 2500
	text, _ := c.Compose(report, &models.Snapshot{Assets: []models.AssetRecord{paxg}})
	if !strings.Contains(text, "Gold Proxy: Rising") {
		t.Fatalf("expected rising gold proxy: %s", text)
	}

	paxg.Price = 1800
	text, _ = c.Compose(report, &models.Snapshot{Assets: []models.AssetRecord{paxg}})
	if !strings.Contains(text, "Gold Proxy: Stable") {
		t.Fatalf("expected stable gold proxy: %s", text)
	}

	text, _ = c.Compose(report, &models.Snapshot{})
	if strings.Contains(text, "Gold Proxy") {
		t.Fatalf("no PAXG row, no proxy section: %s", text)
	}
}

func TestDetectConflict(t *testing.T) {
	cfg := testConfig(t)
	c := NewComposer(cfg)
	now := time.Now()

	snap := &models.Snapshot{Assets: []models.AssetRecord{asset("BTC", 3, 0)}}
	baskets := []models.BasketReport{{Name: "AI", Mean7d: 9}}

	alert := c.DetectConflict(snap, baskets, now)
	if alert == nil {
		t.Fatalf("BTC +3%% against a +9%% basket should flag a conflict")
	}
	if alert.Category != models.CategoryMacroConflict {
		t.Fatalf("unexpected category %q", alert.Category)
	}

	calm := &models.Snapshot{Assets: []models.AssetRecord{asset("BTC", 1, 0)}}
	if c.DetectConflict(calm, baskets, now) != nil {
		t.Fatalf("BTC +1%% must not flag")
	}

	baskets[0].DataError = true
	if c.DetectConflict(snap, baskets, now) != nil {
		t.Fatalf("data-error basket must not flag")
	}
}

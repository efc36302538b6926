package models

import (
	"strings"
	"time"
)

// AlertCategory classifies what fired an alert.
type AlertCategory string

const (
	CategoryAnomaly           AlertCategory = "anomaly"
	CategoryPortfolioWeakness AlertCategory = "portfolio_weakness"
	CategoryNarrativeIgnition AlertCategory = "narrative_ignition"
	CategoryRotation          AlertCategory = "rotation"
	CategoryMacroConflict     AlertCategory = "macro_conflict"
)

// Alert is one detector finding. Topic is a symbol for per-asset alerts and a
// topic name (basket pair, category) for market-wide ones. Created by the
// detectors, consumed once by the composer, discarded after send.
type Alert struct {
	Topic     string        `json:"topic"`
	Category  AlertCategory `json:"category"`
	Tag       string        `json:"tag,omitempty"` // severity / impulse label
	Lines     []string      `json:"lines"`
	CreatedAt time.Time     `json:"created_at"`
}

// Render joins the body lines into the block sent to the channel.
func (a *Alert) Render() string {
	return strings.Join(a.Lines, "\n")
}

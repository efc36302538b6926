package usecase

import (
	"fmt"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
)

// MacroScorer turns the global dominance figures and BTC's own movement into
// a 0-100 risk score and a coarse regime label. Every delta and cut point
// comes from configuration so a given input scores bit-for-bit reproducibly.
type MacroScorer struct {
	cfg config.MacroThresholds
}

func NewMacroScorer(cfg config.MacroThresholds) *MacroScorer {
	return &MacroScorer{cfg: cfg}
}

// Assess scores one snapshot. When the required global fields are absent it
// returns the neutral baseline and the Unknown regime instead of failing.
func (m *MacroScorer) Assess(snap *models.Snapshot) models.MacroAssessment {
	if snap == nil || snap.Global.BTCDominance == nil {
		return models.MacroAssessment{Score: m.cfg.Baseline, Regime: models.RegimeUnknown}
	}

	score := m.cfg.Baseline
	var signals []string

	dom := *snap.Global.BTCDominance
	if dom > m.cfg.DomUpper {
		score += m.cfg.DomUpperDelta
		signals = append(signals, fmt.Sprintf("BTC dominance %.1f%% above %.1f%%", dom, m.cfg.DomUpper))
	} else if dom < m.cfg.DomLower {
		score += m.cfg.DomLowerDelta
		signals = append(signals, fmt.Sprintf("BTC dominance %.1f%% below %.1f%%", dom, m.cfg.DomLower))
	}

	if btc, ok := snap.BySymbol("BTC"); ok {
		if btc.Change24h != nil && *btc.Change24h < m.cfg.BTCDropBelow {
			score += m.cfg.BTCDropDelta
			signals = append(signals, fmt.Sprintf("BTC 24h %.1f%% below %.1f%%", *btc.Change24h, m.cfg.BTCDropBelow))
		}
		if eth, ok := snap.BySymbol("ETH"); ok && btc.Price > 0 {
			ratio := eth.Price / btc.Price
			if ratio > m.cfg.EthBtcUpper {
				score += m.cfg.EthBtcUpDelta
				signals = append(signals, fmt.Sprintf("ETH/BTC %.4f above %.4f", ratio, m.cfg.EthBtcUpper))
			} else if ratio < m.cfg.EthBtcLower {
				score += m.cfg.EthBtcLoDelta
				signals = append(signals, fmt.Sprintf("ETH/BTC %.4f below %.4f", ratio, m.cfg.EthBtcLower))
			}
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return models.MacroAssessment{Score: score, Regime: m.regime(score), Signals: signals}
}

func (m *MacroScorer) regime(score int) string {
	switch {
	case score >= m.cfg.RiskOnCutoff:
		return models.RegimeRiskOn
	case score <= m.cfg.RiskOffCutoff:
		return models.RegimeRiskOff
	default:
		return models.RegimeNeutral
	}
}

package usecase

import (
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
)

const sectionRule = "━━━━━━━━━━━━━━━━━━"

// Composer assembles detector output into the final message text. Two report
// policies exist: the digest always reports (observational mode), the actions
// policy stays silent unless something fired.
type Composer struct {
	cfg *config.Config
}

func NewComposer(cfg *config.Config) *Composer {
	return &Composer{cfg: cfg}
}

// DetectConflict flags BTC moving hard while a narrative basket runs hotter
// than its own threshold; the two rarely sustain together.
func (c *Composer) DetectConflict(snap *models.Snapshot, baskets []models.BasketReport, now time.Time) *models.Alert {
	t := c.cfg.Thresholds.Conflict
	btc, ok := snap.BySymbol("BTC")
	if !ok || btc.Change24h == nil || *btc.Change24h <= t.BTC24h {
		return nil
	}
	for i := range baskets {
		b := &baskets[i]
		if b.DataError || b.Mean7d <= t.BasketMean {
			continue
		}
		return &models.Alert{
			Topic:    "BTC/" + b.Name,
			Category: models.CategoryMacroConflict,
			Tag:      "divergence",
			Lines: []string{
				"<b>BTC dominance conflict</b>",
				fmt.Sprintf("BTC: %+.1f%% (24h) while %s runs %+.1f%% (7d)", *btc.Change24h, b.Name, b.Mean7d),
			},
			CreatedAt: now,
		}
	}
	return nil
}

// Compose renders the message for the configured policy. The returned bool is
// false when nothing should be sent this run (actions policy, no triggers).
func (c *Composer) Compose(report *models.RunReport, snap *models.Snapshot) (string, bool) {
	switch c.cfg.Report.Policy {
	case config.PolicyActions:
		if !report.Fired() {
			return "", false // silence is the correct answer here
		}
		return c.actionMessage(report), true
	default:
		return c.digestMessage(report, snap), true
	}
}

func (c *Composer) actionMessage(report *models.RunReport) string {
	var b strings.Builder
	b.WriteString("<b>🚨 ACTION ALERT</b>\n")
	b.WriteString("🕒 " + report.At.UTC().Format("02 Jan 2006 | 15:04 UTC") + "\n\n")

	blocks := make([]string, 0, len(report.Alerts))
	for i := range report.Alerts {
		blocks = append(blocks, report.Alerts[i].Render())
	}
	b.WriteString(strings.Join(blocks, "\n\n"))
	return b.String()
}

func (c *Composer) digestMessage(report *models.RunReport, snap *models.Snapshot) string {
	var b strings.Builder
	b.WriteString("🧠 MARKET SNAPSHOT — GLOBAL VIEW\n\n")
	b.WriteString("⏱ Time: " + report.At.UTC().Format("2006-01-02 15:04 UTC") + "\n")
	b.WriteString("📊 Data: CoinGecko\n")
	if report.DataError {
		b.WriteString("⚠️ Data error: reduced confidence this run\n")
	}

	b.WriteString("\n" + sectionRule + "\n🌍 MACRO REGIME\n" + sectionRule + "\n")
	b.WriteString("Risk Regime: " + report.Macro.Regime + "\n")
	b.WriteString(fmt.Sprintf("Macro Score: %d/100\n", report.Macro.Score))

	b.WriteString("\n" + sectionRule + "\n🔥 NARRATIVE HEATMAP\n" + sectionRule + "\n")
	for i := range report.Baskets {
		r := &report.Baskets[i]
		if r.DataError {
			b.WriteString(r.Name + ": " + StatusDataError + "\n")
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s (%s, %+.1f%% 7d)\n", r.Name, r.Strength, r.Velocity, r.Mean7d))
	}

	if gold := c.goldProxy(snap); gold != "" {
		b.WriteString("\n" + sectionRule + "\n🏦 MACRO PROXY\n" + sectionRule + "\n")
		b.WriteString("Gold Proxy: " + gold + "\n")
	}

	if report.Fired() {
		b.WriteString("\n" + sectionRule + "\n🚨 ALERTS\n" + sectionRule + "\n")
		blocks := make([]string, 0, len(report.Alerts))
		for i := range report.Alerts {
			blocks = append(blocks, report.Alerts[i].Render())
		}
		b.WriteString(strings.Join(blocks, "\n\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n" + sectionRule + "\n🧭 ACTION\n" + sectionRule + "\n")
	if report.Fired() {
		b.WriteString(fmt.Sprintf("%d signal(s) above — review\n", len(report.Alerts)))
	} else {
		b.WriteString("NONE — Observe only\n")
	}

	return b.String()
}

func (c *Composer) goldProxy(snap *models.Snapshot) string {
	paxg, ok := snap.BySymbol("PAXG")
	if !ok || paxg.Price <= 0 {
		return ""
	}
	if paxg.Price > c.cfg.Thresholds.GoldProxy {
		return "Rising"
	}
	return "Stable"
}

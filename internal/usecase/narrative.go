package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
)

// Strength and velocity labels for basket reports.
const (
	StrengthHot  = "Strong/Hot"
	StrengthWarm = "Moderate/Warm"
	StrengthCool = "Weak/Cool"

	VelocityAccelerating = "Accelerating"
	VelocityRising       = "Rising"
	VelocityFlat         = "Flat"
	VelocityCooling      = "Cooling"

	StatusDataError = "Data error"
)

// NarrativeAnalyzer scores configured baskets on the mean 7-day move of their
// members and detects rotation between the strongest and weakest basket.
type NarrativeAnalyzer struct {
	baskets []config.BasketConfig
	cfg     config.NarrativeThresholds
}

func NewNarrativeAnalyzer(baskets []config.BasketConfig, cfg config.NarrativeThresholds) *NarrativeAnalyzer {
	return &NarrativeAnalyzer{baskets: baskets, cfg: cfg}
}

// Analyze scores every basket. Baskets with no members in the snapshot, or
// whose members all lack a 7d change, report a data error instead of a score.
func (n *NarrativeAnalyzer) Analyze(snap *models.Snapshot) []models.BasketReport {
	reports := make([]models.BasketReport, 0, len(n.baskets))
	for _, b := range n.baskets {
		reports = append(reports, n.scoreBasket(snap, b))
	}
	return reports
}

func (n *NarrativeAnalyzer) scoreBasket(snap *models.Snapshot, b config.BasketConfig) models.BasketReport {
	report := models.BasketReport{Name: b.Name}
	if snap.Empty() {
		report.DataError = true
		report.Strength = StatusDataError
		report.Velocity = StatusDataError
		return report
	}

	member := make(map[string]bool, len(b.Members))
	for _, m := range b.Members {
		member[m] = true
	}

	var sum float64
	var count int
	for i := range snap.Assets {
		a := &snap.Assets[i]
		if !member[a.Symbol] && (b.Category == "" || !strings.EqualFold(a.Category, b.Category)) {
			continue
		}
		if a.Change7d == nil {
			continue // present but no 7d figure; ignore, not an error
		}
		sum += *a.Change7d
		count++
	}

	if count == 0 {
		report.DataError = true
		report.Strength = StatusDataError
		report.Velocity = StatusDataError
		return report
	}

	report.Members = count
	report.Mean7d = sum / float64(count)
	report.Strength = n.strength(report.Mean7d)
	report.Velocity = n.velocity(report.Mean7d)
	return report
}

func (n *NarrativeAnalyzer) strength(mean float64) string {
	switch {
	case mean >= n.cfg.Strong:
		return StrengthHot
	case mean >= n.cfg.Moderate:
		return StrengthWarm
	default:
		return StrengthCool
	}
}

func (n *NarrativeAnalyzer) velocity(mean float64) string {
	switch {
	case mean >= n.cfg.VelocityAccel:
		return VelocityAccelerating
	case mean >= n.cfg.VelocityRise:
		return VelocityRising
	case mean >= n.cfg.VelocityFlat:
		return VelocityFlat
	default:
		return VelocityCooling
	}
}

// DetectRotation compares the strongest and weakest scored basket and emits a
// single global alert when the spread reaches the rotation delta. Rotation is
// a topic-level alert and bypasses the per-symbol cooldown.
func (n *NarrativeAnalyzer) DetectRotation(reports []models.BasketReport, now time.Time) *models.Alert {
	var hi, lo *models.BasketReport
	for i := range reports {
		r := &reports[i]
		if r.DataError {
			continue
		}
		if hi == nil || r.Mean7d > hi.Mean7d {
			hi = r
		}
		if lo == nil || r.Mean7d < lo.Mean7d {
			lo = r
		}
	}
	if hi == nil || lo == nil || hi == lo {
		return nil
	}
	delta := hi.Mean7d - lo.Mean7d
	if delta < n.cfg.RotationDelta {
		return nil
	}

	return &models.Alert{
		Topic:    fmt.Sprintf("%s->%s", lo.Name, hi.Name),
		Category: models.CategoryRotation,
		Tag:      fmt.Sprintf("%.1fpp", delta),
		Lines: []string{
			"<b>Rotation detected</b>",
			fmt.Sprintf("Out of: %s (%+.1f%% 7d)", lo.Name, lo.Mean7d),
			fmt.Sprintf("Into: %s (%+.1f%% 7d)", hi.Name, hi.Mean7d),
			fmt.Sprintf("Spread: %.1f percentage points", delta),
		},
		CreatedAt: now,
	}
}

// DetectIgnition fires once per category when enough independently anomalous
// assets share that category label, naming up to four triggering symbols.
func (n *NarrativeAnalyzer) DetectIgnition(anomalous []models.AssetRecord, now time.Time) []models.Alert {
	byCategory := make(map[string][]string)
	for i := range anomalous {
		a := &anomalous[i]
		if a.Category == "" {
			continue
		}
		byCategory[a.Category] = append(byCategory[a.Category], a.Symbol)
	}

	categories := make([]string, 0, len(byCategory))
	for category, symbols := range byCategory {
		if len(symbols) >= n.cfg.IgnitionCount {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	var alerts []models.Alert
	for _, category := range categories {
		symbols := byCategory[category]
		named := symbols
		if len(named) > 4 {
			named = named[:4]
		}
		alerts = append(alerts, models.Alert{
			Topic:    category,
			Category: models.CategoryNarrativeIgnition,
			Tag:      fmt.Sprintf("%d movers", len(symbols)),
			Lines: []string{
				"<b>Narrative ignition</b>",
				fmt.Sprintf("Category: %s", category),
				fmt.Sprintf("Triggering: %s", strings.Join(named, ", ")),
			},
			CreatedAt: now,
		})
	}
	return alerts
}

package usecase

import (
	"fmt"
	"sort"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
)

// Impulse, volume, and relevance labels for anomaly alerts.
const (
	ImpulseVeryFast = "Very fast impulse"
	ImpulseFast     = "Fast expansion"
	ImpulseGradual  = "Gradual move"

	VolumeConfirmed = "Confirmed"
	VolumeWeak      = "Weak"

	RelevanceHigh   = "HIGH"
	RelevanceMedium = "MEDIUM"
	RelevanceLow    = "LOW"
)

// DetectionResult is everything the detector produced for one run.
type DetectionResult struct {
	Alerts    []models.Alert       // anomaly and weakness alerts, snapshot order
	Anomalous []models.AssetRecord // assets whose anomaly branch fired, for ignition
	Exposure  models.ExposureSummary
}

// Detector flags single-asset extreme moves and portfolio-specific weakness.
// Per symbol and run the evaluation is a strict first-match-wins ladder:
// cooldown skip, then the anomaly branch, then the weakness branch. A fired
// branch marks cooldown exactly once and stops further evaluation of that
// symbol.
type Detector struct {
	cfg *config.Config
}

func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs the per-asset checks and the aggregate exposure summary. The
// cooldown state is mutated in place; the caller persists it after the run.
func (d *Detector) Detect(snap *models.Snapshot, cooldown *CooldownState, now time.Time) DetectionResult {
	var res DetectionResult
	if snap.Empty() {
		return res
	}

	for i := range snap.Assets {
		a := &snap.Assets[i]
		if a.Symbol == "" || cooldown.InCooldown(a.Symbol, now) {
			continue
		}
		if !a.Actionable() {
			continue // partial record: a filter, not an error
		}

		if alert := d.checkAnomaly(a, now); alert != nil {
			res.Alerts = append(res.Alerts, *alert)
			res.Anomalous = append(res.Anomalous, *a)
			cooldown.Mark(a.Symbol, now)
			continue // anomaly wins; weakness is not evaluated this run
		}

		if alert := d.checkWeakness(a, now); alert != nil {
			res.Alerts = append(res.Alerts, *alert)
			cooldown.Mark(a.Symbol, now)
		}
	}

	res.Exposure = d.summarizeExposure(snap)
	return res
}

func (d *Detector) checkAnomaly(a *models.AssetRecord, now time.Time) *models.Alert {
	t := d.cfg.Thresholds.Anomaly
	p24 := *a.Change24h
	hot24 := p24 >= t.Change24h
	hot7d := a.Change7d != nil && *a.Change7d >= t.Change7d
	if !hot24 && !hot7d {
		return nil
	}

	impulse := d.impulse(p24)
	volume := VolumeWeak
	if ratio, ok := a.VolumeToCapRatio(); ok && ratio > t.VolumeConfirm {
		volume = VolumeConfirmed
	}
	relevance := d.relevance(a.Symbol)

	lines := []string{
		fmt.Sprintf("<b>%s</b> anomaly detected", a.Symbol),
		fmt.Sprintf("Move: %+.1f%% (24h)", p24),
	}
	if hot7d && !hot24 {
		lines = append(lines, fmt.Sprintf("Move: %+.1f%% (7d)", *a.Change7d))
	}
	lines = append(lines,
		fmt.Sprintf("Impulse: %s", impulse),
		fmt.Sprintf("Volume: %s", volume),
		"",
		fmt.Sprintf("<b>Portfolio Relevance:</b> %s", relevance),
	)

	return &models.Alert{
		Topic:     a.Symbol,
		Category:  models.CategoryAnomaly,
		Tag:       impulse,
		Lines:     lines,
		CreatedAt: now,
	}
}

func (d *Detector) checkWeakness(a *models.AssetRecord, now time.Time) *models.Alert {
	if !d.cfg.Held(a.Symbol) {
		return nil
	}
	weight := d.cfg.Weight(a.Symbol)
	t := d.cfg.Thresholds.Weakness
	if weight < t.Exposure {
		return nil
	}

	p24 := *a.Change24h
	weak24 := p24 <= t.Change24h
	weak7d := a.Change7d != nil && *a.Change7d <= t.Change7d
	if !weak24 && !weak7d {
		return nil
	}

	move := fmt.Sprintf("Move: %.1f%% (24h)", p24)
	if !weak24 {
		move = fmt.Sprintf("Move: %.1f%% (7d)", *a.Change7d)
	}

	return &models.Alert{
		Topic:    a.Symbol,
		Category: models.CategoryPortfolioWeakness,
		Tag:      "High exposure",
		Lines: []string{
			fmt.Sprintf("<b>%s</b> weakness detected", a.Symbol),
			move,
			fmt.Sprintf("Exposure: %.0f%% (High)", weight),
			"",
			"Context:",
			"High-conviction position showing abnormal weakness.",
			"Not a market-wide signal.",
			"",
			"Action:",
			"Risk awareness required (no forced action)",
		},
		CreatedAt: now,
	}
}

func (d *Detector) impulse(p24 float64) string {
	t := d.cfg.Thresholds.Anomaly
	switch {
	case p24 >= t.ImpulseVeryFast:
		return ImpulseVeryFast
	case p24 >= t.ImpulseFast:
		return ImpulseFast
	default:
		return ImpulseGradual
	}
}

// relevance is High when the symbol is held directly, Medium when the static
// adjacency table links it to a held symbol, Low otherwise.
func (d *Detector) relevance(symbol string) string {
	if d.cfg.Held(symbol) {
		return RelevanceHigh
	}
	for _, linked := range d.cfg.Adjacency[symbol] {
		if d.cfg.Held(linked) {
			return RelevanceMedium
		}
	}
	return RelevanceLow
}

// summarizeExposure builds the aggregate portfolio risk view: per-holding
// 7-day classification, high-weight flags, a simultaneous-drags flag, and
// per-bucket weight concentration.
func (d *Detector) summarizeExposure(snap *models.Snapshot) models.ExposureSummary {
	t := d.cfg.Thresholds.Exposure
	var sum models.ExposureSummary

	held := d.cfg.Portfolio.Held
	var trackedWeight float64
	bucketWeight := make(map[string]float64)

	for _, symbol := range held {
		weight := d.cfg.Weight(symbol)
		review := models.HoldingReview{Symbol: symbol, Weight: weight, Class: models.HoldingNeutral}

		if a, ok := snap.BySymbol(symbol); ok && a.Change7d != nil {
			review.Change7d = a.Change7d
			switch {
			case *a.Change7d >= t.Contributor:
				review.Class = models.HoldingContributor
			case *a.Change7d <= t.Drag:
				review.Class = models.HoldingDrag
				sum.DragCount++
			}
			if a.Category != "" {
				bucketWeight[a.Category] += weight
			}
		}
		if weight >= t.HighWeight {
			sum.HighExposure = append(sum.HighExposure, symbol)
		}
		trackedWeight += weight
		sum.Holdings = append(sum.Holdings, review)
	}

	if len(held) > 0 {
		min := len(held) / 2
		if min < 2 {
			min = 2
		}
		sum.DragFlag = sum.DragCount >= min
	}

	if trackedWeight > 0 {
		buckets := make([]string, 0, len(bucketWeight))
		for b := range bucketWeight {
			buckets = append(buckets, b)
		}
		sort.Strings(buckets)
		for _, b := range buckets {
			share := bucketWeight[b] / trackedWeight
			sum.Buckets = append(sum.Buckets, models.BucketExposure{
				Bucket: b,
				Weight: bucketWeight[b],
				Share:  share,
				Over:   share >= t.BucketShare,
			})
		}
	}

	return sum
}

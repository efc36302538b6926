package usecase

import (
	"context"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	applogger "MarketPulse/pkg/logger"
)

// ScanRunner drives one full detection run: pull a snapshot, score macro and
// narratives, run the anomaly/weakness detector, compose and deliver the
// result, then persist cooldown state. Runs are synchronous run-to-completion;
// the scheduler (cron or the daemon ticker) serializes invocations.
type ScanRunner struct {
	cfg       *config.Config
	provider  drepo.MarketProvider
	deliverer drepo.Deliverer
	store     drepo.CooldownStore
	sinks     []drepo.AlertSink
	metrics   drepo.Metrics
	log       *applogger.Logger

	macro     *MacroScorer
	narrative *NarrativeAnalyzer
	detector  *Detector
	composer  *Composer

	mu   sync.Mutex
	last *models.RunReport
}

func NewScanRunner(
	cfg *config.Config,
	provider drepo.MarketProvider,
	deliverer drepo.Deliverer,
	store drepo.CooldownStore,
	sinks []drepo.AlertSink,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *ScanRunner {
	return &ScanRunner{
		cfg:       cfg,
		provider:  provider,
		deliverer: deliverer,
		store:     store,
		sinks:     sinks,
		metrics:   metrics,
		log:       log,
		macro:     NewMacroScorer(cfg.Thresholds.Macro),
		narrative: NewNarrativeAnalyzer(cfg.Baskets, cfg.Thresholds.Narrative),
		detector:  NewDetector(cfg),
		composer:  NewComposer(cfg),
	}
}

// Run executes one scan. Provider and delivery failures degrade or get logged;
// nothing past configuration load aborts a run.
func (r *ScanRunner) Run(ctx context.Context) *models.RunReport {
	now := time.Now().UTC()
	r.metrics.RecordRun(r.cfg.Report.Policy)

	state, err := r.store.Load(ctx)
	if err != nil {
		// fail-open: a broken store must never block detection
		r.log.Warn("cooldown load failed, starting empty", applogger.Error(err))
		r.metrics.RecordError("cooldown_load")
		state = make(map[string]time.Time)
	}
	cooldown := NewCooldownState(state, r.cfg.Cooldown.Window)

	fetchStart := time.Now()
	snap, err := r.provider.FetchSnapshot(ctx)
	r.metrics.RecordFetchLatency("snapshot", time.Since(fetchStart).Seconds())
	if err != nil {
		r.log.Warn("provider degraded", applogger.Error(err))
		r.metrics.RecordError("provider")
	}
	if snap == nil {
		snap = &models.Snapshot{FetchedAt: now}
	}

	report := &models.RunReport{At: now, DataError: snap.Empty()}
	report.Macro = r.macro.Assess(snap)
	r.metrics.RecordMacroScore(float64(report.Macro.Score))

	report.Baskets = r.narrative.Analyze(snap)

	detection := r.detector.Detect(snap, cooldown, now)
	report.Exposure = detection.Exposure
	report.Alerts = detection.Alerts

	report.Alerts = append(report.Alerts, r.narrative.DetectIgnition(detection.Anomalous, now)...)
	if rotation := r.narrative.DetectRotation(report.Baskets, now); rotation != nil {
		report.Alerts = append(report.Alerts, *rotation)
	}
	if conflict := r.composer.DetectConflict(snap, report.Baskets, now); conflict != nil {
		report.Alerts = append(report.Alerts, *conflict)
	}
	for i := range report.Alerts {
		r.metrics.RecordAlert(string(report.Alerts[i].Category))
	}

	if text, send := r.composer.Compose(report, snap); send {
		if err := r.deliverer.Deliver(ctx, text); err != nil {
			// fire-and-forget: the run still counts as successful
			r.log.Error("delivery failed", applogger.Error(err))
			r.metrics.RecordDelivery(false)
		} else {
			r.metrics.RecordDelivery(true)
		}
	} else {
		r.log.Debug("nothing fired, staying silent")
	}

	if len(detection.Alerts) > 0 {
		if err := r.store.Save(ctx, cooldown.Map()); err != nil {
			r.log.Error("cooldown save failed", applogger.Error(err))
			r.metrics.RecordError("cooldown_save")
		}
	}

	for _, sink := range r.sinks {
		if err := sink.Record(ctx, report); err != nil {
			r.log.Warn("alert sink failed", applogger.Error(err))
			r.metrics.RecordError("sink")
		}
	}

	r.log.Info("scan complete",
		applogger.Int("assets", len(snap.Assets)),
		applogger.Int("alerts", len(report.Alerts)),
		applogger.Int("macro_score", report.Macro.Score),
		applogger.String("regime", report.Macro.Regime),
	)

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()
	return report
}

// LastReport returns the most recent run's report, nil before the first run.
func (r *ScanRunner) LastReport() *models.RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

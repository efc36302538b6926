package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	applogger "MarketPulse/pkg/logger"
)

type fakeProvider struct {
	snap *models.Snapshot
	err  error
}

func (p *fakeProvider) FetchSnapshot(context.Context) (*models.Snapshot, error) {
	return p.snap, p.err
}

type fakeDeliverer struct {
	sent []string
	err  error
}

func (d *fakeDeliverer) Deliver(_ context.Context, text string) error {
	d.sent = append(d.sent, text)
	return d.err
}

type fakeStore struct {
	state   map[string]time.Time
	saves   int
	loadErr error
}

func (s *fakeStore) Load(context.Context) (map[string]time.Time, error) {
	return s.state, s.loadErr
}

func (s *fakeStore) Save(_ context.Context, state map[string]time.Time) error {
	s.saves++
	s.state = state
	return nil
}

type fakeSink struct {
	reports []*models.RunReport
}

func (s *fakeSink) Record(_ context.Context, report *models.RunReport) error {
	s.reports = append(s.reports, report)
	return nil
}

func (s *fakeSink) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordRun(string)                   {}
func (nopMetrics) RecordAlert(string)                 {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
func (nopMetrics) RecordMacroScore(float64)           {}
func (nopMetrics) RecordDelivery(bool)                {}

func newTestRunner(cfg *config.Config, p drepo.MarketProvider, d drepo.Deliverer, s drepo.CooldownStore, sinks ...drepo.AlertSink) *ScanRunner {
	return NewScanRunner(cfg, p, d, s, sinks, nopMetrics{}, applogger.Nop())
}

func TestRunDeliversDigest(t *testing.T) {
	cfg := testConfig(t)
	provider := &fakeProvider{snap: &models.Snapshot{
		Assets: []models.AssetRecord{asset("BTC", 1, 1)},
		Global: models.GlobalMacroRecord{BTCDominance: f64(56)},
	}}
	deliverer := &fakeDeliverer{}
	store := &fakeStore{}
	sink := &fakeSink{}

	r := newTestRunner(cfg, provider, deliverer, store, sink)
	report := r.Run(context.Background())

	if report == nil {
		t.Fatalf("run must always return a report")
	}
	if report.Macro.Regime != models.RegimeRiskOff {
		t.Fatalf("unexpected regime %q", report.Macro.Regime)
	}
	if len(deliverer.sent) != 1 {
		t.Fatalf("digest policy must deliver once, got %d", len(deliverer.sent))
	}
	if store.saves != 0 {
		t.Fatalf("quiet run must not rewrite cooldown state")
	}
	if len(sink.reports) != 1 {
		t.Fatalf("sink must record every run")
	}
	if r.LastReport() != report {
		t.Fatalf("last report not retained")
	}
}

func TestRunActionsPolicySavesCooldownOnFire(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Policy = config.PolicyActions
	provider := &fakeProvider{snap: &models.Snapshot{
		Assets: []models.AssetRecord{asset("XYZ", 30, 10)},
		Global: models.GlobalMacroRecord{BTCDominance: f64(50)},
	}}
	deliverer := &fakeDeliverer{}
	store := &fakeStore{}

	r := newTestRunner(cfg, provider, deliverer, store)
	report := r.Run(context.Background())

	if !report.Fired() {
		t.Fatalf("expected the anomaly to fire")
	}
	if len(deliverer.sent) != 1 {
		t.Fatalf("fired actions run must deliver")
	}
	if store.saves != 1 {
		t.Fatalf("fired run must persist cooldown state")
	}
	if _, ok := store.state["XYZ"]; !ok {
		t.Fatalf("cooldown entry missing: %v", store.state)
	}

	// second run inside the window: silent, no save
	second := r.Run(context.Background())
	if second.Fired() {
		t.Fatalf("cooldown must suppress the repeat")
	}
	if len(deliverer.sent) != 1 {
		t.Fatalf("silent actions run must not deliver")
	}
	if store.saves != 1 {
		t.Fatalf("silent run must not save again")
	}
}

func TestRunSurvivesProviderFailure(t *testing.T) {
	cfg := testConfig(t)
	provider := &fakeProvider{err: errors.New("coingecko down")}
	deliverer := &fakeDeliverer{}
	store := &fakeStore{}

	r := newTestRunner(cfg, provider, deliverer, store)
	report := r.Run(context.Background())

	if !report.DataError {
		t.Fatalf("degraded run must carry the data error flag")
	}
	if report.Macro.Regime != models.RegimeUnknown {
		t.Fatalf("no data means unknown regime, got %q", report.Macro.Regime)
	}
	if report.Fired() {
		t.Fatalf("no data, no alerts")
	}
	if len(deliverer.sent) != 1 {
		t.Fatalf("digest must still go out on a degraded run")
	}
}

func TestRunSurvivesStoreAndDeliveryFailure(t *testing.T) {
	cfg := testConfig(t)
	provider := &fakeProvider{snap: &models.Snapshot{
		Assets: []models.AssetRecord{asset("XYZ", 30, 10)},
	}}
	deliverer := &fakeDeliverer{err: errors.New("telegram 502")}
	store := &fakeStore{loadErr: errors.New("disk gone")}

	r := newTestRunner(cfg, provider, deliverer, store)
	report := r.Run(context.Background())

	if report == nil || !report.Fired() {
		t.Fatalf("detection must proceed past store and delivery failures")
	}
}

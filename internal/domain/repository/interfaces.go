package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
)

// MarketProvider pulls one snapshot per run. Implementations degrade to an
// empty snapshot on provider failure; the returned error is for logging only
// and never aborts the run.
type MarketProvider interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Deliverer pushes a finished text block to the messaging channel.
// Fire-and-forget: failures are logged by the caller, never retried.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// CooldownStore persists the symbol -> last-alert-instant mapping. Load is
// fail-open: corrupt or absent state yields an empty map, not an error.
// The run reads the full map once at start and writes it once at end.
type CooldownStore interface {
	Load(ctx context.Context) (map[string]time.Time, error)
	Save(ctx context.Context, state map[string]time.Time) error
}

// AlertSink records a finished run report in a secondary backend (Kafka topic,
// ClickHouse table). Sink failures are logged and never block the run.
type AlertSink interface {
	Record(ctx context.Context, report *models.RunReport) error
	Close() error
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordRun(policy string)
	RecordAlert(category string)
	RecordError(kind string)
	RecordFetchLatency(op string, seconds float64)
	RecordMacroScore(score float64)
	RecordDelivery(ok bool)
}

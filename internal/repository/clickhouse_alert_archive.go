package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

// ClickHouseAlertArchive keeps a queryable history of every run's alerts and
// macro readings for after-the-fact analysis.
type ClickHouseAlertArchive struct {
	db    *sql.DB
	table string
	log   *applogger.Logger
}

// AlertArchiveSchema creates the archive table; run once at startup through
// Client.InitSchema.
func AlertArchiveSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.alerts (
			at DateTime,
			topic String,
			category String,
			tag String,
			body String,
			macro_score Int32,
			regime String
		) ENGINE=MergeTree ORDER BY (at, topic)`, database),
	}
}

// NewClickHouseAlertArchive creates the ClickHouse alert sink.
func NewClickHouseAlertArchive(ch *pkgch.Client, database string, log *applogger.Logger) drepo.AlertSink {
	return &ClickHouseAlertArchive{db: ch.DB(), table: database + ".alerts", log: log}
}

func (s *ClickHouseAlertArchive) Record(ctx context.Context, report *models.RunReport) error {
	if !report.Fired() {
		return nil
	}

	values := make([]string, 0, len(report.Alerts))
	args := make([]interface{}, 0, len(report.Alerts)*7)
	for i := range report.Alerts {
		a := &report.Alerts[i]
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			report.At,
			a.Topic,
			string(a.Category),
			a.Tag,
			a.Render(),
			int32(report.Macro.Score),
			report.Macro.Regime,
		)
	}

	q := fmt.Sprintf("INSERT INTO %s (at, topic, category, tag, body, macro_score, regime) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.log.Error("alert archive insert failed",
			applogger.Int("alerts", len(report.Alerts)),
			applogger.Error(err),
		)
		return fmt.Errorf("archive alerts: %w", err)
	}
	return nil
}

func (s *ClickHouseAlertArchive) Close() error {
	return nil // connection pool managed by pkg/clickhouse
}

package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/handler/api"
	internalrepo "MarketPulse/internal/repository"
	"MarketPulse/internal/service/coingecko"
	"MarketPulse/internal/service/telegram"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/cache"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

// SinkSet groups the optional alert sinks with the infrastructure clients
// that must be closed on shutdown.
type SinkSet struct {
	Sinks   []repository.AlertSink
	Closers []io.Closer
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketProvider creates the CoinGecko client. Category pulls come
// from the configured baskets so basket membership can match by category.
func ProvideMarketProvider(cfg *config.Config, log *applogger.Logger) repository.MarketProvider {
	var categories []string
	seen := make(map[string]bool)
	for _, b := range cfg.Baskets {
		if b.Category != "" && !seen[b.Category] {
			seen[b.Category] = true
			categories = append(categories, b.Category)
		}
	}

	return coingecko.New(cfg.CoinGecko.BaseURL, cfg.CoinGecko.VsCurrency, cfg.CoinGecko.PerPage,
		coingecko.WithTimeout(cfg.CoinGecko.Timeout),
		coingecko.WithRateLimit(cfg.CoinGecko.RatePerSec, cfg.CoinGecko.Burst),
		coingecko.WithCategories(categories),
		coingecko.WithCache(cache.NewMemoryCache(), cfg.CoinGecko.CacheTTL),
		coingecko.WithLogger(log),
	)
}

// ProvideDeliverer creates the message deliverer. Digest runs go to the
// market channel, action runs to the action channel.
func ProvideDeliverer(cfg *config.Config, log *applogger.Logger) repository.Deliverer {
	if !cfg.Telegram.Enabled {
		return internalrepo.NewLogDeliverer(log)
	}

	chatID := cfg.Telegram.MarketChatID
	if cfg.Report.Policy == config.PolicyActions {
		chatID = cfg.Telegram.ActionChatID
	}

	return telegram.New(cfg.Telegram.BotToken, chatID,
		telegram.WithTimeout(cfg.Telegram.Timeout),
	)
}

// ProvideCooldownStore creates the cooldown state store.
func ProvideCooldownStore(cfg *config.Config, log *applogger.Logger) (repository.CooldownStore, error) {
	if cfg.Cooldown.Backend == "redis" {
		store, err := internalrepo.NewRedisCooldownStore(internalrepo.RedisCooldownConfig{
			Addr:     cfg.Cooldown.Redis.Addr,
			Password: cfg.Cooldown.Redis.Password,
			DB:       cfg.Cooldown.Redis.DB,
			Prefix:   cfg.Cooldown.Redis.Prefix,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("redis cooldown store: %w", err)
		}
		return store, nil
	}
	return internalrepo.NewFileCooldownStore(cfg.Cooldown.FilePath, log), nil
}

// ProvideSinks creates the optional alert sinks (Kafka, ClickHouse).
func ProvideSinks(cfg *config.Config, log *applogger.Logger) (*SinkSet, error) {
	set := &SinkSet{}

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		set.Sinks = append(set.Sinks, internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic))
		set.Closers = append(set.Closers, producer)
	}

	if cfg.ClickHouse.Enabled {
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithDialTimeout(cfg.ClickHouse.DialTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.AlertArchiveSchema(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}

		set.Sinks = append(set.Sinks, internalrepo.NewClickHouseAlertArchive(client, cfg.ClickHouse.Database, log))
		set.Closers = append(set.Closers, client)
	}

	return set, nil
}

// ProvideScanRunner creates the scan use case.
func ProvideScanRunner(
	cfg *config.Config,
	provider repository.MarketProvider,
	deliverer repository.Deliverer,
	store repository.CooldownStore,
	sinks *SinkSet,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ScanRunner {
	return usecase.NewScanRunner(cfg, provider, deliverer, store, sinks.Sinks, m, log)
}

// ProvideStatusHandler creates the ops HTTP handler.
func ProvideStatusHandler(log *applogger.Logger, runner *usecase.ScanRunner) xhttp.Handler {
	return api.NewStatusHandler(log, runner)
}

// ProvideApp creates the application, registering infrastructure closers.
func ProvideApp(
	cfg *config.Config,
	runner *usecase.ScanRunner,
	handler xhttp.Handler,
	log *applogger.Logger,
	sinks *SinkSet,
	store repository.CooldownStore,
) *server.App {
	app := server.New(cfg, runner, handler, log)
	for _, c := range sinks.Closers {
		app.AddCloser(c)
	}
	if closer, ok := store.(io.Closer); ok {
		app.AddCloser(closer)
	}
	return app
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// RedisCooldownStore keeps the cooldown mapping in a single Redis hash so
// multiple deployments can share one alert state. Same fail-open contract as
// the file store: unreadable state degrades to empty.
type RedisCooldownStore struct {
	client *redis.Client
	key    string
	log    *applogger.Logger
}

type RedisCooldownConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedisCooldownStore(cfg RedisCooldownConfig, log *applogger.Logger) (*RedisCooldownStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "marketpulse"
	}
	return &RedisCooldownStore{client: client, key: prefix + ":cooldown", log: log}, nil
}

func (s *RedisCooldownStore) Load(ctx context.Context) (map[string]time.Time, error) {
	state := make(map[string]time.Time)

	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		s.log.Warn("cooldown hash unreadable, treating as empty", applogger.Error(err))
		return state, nil
	}

	for symbol, ts := range raw {
		t, ok := util.ParseTime(ts)
		if !ok {
			s.log.Warn("cooldown entry unparseable, dropping",
				applogger.String("symbol", symbol), applogger.String("value", ts))
			continue
		}
		state[symbol] = t.UTC()
	}
	return state, nil
}

func (s *RedisCooldownStore) Save(ctx context.Context, state map[string]time.Time) error {
	fields := make(map[string]interface{}, len(state))
	for symbol, t := range state {
		fields[symbol] = t.UTC().Format(time.RFC3339)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(fields) > 0 {
		pipe.HSet(ctx, s.key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save cooldown state: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisCooldownStore) Close() error {
	return s.client.Close()
}

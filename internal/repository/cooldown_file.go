package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// FileCooldownStore persists cooldown state as a JSON object of
// symbol -> ISO-8601 UTC timestamp, the layout the original deployments used.
// Load is fail-open: a missing or corrupt file yields an empty state.
type FileCooldownStore struct {
	path string
	log  *applogger.Logger
}

func NewFileCooldownStore(path string, log *applogger.Logger) *FileCooldownStore {
	return &FileCooldownStore{path: path, log: log}
}

func (s *FileCooldownStore) Load(_ context.Context) (map[string]time.Time, error) {
	state := make(map[string]time.Time)

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cooldown file unreadable, treating as empty", applogger.Error(err))
		}
		return state, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		s.log.Warn("cooldown file corrupt, treating as empty", applogger.Error(err))
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

func (s *FileCooldownStore) Save(_ context.Context, state map[string]time.Time) error {
	raw := make(map[string]string, len(state))
	for symbol, t := range state {
		raw[symbol] = t.UTC().Format(time.RFC3339)
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal cooldown state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write cooldown state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cooldown state: %w", err)
	}
	return nil
}

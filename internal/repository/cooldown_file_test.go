package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	applogger "MarketPulse/pkg/logger"
)

func TestFileCooldownRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "action_state.json")
	store := NewFileCooldownStore(path, applogger.Nop())
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Save(ctx, map[string]time.Time{"BTC": at, "SOL": at.Add(-time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	state, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(state))
	}
	if !state["BTC"].Equal(at) {
		t.Fatalf("BTC timestamp drifted: %v", state["BTC"])
	}
}

func TestFileCooldownMissingFile(t *testing.T) {
	store := NewFileCooldownStore(filepath.Join(t.TempDir(), "nope.json"), applogger.Nop())

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file must load as empty, got error %v", err)
	}
	if len(state) != 0 {
		t.Fatalf("expected empty state, got %v", state)
	}
}

func TestFileCooldownCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "action_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileCooldownStore(path, applogger.Nop())

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt file must load as empty, got error %v", err)
	}
	if len(state) != 0 {
		t.Fatalf("expected empty state, got %v", state)
	}
}

func TestFileCooldownDropsUnparseableEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "action_state.json")
	body := `{"BTC":"2026-03-01T12:00:00Z","ETH":"yesterday"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileCooldownStore(path, applogger.Nop())

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state) != 1 {
		t.Fatalf("expected the bad entry dropped, got %v", state)
	}
	if _, ok := state["BTC"]; !ok {
		t.Fatalf("good entry lost: %v", state)
	}
}

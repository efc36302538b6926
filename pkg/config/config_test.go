package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
telegram:
  enabled: false
portfolio:
  held: [btc, eth]
  weights:
    btc: 30
    eth: 25
baskets:
  - name: AI
    members: [tao, rndr]
adjacency:
  near: [avax]
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Report.Policy != PolicyDigest {
		t.Fatalf("default policy should be digest, got %q", cfg.Report.Policy)
	}
	if cfg.Cooldown.Window != 6*time.Hour {
		t.Fatalf("default cooldown should be 6h, got %v", cfg.Cooldown.Window)
	}
	if cfg.Thresholds.Anomaly.Change24h != 25 || cfg.Thresholds.Anomaly.Change7d != 60 {
		t.Fatalf("anomaly defaults wrong: %+v", cfg.Thresholds.Anomaly)
	}
	if cfg.Thresholds.Macro.Baseline != 50 {
		t.Fatalf("macro baseline default wrong: %d", cfg.Thresholds.Macro.Baseline)
	}

	// symbols normalize to upper case everywhere
	if !cfg.Held("BTC") || cfg.Held("btc") {
		t.Fatalf("held list not normalized: %v", cfg.Portfolio.Held)
	}
	if cfg.Weight("ETH") != 25 {
		t.Fatalf("weights not normalized: %v", cfg.Portfolio.Weights)
	}
	if cfg.Baskets[0].Members[0] != "TAO" {
		t.Fatalf("basket members not normalized: %v", cfg.Baskets[0].Members)
	}
	if _, ok := cfg.Adjacency["NEAR"]; !ok {
		t.Fatalf("adjacency keys not normalized: %v", cfg.Adjacency)
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	body := minimalConfig + "\nreport:\n  policy: shout\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for unknown policy")
	}
}

func TestLoadRejectsInvertedCutoffs(t *testing.T) {
	body := minimalConfig + `
thresholds:
  macro:
    risk_on_cutoff: 30
    risk_off_cutoff: 40
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error when risk_off >= risk_on")
	}
}

func TestLoadRejectsBasketWithoutMembersOrCategory(t *testing.T) {
	body := `
telegram:
  enabled: false
baskets:
  - name: Empty
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for basket without members or category")
	}
}

func TestLoadRequiresTokenWhenTelegramEnabled(t *testing.T) {
	body := `
telegram:
  enabled: true
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for enabled telegram without token")
	}
}

func TestParseWeights(t *testing.T) {
	got, err := ParseWeights("btc:30, eth:25,sol:15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["BTC"] != 30 || got["ETH"] != 25 || got["SOL"] != 15 {
		t.Fatalf("unexpected weights %v", got)
	}
}

func TestParseWeightsFailsClosed(t *testing.T) {
	for _, bad := range []string{"btc=30", "btc:abc", "btc:-5"} {
		if _, err := ParseWeights(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("ACTION_CHAT_ID", "-1")
	t.Setenv("MARKET_CHAT_ID", "-2")
	t.Setenv("PORTFOLIO_COINS", "btc,link")
	t.Setenv("PORTFOLIO_WEIGHTS", "btc:40,link:10")
	t.Setenv("COOLDOWN_HOURS", "12")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Telegram.BotToken != "tok" || cfg.Telegram.ActionChatID != "-1" || cfg.Telegram.MarketChatID != "-2" {
		t.Fatalf("telegram env overrides lost: %+v", cfg.Telegram)
	}
	if len(cfg.Portfolio.Held) != 2 || cfg.Portfolio.Held[1] != "LINK" {
		t.Fatalf("PORTFOLIO_COINS override lost: %v", cfg.Portfolio.Held)
	}
	if cfg.Weight("BTC") != 40 {
		t.Fatalf("PORTFOLIO_WEIGHTS override lost: %v", cfg.Portfolio.Weights)
	}
	if cfg.Cooldown.Window != 12*time.Hour {
		t.Fatalf("COOLDOWN_HOURS override lost: %v", cfg.Cooldown.Window)
	}
}

func TestLoadWithEnvRejectsBadCooldown(t *testing.T) {
	t.Setenv("COOLDOWN_HOURS", "zero")
	if _, err := LoadWithEnv(writeConfig(t, minimalConfig)); err == nil {
		t.Fatalf("expected error for unparseable COOLDOWN_HOURS")
	}
}

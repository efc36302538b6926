package usecase

import (
	"testing"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"

	"github.com/creasty/defaults"
)

func f64(v float64) *float64 { return &v }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	if err := defaults.Set(&c); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	c.Portfolio.Held = []string{"BTC", "ETH", "SOL", "AVAX"}
	c.Portfolio.Weights = map[string]float64{"BTC": 30, "ETH": 25, "SOL": 15, "AVAX": 30}
	c.Adjacency = map[string][]string{"NEAR": {"AVAX"}}
	c.Baskets = []config.BasketConfig{
		{Name: "AI", Category: "artificial-intelligence", Members: []string{"TAO", "RNDR"}},
		{Name: "L2", Category: "layer-2", Members: []string{"ARB", "OP"}},
	}
	return &c
}

func asset(symbol string, change24h, change7d float64) models.AssetRecord {
	return models.AssetRecord{
		Symbol:    symbol,
		Price:     100,
		Change24h: f64(change24h),
		Change7d:  f64(change7d),
		Volume:    f64(2e8),
		MarketCap: f64(1e9),
	}
}

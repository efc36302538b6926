package models

import (
	"strings"
	"time"
)

// AssetRecord is one market row from the snapshot provider. Numeric fields the
// provider may omit are pointers; nil means "not returned this run".
type AssetRecord struct {
	Symbol    string `json:"symbol"` // uppercased, unique within a snapshot
	ID        string `json:"id"`     // provider identifier, e.g. "bitcoin"
	Price     float64  `json:"price"`
	Change24h *float64 `json:"change_24h,omitempty"`
	Change7d  *float64 `json:"change_7d,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// Actionable reports whether the record carries the fields the anomaly and
// weakness checks require (24h change, volume, market cap).
func (a *AssetRecord) Actionable() bool {
	return a.Change24h != nil && a.Volume != nil && a.MarketCap != nil
}

// VolumeToCapRatio returns volume/market-cap and whether it is defined.
func (a *AssetRecord) VolumeToCapRatio() (float64, bool) {
	if a.Volume == nil || a.MarketCap == nil || *a.MarketCap <= 0 {
		return 0, false
	}
	return *a.Volume / *a.MarketCap, true
}

// GlobalMacroRecord carries the per-run global figures. Nil fields degrade the
// macro assessment to its neutral baseline rather than failing the run.
type GlobalMacroRecord struct {
	BTCDominance *float64 `json:"btc_dominance,omitempty"` // percent, [0,100]
	ETHDominance *float64 `json:"eth_dominance,omitempty"` // percent, [0,100]
}

// Snapshot is one point-in-time pull of market data for the tracked universe.
// It is produced fresh each run and never mutated.
type Snapshot struct {
	Assets    []AssetRecord     `json:"assets"`
	Global    GlobalMacroRecord `json:"global"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// BySymbol returns the record for an uppercased symbol.
func (s *Snapshot) BySymbol(symbol string) (*AssetRecord, bool) {
	symbol = strings.ToUpper(symbol)
	for i := range s.Assets {
		if s.Assets[i].Symbol == symbol {
			return &s.Assets[i], true
		}
	}
	return nil, false
}

// Empty reports whether the provider degraded to a no-data result.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Assets) == 0
}

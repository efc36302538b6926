package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func marketsBody(category string) string {
	if category == "artificial-intelligence" {
		return `[{"id":"bittensor","symbol":"tao","current_price":400,
			"price_change_percentage_24h":12.5,"price_change_percentage_7d_in_currency":30.1,
			"total_volume":100000000,"market_cap":3000000000}]`
	}
	return `[
		{"id":"bitcoin","symbol":"btc","current_price":65000,
		 "price_change_percentage_24h":1.2,"price_change_percentage_7d_in_currency":-0.5,
		 "total_volume":30000000000,"market_cap":1200000000000},
		{"id":"bittensor","symbol":"tao","current_price":400,
		 "price_change_percentage_24h":12.5,"price_change_percentage_7d_in_currency":30.1,
		 "total_volume":100000000,"market_cap":3000000000},
		{"id":"odd","symbol":"odd","current_price":1,
		 "price_change_percentage_24h":null,"price_change_percentage_7d_in_currency":null,
		 "total_volume":null,"market_cap":null}
	]`
}

const globalBody = `{"data":{"market_cap_percentage":{"btc":56.2,"eth":12.1}}}`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/markets", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("vs_currency"); got != "usd" {
			t.Errorf("unexpected vs_currency %q", got)
		}
		w.Write([]byte(marketsBody(r.URL.Query().Get("category"))))
	})
	mux.HandleFunc("/global", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(globalBody))
	})
	return httptest.NewServer(mux)
}

func TestFetchSnapshot(t *testing.T) {
	srv := testServer(t)
	defer srv.Close()

	c := New(srv.URL, "usd", 250,
		WithRateLimit(1000, 1000),
		WithCategories([]string{"artificial-intelligence"}),
	)

	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap.Assets) != 3 {
		t.Fatalf("expected 3 deduplicated assets, got %d", len(snap.Assets))
	}

	btc, ok := snap.BySymbol("BTC")
	if !ok {
		t.Fatalf("BTC missing")
	}
	if btc.Price != 65000 || btc.Change24h == nil || *btc.Change24h != 1.2 {
		t.Fatalf("BTC row mismatch: %+v", btc)
	}

	// the category pull must tag, not duplicate, an already seen symbol
	tao, ok := snap.BySymbol("TAO")
	if !ok {
		t.Fatalf("TAO missing")
	}
	if tao.Category != "artificial-intelligence" {
		t.Fatalf("expected category tag on TAO, got %q", tao.Category)
	}

	odd, ok := snap.BySymbol("ODD")
	if !ok {
		t.Fatalf("ODD missing")
	}
	if odd.Actionable() {
		t.Fatalf("row with null fields must not be actionable")
	}

	if snap.Global.BTCDominance == nil || *snap.Global.BTCDominance != 56.2 {
		t.Fatalf("global dominance mismatch: %+v", snap.Global)
	}
}

func TestFetchSnapshotPartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/markets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsBody("")))
	})
	mux.HandleFunc("/global", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "usd", 250, WithRateLimit(1000, 1000))

	snap, err := c.FetchSnapshot(context.Background())
	if err == nil {
		t.Fatalf("expected partial error")
	}
	if snap.Empty() {
		t.Fatalf("market rows should survive a failed global pull")
	}
	if snap.Global.BTCDominance != nil {
		t.Fatalf("dominance must be nil after a failed global pull")
	}
}

func TestFetchSnapshotTotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "usd", 250, WithRateLimit(1000, 1000))

	snap, err := c.FetchSnapshot(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !snap.Empty() {
		t.Fatalf("expected empty snapshot, got %d assets", len(snap.Assets))
	}
}

package coingecko

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/cache"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

const snapshotCacheKey = "snapshot"

// Client pulls market snapshots from the CoinGecko public API. Failures
// degrade to an empty snapshot; the error is surfaced for logging only and
// never crosses the boundary as a fatal condition.
type Client struct {
	baseURL    string
	vsCurrency string
	perPage    int
	categories []string
	cacheTTL   time.Duration

	client  *xhttp.Client
	limiter *rate.Limiter
	cache   cache.Service
	log     *applogger.Logger
}

type Option func(*Client)

func New(baseURL, vsCurrency string, perPage int, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vsCurrency: vsCurrency,
		perPage:    perPage,
		client:     xhttp.NewClient(xhttp.WithTimeout(20 * time.Second)),
		limiter:    rate.NewLimiter(rate.Limit(0.5), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = applogger.Nop()
	}
	return c
}

// WithTimeout bounds each API call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client = xhttp.NewClient(xhttp.WithTimeout(timeout)) }
}

// WithRateLimit throttles API calls; the public tier is unforgiving.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

// WithCategories adds per-category pulls used to tag basket membership.
func WithCategories(categories []string) Option {
	return func(c *Client) { c.categories = categories }
}

// WithCache caches whole snapshots between closely spaced runs.
func WithCache(svc cache.Service, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = svc
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(log *applogger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// marketRow is the provider wire format for one /coins/markets entry.
type marketRow struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Price     float64  `json:"current_price"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	Change7d  *float64 `json:"price_change_percentage_7d_in_currency"`
	Volume    *float64 `json:"total_volume"`
	MarketCap *float64 `json:"market_cap"`
}

type globalResponse struct {
	Data struct {
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

// FetchSnapshot pulls the ranked market list, the global dominance figures,
// and one list per configured category. A partially failed pull returns what
// was fetched plus a non-nil error for logging.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if c.cache != nil {
		var cached models.Snapshot
		if err := c.cache.Get(ctx, snapshotCacheKey, &cached); err == nil && !cached.Empty() {
			c.log.Debug("snapshot served from cache",
				applogger.Int("assets", len(cached.Assets)))
			return &cached, nil
		}
	}

	snap := &models.Snapshot{FetchedAt: time.Now().UTC()}
	var errs []error

	rows, err := c.fetchMarkets(ctx, "")
	if err != nil {
		errs = append(errs, fmt.Errorf("markets: %w", err))
	}
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		c.appendRow(snap, index, row, "")
	}

	for _, category := range c.categories {
		catRows, err := c.fetchMarkets(ctx, category)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", category, err))
			continue
		}
		for _, row := range catRows {
			c.appendRow(snap, index, row, category)
		}
	}

	if global, err := c.fetchGlobal(ctx); err != nil {
		errs = append(errs, fmt.Errorf("global: %w", err))
	} else {
		snap.Global = global
	}

	if c.cache != nil && !snap.Empty() && len(errs) == 0 {
		if err := c.cache.Set(ctx, snapshotCacheKey, snap, c.cacheTTL); err != nil {
			c.log.Debug("snapshot cache write failed", applogger.Error(err))
		}
	}

	return snap, errors.Join(errs...)
}

// appendRow merges one wire row into the snapshot, deduplicating by symbol.
// The first category to claim an asset keeps it.
func (c *Client) appendRow(snap *models.Snapshot, index map[string]int, row marketRow, category string) {
	symbol := strings.ToUpper(strings.TrimSpace(row.Symbol))
	if symbol == "" {
		return
	}
	if i, ok := index[symbol]; ok {
		if category != "" && snap.Assets[i].Category == "" {
			snap.Assets[i].Category = category
		}
		return
	}
	index[symbol] = len(snap.Assets)
	snap.Assets = append(snap.Assets, models.AssetRecord{
		Symbol:    symbol,
		ID:        row.ID,
		Price:     row.Price,
		Change24h: row.Change24h,
		Change7d:  row.Change7d,
		Volume:    row.Volume,
		MarketCap: row.MarketCap,
		Category:  category,
	})
}

func (c *Client) fetchMarkets(ctx context.Context, category string) ([]marketRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := map[string][]string{
		"vs_currency":             {c.vsCurrency},
		"order":                   {"market_cap_desc"},
		"per_page":                {fmt.Sprintf("%d", c.perPage)},
		"page":                    {"1"},
		"price_change_percentage": {"24h,7d"},
	}
	if category != "" {
		params["category"] = []string{category}
	}

	var rows []marketRow
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/coins/markets",
		QueryParams: params,
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) fetchGlobal(ctx context.Context) (models.GlobalMacroRecord, error) {
	var global models.GlobalMacroRecord

	if err := c.limiter.Wait(ctx); err != nil {
		return global, err
	}

	var resp globalResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/global",
	}, &resp)
	if err != nil {
		return global, err
	}

	if btc, ok := resp.Data.MarketCapPercentage["btc"]; ok {
		v := btc
		global.BTCDominance = &v
	}
	if eth, ok := resp.Data.MarketCapPercentage["eth"]; ok {
		v := eth
		global.ETHDominance = &v
	}
	return global, nil
}

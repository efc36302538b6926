package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Report policies: a digest run always sends the macro/narrative summary, an
// actions run stays silent unless a detector fired.
const (
	PolicyDigest  = "digest"
	PolicyActions = "actions"
)

type BasketConfig struct {
	Name     string   `yaml:"name" validate:"required"`
	Category string   `yaml:"category"` // provider category label, optional
	Members  []string `yaml:"members"`  // symbols, optional when category set
}

type MacroThresholds struct {
	Baseline      int     `yaml:"baseline" default:"50" validate:"gte=0,lte=100"`
	RiskOnCutoff  int     `yaml:"risk_on_cutoff" default:"65" validate:"gte=0,lte=100"`
	RiskOffCutoff int     `yaml:"risk_off_cutoff" default:"35" validate:"gte=0,lte=100"`
	BTCDropBelow  float64 `yaml:"btc_drop_below" default:"-3"`
	BTCDropDelta  int     `yaml:"btc_drop_delta" default:"10"`
	DomUpper      float64 `yaml:"dominance_upper" default:"55"`
	DomUpperDelta int     `yaml:"dominance_upper_delta" default:"-15"`
	DomLower      float64 `yaml:"dominance_lower" default:"40"`
	DomLowerDelta int     `yaml:"dominance_lower_delta" default:"10"`
	EthBtcUpper   float64 `yaml:"eth_btc_upper" default:"0.075"`
	EthBtcUpDelta int     `yaml:"eth_btc_upper_delta" default:"15"`
	EthBtcLower   float64 `yaml:"eth_btc_lower" default:"0.065"`
	EthBtcLoDelta int     `yaml:"eth_btc_lower_delta" default:"-15"`
}

type NarrativeThresholds struct {
	Strong        float64 `yaml:"strong" default:"15"`
	Moderate      float64 `yaml:"moderate" default:"5"`
	VelocityAccel float64 `yaml:"velocity_accelerating" default:"20"`
	VelocityRise  float64 `yaml:"velocity_rising" default:"10"`
	VelocityFlat  float64 `yaml:"velocity_flat" default:"0"`
	RotationDelta float64 `yaml:"rotation_delta" default:"15"`
	IgnitionCount int     `yaml:"ignition_count" default:"3" validate:"gte=2"`
}

type AnomalyThresholds struct {
	Change24h       float64 `yaml:"change_24h" default:"25"`
	Change7d        float64 `yaml:"change_7d" default:"60"`
	ImpulseVeryFast float64 `yaml:"impulse_very_fast" default:"40"`
	ImpulseFast     float64 `yaml:"impulse_fast" default:"25"`
	VolumeConfirm   float64 `yaml:"volume_confirm" default:"0.1" validate:"gt=0"`
}

type WeaknessThresholds struct {
	Change24h float64 `yaml:"change_24h" default:"-8"`
	Change7d  float64 `yaml:"change_7d" default:"-15"`
	Exposure  float64 `yaml:"exposure" default:"25" validate:"gte=0"`
}

type ExposureThresholds struct {
	Contributor float64 `yaml:"contributor" default:"15"`
	Drag        float64 `yaml:"drag" default:"-15"`
	HighWeight  float64 `yaml:"high_weight" default:"25" validate:"gte=0"`
	BucketShare float64 `yaml:"bucket_share" default:"0.5" validate:"gt=0,lte=1"`
}

type ConflictThresholds struct {
	BTC24h     float64 `yaml:"btc_24h" default:"2"`
	BasketMean float64 `yaml:"basket_mean" default:"8"`
}

type Thresholds struct {
	Macro     MacroThresholds     `yaml:"macro"`
	Narrative NarrativeThresholds `yaml:"narrative"`
	Anomaly   AnomalyThresholds   `yaml:"anomaly"`
	Weakness  WeaknessThresholds  `yaml:"weakness"`
	Exposure  ExposureThresholds  `yaml:"exposure"`
	Conflict  ConflictThresholds  `yaml:"conflict"`
	GoldProxy float64             `yaml:"gold_proxy" default:"2000"`
}

type Config struct {
	Environment string `yaml:"environment" default:"production"`

	Report struct {
		Policy string `yaml:"policy" default:"digest" validate:"oneof=digest actions"`
	} `yaml:"report"`

	Log struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"console"` // console or json
		Output     string `yaml:"output" default:"stdout"`  // stdout, stderr, or file path
		MaxSizeMB  int    `yaml:"max_size_mb" default:"50"` // rotation, file output only
		MaxBackups int    `yaml:"max_backups" default:"3"`
		MaxAgeDays int    `yaml:"max_age_days" default:"14"`
	} `yaml:"log"`

	Server struct {
		Enabled         bool          `yaml:"enabled"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Schedule struct {
		Interval time.Duration `yaml:"interval" default:"30m"`
	} `yaml:"schedule"`

	CoinGecko struct {
		BaseURL    string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
		VsCurrency string        `yaml:"vs_currency" default:"usd"`
		PerPage    int           `yaml:"per_page" default:"250" validate:"gte=1,lte=250"`
		Timeout    time.Duration `yaml:"timeout" default:"20s"`
		RatePerSec float64       `yaml:"rate_per_sec" default:"0.5" validate:"gt=0"`
		Burst      int           `yaml:"burst" default:"2" validate:"gte=1"`
		CacheTTL   time.Duration `yaml:"cache_ttl" default:"5m"`
	} `yaml:"coingecko"`

	Telegram struct {
		Enabled      bool          `yaml:"enabled"`
		BotToken     string        `yaml:"bot_token"`
		ActionChatID string        `yaml:"action_chat_id"`
		MarketChatID string        `yaml:"market_chat_id"`
		Timeout      time.Duration `yaml:"timeout" default:"20s"`
	} `yaml:"telegram"`

	Portfolio struct {
		Held    []string           `yaml:"held"`
		Weights map[string]float64 `yaml:"weights"` // percent, need not sum to 100
	} `yaml:"portfolio"`

	Baskets []BasketConfig `yaml:"baskets" validate:"dive"`

	// Adjacency maps a symbol to the held symbols it is narratively linked to,
	// used for Medium portfolio relevance on anomalies.
	Adjacency map[string][]string `yaml:"adjacency"`

	Cooldown struct {
		Window   time.Duration `yaml:"window" default:"6h" validate:"gt=0"`
		Backend  string        `yaml:"backend" default:"file" validate:"oneof=file redis"`
		FilePath string        `yaml:"file_path" default:"action_state.json"`
		Redis    struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"marketpulse"`
		} `yaml:"redis"`
	} `yaml:"cooldown"`

	Thresholds Thresholds `yaml:"thresholds"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"market-alerts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"marketpulse"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	} `yaml:"clickhouse"`
}

var validate = validator.New()

// Load reads, defaults, and validates a YAML configuration file. Any failure
// here is fatal for the run: a malformed configuration would invalidate every
// downstream threshold.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// The env surface matches the original deployment: BOT_TOKEN, ACTION_CHAT_ID,
// MARKET_CHAT_ID, PORTFOLIO_COINS, PORTFOLIO_WEIGHTS, COOLDOWN_HOURS.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("ACTION_CHAT_ID"); v != "" {
		c.Telegram.ActionChatID = v
	}
	if v := os.Getenv("MARKET_CHAT_ID"); v != "" {
		c.Telegram.MarketChatID = v
	}
	if v := os.Getenv("PORTFOLIO_COINS"); v != "" {
		c.Portfolio.Held = splitSymbols(v)
	}
	if v := os.Getenv("PORTFOLIO_WEIGHTS"); v != "" {
		w, err := ParseWeights(v)
		if err != nil {
			return nil, fmt.Errorf("PORTFOLIO_WEIGHTS: %w", err)
		}
		c.Portfolio.Weights = w
	}
	if v := os.Getenv("COOLDOWN_HOURS"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("COOLDOWN_HOURS: invalid value %q", v)
		}
		c.Cooldown.Window = time.Duration(h) * time.Hour
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// ParseWeights parses a "SYM:25,OTHER:10" list. It fails closed on malformed
// input instead of guessing; a bad weight map would corrupt every exposure
// check downstream.
func ParseWeights(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q is not SYMBOL:WEIGHT", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("weight for %q: %w", strings.TrimSpace(k), err)
		}
		if w < 0 {
			return nil, fmt.Errorf("weight for %q is negative", strings.TrimSpace(k))
		}
		out[strings.ToUpper(strings.TrimSpace(k))] = w
	}
	return out, nil
}

// Validate checks struct tags plus the cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Thresholds.Macro.RiskOffCutoff >= c.Thresholds.Macro.RiskOnCutoff {
		return fmt.Errorf("macro risk_off_cutoff (%d) must be below risk_on_cutoff (%d)",
			c.Thresholds.Macro.RiskOffCutoff, c.Thresholds.Macro.RiskOnCutoff)
	}
	if c.Thresholds.Narrative.Moderate > c.Thresholds.Narrative.Strong {
		return fmt.Errorf("narrative moderate threshold (%v) above strong threshold (%v)",
			c.Thresholds.Narrative.Moderate, c.Thresholds.Narrative.Strong)
	}
	if c.Thresholds.Weakness.Change24h >= 0 || c.Thresholds.Weakness.Change7d >= 0 {
		return fmt.Errorf("weakness thresholds must be negative")
	}
	if c.Thresholds.Anomaly.Change24h <= 0 || c.Thresholds.Anomaly.Change7d <= 0 {
		return fmt.Errorf("anomaly thresholds must be positive")
	}

	for i := range c.Baskets {
		b := &c.Baskets[i]
		if len(b.Members) == 0 && b.Category == "" {
			return fmt.Errorf("basket %q needs members or a category", b.Name)
		}
		for j, m := range b.Members {
			b.Members[j] = strings.ToUpper(strings.TrimSpace(m))
		}
	}

	for i, s := range c.Portfolio.Held {
		c.Portfolio.Held[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	normalized := make(map[string]float64, len(c.Portfolio.Weights))
	for k, w := range c.Portfolio.Weights {
		if w < 0 {
			return fmt.Errorf("portfolio weight for %q is negative", k)
		}
		normalized[strings.ToUpper(strings.TrimSpace(k))] = w
	}
	c.Portfolio.Weights = normalized

	adj := make(map[string][]string, len(c.Adjacency))
	for k, links := range c.Adjacency {
		up := make([]string, len(links))
		for i, l := range links {
			up[i] = strings.ToUpper(strings.TrimSpace(l))
		}
		adj[strings.ToUpper(strings.TrimSpace(k))] = up
	}
	c.Adjacency = adj

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}

	return nil
}

// Held reports whether a symbol is in the held list.
func (c *Config) Held(symbol string) bool {
	for _, s := range c.Portfolio.Held {
		if s == symbol {
			return true
		}
	}
	return false
}

// Weight returns the configured weight percent for a symbol (0 when untracked).
func (c *Config) Weight(symbol string) float64 {
	return c.Portfolio.Weights[symbol]
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

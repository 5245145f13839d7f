// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Reserve source modes.
const (
	SourceStatic = "static"
	SourceLive   = "live"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Endless   EndlessConfig   `mapstructure:"endless"`
	Pools     []PoolConfig    `mapstructure:"pools"`
	Routes    []RouteConfig   `mapstructure:"routes"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"` // per client IP
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// EndlessConfig holds the Endless node and view function settings.
type EndlessConfig struct {
	Source          string        `mapstructure:"source"` // static | live
	NodeURL         string        `mapstructure:"node_url"`
	ModuleAddress   string        `mapstructure:"module_address"`
	AmountOutFn     string        `mapstructure:"amount_out_fn"`
	ReservesFn      string        `mapstructure:"reserves_fn"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      uint          `mapstructure:"max_retries"` // retries after the first attempt
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`

	// SnapshotFallback serves the configured snapshot when a live reserve
	// fetch fails, instead of surfacing the failure.
	SnapshotFallback bool `mapstructure:"snapshot_fallback"`
}

// ViewFunction returns the fully qualified Move function id for fn.
func (c *EndlessConfig) ViewFunction(fn string) string {
	return c.ModuleAddress + "::" + fn
}

// PoolConfig describes one liquidity pool between TokenA and TokenB.
// Reserves are atomic-unit integers kept as strings since they exceed float64 precision.
type PoolConfig struct {
	TokenA   string `mapstructure:"token_a"`
	TokenB   string `mapstructure:"token_b"`
	ReserveA string `mapstructure:"reserve_a"`
	ReserveB string `mapstructure:"reserve_b"`
	FeeBps   uint32 `mapstructure:"fee_bps"`
	Address  string `mapstructure:"address"`
}

// Reserves parses both reserves.
func (p *PoolConfig) Reserves() (*big.Int, *big.Int, error) {
	a, ok := new(big.Int).SetString(p.ReserveA, 10)
	if !ok || a.Sign() < 0 {
		return nil, nil, fmt.Errorf("pool %s/%s: invalid reserve_a %q", p.TokenA, p.TokenB, p.ReserveA)
	}
	b, ok := new(big.Int).SetString(p.ReserveB, 10)
	if !ok || b.Sign() < 0 {
		return nil, nil, fmt.Errorf("pool %s/%s: invalid reserve_b %q", p.TokenA, p.TokenB, p.ReserveB)
	}
	return a, b, nil
}

// AddressHash returns the pool address as a 32-byte hash.
func (p *PoolConfig) AddressHash() common.Hash {
	return common.HexToHash(p.Address)
}

// RouteConfig configures a two-hop route From -> Via -> To.
type RouteConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
	Via  string `mapstructure:"via"`
}

// ScanConfig holds slippage scanner settings.
type ScanConfig struct {
	Pairs            []string      `mapstructure:"pairs"` // "EDS-USDT"
	TradeSizes       []float64     `mapstructure:"trade_sizes"`
	Interval         time.Duration `mapstructure:"interval"`
	TransactionsFile string        `mapstructure:"transactions_file"`
}

// ParsedPairs splits the "FROM-TO" pair strings.
func (c *ScanConfig) ParsedPairs() ([][2]string, error) {
	out := make([][2]string, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		parts := strings.Split(p, "-")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid scan pair %q, want FROM-TO", p)
		}
		out = append(out, [2]string{strings.ToUpper(parts[0]), strings.ToUpper(parts[1])})
	}
	return out, nil
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Exporter       string `mapstructure:"exporter"` // otlp-grpc | otlp-http | zipkin | stdout
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	ZipkinURL      string `mapstructure:"zipkin_url"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// no file: defaults and env only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "SLS_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SLS_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SLS_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("server.addr", "SLS_SERVER_ADDR", "PORT_ADDR")

	v.BindEnv("endless.source", "SLS_RESERVE_SOURCE")
	v.BindEnv("endless.snapshot_fallback", "SLS_SNAPSHOT_FALLBACK")
	v.BindEnv("endless.node_url", "SLS_ENDLESS_NODE_URL", "ENDLESS_NODE_URL")
	v.BindEnv("endless.module_address", "SLS_ENDLESS_MODULE", "ENDLESS_MODULE_ADDRESS")

	v.BindEnv("scan.transactions_file", "SLS_TRANSACTIONS_FILE")

	v.BindEnv("telemetry.enabled", "SLS_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SLS_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SLS_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Default pool snapshot, taken from the Endless mainnet pools.
var defaultPools = []map[string]any{
	{
		"token_a":   "EDS",
		"token_b":   "USDT",
		"reserve_a": "2492395586673194",
		"reserve_b": "3014932793617",
		"fee_bps":   12,
		"address":   "0x52fe2d47e68de101b84826dce2a09d9d37e2fd2256aa8cda13931ba07cf33082",
	},
	{
		"token_a":   "USDT",
		"token_b":   "VDEP",
		"reserve_a": "96616536647",
		"reserve_b": "51767305097704601",
		"fee_bps":   12,
		"address":   "0x947079020ff7a80396813db930dc2731182d7d7601c253a5f44248446287aaac",
	},
}

var defaultRoutes = []map[string]any{
	{"from": "EDS", "to": "VDEP", "via": "USDT"},
	{"from": "VDEP", "to": "EDS", "via": "USDT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sliswap")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("endless.source", SourceStatic)
	v.SetDefault("endless.node_url", "https://rpc.endless.link")
	v.SetDefault("endless.module_address", "0x4198e1871cf459faceccb3d3e86882d7337d17badb0626a33538674385f6e5f4")
	v.SetDefault("endless.amount_out_fn", "liquidity_pool::get_amount_out")
	v.SetDefault("endless.reserves_fn", "liquidity_pool::pool_reserves")
	v.SetDefault("endless.timeout", "5s")
	v.SetDefault("endless.max_retries", 3)
	v.SetDefault("endless.snapshot_fallback", false)
	v.SetDefault("endless.initial_backoff", "200ms")
	v.SetDefault("endless.max_backoff", "2s")
	v.SetDefault("endless.cache_ttl", "10s")
	v.SetDefault("endless.rate_limit_per_sec", 10)

	v.SetDefault("pools", defaultPools)
	v.SetDefault("routes", defaultRoutes)

	v.SetDefault("scan.pairs", []string{"EDS-USDT", "USDT-VDEP", "EDS-VDEP"})
	v.SetDefault("scan.trade_sizes", []float64{1, 100, 10000})
	v.SetDefault("scan.interval", "30s")
	v.SetDefault("scan.transactions_file", "")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "sliswap")
	v.SetDefault("telemetry.exporter", "otlp-grpc")
	v.SetDefault("telemetry.prometheus_port", 9090)

	v.SetDefault("health.port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Endless.Source {
	case SourceStatic:
	case SourceLive:
		if c.Endless.NodeURL == "" {
			return fmt.Errorf("endless.node_url is required for live source")
		}
		if c.Endless.ModuleAddress == "" {
			return fmt.Errorf("endless.module_address is required for live source")
		}
	default:
		return fmt.Errorf("invalid endless.source: %q", c.Endless.Source)
	}

	if len(c.Pools) == 0 {
		return fmt.Errorf("pools cannot be empty")
	}
	for i := range c.Pools {
		p := &c.Pools[i]
		if p.TokenA == "" || p.TokenB == "" || p.TokenA == p.TokenB {
			return fmt.Errorf("pools[%d]: invalid tokens %q/%q", i, p.TokenA, p.TokenB)
		}
		if _, _, err := p.Reserves(); err != nil {
			return err
		}
		if p.FeeBps >= 10000 {
			return fmt.Errorf("pools[%d]: fee_bps %d out of range", i, p.FeeBps)
		}
	}
	for i, r := range c.Routes {
		if r.From == "" || r.To == "" || r.Via == "" {
			return fmt.Errorf("routes[%d]: from, to and via are required", i)
		}
	}

	for _, s := range c.Scan.TradeSizes {
		if s <= 0 {
			return fmt.Errorf("scan.trade_sizes must be positive, got %v", s)
		}
	}
	if _, err := c.Scan.ParsedPairs(); err != nil {
		return err
	}
	return nil
}

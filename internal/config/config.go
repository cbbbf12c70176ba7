package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds application settings. Defaults come from Default and can be
// overridden by TIMELESS_* environment variables, then by flags.
type Config struct {
	Host string `json:"host" env:"TIMELESS_HOST"`
	Port int    `json:"port" env:"TIMELESS_PORT"`

	DataDir     string `json:"data_dir"     env:"TIMELESS_DATA_DIR"`
	TreeFile    string `json:"tree_file"    env:"TIMELESS_TREE_FILE"`
	WeightsFile string `json:"weights_file" env:"TIMELESS_WEIGHTS_FILE"`
	TreeURL     string `json:"tree_url"     env:"TIMELESS_TREE_URL"`    // fetched when TreeFile is missing
	WeightsURL  string `json:"weights_url"  env:"TIMELESS_WEIGHTS_URL"` // fetched when WeightsFile is missing
	DBPath      string `json:"db_path"      env:"TIMELESS_DB_PATH"`

	DefaultRadius float64 `json:"default_radius" env:"TIMELESS_DEFAULT_RADIUS"`
	SeedMin       uint32  `json:"seed_min"       env:"TIMELESS_SEED_MIN"`
	SeedMax       uint32  `json:"seed_max"       env:"TIMELESS_SEED_MAX"`
	MaxResults    int     `json:"max_results"    env:"TIMELESS_MAX_RESULTS"`
	SearchWorkers int     `json:"search_workers" env:"TIMELESS_SEARCH_WORKERS"` // 0 = one per CPU
	HistoryLimit  int     `json:"history_limit"  env:"TIMELESS_HISTORY_LIMIT"`

	OTelEndpoint string `json:"otel_endpoint" env:"TIMELESS_OTEL_ENDPOINT"` // empty disables tracing
	MCPTransport string `json:"mcp_transport" env:"TIMELESS_MCP_TRANSPORT"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Host:          "127.0.0.1",
		Port:          13371,
		DataDir:       "data",
		TreeFile:      "psg_passive_nodes.json",
		WeightsFile:   "abyss_spawn_weights.json",
		DBPath:        "timeless.db",
		DefaultRadius: 1500,
		SeedMin:       79,
		SeedMax:       30977,
		MaxResults:    10,
		SearchWorkers: 0,
		HistoryLimit:  50,
		MCPTransport:  "stdio",
	}
}

// Load returns Default overridden by environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// ParseConfig loads the environment, then binds the shared flags on fs so
// they override it.
func ParseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	fs.StringVar(&cfg.Host, "host", cfg.Host, "HTTP listen host")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "reference data directory")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.IntVar(&cfg.SearchWorkers, "workers", cfg.SearchWorkers, "seed search workers (0 = one per CPU)")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DefaultRadius < 0 {
		return fmt.Errorf("default radius must be non-negative, got %v", c.DefaultRadius)
	}
	if c.SeedMin > c.SeedMax {
		return fmt.Errorf("seed range %d-%d is empty", c.SeedMin, c.SeedMax)
	}
	if c.SearchWorkers < 0 {
		return fmt.Errorf("search workers must be >= 0, got %d", c.SearchWorkers)
	}
	return nil
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

/*
Package config loads server configuration from defaults, an optional TOML
file and environment overrides.

PURPOSE:
  One Config value describes a deployment: where the server listens, where
  the default allocation table and the scenario database live, and the
  staffing constants (standard capacity, rate card, team role groups) the
  engine derives metrics from.

PRECEDENCE:
  1. Built-in defaults (Default())
  2. config.toml when present (Load())
  3. Environment variables (PORT, DATA_FILE, SCENARIO_DB)
  A missing file is not an error; a malformed one is.

FILE FORMAT (TOML):
  port = 8080
  data_file = "data/allocations.csv"
  scenario_db = "scenarios.db"

  [staffing]
  standard_capacity = 152

  [staffing.rates]
  "CE" = 89
  "Staff CE" = 104

  [[staffing.groups]]
  name = "Program Management"
  roles = ["CP", "SCP"]

SEE ALSO:
  - cmd/server/main.go: Loads .env then calls Load
  - metrics/ratecard.go: Consumes the rate overrides
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TYPES
// =============================================================================

// Config is the full server configuration.
type Config struct {
	Port       int    `toml:"port"`
	DataFile   string `toml:"data_file"`
	ScenarioDB string `toml:"scenario_db"`

	Staffing Staffing `toml:"staffing"`
}

// Staffing holds the engine constants. Numbers are plain TOML floats;
// the accessors convert to the decimals the engine works in.
type Staffing struct {
	// StandardCapacity is the monthly hours ceiling assumed when the data
	// carries no capacity column.
	StandardCapacity float64 `toml:"standard_capacity"`

	// Rates maps role names to hourly rates. Entries override the
	// built-in rate card; roles absent here keep their defaults.
	Rates map[string]float64 `toml:"rates"`

	// Groups are the named role groupings reported by the group
	// utilization endpoint.
	Groups []Group `toml:"groups"`
}

// Capacity returns the standard capacity as a decimal.
func (s Staffing) Capacity() decimal.Decimal {
	return decimal.NewFromFloat(s.StandardCapacity)
}

// RateOverrides returns the configured rates as decimals.
func (s Staffing) RateOverrides() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.Rates))
	for role, rate := range s.Rates {
		out[role] = decimal.NewFromFloat(rate)
	}
	return out
}

// Group is a named set of roles aggregated together.
type Group struct {
	Name  string   `toml:"name"`
	Roles []string `toml:"roles"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:       8080,
		DataFile:   "data/allocations.csv",
		ScenarioDB: "scenarios.db",
		Staffing: Staffing{
			StandardCapacity: 152,
			Groups: []Group{
				{Name: "Program Management (Associate)", Roles: []string{"ACP"}},
				{Name: "Program Management", Roles: []string{"CP", "SCP"}},
				{Name: "Engineering", Roles: []string{"ACE", "CE", "SCE"}},
			},
		},
	}
}

// Load builds a Config from defaults, the TOML file at path if it exists,
// and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		default:
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Staffing.StandardCapacity <= 0 {
		return cfg, fmt.Errorf("standard_capacity must be positive, got %v", cfg.Staffing.StandardCapacity)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("SCENARIO_DB"); v != "" {
		cfg.ScenarioDB = v
	}
}

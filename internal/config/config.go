package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/llm"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
		// CORSOrigins lists browser origins allowed to call the API.
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	Sourcing struct {
		// CatalogPath points at a YAML quote catalog; empty disables it.
		CatalogPath string `yaml:"catalog_path"`
		// UseLLM adds the language model as a quote source after the catalog.
		UseLLM bool `yaml:"use_llm"`
	} `yaml:"sourcing"`
	Optimizer struct {
		ActivitySlots     int     `yaml:"activity_slots"`
		ImprovementMargin float64 `yaml:"improvement_margin"`
		WeightTolerance   float64 `yaml:"weight_tolerance"`
	} `yaml:"optimizer"`
	Advice struct {
		CacheSize int           `yaml:"cache_size"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"advice"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	LLM llm.LLMConfig `yaml:"llm"`
}

// Default returns the configuration used when no file or env var says otherwise.
func Default() Config {
	var cfg Config
	cfg.Database.Path = filepath.Join(homeDir(), ".itinera", "itinera.db")
	cfg.HTTP.Addr = "127.0.0.1:8080"
	cfg.Optimizer.ActivitySlots = 1
	cfg.Optimizer.ImprovementMargin = 0.05
	cfg.Optimizer.WeightTolerance = 1e-6
	cfg.Advice.CacheSize = 128
	cfg.Advice.CacheTTL = 6 * time.Hour
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.LLM = llm.DefaultConfig()
	return cfg
}

// DefaultPath is $ITINERA_CONFIG or ~/.itinera/config.yaml.
func DefaultPath() string {
	if v := os.Getenv("ITINERA_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".itinera", "config.yaml")
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with any ITINERA_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ITINERA_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("ITINERA_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("ITINERA_CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.HTTP.CORSOrigins = append(c.HTTP.CORSOrigins, o)
			}
		}
	}
	if v := os.Getenv("ITINERA_CATALOG"); v != "" {
		c.Sourcing.CatalogPath = v
	}
	if v := os.Getenv("ITINERA_SOURCING_LLM"); v != "" {
		c.Sourcing.UseLLM, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ITINERA_ACTIVITY_SLOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Optimizer.ActivitySlots = n
		}
	}
	if v := os.Getenv("ITINERA_IMPROVEMENT_MARGIN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Optimizer.ImprovementMargin = f
		}
	}
	if v := os.Getenv("ITINERA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ITINERA_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	llm.ApplyEnv(&c.LLM)
}

// Validate checks ranges that would otherwise surface as odd engine behavior.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Optimizer.ActivitySlots < 1 {
		return fmt.Errorf("optimizer.activity_slots must be at least 1, got %d", c.Optimizer.ActivitySlots)
	}
	if c.Optimizer.ImprovementMargin < 0 || c.Optimizer.ImprovementMargin > 1 {
		return fmt.Errorf("optimizer.improvement_margin must be in [0,1], got %g", c.Optimizer.ImprovementMargin)
	}
	if c.Optimizer.WeightTolerance <= 0 {
		return fmt.Errorf("optimizer.weight_tolerance must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

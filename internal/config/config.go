package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FilterConfig holds the outlier filter thresholds. Zero values are
// replaced with defaults on Load.
type FilterConfig struct {
	MinimumPriceThreshold int64   `yaml:"minimum_price_threshold"`
	MinimumDataPoints     int     `yaml:"minimum_data_points"`
	MedianMinRatio        float64 `yaml:"median_min_ratio"`
	MedianMaxRatio        float64 `yaml:"median_max_ratio"`
	IQRMultiplier         float64 `yaml:"iqr_multiplier"`
	FinalPriceRatio       float64 `yaml:"final_price_ratio"`
}

// Config holds all application configuration.
type Config struct {
	Collector struct {
		SamplesFile string `yaml:"samples_file"`
	} `yaml:"collector"`
	Filter FilterConfig `yaml:"filter"`
	Series struct {
		Capacity1h  int `yaml:"capacity_1h"`
		Capacity12h int `yaml:"capacity_12h"`
		Capacity24h int `yaml:"capacity_24h"`
	} `yaml:"series"`
	Schedule struct {
		CycleCron string `yaml:"cycle_cron"`
	} `yaml:"schedule"`
	Storage struct {
		HistoryDir string `yaml:"history_dir"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
}

// DefaultFilterConfig returns the filter thresholds used when nothing is
// configured.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinimumPriceThreshold: 10000,
		MinimumDataPoints:     4,
		MedianMinRatio:        10,
		MedianMaxRatio:        20,
		IQRMultiplier:         1.0,
		FinalPriceRatio:       30,
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SAMPLES_FILE"); v != "" {
		cfg.Collector.SamplesFile = v
	}
	if v := os.Getenv("HISTORY_DIR"); v != "" {
		cfg.Storage.HistoryDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("CYCLE_CRON"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("MINIMUM_PRICE_THRESHOLD"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Filter.MinimumPriceThreshold = n
		}
	}
	if v := os.Getenv("MINIMUM_DATA_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Filter.MinimumDataPoints = n
		}
	}

	// Defaults
	def := DefaultFilterConfig()
	if cfg.Filter.MinimumPriceThreshold == 0 {
		cfg.Filter.MinimumPriceThreshold = def.MinimumPriceThreshold
	}
	if cfg.Filter.MinimumDataPoints == 0 {
		cfg.Filter.MinimumDataPoints = def.MinimumDataPoints
	}
	if cfg.Filter.MedianMinRatio == 0 {
		cfg.Filter.MedianMinRatio = def.MedianMinRatio
	}
	if cfg.Filter.MedianMaxRatio == 0 {
		cfg.Filter.MedianMaxRatio = def.MedianMaxRatio
	}
	if cfg.Filter.IQRMultiplier == 0 {
		cfg.Filter.IQRMultiplier = def.IQRMultiplier
	}
	if cfg.Filter.FinalPriceRatio == 0 {
		cfg.Filter.FinalPriceRatio = def.FinalPriceRatio
	}
	if cfg.Series.Capacity1h == 0 {
		cfg.Series.Capacity1h = 168
	}
	if cfg.Series.Capacity12h == 0 {
		cfg.Series.Capacity12h = 60
	}
	if cfg.Series.Capacity24h == 0 {
		cfg.Series.Capacity24h = 365
	}
	if cfg.Schedule.CycleCron == "" {
		cfg.Schedule.CycleCron = "0 0,30 * * * *"
	}
	if cfg.Collector.SamplesFile == "" {
		cfg.Collector.SamplesFile = "data/equipment_prices.json"
	}
	if cfg.Storage.HistoryDir == "" {
		cfg.Storage.HistoryDir = "data/price_history"
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Filter.MinimumPriceThreshold < 0 {
		return fmt.Errorf("filter.minimum_price_threshold must not be negative")
	}
	if c.Filter.MinimumDataPoints < 1 {
		return fmt.Errorf("filter.minimum_data_points must be at least 1")
	}
	if c.Filter.MedianMinRatio <= 1 || c.Filter.MedianMaxRatio <= 1 {
		return fmt.Errorf("filter median ratios must be greater than 1")
	}
	if c.Filter.IQRMultiplier <= 0 {
		return fmt.Errorf("filter.iqr_multiplier must be positive")
	}
	if c.Filter.FinalPriceRatio <= 1 {
		return fmt.Errorf("filter.final_price_ratio must be greater than 1")
	}
	if c.Series.Capacity1h < 1 || c.Series.Capacity12h < 1 || c.Series.Capacity24h < 1 {
		return fmt.Errorf("series capacities must be positive")
	}
	return nil
}

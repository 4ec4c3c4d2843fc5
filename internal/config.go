package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

// SnelConfig is the shared configuration for the snel command-line tools.
type SnelConfig struct {
	DataDir string `mapstructure:"data_dir"`

	Generate struct {
		Rows            int     `mapstructure:"rows"`
		NullProbability float64 `mapstructure:"null_probability"`
	} `mapstructure:"generate"`

	Bench struct {
		ChunkSize int `mapstructure:"chunk_size"`
		Workers   int `mapstructure:"workers"`
	} `mapstructure:"bench"`
}

// DefaultConfig mirrors the workload the format was designed around: two
// columns, 90% NULLs on the nullable ones, ten million rows.
func DefaultConfig() *SnelConfig {
	cfg := &SnelConfig{DataDir: "./data"}
	cfg.Generate.Rows = 10_000_000
	cfg.Generate.NullProbability = 0.9
	cfg.Bench.ChunkSize = 64 * 1024
	cfg.Bench.Workers = 0 // 0 = GOMAXPROCS
	return cfg
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*SnelConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

package batch

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config carries the batch-run settings. The zero value is usable: zero
// fields mean "use the default".
type Config struct {
	Workers     int   `yaml:"workers"`
	MaxFileSize int64 `yaml:"max_file_size"`
	Recursive   bool  `yaml:"recursive"`
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 256 << 20
	}
}

// LoadConfig reads settings from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

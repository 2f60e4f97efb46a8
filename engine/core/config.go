package core

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	DEFAULT_LOG_LEVEL     string = "info"
	DEFAULT_LOG_PREFIX    string = "Fusion 🧊 "
	DEFAULT_SETS_PER_POOL uint32 = 1000
)

type LogConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

type DescriptorConfig struct {
	/** @brief How many descriptor sets a single pool of the allocator can hold. */
	SetsPerPool uint32 `toml:"sets_per_pool"`
	/** @brief Raw VkDescriptorPoolCreateFlags used for every pool. */
	PoolFlags uint32 `toml:"pool_flags"`
}

// Config is the on-disk configuration of the graphics device layer.
type Config struct {
	Log         LogConfig        `toml:"log"`
	Descriptors DescriptorConfig `toml:"descriptors"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DEFAULT_LOG_LEVEL,
			Prefix: DEFAULT_LOG_PREFIX,
		},
		Descriptors: DescriptorConfig{
			SetsPerPool: DEFAULT_SETS_PER_POOL,
		},
	}
}

// ParseConfig decodes TOML data on top of the defaults, so a partial file
// only overrides the keys it names.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads the TOML file at path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			LogWarn("config file '%s' not found, using defaults", path)
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return ParseConfig(data)
}

func (c *Config) Validate() error {
	if c.Descriptors.SetsPerPool == 0 {
		return fmt.Errorf("descriptors.sets_per_pool must be greater than zero")
	}
	return nil
}

// Apply pushes the logging section onto the engine logger.
func (c *Config) Apply() error {
	if err := SetLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
	}
	if c.Log.Prefix != "" {
		SetLogPrefix(c.Log.Prefix)
	}
	return nil
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

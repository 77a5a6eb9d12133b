package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultRadius       = 5
	defaultStatusStream = "blurbench:status"
	defaultStreamMaxLen = 1000

	EnvPrefix     = "BLURBENCH"
	EnvConfigFile = "BLURBENCH_CONFIG_FILE"
)

type Config struct {
	Radius    int          `mapstructure:"radius"`
	Sigma     float64      `mapstructure:"sigma"`
	Workers   int          `mapstructure:"workers"`
	OutputDir string       `mapstructure:"output_dir"`
	Debug     bool         `mapstructure:"debug"`
	Redis     *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	Stream string `mapstructure:"stream"`
	MaxLen int64  `mapstructure:"max_len"`
}

// Enabled reports whether status events should also go to Redis
func (r *RedisConfig) Enabled() bool {
	return r != nil && r.Addr != ""
}

// New returns a viper instance with defaults, environment binding and, when
// configFile or BLURBENCH_CONFIG_FILE names one, a config file loaded.
// Without an explicit file ./config.yaml is read if it exists.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("radius", defaultRadius)
	v.SetDefault("sigma", 0)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("output_dir", "")
	v.SetDefault("debug", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.stream", defaultStatusStream)
	v.SetDefault("redis.max_len", defaultStreamMaxLen)

	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("viper read config: %w", err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("viper read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes the settings held by v into a validated Config
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Redis == nil {
		cfg.Redis = &RedisConfig{}
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = defaultStatusStream
	}
	if cfg.Redis.MaxLen == 0 {
		cfg.Redis.MaxLen = defaultStreamMaxLen
	}
}

// Validate rejects settings that can never produce a run. A non-positive radius
// is accepted here; the blur unit reports it per image.
func (c *Config) Validate() error {
	if c.Sigma < 0 {
		return fmt.Errorf("sigma must not be negative, got %v", c.Sigma)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds measurement provider tuning and process level options.
// It is read from fluxnet.yaml and FLUXNET_* environment variables.
type Config struct {
	ConfigURL        string        `mapstructure:"config_url"`
	ServersURL       string        `mapstructure:"servers_url"`
	UserAgent        string        `mapstructure:"user_agent"`
	DownloadSizes    []int         `mapstructure:"download_sizes"`
	UploadSizes      []int         `mapstructure:"upload_sizes"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	Candidates       int           `mapstructure:"candidates"`
	PingSamples      int           `mapstructure:"ping_samples"`
	RateLimitMbps    float64       `mapstructure:"rate_limit_mbps"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	Verbosity        int           `mapstructure:"verbosity"`
}

const (
	configName = "fluxnet"
	envPrefix  = "FLUXNET"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ConfigURL:        "https://www.speedtest.net/speedtest-config.php",
		ServersURL:       "https://www.speedtest.net/api/js/servers?engine=js&https_functional=true&limit=10",
		UserAgent:        "fluxnet/1.0 (+https://github.com/ytget/fluxnet)",
		DownloadSizes:    []int{350, 500, 750, 1000, 1500, 2000},
		UploadSizes:      []int{262144, 524288, 1048576, 2097152},
		RequestTimeout:   10 * time.Second,
		Candidates:       5,
		PingSamples:      3,
		RateLimitMbps:    0,                      // no limit
		ProgressInterval: 100 * time.Millisecond, // UI refresh cadence
		MetricsAddr:      "",                     // disabled
		Verbosity:        0,
	}
}

// Load reads configuration from the default search path and the environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", configName))
	}
	v.AddConfigPath(".")

	return load(v)
}

// LoadFile reads configuration from an explicit file path and the environment
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	config.normalize()
	return config, nil
}

// setDefaults registers every key so that environment overrides are seen by Unmarshal
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("config_url", c.ConfigURL)
	v.SetDefault("servers_url", c.ServersURL)
	v.SetDefault("user_agent", c.UserAgent)
	v.SetDefault("download_sizes", c.DownloadSizes)
	v.SetDefault("upload_sizes", c.UploadSizes)
	v.SetDefault("request_timeout", c.RequestTimeout)
	v.SetDefault("candidates", c.Candidates)
	v.SetDefault("ping_samples", c.PingSamples)
	v.SetDefault("rate_limit_mbps", c.RateLimitMbps)
	v.SetDefault("progress_interval", c.ProgressInterval)
	v.SetDefault("metrics_addr", c.MetricsAddr)
	v.SetDefault("verbosity", c.Verbosity)
}

// normalize replaces out-of-range values with defaults
func (c *Config) normalize() {
	def := DefaultConfig()

	if c.Candidates < 1 {
		c.Candidates = def.Candidates
	}
	if c.PingSamples < 1 {
		c.PingSamples = def.PingSamples
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.ProgressInterval < 0 {
		c.ProgressInterval = def.ProgressInterval
	}
	if c.RateLimitMbps < 0 {
		c.RateLimitMbps = 0
	}
	c.DownloadSizes = positiveOr(c.DownloadSizes, def.DownloadSizes)
	c.UploadSizes = positiveOr(c.UploadSizes, def.UploadSizes)
}

func positiveOr(values, fallback []int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mq-dashboard/internal/dashboard"
	"mq-dashboard/internal/util"
)

const EnvPrefix = "MQDASH"

const (
	defaultListenAddr   = ":3000"
	defaultUpstreamURL  = "http://localhost:8080/api/metrics"
	defaultProxyURL     = "http://localhost:3000/api/metrics"
	defaultLogDir       = "../log"
	defaultLogLevel     = "info"
	defaultSimulateAddr = ":8080"
)

// Config is shared by every binary; each reads the keys it needs.
type Config struct {
	ListenAddr      string        `mapstructure:"listen-addr"`
	UpstreamURL     string        `mapstructure:"upstream-url"`
	ProxyURL        string        `mapstructure:"proxy-url"`
	PollInterval    time.Duration `mapstructure:"poll-interval"`
	FetchTimeout    time.Duration `mapstructure:"fetch-timeout"`
	Overlap         string        `mapstructure:"overlap"`
	Retention       string        `mapstructure:"retention"`
	RetentionSize   int           `mapstructure:"retention-size"`
	RetentionWindow time.Duration `mapstructure:"retention-window"`
	RecordDB        string        `mapstructure:"record-db"`
	LogDir          string        `mapstructure:"log-dir"`
	LogLevel        string        `mapstructure:"log-level"`
	MetricsEnabled  bool          `mapstructure:"metrics-enabled"`
	SimulateAddr    string        `mapstructure:"simulate-addr"`
}

// Load reads defaults, then the optional YAML file, then MQDASH_* variables.
// An empty configPath means $HOME/.config/mqdash/config.yml; a missing file is not an error.
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("listen-addr", defaultListenAddr)
	v.SetDefault("upstream-url", defaultUpstreamURL)
	v.SetDefault("proxy-url", defaultProxyURL)
	v.SetDefault("poll-interval", dashboard.DefaultInterval)
	v.SetDefault("fetch-timeout", time.Duration(0))
	v.SetDefault("overlap", string(dashboard.OverlapLatest))
	v.SetDefault("retention", string(dashboard.RetentionUnbounded))
	v.SetDefault("retention-size", 0)
	v.SetDefault("retention-window", time.Duration(0))
	v.SetDefault("record-db", "")
	v.SetDefault("log-dir", defaultLogDir)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("metrics-enabled", true)
	v.SetDefault("simulate-addr", defaultSimulateAddr)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".config", "mqdash", "config.yml"))
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch-timeout must not be negative, got %s", c.FetchTimeout)
	}
	if _, err := c.OverlapPolicy(); err != nil {
		return err
	}
	if err := c.RetentionPolicy().Validate(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) OverlapPolicy() (dashboard.OverlapPolicy, error) {
	return dashboard.ParseOverlap(c.Overlap)
}

func (c Config) RetentionPolicy() dashboard.Retention {
	return dashboard.Retention{
		Policy: dashboard.RetentionPolicy(c.Retention),
		Size:   c.RetentionSize,
		Window: c.RetentionWindow,
	}
}

func (c Config) Level() (int, error) {
	return util.ParseLevel(c.LogLevel)
}

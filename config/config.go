package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fan-control-backend/internal/parse"
)

// DefaultDeviceAddress is used when no device address is configured.
const DefaultDeviceAddress = "192.168.1.100"

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"FAN_SERVER_"`
	Device    DeviceConfig    `yaml:"device" envPrefix:"FAN_"`
	Animation AnimationConfig `yaml:"animation"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"FAN_DATABASE_"`
	MQTT      MQTTConfig      `yaml:"mqtt" envPrefix:"FAN_MQTT_"`
	Publisher PublisherConfig `yaml:"publisher"`
}

// PublisherConfig holds the configuration for the state mirror worker pool.
type PublisherConfig struct {
	Size int `yaml:"size"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" env:"PORT"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DeviceConfig describes how to reach the fan controller.
type DeviceConfig struct {
	Address   string `yaml:"address" env:"DEVICE_ADDRESS"`
	HTTPProxy string `yaml:"http_proxy" env:"HTTP_PROXY"`
}

// AnimationConfig controls the rotation loop of the panel.
type AnimationConfig struct {
	FramesPerSecond int           `yaml:"frames_per_second"`
	BaseStep        int           `yaml:"base_step"`
	EaseOutMillis   int           `yaml:"ease_out_ms"`
	FrameInterval   time.Duration `yaml:"-"`
	EaseOut         time.Duration `yaml:"-"`
}

// DatabaseConfig holds the dispatch journal connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn" env:"DSN"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// MQTTConfig configures the optional state mirror. Empty Broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker" env:"BROKER"`
	Username    string `yaml:"username" env:"USERNAME"`
	Password    string `yaml:"password" env:"PASSWORD"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// Load reads the configuration from the given path, applies environment
// overrides and fills in defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		zap.S().Warnf("config file %s not found; using defaults", path)
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	cfg.Device.Address = parse.Address(cfg.Device.Address)
	if cfg.Device.Address == "" {
		cfg.Device.Address = DefaultDeviceAddress
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Animation.FramesPerSecond <= 0 {
		cfg.Animation.FramesPerSecond = 60
	}
	if cfg.Animation.BaseStep <= 0 {
		cfg.Animation.BaseStep = 4
	}
	if cfg.Animation.EaseOutMillis <= 0 {
		cfg.Animation.EaseOutMillis = 500
	}
	cfg.Animation.FrameInterval = time.Second / time.Duration(cfg.Animation.FramesPerSecond)
	cfg.Animation.EaseOut = time.Duration(cfg.Animation.EaseOutMillis) * time.Millisecond

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file::memory:?cache=shared"
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "fand"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "fan"
	}

	if cfg.Publisher.Size <= 0 {
		zap.S().Infof("publisher.size is not set or invalid; defaulting to 1")
		cfg.Publisher.Size = 1
	}
}

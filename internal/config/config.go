package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Secret       string        `mapstructure:"secret"`

	Video     VideoConfig     `mapstructure:"video"`
	Drone     DroneConfig     `mapstructure:"drone"`
	Flight    FlightConfig    `mapstructure:"flight"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type VideoConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Backoff        BackoffConfig `mapstructure:"backoff"`
}

func (v VideoConfig) Addr() string {
	return net.JoinHostPort(v.Host, strconv.Itoa(v.Port))
}

type BackoffConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Initial time.Duration `mapstructure:"initial"`
	Max     time.Duration `mapstructure:"max"`
}

type DroneConfig struct {
	Host            string        `mapstructure:"host"`
	ControlPort     int           `mapstructure:"control_port"`
	NavdataPort     int           `mapstructure:"navdata_port"`
	CommandInterval time.Duration `mapstructure:"command_interval"`
	NavdataTimeout  time.Duration `mapstructure:"navdata_timeout"`
}

type FlightConfig struct {
	Enforce bool `mapstructure:"enforce"`
}

// RateLimitConfig caps inbound client messages per session. Messages
// of zero disables the limit.
type RateLimitConfig struct {
	Messages int           `mapstructure:"messages"`
	Interval time.Duration `mapstructure:"interval"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "")

	v.SetDefault("video.host", "127.0.0.1")
	v.SetDefault("video.port", 5555)
	v.SetDefault("video.connect_timeout", "4000ms")
	v.SetDefault("video.backoff.enabled", true)
	v.SetDefault("video.backoff.initial", "100ms")
	v.SetDefault("video.backoff.max", "5s")

	v.SetDefault("drone.host", "192.168.1.1")
	v.SetDefault("drone.control_port", 5556)
	v.SetDefault("drone.navdata_port", 5554)
	v.SetDefault("drone.command_interval", "30ms")
	v.SetDefault("drone.navdata_timeout", "2s")

	v.SetDefault("flight.enforce", false)
	v.SetDefault("rate_limit.messages", 0)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
}

// Load reads config/config.<CONFIG_ENV>.yaml when present and lets
// environment variables override any key (video.host -> VIDEO_HOST).
// A missing file is not an error.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "PORT"); err != nil {
		return nil, fmt.Errorf("bind PORT: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("video", cfg.Video.Addr()).
		Str("drone", cfg.Drone.Host).
		Msg("config ready")
	return &cfg, nil
}

func validPort(p int) bool { return p > 0 && p < 65536 }

func (c *Config) Validate() error {
	var errs []error
	if !validPort(c.Port) {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if !validPort(c.Video.Port) {
		errs = append(errs, fmt.Errorf("video.port out of range: %d", c.Video.Port))
	}
	if !validPort(c.Drone.ControlPort) {
		errs = append(errs, fmt.Errorf("drone.control_port out of range: %d", c.Drone.ControlPort))
	}
	if !validPort(c.Drone.NavdataPort) {
		errs = append(errs, fmt.Errorf("drone.navdata_port out of range: %d", c.Drone.NavdataPort))
	}
	if c.Video.Host == "" {
		errs = append(errs, errors.New("video.host is required"))
	}
	if c.Drone.Host == "" {
		errs = append(errs, errors.New("drone.host is required"))
	}
	if c.Video.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("video.connect_timeout must be positive"))
	}
	if c.WriteTimeout <= 0 || c.PingPeriod <= 0 {
		errs = append(errs, errors.New("write_timeout and ping_period must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, fmt.Errorf("send_buffer must be positive: %d", c.SendBuffer))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, fmt.Errorf("read_limit must be positive: %d", c.ReadLimit))
	}
	return errors.Join(errs...)
}

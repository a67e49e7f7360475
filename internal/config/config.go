package config

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Demo    DemoConfig    `mapstructure:"demo"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	Environment     string   `mapstructure:"environment"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // in seconds
	IdleTimeout     int      `mapstructure:"idle_timeout"`     // in seconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // in seconds
	PprofEnabled    bool     `mapstructure:"pprof_enabled"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Address returns the host:port the HTTP server listens on.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig configures the console and rotating file sinks.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Name       string `mapstructure:"name"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

type MetricsConfig struct {
	Namespace         string    `mapstructure:"namespace"`
	Version           string    `mapstructure:"version"`
	Buckets           []float64 `mapstructure:"buckets"`
	RuntimeCollectors bool      `mapstructure:"runtime_collectors"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// DemoConfig tunes the simulated work of the demo endpoints.
type DemoConfig struct {
	DataDelayMin time.Duration `mapstructure:"data_delay_min"`
	DataDelayMax time.Duration `mapstructure:"data_delay_max"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidConfig("server.port", fmt.Sprintf("must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.ErrInvalidConfig("server.shutdown_timeout", "must not be negative")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.ErrInvalidConfig("log.level", err.Error())
	}
	switch c.Log.Format {
	case constants.LogFormatConsole, constants.LogFormatJSON:
	default:
		return errors.ErrInvalidConfig("log.format", fmt.Sprintf("unsupported format %q", c.Log.Format))
	}
	if c.Log.FilePath == "" && !c.Log.Console {
		return errors.ErrInvalidConfig("log", "at least one of file_path or console must be enabled")
	}
	if c.Log.FilePath != "" && c.Log.MaxSizeMB <= 0 {
		return errors.ErrInvalidConfig("log.max_size_mb", "must be positive")
	}
	if c.Log.MaxBackups < 0 {
		return errors.ErrInvalidConfig("log.max_backups", "must not be negative")
	}
	if c.Log.MaxAgeDays < 0 {
		return errors.ErrInvalidConfig("log.max_age_days", "must not be negative")
	}

	if c.Metrics.Namespace == "" {
		return errors.ErrInvalidConfig("metrics.namespace", "must not be empty")
	}
	if len(c.Metrics.Buckets) > 0 && !sort.Float64sAreSorted(c.Metrics.Buckets) {
		return errors.ErrInvalidConfig("metrics.buckets", "must be sorted in increasing order")
	}
	for i := 1; i < len(c.Metrics.Buckets); i++ {
		if c.Metrics.Buckets[i] == c.Metrics.Buckets[i-1] {
			return errors.ErrInvalidConfig("metrics.buckets", "must not contain duplicates")
		}
	}

	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		return errors.ErrInvalidConfig("tracing.jaeger_endpoint", "required when tracing is enabled")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return errors.ErrInvalidConfig("tracing.sampling_rate", "must be in [0,1]")
	}

	if c.Demo.DataDelayMin < 0 || c.Demo.DataDelayMax < c.Demo.DataDelayMin {
		return errors.ErrInvalidConfig("demo", "data_delay_min must be >= 0 and <= data_delay_max")
	}
	return nil
}

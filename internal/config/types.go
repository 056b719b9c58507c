package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the host.
type Config struct {
	Filename    string            `yaml:"-"`
	Logging     LoggingConfig     `yaml:"logging"`
	Models      ModelsConfig      `yaml:"models"`
	Generation  GenerationConfig  `yaml:"generation"`
	Server      ServerConfig      `yaml:"server"`
	Engineering EngineeringConfig `yaml:"engineering"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestLogging  bool          `yaml:"request_logging"`
}

// GetAddress returns the server address in host:port format
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ModelsConfig holds model registry and architecture table settings.
type ModelsConfig struct {
	// ArchOverridesDir points at a directory of YAML files overlaying
	// the built-in architecture capability table. Empty means built-ins
	// only.
	ArchOverridesDir string `yaml:"arch_overrides_dir"`
}

// GenerationConfig holds defaults applied when a request leaves a
// sampling or stop field unset.
type GenerationConfig struct {
	DefaultStopStrategy string  `yaml:"default_stop_strategy"`
	DefaultMaxTokens    int     `yaml:"default_max_tokens"`
	DefaultTemperature  float64 `yaml:"default_temperature"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Theme      string `yaml:"theme"`
	LogDir     string `yaml:"log_dir"`
	FileOutput bool   `yaml:"file_output"`
}

// EngineeringConfig holds development/debugging configuration
type EngineeringConfig struct {
	ShowNerdStats bool `yaml:"show_nerdstats"`
}

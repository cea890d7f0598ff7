// Package coreconfig provides configuration loading and validation for the
// coreconf demo binaries. It uses koanf to merge environment variables with
// an optional YAML override file.
package coreconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the settings needed to bring up a coreconf demo server or
// client.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// SidFilePath points at a .sid file (YANG SID catalog JSON) loaded into
	// a sidcat.Catalog at startup.
	SidFilePath string `koanf:"sid_file_path"`

	// DatastorePath optionally points at a JSON file used to seed the
	// in-memory datastore. Empty means start from an empty datastore.
	DatastorePath string `koanf:"datastore_path"`

	// Transactional enables snapshot/restore semantics for iPATCH: a
	// failure partway through a batch rolls back every change in that
	// batch instead of leaving the datastore partially updated.
	Transactional bool `koanf:"transactional"`

	// MetricsEnabled toggles Prometheus metrics collection on the server.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsPort is loaded and reported in LogSummary. The demo server does
	// not listen on it: it serves /metrics on the main server port.
	MetricsPort int `koanf:"metrics_port"`
}

// Configuration validation errors.
var (
	ErrMissingSidFilePath = errors.New("SID_FILE_PATH is required")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidMetricsPort = errors.New("METRICS_PORT must be a valid integer")
)

// Default values for non-required configuration.
const (
	DefaultPort           = 5683
	DefaultEnv            = "development"
	DefaultMetricsEnabled = false
	DefaultMetricsPort    = 9090
	DefaultTransactional  = false
)

// Load reads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid). If a config file path is provided and cannot be loaded, an error
// is returned immediately.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("CORECONF_PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	metricsPort, metricsPortErr := getEnvIntOrDefault("CORECONF_METRICS_PORT", k.Int("metrics_port"), DefaultMetricsPort)
	if metricsPortErr != nil {
		loadErrs = append(loadErrs, fmt.Errorf("CORECONF_METRICS_PORT must be a valid integer: %w", ErrInvalidMetricsPort))
	}

	metricsEnabled := DefaultMetricsEnabled
	if k.Exists("metrics_enabled") {
		metricsEnabled = k.Bool("metrics_enabled")
	}
	if val := os.Getenv("CORECONF_METRICS_ENABLED"); val != "" {
		metricsEnabled = parseBool(val, metricsEnabled)
	}

	transactional := DefaultTransactional
	if k.Exists("transactional") {
		transactional = k.Bool("transactional")
	}
	if val := os.Getenv("CORECONF_TRANSACTIONAL"); val != "" {
		transactional = parseBool(val, transactional)
	}

	cfg := &Config{
		Port:           port,
		Env:            getEnvOrDefault("CORECONF_ENV", k.String("env"), DefaultEnv),
		SidFilePath:    getEnvOrDefault("CORECONF_SID_FILE", k.String("sid_file_path"), ""),
		DatastorePath:  getEnvOrDefault("CORECONF_DATASTORE_FILE", k.String("datastore_path"), ""),
		Transactional:  transactional,
		MetricsEnabled: metricsEnabled,
		MetricsPort:    metricsPort,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)
	return cfg, errs
}

// Validate checks that all required configuration values are present.
func (c *Config) Validate() []error {
	var errs []error
	if c.SidFilePath == "" {
		errs = append(errs, ErrMissingSidFilePath)
	}
	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":            strconv.Itoa(c.Port),
		"env":             c.Env,
		"sid_file_path":   c.SidFilePath,
		"datastore_path":  c.DatastorePath,
		"transactional":   strconv.FormatBool(c.Transactional),
		"metrics_enabled": strconv.FormatBool(c.MetricsEnabled),
		"metrics_port":    strconv.Itoa(c.MetricsPort),
	}
}

func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

func parseBool(val string, fallback bool) bool {
	switch val {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}

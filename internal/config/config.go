package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirei-dev/kirei/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "kirei.json"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "kirei"

	// DefaultRecursionLimit is how many times one effect may run within a
	// single queue flush before it is dropped.
	DefaultRecursionLimit = 100

	// QueueSync flushes the scheduler queue as soon as a job is pushed.
	QueueSync = "sync"

	// QueueDeferred flushes the scheduler queue on a later tick.
	QueueDeferred = "deferred"
)

// Config represents the complete kirei.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Fx contains reactive core settings.
	Fx FxConfig `json:"fx"`

	// Log contains logging settings.
	Log LogConfig `json:"log"`

	// Inspector contains inspector server settings.
	Inspector InspectorConfig `json:"inspector"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// FxConfig contains reactive core settings.
type FxConfig struct {
	// Queue is the scheduler queue mode: "sync" or "deferred".
	Queue string `json:"queue,omitempty"`

	// RecursionLimit caps how often one effect may run per flush.
	RecursionLimit int `json:"recursionLimit,omitempty"`

	// SilenceReadonlyWarnings suppresses warnings for writes to read-only proxies.
	SilenceReadonlyWarnings bool `json:"silenceReadonlyWarnings,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the host:port the inspector listens on.
	Addr string `json:"addr,omitempty"`

	// MetricsNamespace is the Prometheus namespace for fx metrics.
	MetricsNamespace string `json:"metricsNamespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Fx: FxConfig{
			Queue:          QueueSync,
			RecursionLimit: DefaultRecursionLimit,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Inspector: InspectorConfig{
			Addr:             DefaultInspectorAddr,
			MetricsNamespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for kirei.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("CFG003").
				WithDetail("No kirei.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'kirei init' to create one")
		}
		return nil, errors.New("CFG001").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("CFG001").
			WithDetail("Failed to parse kirei.json: " + err.Error()).
			WithSuggestion("Check that kirei.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("CFG001").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("CFG001").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Fx.Queue == "" {
		c.Fx.Queue = QueueSync
	}
	c.Fx.Queue = strings.ToLower(c.Fx.Queue)
	if c.Fx.RecursionLimit == 0 {
		c.Fx.RecursionLimit = DefaultRecursionLimit
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Inspector.MetricsNamespace == "" {
		c.Inspector.MetricsNamespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Fx.Queue {
	case QueueSync, QueueDeferred:
	default:
		return errors.New("CFG002").
			WithDetailf("fx.queue must be %q or %q, got %q", QueueSync, QueueDeferred, c.Fx.Queue)
	}
	if c.Fx.RecursionLimit < 0 {
		return errors.New("CFG002").
			WithDetailf("fx.recursionLimit must not be negative, got %d", c.Fx.RecursionLimit)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("CFG002").
			WithDetailf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("CFG002").
			WithDetailf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel returns the configured log level.
// Unknown levels fall back to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// Deferred reports whether the scheduler queue flushes on a later tick.
func (c *Config) Deferred() bool {
	return c.Fx.Queue == QueueDeferred
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing kirei.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("CFG003").
				WithDetail("No kirei.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'kirei init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that holds kirei.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

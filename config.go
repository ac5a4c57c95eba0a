package logtree

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all root logger configuration values
type Config struct {
	// Basic settings
	Name      string `toml:"name"`      // Root logger name
	Level     string `toml:"level"`     // Minimum severity: debug, info, warning, error, critical
	Directory string `toml:"directory"` // Durable log directory; empty defers assignment

	// Console output settings
	EnableConsole bool   `toml:"enable_console"` // Mirror records to a console stream
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"
	Color         bool   `toml:"color"`          // Colorize console output

	// Formatting
	TimestampFormat string `toml:"timestamp_format"` // Time format for record timestamps

	// Lifecycle
	CleanupEmpty bool `toml:"cleanup_empty"` // Remove empty log files and directories on close

	// Stream tailing
	PollIntervalMs int64 `toml:"poll_interval_ms"` // Subprocess liveness poll interval
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Name:            "supervisor",
	Level:           "info",
	Directory:       "",
	EnableConsole:   true,
	ConsoleTarget:   "stderr",
	Color:           true,
	TimestampFormat: DefaultTimestampFormat,
	CleanupEmpty:    false,
	PollIntervalMs:  500,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	if err := loader.RegisterStruct("logtree.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "logtree.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		key := prefix + tomlTag

		val, found := loader.Get(key)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return configErrorf("logger name cannot be empty")
	}

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return configErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return configErrorf("timestamp_format cannot be empty")
	}

	if c.PollIntervalMs <= 0 {
		return configErrorf("poll_interval_ms must be positive: %d", c.PollIntervalMs)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// NewRootFromConfig builds a root logger from a validated configuration.
func NewRootFromConfig(cfg *Config) (*Node, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	console := consoleSpec{
		enabled:         cfg.EnableConsole,
		w:               os.Stderr,
		color:           cfg.Color,
		timestampFormat: cfg.TimestampFormat,
	}
	if cfg.ConsoleTarget == "stdout" {
		console.w = os.Stdout
	}

	root, err := newRoot(cfg.Name, level, console, cfg.CleanupEmpty)
	if err != nil {
		return nil, err
	}
	if cfg.Directory != "" {
		if err := root.AssignDirectory(cfg.Directory); err != nil {
			root.Close()
			return nil, err
		}
	}
	return root, nil
}

// Package config loads the weasyreport CLI configuration: where the
// parameter store lives, which engine and fallback binaries to use, how to
// log, and the report-to-module registry.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-weasyreport/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name under the user config dir.
const AppDir = "go-weasyreport"

// Engine names accepted by engine.name.
const (
	EngineWeasyPrint = "weasyprint"
	EngineChrome     = "chrome"
)

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxModuleLength = 64  // technical module names ("sale_management")
	MaxReportLength = 256 // "module.report_name"
	MaxDPI          = 1200
	MaxWorkers      = 32
)

// Config holds the CLI configuration.
type Config struct {
	Store    StoreConfig       `yaml:"store"`
	Engine   EngineConfig      `yaml:"engine"`
	Fallback FallbackConfig    `yaml:"fallback"`
	Log      LogConfig         `yaml:"log"`
	Modules  ModulesConfig     `yaml:"modules"`
	Reports  map[string]string `yaml:"reports"` // report ref -> owning module
}

// StoreConfig locates the parameter store.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file (default: <user config dir>/go-weasyreport/params.db)
}

// EngineConfig selects and configures the paged-media engine.
type EngineConfig struct {
	Name                string `yaml:"name"` // "weasyprint" (default) or "chrome"
	WeasyPrintBin       string `yaml:"weasyprintBin"`
	PresentationalHints bool   `yaml:"presentationalHints"`
	ChromeBin           string `yaml:"chromeBin"`
	NoSandbox           bool   `yaml:"noSandbox"`
	Timeout             string `yaml:"timeout"` // Go duration, empty = none
	Workers             int    `yaml:"workers"` // bodies rendered concurrently, 0 = auto
}

// FallbackConfig configures the original wkhtmltopdf renderer.
type FallbackConfig struct {
	Disabled       bool   `yaml:"disabled"`
	WkhtmltopdfBin string `yaml:"wkhtmltopdfBin"`
	DPI            int    `yaml:"dpi"`
	TempDir        string `yaml:"tempDir"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // console, json
	Output     string `yaml:"output"` // stdout, stderr or a file path
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// ModulesConfig lists the host's installed modules, used to validate the
// allow and block lists.
type ModulesConfig struct {
	Installed []string `yaml:"installed"`
}

// TimeoutDuration parses engine.timeout. Empty means no timeout.
func (e EngineConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(e.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: engine.timeout: %v", ErrInvalidValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: engine.timeout: must not be negative, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks enumerations, ranges and field lengths.
// Called automatically by LoadConfig.
func (c *Config) Validate() error {
	if err := validateFieldLength("store.path", c.Store.Path, MaxPathLength); err != nil {
		return err
	}

	switch strings.ToLower(c.Engine.Name) {
	case "", EngineWeasyPrint, EngineChrome:
	default:
		return fmt.Errorf("%w: engine.name %q (must be weasyprint or chrome)", ErrInvalidValue, c.Engine.Name)
	}
	if err := validateFieldLength("engine.weasyprintBin", c.Engine.WeasyPrintBin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("engine.chromeBin", c.Engine.ChromeBin, MaxPathLength); err != nil {
		return err
	}
	if _, err := c.Engine.TimeoutDuration(); err != nil {
		return err
	}
	if c.Engine.Workers < 0 || c.Engine.Workers > MaxWorkers {
		return fmt.Errorf("%w: engine.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Engine.Workers)
	}

	if err := validateFieldLength("fallback.wkhtmltopdfBin", c.Fallback.WkhtmltopdfBin, MaxPathLength); err != nil {
		return err
	}
	if c.Fallback.DPI < 0 || c.Fallback.DPI > MaxDPI {
		return fmt.Errorf("%w: fallback.dpi must be between 0 and %d, got %d", ErrInvalidValue, MaxDPI, c.Fallback.DPI)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation values must not be negative", ErrInvalidValue)
	}

	for i, m := range c.Modules.Installed {
		field := fmt.Sprintf("modules.installed[%d]", i)
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("%w: %s is blank", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field, m, MaxModuleLength); err != nil {
			return err
		}
	}

	for ref, module := range c.Reports {
		if strings.TrimSpace(ref) == "" || strings.TrimSpace(module) == "" {
			return fmt.Errorf("%w: reports entries need a report and a module", ErrInvalidValue)
		}
		if err := validateFieldLength("reports key", ref, MaxReportLength); err != nil {
			return err
		}
		if err := validateFieldLength("reports["+ref+"]", module, MaxModuleLength); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Store:  StoreConfig{Path: DefaultStorePath()},
		Engine: EngineConfig{Name: EngineWeasyPrint},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// DefaultStorePath returns <user config dir>/go-weasyreport/params.db, or
// params.db in the working directory when the user config dir is unknown.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "params.db"
	}
	return filepath.Join(dir, AppDir, "params.db")
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Missing sections keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment overrides.
const (
	EnvConfig   = "WEASYREPORT_CONFIG"
	EnvStore    = "WEASYREPORT_STORE"
	EnvLogLevel = "WEASYREPORT_LOG_LEVEL"
	EnvEngine   = "WEASYREPORT_ENGINE"
)

// ApplyEnv overrides store, log level and engine from the environment
// (looked up with getenv), normalizes values and re-validates.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvStore); v != "" {
		c.Store.Path = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvEngine); v != "" {
		c.Engine.Name = v
	}
	c.normalize()
	return c.Validate()
}

// normalize lowercases enumerations and resolves a leading "~" in every path
// setting.
func (c *Config) normalize() {
	c.Engine.Name = strings.ToLower(strings.TrimSpace(c.Engine.Name))
	if c.Engine.Name == "" {
		c.Engine.Name = EngineWeasyPrint
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Store.Path = fileutil.ExpandHome(c.Store.Path)
	c.Fallback.TempDir = fileutil.ExpandHome(c.Fallback.TempDir)
	c.Engine.WeasyPrintBin = fileutil.ExpandHome(c.Engine.WeasyPrintBin)
	c.Engine.ChromeBin = fileutil.ExpandHome(c.Engine.ChromeBin)
	c.Fallback.WkhtmltopdfBin = fileutil.ExpandHome(c.Fallback.WkhtmltopdfBin)
	if c.Log.Output != "stdout" && c.Log.Output != "stderr" {
		c.Log.Output = fileutil.ExpandHome(c.Log.Output)
	}
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-weasyreport/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists every path searched for a named config.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

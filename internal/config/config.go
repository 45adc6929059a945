package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-edureport/internal/dateutil"
	"github.com/alnah/go-edureport/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// AppName names the user config directory.
const AppName = "go-edureport"

// Field length limits.
const (
	MaxURLLength  = 2048 // Browser limit
	MaxPathLength = 4096 // PATH_MAX on Linux
	MaxNameLength = 100  // Template set and style names
	MaxRetries    = 10
)

// Defaults applied by DefaultConfig.
const (
	DefaultAPIBaseURL     = "http://localhost:5000"
	DefaultAPITimeout     = 30 * time.Second
	DefaultAPIRetries     = 2
	DefaultBrowserTimeout = 30 * time.Second
	DefaultHistoryFile    = "history.db"
)

// Config holds all configuration for report generation.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Browser BrowserConfig `yaml:"browser"`
	Page    PageConfig    `yaml:"page"`
	Output  OutputConfig  `yaml:"output"`
	Report  ReportConfig  `yaml:"report"`
	History HistoryConfig `yaml:"history"`
}

// APIConfig points at the prediction and analytics collaborators.
type APIConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"` // per request
	Retries int           `yaml:"retries"`
}

// BrowserConfig controls the headless browser used for region capture.
type BrowserConfig struct {
	Bin       string        `yaml:"bin"`       // Empty = rod launcher default
	NoSandbox bool          `yaml:"noSandbox"` // Required in most containers
	RemoteURL string        `yaml:"remoteURL"` // Connect instead of launching
	Timeout   time.Duration `yaml:"timeout"`
}

// PageConfig selects the live page. Empty URL = offline surface.
type PageConfig struct {
	URL string `yaml:"url"`
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Empty = current directory
}

// ReportConfig tunes the produced document.
type ReportConfig struct {
	DateFormat string `yaml:"dateFormat"` // Preset or token format, "Generated on" line
	FontFile   string `yaml:"fontFile"`   // UTF-8 TrueType font, empty = core font
	Verify     bool   `yaml:"verify"`     // Re-read the artifact with pdfcpu
	Templates  string `yaml:"templates"`  // Template set for offline regions
	Style      string `yaml:"style"`      // Stylesheet for offline regions
	AssetsPath string `yaml:"assetsPath"` // Empty = embedded assets
}

// HistoryConfig controls the export history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Empty = user config dir
}

// Validate checks ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	// Validate API fields
	if err := validateURL("api.baseURL", c.API.BaseURL, true); err != nil {
		return err
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout: must not be negative, got %s", ErrInvalidField, c.API.Timeout)
	}
	if c.API.Retries < 0 || c.API.Retries > MaxRetries {
		return fmt.Errorf("%w: api.retries: must be between 0 and %d, got %d", ErrInvalidField, MaxRetries, c.API.Retries)
	}

	// Validate browser fields
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateURL("browser.remoteURL", c.Browser.RemoteURL, false); err != nil {
		return err
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("%w: browser.timeout: must not be negative, got %s", ErrInvalidField, c.Browser.Timeout)
	}

	if err := validateURL("page.url", c.Page.URL, false); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}

	// Validate report fields
	if c.Report.DateFormat != "" {
		if _, err := dateutil.Layout(c.Report.DateFormat); err != nil {
			return fmt.Errorf("report.dateFormat: %w", err)
		}
	}
	if err := validateFieldLength("report.fontFile", c.Report.FontFile, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("report.templates", c.Report.Templates, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("report.style", c.Report.Style, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("report.assetsPath", c.Report.AssetsPath, MaxPathLength); err != nil {
		return err
	}

	return validateFieldLength("history.path", c.History.Path, MaxPathLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateURL accepts empty values unless required, otherwise an absolute
// http(s) or ws(s) URL.
func validateURL(fieldName, value string, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%w: %s: required", ErrInvalidField, fieldName)
		}
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxURLLength); err != nil {
		return err
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, fieldName, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidField, fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s: missing host", ErrInvalidField, fieldName)
	}
	return nil
}

// DefaultConfig returns a configuration that talks to a local collaborator,
// renders regions offline and keeps no history.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: DefaultAPITimeout,
			Retries: DefaultAPIRetries,
		},
		Browser: BrowserConfig{Timeout: DefaultBrowserTimeout},
		Report:  ReportConfig{DateFormat: dateutil.DefaultDateFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
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
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HistoryPath returns the configured history database path, defaulting to
// the user config directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, AppName, DefaultHistoryFile), nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-edureport/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

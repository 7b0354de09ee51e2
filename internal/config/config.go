// Package config provides configuration loading and management for the badge sync job.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-badge-sync/internal/registry"
	"github.com/stacklok/toolhive-badge-sync/internal/telemetry"
)

const (
	// DefaultBaseDir is the output root used when none is configured
	DefaultBaseDir = "Maven"

	// DefaultTimeout is the registry request timeout used when none is configured
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the largest page size the registry accepts
	MaxPageSize = 200

	// EnvPrefix is the prefix of environment variables overriding file values
	EnvPrefix = "THV_BADGE"

	// DiscoveryPath is the config file looked up in the XDG config directories
	DiscoveryPath = "thv-badge-sync/config.yaml"
)

// Environment keys, read as THV_BADGE_<KEY>
const (
	envBaseDir          = "base_dir"
	envRegistryEndpoint = "registry_endpoint"
	envRegistryPageSize = "registry_page_size"
	envRegistryTimeout  = "registry_timeout"
	envSyncMaxPages     = "sync_max_pages"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path     string
	discover bool
	env      *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithDiscovery looks for DiscoveryPath in the XDG config directories when
// no explicit path was given. A missing file is not an error.
func WithDiscovery() Option {
	return func(cfg *loaderConfig) error {
		cfg.discover = true
		return nil
	}
}

// WithEnv sets the viper instance used for environment overrides.
// By default a fresh instance bound to the THV_BADGE prefix is used.
func WithEnv(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		if v == nil {
			return fmt.Errorf("viper instance is required")
		}
		cfg.env = v
		return nil
	}
}

// Config represents the root configuration structure.
// Every field is optional; zero values fall back to defaults.
type Config struct {
	// BaseDir is the output root holding Badge/ and Artifact/
	BaseDir string `yaml:"baseDir,omitempty"`

	Registry  RegistryConfig    `yaml:"registry,omitempty"`
	Sync      SyncConfig        `yaml:"sync,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// RegistryConfig defines how the component search API is reached
type RegistryConfig struct {
	// Endpoint is the full URL of the component search endpoint
	Endpoint string `yaml:"endpoint,omitempty"`

	// PageSize is the number of components requested per page
	PageSize int `yaml:"pageSize,omitempty"`

	// Timeout bounds each request (e.g., "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// SyncConfig defines run limits
type SyncConfig struct {
	// MaxPages caps the pages fetched in one run. 0 means no cap.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// LoadConfig builds the configuration from an optional YAML file and
// THV_BADGE_* environment overrides, then validates it.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" && loaderCfg.discover {
		loaderCfg.path = discoverConfigPath()
	}

	var config Config
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	env := loaderCfg.env
	if env == nil {
		env = newEnv()
	}
	config.applyEnv(env)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

func discoverConfigPath() string {
	path, err := xdg.SearchConfigFile(DiscoveryPath)
	if err != nil {
		slog.Debug("No config file found, using defaults", "lookup", DiscoveryPath)
		return ""
	}
	slog.Debug("Discovered config file", "path", path)
	return path
}

// applyEnv overrides file values with the ones set in the environment
func (c *Config) applyEnv(v *viper.Viper) {
	if v.IsSet(envBaseDir) {
		c.BaseDir = v.GetString(envBaseDir)
	}
	if v.IsSet(envRegistryEndpoint) {
		c.Registry.Endpoint = v.GetString(envRegistryEndpoint)
	}
	if v.IsSet(envRegistryPageSize) {
		c.Registry.PageSize = v.GetInt(envRegistryPageSize)
	}
	if v.IsSet(envRegistryTimeout) {
		c.Registry.Timeout = v.GetString(envRegistryTimeout)
	}
	if v.IsSet(envSyncMaxPages) {
		c.Sync.MaxPages = v.GetInt(envSyncMaxPages)
	}
}

// GetBaseDir returns the output root, using DefaultBaseDir if not specified
func (c *Config) GetBaseDir() string {
	if c.BaseDir == "" {
		return DefaultBaseDir
	}
	return c.BaseDir
}

// GetEndpoint returns the registry endpoint, using the Central endpoint if not specified
func (r *RegistryConfig) GetEndpoint() string {
	if r.Endpoint == "" {
		return registry.DefaultEndpoint
	}
	return r.Endpoint
}

// GetPageSize returns the page size, using registry.DefaultPageSize if not specified
func (r *RegistryConfig) GetPageSize() int {
	if r.PageSize == 0 {
		return registry.DefaultPageSize
	}
	return r.PageSize
}

// GetTimeout returns the request timeout, using DefaultTimeout if unset or invalid.
// Validate reports invalid values before this is called.
func (r *RegistryConfig) GetTimeout() time.Duration {
	if r.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if err := c.Registry.validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Sync.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("sync.maxPages must not be negative, got %d", c.Sync.MaxPages))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func (r *RegistryConfig) validate() error {
	if r.Endpoint != "" {
		u, err := url.Parse(r.Endpoint)
		if err != nil {
			return fmt.Errorf("registry.endpoint is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("registry.endpoint must use http or https, got %q", r.Endpoint)
		}
		if u.Host == "" {
			return fmt.Errorf("registry.endpoint must include a host, got %q", r.Endpoint)
		}
	}

	if r.PageSize < 0 || r.PageSize > MaxPageSize {
		return fmt.Errorf("registry.pageSize must be between 1 and %d, got %d", MaxPageSize, r.PageSize)
	}

	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return fmt.Errorf("registry.timeout must be a valid duration (e.g., '30s', '1m'): %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("registry.timeout must be positive, got %s", r.Timeout)
		}
	}

	return nil
}

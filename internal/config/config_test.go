package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-badge-sync/internal/registry"
	"github.com/stacklok/toolhive-badge-sync/internal/telemetry"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		yamlContent   string
		env           map[string]any
		wantConfig    *Config
		errorContains string
	}{
		{
			name: "full config",
			yamlContent: `baseDir: /srv/badges
registry:
  endpoint: https://central.example.com/api/components
  pageSize: 50
  timeout: 10s
sync:
  maxPages: 5
telemetry:
  enabled: true
  metrics:
    enabled: true
    pushgatewayUrl: http://pushgateway:9091`,
			wantConfig: &Config{
				BaseDir: "/srv/badges",
				Registry: RegistryConfig{
					Endpoint: "https://central.example.com/api/components",
					PageSize: 50,
					Timeout:  "10s",
				},
				Sync: SyncConfig{MaxPages: 5},
				Telemetry: &telemetry.Config{
					Enabled: true,
					Metrics: &telemetry.MetricsConfig{
						Enabled:        true,
						PushgatewayURL: "http://pushgateway:9091",
					},
				},
			},
		},
		{
			name:        "empty file",
			yamlContent: ``,
			wantConfig:  &Config{},
		},
		{
			name:        "environment overrides file",
			yamlContent: "baseDir: /from/file\nregistry:\n  pageSize: 50\n",
			env: map[string]any{
				envBaseDir:          "/from/env",
				envRegistryEndpoint: "http://localhost:8080/search",
				envRegistryPageSize: "100",
				envRegistryTimeout:  "5s",
				envSyncMaxPages:     "3",
			},
			wantConfig: &Config{
				BaseDir: "/from/env",
				Registry: RegistryConfig{
					Endpoint: "http://localhost:8080/search",
					PageSize: 100,
					Timeout:  "5s",
				},
				Sync: SyncConfig{MaxPages: 3},
			},
		},
		{
			name:          "invalid yaml",
			yamlContent:   "registry: [",
			errorContains: "failed to parse YAML config",
		},
		{
			name:          "invalid page size",
			yamlContent:   "registry:\n  pageSize: 500\n",
			errorContains: "registry.pageSize must be between 1 and 200",
		},
		{
			name:          "invalid environment value",
			yamlContent:   "",
			env:           map[string]any{envRegistryTimeout: "soon"},
			errorContains: "registry.timeout must be a valid duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := viper.New()
			for k, v := range tt.env {
				env.Set(k, v)
			}

			cfg, err := LoadConfig(
				WithConfigPath(writeConfigFile(t, tt.yamlContent)),
				WithEnv(env),
			)

			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, cfg)
		})
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(WithEnv(viper.New()))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseDir, cfg.GetBaseDir())
	assert.Equal(t, registry.DefaultEndpoint, cfg.Registry.GetEndpoint())
	assert.Equal(t, registry.DefaultPageSize, cfg.Registry.GetPageSize())
	assert.Equal(t, DefaultTimeout, cfg.Registry.GetTimeout())
	assert.Zero(t, cfg.Sync.MaxPages)
	assert.Nil(t, cfg.Telemetry)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseDir: x\n"), 0600))

	opt := WithConfigPath(path)
	require.NoError(t, os.Remove(path))

	_, err := LoadConfig(opt, WithEnv(viper.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestWithConfigPath(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		err := WithConfigPath("")(&loaderConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is required")
	})

	t.Run("nonexistent path", func(t *testing.T) {
		t.Parallel()
		err := WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml"))(&loaderConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to evaluate symlinks")
	})

	t.Run("symlink is resolved", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		target := filepath.Join(dir, "real.yaml")
		require.NoError(t, os.WriteFile(target, []byte("{}"), 0600))
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.Symlink(target, link))

		cfg := &loaderConfig{}
		require.NoError(t, WithConfigPath(link)(cfg))

		want, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		assert.Equal(t, want, cfg.path)
	})
}

func TestWithEnv_RequiresInstance(t *testing.T) {
	t.Parallel()

	err := WithEnv(nil)(&loaderConfig{})
	require.Error(t, err)
}

func TestRegistryConfig_GetTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		timeout  string
		expected time.Duration
	}{
		{timeout: "", expected: DefaultTimeout},
		{timeout: "45s", expected: 45 * time.Second},
		{timeout: "garbage", expected: DefaultTimeout},
		{timeout: "-1s", expected: DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			t.Parallel()
			r := RegistryConfig{Timeout: tt.timeout}
			assert.Equal(t, tt.expected, r.GetTimeout())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		config        *Config
		errorContains string
	}{
		{name: "zero config uses defaults", config: &Config{}},
		{name: "nil config", config: nil, errorContains: "config cannot be nil"},
		{
			name:          "endpoint without scheme",
			config:        &Config{Registry: RegistryConfig{Endpoint: "central.sonatype.com/api"}},
			errorContains: "registry.endpoint must use http or https",
		},
		{
			name:          "endpoint without host",
			config:        &Config{Registry: RegistryConfig{Endpoint: "https:///api"}},
			errorContains: "registry.endpoint must include a host",
		},
		{
			name:          "negative page size",
			config:        &Config{Registry: RegistryConfig{PageSize: -1}},
			errorContains: "registry.pageSize",
		},
		{
			name:   "maximum page size",
			config: &Config{Registry: RegistryConfig{PageSize: MaxPageSize}},
		},
		{
			name:          "zero timeout",
			config:        &Config{Registry: RegistryConfig{Timeout: "0s"}},
			errorContains: "registry.timeout must be positive",
		},
		{
			name:          "negative max pages",
			config:        &Config{Sync: SyncConfig{MaxPages: -2}},
			errorContains: "sync.maxPages must not be negative",
		},
		{
			name: "invalid telemetry",
			config: &Config{Telemetry: &telemetry.Config{
				Enabled: true,
				Tracing: &telemetry.TracingConfig{Enabled: true, Sampling: 2},
			}},
			errorContains: "telemetry: tracing: sampling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.config.Validate()
			if tt.errorContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

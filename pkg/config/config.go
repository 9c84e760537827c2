// Package config handles configuration for backyard-e2e.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/wait"
)

// Defaults for the Backyard Birds sample app on a local simulator.
const (
	DefaultServer   = "http://127.0.0.1:4723"
	DefaultBundleID = "com.example.apple-samplecode.Backyard-Birds"
	DefaultAppName  = "Backyard Birds.app"
)

// Config represents the suite configuration (config.yaml).
type Config struct {
	// Appium server URL
	Server string `yaml:"server"`
	// Bundle ID of the app under test, used for activate/terminate
	BundleID string `yaml:"bundleId"`
	// W3C capabilities sent when creating a session
	Capabilities map[string]interface{} `yaml:"capabilities"`

	Wait      WaitConfig          `yaml:"wait"`
	Session   SessionConfig       `yaml:"session"`
	Artifacts core.ArtifactConfig `yaml:"artifacts"`
}

// WaitConfig holds the default wait policy.
type WaitConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	Interval     time.Duration `yaml:"interval"`
	ProbeTimeout time.Duration `yaml:"probeTimeout"`
}

// SessionConfig controls session creation.
type SessionConfig struct {
	ConnectAttempts int           `yaml:"connectAttempts"`
	ConnectDelay    time.Duration `yaml:"connectDelay"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	p := wait.DefaultPolicy()
	return &Config{
		Server:   DefaultServer,
		BundleID: DefaultBundleID,
		Capabilities: map[string]interface{}{
			"platformName":             "iOS",
			"appium:automationName":    "XCUITest",
			"appium:deviceName":        "iPhone 17 Pro",
			"appium:app":               filepath.Join(GetHome(), DefaultAppName),
			"appium:bundleId":          DefaultBundleID,
			"appium:noReset":           false,
			"appium:newCommandTimeout": 300,
		},
		Wait: WaitConfig{
			Timeout:      p.Timeout,
			Interval:     p.Interval,
			ProbeTimeout: p.ProbeTimeout,
		},
		Session: SessionConfig{
			ConnectAttempts: 3,
			ConnectDelay:    2 * time.Second,
		},
		Artifacts: core.DefaultArtifactConfig(),
	}
}

// Load loads configuration from a file on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, use defaults
	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APPIUM_URL"); v != "" {
		c.Server = v
	}
}

// Validate checks required fields and the wait invariants.
func (c *Config) Validate() error {
	if c.Server == "" {
		return core.ErrMissingRequired.WithMessage("server is required")
	}
	if c.Wait.Timeout <= 0 {
		return core.ErrInvalidConfig.WithMessage("wait.timeout must be positive")
	}
	if c.Wait.Interval <= 0 || c.Wait.Interval > c.Wait.Timeout {
		return core.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("wait.interval must be in (0, %s], got %s", c.Wait.Timeout, c.Wait.Interval))
	}
	if c.Session.ConnectAttempts < 1 {
		return core.ErrInvalidConfig.WithMessage("session.connectAttempts must be at least 1")
	}
	return nil
}

// WaitPolicy returns the configured default wait policy.
func (c *Config) WaitPolicy() wait.Policy {
	p := wait.DefaultPolicy()
	if c.Wait.Timeout > 0 {
		p.Timeout = c.Wait.Timeout
	}
	if c.Wait.Interval > 0 {
		p.Interval = c.Wait.Interval
	}
	if c.Wait.ProbeTimeout > 0 {
		p.ProbeTimeout = c.Wait.ProbeTimeout
	}
	return p
}

// ArtifactsDir returns the absolute artifacts directory.
func (c *Config) ArtifactsDir() string {
	return GetArtifactsDir(c.Artifacts.Dir)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/homelab/hil/internal/allocator"
	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/switches/builtin"
)

// Config holds all configuration for the hil service
type Config struct {
	DBPath            string          `yaml:"db_path"`
	Port              string          `yaml:"port"`
	LogLevel          string          `yaml:"log_level"`
	ReconcileInterval time.Duration   `yaml:"reconcile_interval"`
	Allocator         AllocatorConfig `yaml:"allocator"`
	SwitchDrivers     []string        `yaml:"switch_drivers"`
}

// AllocatorConfig selects the network identifier allocator. Exactly one
// strategy must be set.
type AllocatorConfig struct {
	VLANPool *VLANPoolConfig `yaml:"vlan_pool,omitempty"`
	Null     *struct{}       `yaml:"null,omitempty"`
}

// VLANPoolConfig configures the vlan_pool allocator
type VLANPoolConfig struct {
	VLANs string `yaml:"vlans"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		DBPath:            "~/hil/data/hil.db",
		Port:              "8080",
		LogLevel:          "info",
		ReconcileInterval: 2 * time.Second,
		SwitchDrivers:     []string{"mock", "null", "dell", "nexus", "composite"},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	c := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required: %w", domain.ErrBadArgument)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("reconcile_interval must be positive: %w", domain.ErrBadArgument)
	}
	if _, err := allocator.New(c.AllocatorOptions()); err != nil {
		return fmt.Errorf("allocator: %w", err)
	}
	if len(c.SwitchDrivers) == 0 {
		return fmt.Errorf("at least one switch driver must be enabled: %w", domain.ErrBadArgument)
	}
	for _, name := range c.SwitchDrivers {
		if !builtin.IsKnown(name) {
			return fmt.Errorf("unknown switch driver %q: %w", name, domain.ErrBadArgument)
		}
	}
	return nil
}

// AllocatorOptions converts the allocator section for allocator.New
func (c *Config) AllocatorOptions() allocator.Options {
	opts := allocator.Options{Null: c.Allocator.Null != nil}
	if c.Allocator.VLANPool != nil {
		opts.VLANPool = &allocator.VLANPoolOptions{VLANs: c.Allocator.VLANPool.VLANs}
	}
	return opts
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Return original path if we can't get home dir
		return path
	}

	return filepath.Join(homeDir, path[2:])
}

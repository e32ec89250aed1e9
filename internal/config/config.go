package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temoc-project/temoc/internal/domain"
)

// Config is the top-level configuration for a temoc run, its keys
// exactly matching spec.md's key table plus a deadline addition for
// the orchestrator's cancellation budget.
type Config struct {
	ExecuteServerCommand string        `yaml:"execute_server_command"`
	Port                  int          `yaml:"port"`
	PoolSize              int          `yaml:"pool_size"`
	TestDir               string       `yaml:"test_dir"`
	Extension             string       `yaml:"extension"`
	Recursive             *bool        `yaml:"recursive"` // pointer to distinguish unset from false
	ShowSnoozed           *bool        `yaml:"show_snoozed"`
	PipeOutput            bool         `yaml:"pipe_output"`
	Deadline              time.Duration `yaml:"deadline"`
}

// Load reads a YAML configuration file, applying DefaultConfig for any
// key the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.KindConfig, "config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError(domain.KindConfig, "config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// IsRecursive reports the effective value of Recursive, defaulting to
// true when unset.
func (c *Config) IsRecursive() bool {
	if c.Recursive == nil {
		return true
	}
	return *c.Recursive
}

// IsShowSnoozed reports the effective value of ShowSnoozed, defaulting
// to true when unset.
func (c *Config) IsShowSnoozed() bool {
	if c.ShowSnoozed == nil {
		return true
	}
	return *c.ShowSnoozed
}

// UsesStdio reports whether Port selects the stdio connector rather
// than TCP, per slim.StdioConnector's port-0 sentinel.
func (c *Config) UsesStdio() bool {
	return c.Port == 0
}

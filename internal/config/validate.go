package config

import (
	"fmt"
	"strings"

	"github.com/temoc-project/temoc/internal/domain"
)

// Validate checks the Config for required fields and valid values,
// collecting every problem before returning rather than failing on
// the first one.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.ExecuteServerCommand == "" {
		errs = append(errs, "execute_server_command must not be empty")
	}
	if cfg.Port < 0 {
		errs = append(errs, "port must not be negative")
	}
	if cfg.PoolSize < 1 {
		errs = append(errs, "pool_size must be at least 1")
	}
	if cfg.TestDir == "" {
		errs = append(errs, "test_dir must not be empty")
	}
	if cfg.Extension == "" {
		errs = append(errs, "extension must not be empty")
	}
	if cfg.Deadline < 0 {
		errs = append(errs, "deadline must not be negative")
	}
	if cfg.PoolSize > 1 && cfg.UsesStdio() {
		errs = append(errs, "pool_size must be 1 when port is 0 (stdio transport can't share a pool slot)")
	}

	if len(errs) > 0 {
		return domain.NewError(domain.KindConfig, "config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temoc-project/temoc/internal/config"
	"github.com/temoc-project/temoc/internal/domain"
	"github.com/temoc-project/temoc/internal/orchestrate"
	"github.com/temoc-project/temoc/internal/report"
	"github.com/temoc-project/temoc/internal/scanner"
	"github.com/temoc-project/temoc/internal/slim"
)

var runCmd = &cobra.Command{
	Use:   "run [FILES...]",
	Short: "Run acceptance tests against a live SUT",
	Long:  `Executes every decision table in the given Markdown files, or every matching file under test_dir when none are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return &exitError{code: 2, err: err}
		}
		if err := config.Validate(cfg); err != nil {
			return &exitError{code: 2, err: err}
		}

		files := args
		if len(files) == 0 {
			files, err = scanner.NewScanner().Scan(cfg.TestDir, cfg.Extension, cfg.IsRecursive())
			if err != nil {
				return &exitError{code: 2, err: err}
			}
		}
		if len(files) == 0 {
			return &exitError{code: 2, err: fmt.Errorf("no .%s files found under %s", cfg.Extension, cfg.TestDir)}
		}

		reports := orchestrate.Run(context.Background(), files, orchestrate.Options{
			PoolSize:     cfg.PoolSize,
			BasePort:     cfg.Port,
			Deadline:     cfg.Deadline,
			ConnectorFor: connectorFor(cfg),
			Log:          log,
		})

		reporter := report.New(cmd.OutOrStdout(), cfg.IsShowSnoozed())
		anyFailed, anySpawnFailure := false, false
		for _, r := range reports {
			if reporter.Write(r) {
				anyFailed = true
			}
			if r.Aborted && isSpawnFailure(r.AbortErr) {
				anySpawnFailure = true
			}
		}

		switch {
		case anySpawnFailure:
			exitCode = 3
		case anyFailed:
			exitCode = 1
		default:
			exitCode = 0
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// connectorFor picks the TCP or stdio transport per cfg.UsesStdio,
// matching slim.Connector's port-0 sentinel.
func connectorFor(cfg *config.Config) orchestrate.ConnectorFor {
	return func(port int) slim.Connector {
		if cfg.UsesStdio() {
			return slim.StdioConnector{Command: cfg.ExecuteServerCommand, PipeOutput: cfg.PipeOutput}
		}
		return slim.TCPConnector{
			Command:    cfg.ExecuteServerCommand,
			Port:       port,
			Deadline:   config.DefaultConnectDeadline,
			PipeOutput: cfg.PipeOutput,
		}
	}
}

func isSpawnFailure(err error) bool {
	var terr *domain.TemocError
	if errors.As(err, &terr) {
		return terr.Kind == domain.KindSpawn || terr.Kind == domain.KindSpawnTimeout
	}
	return false
}

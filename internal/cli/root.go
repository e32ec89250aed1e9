// Package cli implements the temoc command-line entry points.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
	log     = logrus.New()
)

// rootCmd is the base command for temoc.
var rootCmd = &cobra.Command{
	Use:     "temoc",
	Version: Version,
	Short:   "Run Markdown acceptance tests against a Slim-speaking system under test",
	Long: `temoc reads Markdown documents with embedded decision tables and
executes them against a system under test over the Slim wire protocol.

Everything is driven by a YAML configuration file (temoc.yaml).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "temoc.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// exitCode is set by a subcommand's RunE before returning nil, letting
// Execute report it to the OS without cobra printing a spurious error.
var exitCode int

// exitError carries both a process exit code and the error cobra
// should print, for failures RunE can't express by just returning err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the root command and returns the process exit code: 0
// on all-pass, 1 on any test failure, 2 on usage/config error, 3 on
// SUT spawn failure.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		if ee, ok := err.(*exitError); ok {
			if ee.err != nil {
				log.Error(ee.err)
			}
			return ee.code
		}
		log.Error(err)
		return 2
	}
	return exitCode
}

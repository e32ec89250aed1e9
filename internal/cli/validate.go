package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temoc-project/temoc/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the temoc.yaml configuration file",
	Long:  `Loads the configuration file and checks for missing required fields and invalid values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return &exitError{code: 2, err: err}
		}
		if err := config.Validate(cfg); err != nil {
			return &exitError{code: 2, err: err}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %q is valid.\n", cfgFile)
		log.Debugf("loaded config: %+v", cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

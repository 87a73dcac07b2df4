package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateSwapServer bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every endpoint and identifier is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		appDep, err := NewAppDependency(configPath)
		if err != nil {
			return err
		}
		defer appDep.Close()

		validate := appDep.cfg.Validate
		if validateSwapServer {
			validate = appDep.cfg.ValidateSwapServer
		}
		problems := validate(appDep.validator)
		if len(problems) == 0 {
			appDep.printer.Success("Configuration OK ✅")
			return nil
		}

		for _, problem := range problems {
			appDep.printer.Failure("%s ❌", problem)
		}
		return fmt.Errorf("configuration has %d problem(s)", len(problems))
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateSwapServer, "swap-server", false, "check the swap server settings instead of the agent's")
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/virtup/virtup/cmd/virtup/handlers"
)

// Doctor returns the command for diagnosing the provisioning state.
//
// The diagnostics cover configuration validity, host package presence,
// firmware descriptor installation, fetched artifacts, and the emitted
// domain definition. No host state is modified.
//
// Optional flags:
//
//	--config, -c: Path to configuration file (default: auto-detect virtup.json)
//	--json:       Output machine-readable JSON
func Doctor() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the provisioning state",
		Long: `Diagnose the provisioning state of the configured virtual machine.

Each pipeline step is probed read-only: are the required packages
installed, is the firmware descriptor in place, have the artifacts been
fetched, has the domain definition been emitted. Nothing is changed.

Examples:
  virtup doctor
  virtup doctor -c rhel9.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: virtup.json)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON")

	return cmd
}

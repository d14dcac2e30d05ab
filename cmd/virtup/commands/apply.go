package commands

import (
	"github.com/spf13/cobra"

	"github.com/virtup/virtup/cmd/virtup/handlers"
)

// Apply returns the command for provisioning the virtual machine.
//
// This command runs the full provisioning pipeline: host package check,
// firmware descriptor installation, artifact fetching, and domain XML
// emission.
//
// Optional flags:
//
//	--config, -c: Path to configuration file (default: auto-detect virtup.json)
//	--yes, -y:    Answer yes to all prompts (non-interactive)
//	--plain:      Disable the TUI dashboard, log to stdout
func Apply() *cobra.Command {
	var (
		configPath string
		yes        bool
		plain      bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision the virtual machine",
		Long: `Provision the virtual machine described by the configuration file.

The pipeline checks host packages, installs the QEMU firmware descriptor,
fetches the firmware and disk image artifacts, and emits <vm_name>.xml
ready for 'virsh define'. Steps whose outcome already exists on the host
are skipped, so re-running after a failure resumes where it left off.

If no config file is specified, it looks for virtup.json (or .yaml/.yml)
in the current directory. Use 'virtup init' to create one.

Examples:
  # Provision using virtup.json in current directory
  virtup apply

  # Provision using a specific config file
  virtup apply -c rhel9.json

  # Unattended run
  virtup apply --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath, yes, plain)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: virtup.json)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Answer yes to all prompts")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the TUI dashboard")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/virtup/virtup/cmd/virtup/handlers"
)

// Init returns the command for interactively creating a VM configuration.
//
// This command guides users through creating a configuration file using an
// interactive wizard with text inputs, single-select, and confirm prompts.
//
// Flags:
//
//	--output, -o: Path to output file (default "virtup.json")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a VM configuration",
		Long: `Interactively create a VM configuration file.

This command guides you through configuring your virtual machine
step by step. It will ask about:

  - VM identity (name and OS variant)
  - Resources (memory and vCPUs)
  - Disk image source (http(s):// or s3:// URL)
  - UEFI firmware source and layout
  - Host package checking

The output format follows the file extension: .json (default) or
.yaml/.yml.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "virtup.json", "Output file path")

	return cmd
}

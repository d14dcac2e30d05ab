// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning"
	"github.com/virtup/virtup/internal/provisioning/artifacts"
	"github.com/virtup/virtup/internal/provisioning/define"
	"github.com/virtup/virtup/internal/provisioning/firmware"
	"github.com/virtup/virtup/internal/provisioning/packages"
	"github.com/virtup/virtup/internal/ui/tui"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// findConfigFile locates the default config file.
	findConfigFile = config.FindConfigFile

	// acquireLock takes the provisioning lock in the working directory.
	acquireLock = provisioning.AcquireLock

	// runPhases executes the pipeline.
	runPhases = provisioning.RunPhases

	// runApplyTUI wraps the run in the dashboard.
	runApplyTUI = tui.RunApplyTUI

	// newPhases builds the provisioning pipeline.
	newPhases = func() []provisioning.Phase {
		return []provisioning.Phase{
			packages.New(),
			firmware.New(),
			artifacts.New(),
			define.New(),
		}
	}
)

// Apply provisions the configured virtual machine.
//
// The workflow:
//  1. Loads and validates the configuration (auto-detects virtup.json)
//  2. Takes the provisioning lock to serialize concurrent runs
//  3. Runs the pipeline: packages, firmware descriptor, artifacts, define
//  4. Prints the virsh follow-up instructions
//
// On an interactive terminal side-effecting steps ask for confirmation
// first; --yes (or a non-TTY stdout) skips the prompts and takes each
// step's default action. With --yes on a terminal the run renders a
// dashboard instead of log lines, since there is nothing left to ask.
func Apply(ctx context.Context, configPath string, yes, plain bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	lock, err := acquireLock()
	if err != nil {
		return err
	}
	defer lock.Release()

	log.Printf("Applying configuration for VM: %s", cfg.VMName)

	interactive := !yes && isInteractiveTTY()
	phases := newPhases()

	pctx := provisioning.NewContext(ctx, cfg, interactive)

	if !interactive && !plain && isInteractiveTTY() {
		if err := applyWithTUI(pctx, phases); err != nil {
			return err
		}
	} else {
		if err := runPhases(pctx, phases); err != nil {
			return err
		}
	}

	printApplySuccess(cfg, pctx.State)
	return nil
}

// applyWithTUI runs the pipeline behind the Bubble Tea dashboard, routing
// phase transitions and structured events into it. When the dashboard
// exits early (operator quit), the provisioning context is canceled so
// in-flight phases stop instead of racing process exit.
func applyWithTUI(pctx *provisioning.Context, phases []provisioning.Phase) error {
	runCtx, cancel := context.WithCancel(pctx.Context)
	defer cancel()
	pctx.Context = runCtx

	return runApplyTUI(pctx.Config.VMName, func(ch chan<- tea.Msg) error {
		pctx.Observer = tui.NewChannelObserver(ch)

		for _, phase := range phases {
			ch <- tui.PhaseMsg{Phase: phase.Name()}
			if err := phase.Provision(pctx); err != nil {
				ch <- tui.PhaseMsg{Phase: phase.Name(), Err: err}
				return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
			}
			ch <- tui.PhaseMsg{Phase: phase.Name(), Done: true}
		}
		return nil
	})
}

// loadConfig loads and validates the VM configuration.
// If configPath is empty, it looks for virtup.json (or .yaml/.yml) in the
// current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'virtup init' to create one", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Using config: %s", configPath)
	return cfg, nil
}

// printApplySuccess outputs completion message and next steps for the user.
func printApplySuccess(cfg *config.Config, state *provisioning.State) {
	fmt.Printf("\nProvisioning complete!\n")

	if state.InstallDeclined {
		fmt.Printf("Warning: package installation was declined; VM management tools may be incomplete.\n")
	}
	if state.DescriptorSkipped {
		fmt.Printf("Warning: firmware descriptor was not installed; libvirt will not see the custom OVMF build.\n")
	}

	for _, artifact := range state.Artifacts {
		status := "already present"
		if artifact.Downloaded {
			status = "fetched"
		}
		fmt.Printf("  %-12s %s (%s)\n", artifact.Name+":", artifact.Path, status)
	}

	fmt.Printf("\nDomain definition written to: %s\n", state.DefinitionPath)
	fmt.Printf("\nYou can now define and start the VM with:\n")
	fmt.Printf("  virsh define %s\n", state.DefinitionPath)
	fmt.Printf("  virsh start %s\n", cfg.VMName)
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning/artifacts"
	"github.com/virtup/virtup/internal/provisioning/packages"
	"github.com/virtup/virtup/internal/ui/tui"
)

// DoctorReport is the machine-readable doctor output.
type DoctorReport struct {
	VMName string            `json:"vmName"`
	Checks []tui.DoctorCheck `json:"checks"`
}

// Factory function variables for doctor - can be replaced in tests.
var (
	// missingPackages probes the host package database.
	missingPackages = packages.Missing

	// statPath checks a host path.
	statPath = os.Stat
)

// Doctor diagnoses the provisioning state without changing it.
//
// Each pipeline step is probed read-only: configuration validity, host
// package presence, firmware descriptor installation, artifact presence,
// and the emitted domain definition. Missing pieces are reported as
// warnings, not errors; the command fails only when the configuration
// itself cannot be loaded.
func Doctor(ctx context.Context, configPath string, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	checks := collectChecks(ctx, cfg)

	if jsonOutput {
		return printDoctorJSON(&DoctorReport{VMName: cfg.VMName, Checks: checks})
	}

	fmt.Println(tui.RenderDoctorReport(cfg.VMName, checks))
	return nil
}

// collectChecks probes each provisioning step.
func collectChecks(ctx context.Context, cfg *config.Config) []tui.DoctorCheck {
	checks := []tui.DoctorCheck{
		{Name: "configuration", Status: tui.DoctorOK, Detail: "valid"},
		checkPackages(ctx, cfg),
		checkDescriptor(),
	}
	checks = append(checks, checkArtifacts(cfg)...)
	checks = append(checks, checkDefinition(cfg))
	return checks
}

func checkPackages(ctx context.Context, cfg *config.Config) tui.DoctorCheck {
	check := tui.DoctorCheck{Name: "host packages"}

	if !cfg.CheckPackages {
		check.Status = tui.DoctorWarn
		check.Detail = "check disabled in configuration"
		return check
	}

	missing := missingPackages(ctx, packages.Required())
	if len(missing) == 0 {
		check.Status = tui.DoctorOK
		check.Detail = strings.Join(packages.Required(), ", ")
		return check
	}

	check.Status = tui.DoctorFail
	check.Detail = "missing: " + strings.Join(missing, ", ")
	return check
}

func checkDescriptor() tui.DoctorCheck {
	check := tui.DoctorCheck{Name: "firmware descriptor", Detail: config.DescriptorPath}

	if _, err := statPath(config.DescriptorPath); err != nil {
		check.Status = tui.DoctorWarn
		check.Detail = config.DescriptorPath + " not installed"
		return check
	}

	check.Status = tui.DoctorOK
	return check
}

func checkArtifacts(cfg *config.Config) []tui.DoctorCheck {
	var checks []tui.DoctorCheck

	for _, a := range artifacts.Planned(cfg) {
		check := tui.DoctorCheck{Name: "artifact " + a.Name, Detail: a.Path}
		if _, err := statPath(a.Path); err != nil {
			check.Status = tui.DoctorWarn
			check.Detail = a.Path + " not fetched"
		} else {
			check.Status = tui.DoctorOK
		}
		checks = append(checks, check)
	}

	return checks
}

func checkDefinition(cfg *config.Config) tui.DoctorCheck {
	check := tui.DoctorCheck{Name: "domain definition", Detail: cfg.DefinitionFile()}

	if _, err := statPath(cfg.DefinitionFile()); err != nil {
		check.Status = tui.DoctorWarn
		check.Detail = cfg.DefinitionFile() + " not emitted"
		return check
	}

	check.Status = tui.DoctorOK
	return check
}

func printDoctorJSON(report *DoctorReport) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// Package define invokes virt-install to emit the VM definition and
// verifies the result against the configuration.
package define

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"libvirt.org/go/libvirtxml"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning"
)

// artifactMode is the normalized permission set for fetched artifacts:
// readable by owner and group, so qemu running under its own group can open
// the images.
const artifactMode = 0o640

// runVirtInstall executes the delegate and returns stdout and stderr
// separately. Replaceable in tests.
var runVirtInstall = func(ctx context.Context, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	// #nosec G204 - args are derived from the validated configuration
	cmd := exec.CommandContext(ctx, "virt-install", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Args derives the virt-install argument list from the configuration.
//
// One canonical device layout: virtio disk and network, UEFI boot via
// firmware autoselection, headless with a serial console, i6300esb
// watchdog. --print-xml emits the definition without defining or starting
// anything.
func Args(cfg *config.Config) []string {
	return []string{
		"--connect", "qemu:///system",
		"--name", cfg.VMName,
		"--memory", strconv.Itoa(cfg.Memory),
		"--vcpus", strconv.Itoa(cfg.CPUs),
		"--os-variant", cfg.OSVariant,
		"--disk", fmt.Sprintf("path=%s,bus=virtio,format=qcow2", cfg.QCOW2ImagePath),
		"--network", "network=default,model=virtio",
		"--boot", "uefi",
		"--graphics", "none",
		"--console", "pty,target_type=serial",
		"--watchdog", "i6300esb,action=reset",
		"--import",
		"--noautoconsole",
		"--print-xml",
	}
}

// Phase normalizes artifact permissions, emits the definition, and writes
// it to <vm_name>.xml.
type Phase struct{}

// New creates the define phase.
func New() *Phase {
	return &Phase{}
}

// Name implements provisioning.Phase.
func (p *Phase) Name() string {
	return "define"
}

// Provision implements provisioning.Phase.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	for _, a := range ctx.State.Artifacts {
		if err := os.Chmod(a.Path, artifactMode); err != nil {
			return fmt.Errorf("failed to normalize permissions on %s: %w", a.Path, err)
		}
	}

	stdout, stderr, err := runVirtInstall(ctx, Args(ctx.Config))
	if err != nil {
		return fmt.Errorf("%w: virt-install: %v: %s",
			provisioning.ErrDelegateFailed, err, strings.TrimSpace(string(stderr)))
	}

	definition := bytes.TrimSpace(stdout)
	if len(definition) == 0 {
		return fmt.Errorf("%w: virt-install produced an empty definition", provisioning.ErrDelegateFailed)
	}

	if err := verifyDefinition(ctx.Config, definition); err != nil {
		return err
	}

	outPath := ctx.Config.DefinitionFile()
	if err := os.WriteFile(outPath, append(definition, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write definition %s: %w", outPath, err)
	}

	ctx.State.DefinitionPath = outPath
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), outPath)
	return nil
}

// verifyDefinition parses the emitted XML and cross-checks it against the
// configuration. The definition stays externally generated; this is a
// read-back sanity check, not a synthesis step.
func verifyDefinition(cfg *config.Config, definition []byte) error {
	var domain libvirtxml.Domain
	if err := domain.Unmarshal(string(definition)); err != nil {
		return fmt.Errorf("virt-install emitted malformed XML: %w", err)
	}

	if domain.Name != cfg.VMName {
		return fmt.Errorf("definition name %q does not match configured vm_name %q", domain.Name, cfg.VMName)
	}

	if domain.Memory != nil {
		got, err := memoryMiB(domain.Memory)
		if err != nil {
			return err
		}
		if got != uint64(cfg.Memory) {
			return fmt.Errorf("definition memory %d MiB does not match configured %d MiB", got, cfg.Memory)
		}
	}

	if domain.VCPU != nil && domain.VCPU.Value != uint(cfg.CPUs) {
		return fmt.Errorf("definition vcpus %d does not match configured %d", domain.VCPU.Value, cfg.CPUs)
	}

	return nil
}

// memoryMiB converts a libvirt memory element to MiB.
func memoryMiB(mem *libvirtxml.DomainMemory) (uint64, error) {
	value := uint64(mem.Value)

	switch mem.Unit {
	case "", "KiB", "k":
		return value / 1024, nil
	case "MiB", "M":
		return value, nil
	case "GiB", "G":
		return value * 1024, nil
	case "b", "bytes":
		return value / (1024 * 1024), nil
	default:
		return 0, fmt.Errorf("unexpected memory unit %q in definition", mem.Unit)
	}
}

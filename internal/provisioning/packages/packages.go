// Package packages verifies that the host packages needed to define and
// run the VM are installed, and installs the missing ones.
package packages

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/virtup/virtup/internal/provisioning"
	"github.com/virtup/virtup/internal/ui/prompt"
)

// Required returns the host packages the provisioning flow depends on.
// virt-install emits the definition, libvirt consumes it, and edk2-ovmf
// provides the distribution firmware the custom descriptor sits next to.
func Required() []string {
	return []string{"qemu-kvm", "libvirt", "virt-install", "edk2-ovmf"}
}

// Delegate invocations, replaceable in tests.
var (
	// queryPackage returns nil when the package is installed.
	queryPackage = func(ctx context.Context, name string) error {
		// #nosec G204 - name comes from the fixed Required list
		return exec.CommandContext(ctx, "rpm", "-q", name).Run()
	}

	// installPackages installs the named packages non-interactively.
	installPackages = func(ctx context.Context, names []string) ([]byte, error) {
		args := append([]string{"install", "-y"}, names...)
		return exec.CommandContext(ctx, "dnf", args...).CombinedOutput()
	}

	// confirmInstall asks the operator before touching the package database.
	confirmInstall = func(ctx context.Context, missing []string) (bool, error) {
		return prompt.Confirm(ctx,
			"Install missing packages?",
			"dnf install -y "+strings.Join(missing, " "))
	}
)

// Missing returns the subset of names not installed on the host.
func Missing(ctx context.Context, names []string) []string {
	var missing []string
	for _, name := range names {
		if err := queryPackage(ctx, name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Phase checks package presence and installs what is missing.
type Phase struct{}

// New creates the package phase.
func New() *Phase {
	return &Phase{}
}

// Name implements provisioning.Phase.
func (p *Phase) Name() string {
	return "packages"
}

// Provision implements provisioning.Phase.
//
// The step is gated by the check_packages configuration field. In
// interactive mode the operator is asked before installing; declining is
// accepted and the run continues with a warning. A failed install is fatal:
// continuing would risk defining a VM on a host missing its management
// tools.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	if !ctx.Config.CheckPackages {
		provisioning.LogStepSkipped(ctx.Observer, p.Name(), "check_packages disabled in configuration")
		return nil
	}

	missing := Missing(ctx, Required())
	ctx.State.MissingPackages = missing

	if len(missing) == 0 {
		provisioning.LogResourceExists(ctx.Observer, p.Name(), strings.Join(Required(), ","))
		return nil
	}

	ctx.Observer.Printf("Missing packages: %s", strings.Join(missing, ", "))

	if ctx.Interactive {
		ok, err := confirmInstall(ctx, missing)
		if err != nil {
			return fmt.Errorf("failed to prompt for confirmation: %w", err)
		}
		if !ok {
			ctx.State.InstallDeclined = true
			provisioning.LogWarning(ctx.Observer, p.Name(),
				"installation declined; VM management tools may be incomplete")
			return nil
		}
	}

	output, err := installPackages(ctx, missing)
	if err != nil {
		return fmt.Errorf("%w: dnf install: %v: %s",
			provisioning.ErrDelegateFailed, err, strings.TrimSpace(string(output)))
	}

	ctx.State.PackagesInstalled = true
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), strings.Join(missing, ","))
	return nil
}

package firmware

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning"
	"github.com/virtup/virtup/internal/ui/prompt"
)

// Delegate invocations, replaceable in tests.
var (
	// reloadDaemon tells libvirtd to rescan its firmware descriptors.
	reloadDaemon = func(ctx context.Context) ([]byte, error) {
		return exec.CommandContext(ctx, "systemctl", "try-reload-or-restart", "libvirtd").CombinedOutput()
	}

	// confirmCreateDir asks before creating the descriptor directory.
	confirmCreateDir = func(ctx context.Context, dir string) (bool, error) {
		return prompt.Confirm(ctx,
			"Create firmware descriptor directory?",
			"mkdir -p "+dir)
	}
)

// Phase ensures the firmware descriptor exists at its well-known path.
type Phase struct {
	// Path of the descriptor file. Defaults to config.DescriptorPath;
	// overridden in tests.
	Path string
}

// New creates the firmware phase writing to the standard descriptor path.
func New() *Phase {
	return &Phase{Path: config.DescriptorPath}
}

// Name implements provisioning.Phase.
func (p *Phase) Name() string {
	return "firmware"
}

// Provision implements provisioning.Phase.
//
// If the descriptor file already exists the step is a logged no-op and no
// reload is sent. Otherwise the parent directory is created (subject to
// operator confirmation in interactive mode), the descriptor is written,
// and exactly one reload is sent to libvirtd. Declining the directory
// creation skips the step and suppresses the reload; the run continues.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	ctx.State.DescriptorPath = p.Path

	if _, err := os.Stat(p.Path); err == nil {
		provisioning.LogResourceExists(ctx.Observer, p.Name(), p.Path)
		return nil
	}

	dir := filepath.Dir(p.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if ctx.Interactive {
			ok, promptErr := confirmCreateDir(ctx, dir)
			if promptErr != nil {
				return fmt.Errorf("failed to prompt for confirmation: %w", promptErr)
			}
			if !ok {
				ctx.State.DescriptorSkipped = true
				provisioning.LogWarning(ctx.Observer, p.Name(),
					"descriptor installation declined; firmware autoselection will not see the custom OVMF")
				return nil
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create descriptor directory %s: %w", dir, err)
		}
	}

	data, err := NewDescriptor(ctx.Config).Render()
	if err != nil {
		return err
	}

	if err := os.WriteFile(p.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write firmware descriptor %s: %w", p.Path, err)
	}

	ctx.State.DescriptorWritten = true
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), p.Path)

	output, err := reloadDaemon(ctx)
	if err != nil {
		return fmt.Errorf("%w: libvirtd reload: %v: %s",
			provisioning.ErrDelegateFailed, err, strings.TrimSpace(string(output)))
	}

	ctx.State.ReloadSent = true
	ctx.Observer.Printf("libvirtd reloaded to pick up %s", p.Path)
	return nil
}

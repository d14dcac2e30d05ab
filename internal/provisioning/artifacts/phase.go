package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning"
)

// Artifact pairs a source URL with its local destination.
type Artifact struct {
	Name string
	URL  string
	Path string
}

// Planned lists the artifacts for a configuration: the two OVMF images
// fetched into the firmware directory and the disk image.
func Planned(cfg *config.Config) []Artifact {
	base := strings.TrimSuffix(cfg.OVMFBaseURL, "/")

	return []Artifact{
		{
			Name: "ovmf-code",
			URL:  base + "/" + cfg.OVMFCode,
			Path: filepath.Join(cfg.FirmwareDir, cfg.OVMFCode),
		},
		{
			Name: "ovmf-vars",
			URL:  base + "/" + cfg.OVMFVars,
			Path: filepath.Join(cfg.FirmwareDir, cfg.OVMFVars),
		},
		{
			Name: "disk-image",
			URL:  cfg.QCOW2ImageURL,
			Path: cfg.QCOW2ImagePath,
		},
	}
}

// Phase fetches every missing artifact. Each fetch is independent and keyed
// by its own (url, path) pair.
type Phase struct {
	fetcher *Fetcher
}

// New creates the artifacts phase.
func New() *Phase {
	return &Phase{fetcher: NewFetcher()}
}

// NewWithFetcher creates the phase with a custom fetcher (used in tests).
func NewWithFetcher(f *Fetcher) *Phase {
	return &Phase{fetcher: f}
}

// Name implements provisioning.Phase.
func (p *Phase) Name() string {
	return "artifacts"
}

// Provision implements provisioning.Phase.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	for _, a := range Planned(ctx.Config) {
		dir := filepath.Dir(a.Path)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
			}
		}

		result, err := p.fetcher.EnsureFetched(ctx, a.URL, a.Path)
		if err != nil {
			return err
		}

		ctx.State.Artifacts = append(ctx.State.Artifacts, provisioning.ArtifactResult{
			Name:       a.Name,
			Source:     a.URL,
			Path:       a.Path,
			Downloaded: result.Downloaded,
			Verified:   result.Verified,
		})

		switch {
		case result.Downloaded:
			provisioning.LogResourceCreated(ctx.Observer, p.Name(), a.Path)
		case result.Verified:
			provisioning.LogResourceExists(ctx.Observer, p.Name(), a.Path)
		default:
			provisioning.LogWarning(ctx.Observer, p.Name(),
				fmt.Sprintf("%s exists but has no recorded checksum; assuming complete", a.Path))
		}
	}

	return nil
}

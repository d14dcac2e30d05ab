// Package firmware installs the UEFI firmware descriptor consumed by
// libvirt's firmware autoselection.
package firmware

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/virtup/virtup/internal/config"
)

// Descriptor is a QEMU firmware metadata document (the format of the files
// under /etc/qemu/firmware and /usr/share/qemu/firmware).
type Descriptor struct {
	Description    string   `json:"description"`
	InterfaceTypes []string `json:"interface-types"`
	Mapping        Mapping  `json:"mapping"`
	Targets        []Target `json:"targets"`
	Features       []string `json:"features"`
	Tags           []string `json:"tags"`
}

// Mapping describes how the firmware is presented to the guest.
type Mapping struct {
	Device        string `json:"device"`
	Executable    *Image `json:"executable,omitempty"`
	NVRAMTemplate *Image `json:"nvram-template,omitempty"`
}

// Image points at a firmware image file on the host.
type Image struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
}

// Target restricts the descriptor to an architecture/machine combination.
type Target struct {
	Architecture string   `json:"architecture"`
	Machines     []string `json:"machines"`
}

// NewDescriptor builds the descriptor for the configured OVMF images.
func NewDescriptor(cfg *config.Config) *Descriptor {
	return &Descriptor{
		Description:    "Custom OVMF with split code and variables (installed by virtup)",
		InterfaceTypes: []string{"uefi"},
		Mapping: Mapping{
			Device: "flash",
			Executable: &Image{
				Filename: filepath.Join(cfg.FirmwareDir, cfg.OVMFCode),
				Format:   "raw",
			},
			NVRAMTemplate: &Image{
				Filename: filepath.Join(cfg.FirmwareDir, cfg.OVMFVars),
				Format:   "raw",
			},
		},
		Targets: []Target{
			{
				Architecture: "x86_64",
				Machines:     []string{"pc-q35-*"},
			},
		},
		Features: []string{"acpi-s3", "verbose-dynamic"},
		Tags:     []string{},
	}
}

// Render serializes the descriptor to the on-disk JSON form.
func (d *Descriptor) Render() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal firmware descriptor: %w", err)
	}
	return append(data, '\n'), nil
}

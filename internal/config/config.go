// Package config defines the declarative VM provisioning configuration,
// its defaults, and validation rules.
package config

// Config holds the full provisioning configuration for a single VM.
//
// The file layout is a flat JSON (or YAML) object. Field names follow the
// snake_case keys of the on-disk format.
type Config struct {
	// VMName is the libvirt domain name and the basename of the emitted
	// definition file.
	VMName string `mapstructure:"vm_name" json:"vm_name" yaml:"vm_name"`

	// Memory is the VM memory size in MiB.
	Memory int `mapstructure:"memory" json:"memory" yaml:"memory"`

	// CPUs is the number of virtual CPUs.
	CPUs int `mapstructure:"cpus" json:"cpus" yaml:"cpus"`

	// OSVariant is the virt-install --os-variant value.
	OSVariant string `mapstructure:"os_variant" json:"os_variant" yaml:"os_variant"`

	// FirmwareDir is the host directory holding the OVMF images. Fetched
	// firmware artifacts are placed here and the firmware descriptor points
	// into it.
	FirmwareDir string `mapstructure:"firmware_dir" json:"firmware_dir" yaml:"firmware_dir"`

	// OVMFBaseURL is the URL prefix the OVMF images are fetched from.
	OVMFBaseURL string `mapstructure:"ovmf_base_url" json:"ovmf_base_url" yaml:"ovmf_base_url"`

	// OVMFCode is the filename of the UEFI code image.
	OVMFCode string `mapstructure:"ovmf_code" json:"ovmf_code" yaml:"ovmf_code"`

	// OVMFVars is the filename of the UEFI variables template.
	OVMFVars string `mapstructure:"ovmf_vars" json:"ovmf_vars" yaml:"ovmf_vars"`

	// CheckPackages gates the host package presence check.
	CheckPackages bool `mapstructure:"check_packages" json:"check_packages" yaml:"check_packages"`

	// QCOW2ImageURL is the source of the VM disk image. http(s):// and
	// s3:// schemes are supported.
	QCOW2ImageURL string `mapstructure:"qcow2_image_url" json:"qcow2_image_url" yaml:"qcow2_image_url"`

	// QCOW2ImagePath is the local destination of the disk image. Defaults
	// to the URL basename in the current directory.
	QCOW2ImagePath string `mapstructure:"qcow2_image_path" json:"qcow2_image_path" yaml:"qcow2_image_path"`
}

// DefinitionFile returns the output path of the emitted domain XML.
func (c *Config) DefinitionFile() string {
	return c.VMName + ".xml"
}

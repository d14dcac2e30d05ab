package config

// Well-known host paths and defaults.
const (
	// DescriptorPath is where the UEFI firmware descriptor is installed.
	// libvirt's firmware autoselection scans this directory.
	DescriptorPath = "/etc/qemu/firmware/60-ovmf-custom.json"

	// DefaultOSVariant is used when the configuration leaves os_variant
	// empty. The image set this tool targets is RHEL 9 based.
	DefaultOSVariant = "rhel9.4"

	// DefaultConfigFile is the configuration filename looked up in the
	// working directory when no --config flag is given.
	DefaultConfigFile = "virtup.json"
)

package wizard

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/charmbracelet/huh"
)

// vmNameRegex validates VM name format: alphanumeric start, then
// alphanumerics, hyphens, underscores or dots, at most 64 characters.
var vmNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,63}$`)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// VM Identity
	VMName    string
	OSVariant string

	// Resources
	Memory int // MiB
	CPUs   int

	// Disk Image
	QCOW2ImageURL  string
	QCOW2ImagePath string

	// Firmware
	FirmwareDir string
	OVMFBaseURL string
	OVMFCode    string
	OVMFVars    string

	// Host Packages
	CheckPackages bool
}

// MemoryOptions lists the memory sizes offered by the wizard, in MiB.
var MemoryOptions = []huh.Option[int]{
	huh.NewOption("2 GiB", 2048),
	huh.NewOption("4 GiB", 4096),
	huh.NewOption("8 GiB", 8192),
	huh.NewOption("16 GiB", 16384),
	huh.NewOption("32 GiB", 32768),
}

// CPUOptions lists the vCPU counts offered by the wizard.
var CPUOptions = []huh.Option[int]{
	huh.NewOption("1", 1),
	huh.NewOption("2", 2),
	huh.NewOption("4", 4),
	huh.NewOption("8", 8),
}

// RunWizard runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("vm identity: %w", err)
	}

	if err := runResourcesGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}

	if err := runDiskGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("disk image: %w", err)
	}

	if err := runFirmwareGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("firmware: %w", err)
	}

	if err := runPackagesGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("host packages: %w", err)
	}

	return result, nil
}

// runIdentityGroup prompts for VM name and OS variant.
func runIdentityGroup(ctx context.Context, result *WizardResult) error {
	result.OSVariant = "rhel9.4" // default

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("VM Name").
				Description("libvirt domain name; also names the emitted <name>.xml file").
				Placeholder("my-vm").
				Value(&result.VMName).
				Validate(validateVMName),
			huh.NewInput().
				Title("OS Variant").
				Description("virt-install --os-variant value (see osinfo-query os)").
				Value(&result.OSVariant),
		).Title("VM Identity"),
	).RunWithContext(ctx)
}

// runResourcesGroup prompts for memory and vCPU count.
func runResourcesGroup(ctx context.Context, result *WizardResult) error {
	result.Memory = 4096 // default
	result.CPUs = 2

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Memory").
				Description("VM memory size").
				Options(MemoryOptions...).
				Value(&result.Memory),
			huh.NewSelect[int]().
				Title("vCPUs").
				Description("Number of virtual CPUs").
				Options(CPUOptions...).
				Value(&result.CPUs),
		).Title("Resources"),
	).RunWithContext(ctx)
}

// runDiskGroup prompts for the disk image source and destination.
func runDiskGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Disk Image URL").
				Description("qcow2 cloud image source; http(s):// or s3://").
				Placeholder("https://example.com/images/rhel-9.4-x86_64-kvm.qcow2").
				Value(&result.QCOW2ImageURL).
				Validate(validateSourceURL),
			huh.NewInput().
				Title("Disk Image Path (Optional)").
				Description("Local destination. Leave empty to use the URL basename.").
				Value(&result.QCOW2ImagePath),
		).Title("Disk Image"),
	).RunWithContext(ctx)
}

// runFirmwareGroup prompts for the UEFI firmware source and layout.
func runFirmwareGroup(ctx context.Context, result *WizardResult) error {
	// Defaults matching a stock edk2-ovmf layout
	result.FirmwareDir = "/usr/share/edk2/ovmf"
	result.OVMFCode = "OVMF_CODE.secboot.fd"
	result.OVMFVars = "OVMF_VARS.fd"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OVMF Base URL").
				Description("URL prefix the OVMF images are fetched from").
				Placeholder("https://example.com/firmware").
				Value(&result.OVMFBaseURL).
				Validate(validateSourceURL),
			huh.NewInput().
				Title("Firmware Directory").
				Description("Host directory holding the OVMF images").
				Value(&result.FirmwareDir),
			huh.NewInput().
				Title("UEFI Code Image").
				Value(&result.OVMFCode),
			huh.NewInput().
				Title("UEFI Variables Template").
				Value(&result.OVMFVars),
		).Title("UEFI Firmware"),
	).RunWithContext(ctx)
}

// runPackagesGroup prompts for the host package check toggle.
func runPackagesGroup(ctx context.Context, result *WizardResult) error {
	result.CheckPackages = true // default

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Check Host Packages?").
				Description("Verify qemu-kvm, libvirt, virt-install and edk2-ovmf are installed before provisioning").
				Value(&result.CheckPackages),
		).Title("Host Packages"),
	).RunWithContext(ctx)
}

// validateVMName validates the VM name input.
func validateVMName(name string) error {
	if name == "" {
		return errVMNameRequired
	}
	if !vmNameRegex.MatchString(name) {
		return errVMNameInvalid
	}
	return nil
}

// validateSourceURL validates an artifact source URL input.
func validateSourceURL(raw string) error {
	if raw == "" {
		return errURLRequired
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errURLInvalid
	}
	switch u.Scheme {
	case "http", "https", "s3":
	default:
		return errURLInvalid
	}
	if u.Host == "" {
		return errURLInvalid
	}
	return nil
}

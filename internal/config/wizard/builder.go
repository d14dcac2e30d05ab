package wizard

import "github.com/virtup/virtup/internal/config"

// BuildConfig creates a Config struct from the wizard result.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		VMName:        result.VMName,
		Memory:        result.Memory,
		CPUs:          result.CPUs,
		OSVariant:     result.OSVariant,
		FirmwareDir:   result.FirmwareDir,
		OVMFBaseURL:   result.OVMFBaseURL,
		OVMFCode:      result.OVMFCode,
		OVMFVars:      result.OVMFVars,
		CheckPackages: result.CheckPackages,
		QCOW2ImageURL: result.QCOW2ImageURL,
	}

	// Only set the destination if provided (optional field); ApplyDefaults
	// derives it from the URL basename otherwise.
	if result.QCOW2ImagePath != "" {
		cfg.QCOW2ImagePath = result.QCOW2ImagePath
	}

	cfg.ApplyDefaults()
	return cfg
}

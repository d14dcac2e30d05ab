package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// vmNamePattern matches names libvirt accepts without escaping and that are
// safe to use as a filename for the emitted definition.
var vmNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// supportedSchemes lists artifact source URL schemes the fetcher handles.
var supportedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"s3":    true,
}

// Validate checks the configuration for common errors and returns a
// detailed error if validation fails.
func (c *Config) Validate() error {
	if c.VMName == "" {
		return fmt.Errorf("vm_name is required")
	}
	if !vmNamePattern.MatchString(c.VMName) {
		return fmt.Errorf("invalid vm_name %q: must start with an alphanumeric and contain only alphanumerics, '_', '.', '-'", c.VMName)
	}

	if c.Memory < 1 {
		return fmt.Errorf("memory must be a positive number of MiB, got %d", c.Memory)
	}
	if c.CPUs < 1 {
		return fmt.Errorf("cpus must be at least 1, got %d", c.CPUs)
	}

	if err := c.validateFirmware(); err != nil {
		return fmt.Errorf("firmware validation failed: %w", err)
	}

	if err := c.validateDisk(); err != nil {
		return fmt.Errorf("disk validation failed: %w", err)
	}

	return nil
}

// validateFirmware validates the firmware directory, filenames and source URL.
func (c *Config) validateFirmware() error {
	if c.FirmwareDir == "" {
		return fmt.Errorf("firmware_dir is required")
	}
	if !filepath.IsAbs(c.FirmwareDir) {
		return fmt.Errorf("firmware_dir must be an absolute path, got %q", c.FirmwareDir)
	}

	for key, name := range map[string]string{"ovmf_code": c.OVMFCode, "ovmf_vars": c.OVMFVars} {
		if name == "" {
			return fmt.Errorf("%s is required", key)
		}
		if strings.ContainsRune(name, '/') {
			return fmt.Errorf("%s must be a bare filename, got %q", key, name)
		}
	}

	return validateSourceURL("ovmf_base_url", c.OVMFBaseURL)
}

// validateDisk validates the disk image source and destination.
func (c *Config) validateDisk() error {
	if err := validateSourceURL("qcow2_image_url", c.QCOW2ImageURL); err != nil {
		return err
	}

	if c.QCOW2ImagePath == "" {
		return fmt.Errorf("qcow2_image_path could not be derived from qcow2_image_url")
	}

	return nil
}

// validateSourceURL checks that a URL parses and uses a supported scheme.
func validateSourceURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if !supportedSchemes[u.Scheme] {
		return fmt.Errorf("invalid %s scheme %q: must be one of http, https, s3", key, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s: missing host", key)
	}

	return nil
}

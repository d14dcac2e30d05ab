package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/ui/tui"
)

// saveAndRestoreDoctorFactories saves and restores doctor factory functions.
func saveAndRestoreDoctorFactories(t *testing.T) {
	t.Helper()
	origMissingPackages := missingPackages
	origStatPath := statPath

	t.Cleanup(func() {
		missingPackages = origMissingPackages
		statPath = origStatPath
	})
}

func TestDoctor_AllPresent(t *testing.T) {
	saveAndRestoreFactories(t)
	saveAndRestoreDoctorFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return validTestConfig(), nil
	}
	missingPackages = func(_ context.Context, _ []string) []string { return nil }
	statPath = func(_ string) (os.FileInfo, error) { return nil, nil }

	output := captureOutput(func() {
		err := Doctor(context.Background(), "virtup.json", false)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "virtup doctor: test-vm")
	assert.Contains(t, output, "configuration")
	assert.Contains(t, output, "host packages")
	assert.Contains(t, output, "domain definition")
}

func TestDoctor_MissingPieces(t *testing.T) {
	saveAndRestoreFactories(t)
	saveAndRestoreDoctorFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return validTestConfig(), nil
	}
	missingPackages = func(_ context.Context, _ []string) []string {
		return []string{"virt-install"}
	}
	statPath = func(_ string) (os.FileInfo, error) {
		return nil, os.ErrNotExist
	}

	output := captureOutput(func() {
		err := Doctor(context.Background(), "virtup.json", false)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "missing: virt-install")
	assert.Contains(t, output, "not installed")
	assert.Contains(t, output, "not fetched")
	assert.Contains(t, output, "not emitted")
}

func TestDoctor_JSONOutput(t *testing.T) {
	saveAndRestoreFactories(t)
	saveAndRestoreDoctorFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return validTestConfig(), nil
	}
	missingPackages = func(_ context.Context, _ []string) []string { return nil }
	statPath = func(_ string) (os.FileInfo, error) { return nil, nil }

	output := captureOutput(func() {
		err := Doctor(context.Background(), "virtup.json", true)
		require.NoError(t, err)
	})

	var report DoctorReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))

	assert.Equal(t, "test-vm", report.VMName)
	// configuration, packages, descriptor, 3 artifacts, definition
	assert.Len(t, report.Checks, 7)
	for _, check := range report.Checks {
		assert.Equal(t, tui.DoctorOK, check.Status, "check %s", check.Name)
	}
}

func TestDoctor_PackageCheckDisabled(t *testing.T) {
	saveAndRestoreFactories(t)
	saveAndRestoreDoctorFactories(t)

	cfg := validTestConfig()
	cfg.CheckPackages = false
	loadConfigFile = func(_ string) (*config.Config, error) { return cfg, nil }
	missingPackages = func(_ context.Context, _ []string) []string {
		t.Fatal("package database must not be probed when the check is disabled")
		return nil
	}
	statPath = func(_ string) (os.FileInfo, error) { return nil, nil }

	output := captureOutput(func() {
		err := Doctor(context.Background(), "virtup.json", true)
		require.NoError(t, err)
	})

	var report DoctorReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))

	var found bool
	for _, check := range report.Checks {
		if check.Name == "host packages" {
			found = true
			assert.Equal(t, tui.DoctorWarn, check.Status)
			assert.Contains(t, check.Detail, "disabled")
		}
	}
	assert.True(t, found)
}

func TestDoctor_ConfigError(t *testing.T) {
	saveAndRestoreFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return nil, errors.New("vm_name is required")
	}

	err := Doctor(context.Background(), "broken.json", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

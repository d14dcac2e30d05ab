package firmware

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning"
)

func saveAndRestoreDelegates(t *testing.T) {
	origReload := reloadDaemon
	origConfirm := confirmCreateDir

	t.Cleanup(func() {
		reloadDaemon = origReload
		confirmCreateDir = origConfirm
	})
}

func testConfig() *config.Config {
	return &config.Config{
		VMName:      "test",
		FirmwareDir: "/var/lib/virtup/firmware",
		OVMFCode:    "OVMF_CODE.secboot.fd",
		OVMFVars:    "OVMF_VARS.fd",
	}
}

func testContext(interactive bool) *provisioning.Context {
	return provisioning.NewContext(context.Background(), testConfig(), interactive)
}

func TestDescriptorRender(t *testing.T) {
	data, err := NewDescriptor(testConfig()).Render()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, []interface{}{"uefi"}, doc["interface-types"])

	mapping, ok := doc["mapping"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "flash", mapping["device"])

	executable, ok := mapping["executable"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/var/lib/virtup/firmware/OVMF_CODE.secboot.fd", executable["filename"])
	assert.Equal(t, "raw", executable["format"])

	nvram, ok := mapping["nvram-template"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/var/lib/virtup/firmware/OVMF_VARS.fd", nvram["filename"])
}

func TestProvision(t *testing.T) {
	t.Run("fresh install writes descriptor and reloads once", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		reloads := 0
		reloadDaemon = func(_ context.Context) ([]byte, error) {
			reloads++
			return nil, nil
		}

		path := filepath.Join(t.TempDir(), "qemu", "firmware", "60-ovmf-custom.json")
		phase := &Phase{Path: path}

		pctx := testContext(false)
		require.NoError(t, phase.Provision(pctx))

		assert.FileExists(t, path)
		assert.True(t, pctx.State.DescriptorWritten)
		assert.True(t, pctx.State.ReloadSent)
		assert.Equal(t, 1, reloads)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var doc Descriptor
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "flash", doc.Mapping.Device)
	})

	t.Run("existing descriptor is a no-op without reload", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		reloadDaemon = func(_ context.Context) ([]byte, error) {
			t.Fatal("reload must not be sent when nothing changed")
			return nil, nil
		}

		path := filepath.Join(t.TempDir(), "60-ovmf-custom.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

		pctx := testContext(false)
		require.NoError(t, (&Phase{Path: path}).Provision(pctx))

		assert.False(t, pctx.State.DescriptorWritten)
		assert.False(t, pctx.State.ReloadSent)

		// Content untouched.
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})

	t.Run("declined directory creation skips step and reload", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		confirmCreateDir = func(_ context.Context, _ string) (bool, error) {
			return false, nil
		}
		reloadDaemon = func(_ context.Context) ([]byte, error) {
			t.Fatal("reload must not be sent after the operator declined")
			return nil, nil
		}

		path := filepath.Join(t.TempDir(), "does-not-exist", "60-ovmf-custom.json")

		pctx := testContext(true)
		require.NoError(t, (&Phase{Path: path}).Provision(pctx))

		assert.True(t, pctx.State.DescriptorSkipped)
		assert.NoFileExists(t, path)
	})

	t.Run("reload failure is fatal", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		reloadDaemon = func(_ context.Context) ([]byte, error) {
			return []byte("Failed to reload"), errors.New("exit status 1")
		}

		path := filepath.Join(t.TempDir(), "60-ovmf-custom.json")

		err := (&Phase{Path: path}).Provision(testContext(false))
		require.Error(t, err)
		assert.ErrorIs(t, err, provisioning.ErrDelegateFailed)
	})

	t.Run("unwritable directory is fatal", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		if os.Geteuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}

		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0o555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

		path := filepath.Join(dir, "sub", "60-ovmf-custom.json")

		err := (&Phase{Path: path}).Provision(testContext(false))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "descriptor directory")
	})
}

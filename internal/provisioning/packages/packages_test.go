package packages

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtup/virtup/internal/config"
	"github.com/virtup/virtup/internal/provisioning"
)

// saveAndRestoreDelegates saves and restores the package delegate functions.
func saveAndRestoreDelegates(t *testing.T) {
	origQuery := queryPackage
	origInstall := installPackages
	origConfirm := confirmInstall

	t.Cleanup(func() {
		queryPackage = origQuery
		installPackages = origInstall
		confirmInstall = origConfirm
	})
}

func testContext(checkPackages, interactive bool) *provisioning.Context {
	cfg := &config.Config{VMName: "test", CheckPackages: checkPackages}
	return provisioning.NewContext(context.Background(), cfg, interactive)
}

func TestMissing(t *testing.T) {
	saveAndRestoreDelegates(t)

	installed := map[string]bool{"libvirt": true, "qemu-kvm": true}
	queryPackage = func(_ context.Context, name string) error {
		if installed[name] {
			return nil
		}
		return errors.New("package not installed")
	}

	missing := Missing(context.Background(), Required())
	assert.Equal(t, []string{"virt-install", "edk2-ovmf"}, missing)
}

func TestProvision(t *testing.T) {
	t.Run("check disabled skips everything", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		queried := false
		queryPackage = func(_ context.Context, _ string) error {
			queried = true
			return nil
		}

		pctx := testContext(false, false)
		require.NoError(t, New().Provision(pctx))
		assert.False(t, queried)
	})

	t.Run("all present is a no-op", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		queryPackage = func(_ context.Context, _ string) error { return nil }
		installPackages = func(_ context.Context, _ []string) ([]byte, error) {
			t.Fatal("install must not run when nothing is missing")
			return nil, nil
		}

		pctx := testContext(true, false)
		require.NoError(t, New().Provision(pctx))
		assert.Empty(t, pctx.State.MissingPackages)
		assert.False(t, pctx.State.PackagesInstalled)
	})

	t.Run("non-interactive installs missing set", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		queryPackage = func(_ context.Context, _ string) error {
			return errors.New("not installed")
		}

		var installed []string
		installPackages = func(_ context.Context, names []string) ([]byte, error) {
			installed = names
			return nil, nil
		}

		pctx := testContext(true, false)
		require.NoError(t, New().Provision(pctx))
		assert.Equal(t, Required(), installed)
		assert.True(t, pctx.State.PackagesInstalled)
	})

	t.Run("declined prompt continues with warning", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		queryPackage = func(_ context.Context, _ string) error {
			return errors.New("not installed")
		}
		confirmInstall = func(_ context.Context, _ []string) (bool, error) {
			return false, nil
		}
		installPackages = func(_ context.Context, _ []string) ([]byte, error) {
			t.Fatal("install must not run after the operator declined")
			return nil, nil
		}

		pctx := testContext(true, true)
		require.NoError(t, New().Provision(pctx))
		assert.True(t, pctx.State.InstallDeclined)
		assert.False(t, pctx.State.PackagesInstalled)
	})

	t.Run("prompt error is fatal", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		queryPackage = func(_ context.Context, _ string) error {
			return errors.New("not installed")
		}
		confirmInstall = func(_ context.Context, _ []string) (bool, error) {
			return false, errors.New("terminal not interactive")
		}

		err := New().Provision(testContext(true, true))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to prompt")
	})

	t.Run("install failure is fatal", func(t *testing.T) {
		saveAndRestoreDelegates(t)

		queryPackage = func(_ context.Context, _ string) error {
			return errors.New("not installed")
		}
		installPackages = func(_ context.Context, _ []string) ([]byte, error) {
			return []byte("No match for argument"), errors.New("exit status 1")
		}

		err := New().Provision(testContext(true, false))
		require.Error(t, err)
		assert.ErrorIs(t, err, provisioning.ErrDelegateFailed)
		assert.Contains(t, err.Error(), "No match for argument")
	})
}

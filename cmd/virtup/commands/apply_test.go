package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	cmd := Apply()

	require.NotNil(t, cmd)
	assert.Equal(t, "apply", cmd.Use)
	assert.Equal(t, "Provision the virtual machine", cmd.Short)
}

func TestApply_Flags(t *testing.T) {
	cmd := Apply()

	configFlag := cmd.Flags().Lookup("config")
	require.NotNil(t, configFlag, "config flag should exist")
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)

	yesFlag := cmd.Flags().Lookup("yes")
	require.NotNil(t, yesFlag, "yes flag should exist")
	assert.Equal(t, "y", yesFlag.Shorthand)
	assert.Equal(t, "false", yesFlag.DefValue)

	plainFlag := cmd.Flags().Lookup("plain")
	require.NotNil(t, plainFlag, "plain flag should exist")
	assert.Equal(t, "false", plainFlag.DefValue)
}

func TestApply_RunE(t *testing.T) {
	cmd := Apply()
	assert.NotNil(t, cmd.RunE, "Apply command should have RunE function")
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRelayCommand(t *testing.T) {
	cmd := NewRelayCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "sojourner-relay", cmd.Use)
	assert.True(t, cmd.HasSubCommands())

	for _, sub := range []string{"gateway", "onboard", "version"} {
		found, _, err := cmd.Find([]string{sub})
		require.NoError(t, err, sub)
		require.NotNil(t, found, sub)
	}
}

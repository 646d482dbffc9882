package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvDefaults(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv[string]("XFTP_TEST_UNSET", "fallback", false))
	assert.Equal(t, uint(3), GetEnv[uint]("XFTP_TEST_UNSET", "3", false))
	assert.True(t, GetEnv[bool]("XFTP_TEST_UNSET", "true", false))
}

func TestGetEnvSet(t *testing.T) {
	t.Setenv("XFTP_TEST_PORT", "6969")

	assert.Equal(t, "6969", GetEnv[string]("XFTP_TEST_PORT", "0", false))
	assert.Equal(t, uint(6969), GetEnv[uint]("XFTP_TEST_PORT", "0", false))
}

func TestGetEnvRequiredPanics(t *testing.T) {
	require.Panics(t, func() {
		GetEnv[string]("XFTP_TEST_MISSING", "", true)
	})
}

func TestGetEnvUnparsablePanics(t *testing.T) {
	t.Setenv("XFTP_TEST_BAD", "not-a-number")

	require.Panics(t, func() {
		GetEnv[uint]("XFTP_TEST_BAD", "0", false)
	})
}

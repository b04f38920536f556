package ciutil

import (
	"testing"

	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

// These tests mutate the environment and cannot run in parallel.

func clearCI(t *testing.T) {
	t.Helper()
	for _, name := range ciEnvVars {
		t.Setenv(name, "")
	}
}

func TestIsCI(t *testing.T) {
	clearCI(t)
	assert.False(t, IsCI())

	t.Setenv(EnvGitHubActions, "true")
	assert.True(t, IsCI())
}

func TestGetEnvWithFallbacks(t *testing.T) {
	names := []string{"SCRY_CIUTIL_PRIMARY", "SCRY_CIUTIL_LEGACY"}
	t.Setenv(names[0], "")
	t.Setenv(names[1], "")

	buf, log := logger.NewTestLogger(t)

	v, n := GetEnvWithFallbacks(names, log)
	assert.Empty(t, v)
	assert.Empty(t, n)

	t.Setenv(names[1], "legacy")
	v, n = GetEnvWithFallbacks(names, log)
	assert.Equal(t, "legacy", v)
	assert.Equal(t, names[1], n)
	assert.Contains(t, buf.String(), "using legacy environment variable")
	assert.NotContains(t, buf.String(), `"legacy"`)

	t.Setenv(names[0], "primary")
	v, n = GetEnvWithFallbacks(names, nil)
	assert.Equal(t, "primary", v)
	assert.Equal(t, names[0], n)
}

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIssuesValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var out bytes.Buffer
	err := run([]string{"-user", userID.String(), "-secret", auth.TestSecret}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "user_id="+userID.String(), lines[0])

	token := strings.TrimPrefix(lines[1], "token=")
	claims, err := auth.RequireTestTokenService(t).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestRunHeaderOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, run([]string{"-secret", auth.TestSecret, "-header"}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "Authorization: Bearer "))
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	assert.Error(t, run([]string{"-user", "nope", "-secret", auth.TestSecret}, &out))
	assert.Error(t, run([]string{"-secret", "short"}, &out))
	assert.Error(t, run([]string{"-secret", auth.TestSecret, "-minutes", "0"}, &out))
	assert.Empty(t, out.String())
}

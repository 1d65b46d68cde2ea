package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxUserID, int64(42))
	ctx = context.WithValue(ctx, ctxUsername, "alice")

	userID, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	username, err := GetUsernameFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	_, err := GetUserIDFromContext(context.Background())
	assert.Error(t, err)

	_, err = GetUsernameFromContext(context.Background())
	assert.Error(t, err)
}

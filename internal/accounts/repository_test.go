package accounts

import (
	"context"
	"testing"

	"athing/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, "acct-1", "anon123", "hash")
	require.NoError(t, err)
	assert.Equal(t, "anon123", created.Username)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, "acct-2", "anon123", "hash")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	byName, err := repo.FindByUsername(ctx, "anon123")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	acct, err := repo.LookupAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.False(t, acct.IsBlacklisted)

	_, err = db.Exec(ctx, `UPDATE accounts SET is_blacklisted = TRUE WHERE id = $1`, "acct-1")
	require.NoError(t, err)

	acct, err = repo.LookupAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.True(t, acct.IsBlacklisted)

	_, err = repo.LookupAccount(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

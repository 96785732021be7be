package notes

import (
	"context"
	"fmt"
	"testing"

	"athing/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := db.Exec(ctx,
		`INSERT INTO accounts (id, username, password_hash, avatar_id) VALUES ($1, $2, $3, $4)`,
		"acct-1", "anon1", "hash", 3)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := repo.Create(ctx, fmt.Sprintf("note-%02d", i), "acct-1", noteText(i), i%4 != 0)
		require.NoError(t, err)
	}

	first, err := repo.Feed(ctx, "", 5)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.Equal(t, "anon1", first[0].Username)
	assert.Equal(t, 3, first[0].AvatarID)
	for _, n := range first {
		assert.True(t, n.IsPublished)
	}

	rest, err := repo.Feed(ctx, first[4].ID, 100)
	require.NoError(t, err)
	assert.Len(t, rest, 4, "9 published notes in total")
	for _, n := range rest {
		assert.NotEqual(t, first[4].ID, n.ID)
	}

	all, err := repo.ListByAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Len(t, all, 12)

	updated, err := repo.Update(ctx, "note-01", noteText(99), false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)

	_, err = repo.Update(ctx, "missing", noteText(1), true)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	require.NoError(t, repo.Delete(ctx, "note-01"))
	assert.ErrorIs(t, repo.Delete(ctx, "note-01"), ErrNoteNotFound)

	_, err = repo.GetByID(ctx, "note-01")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

package journals

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
		`INSERT INTO accounts (id, username, password_hash) VALUES ($1, $2, $3)`,
		"acct-1", "anon1", "hash")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := repo.CreateJournal(ctx, fmt.Sprintf("journal-%02d", i), "acct-1", journalTitle(i), i != 2)
		require.NoError(t, err)
	}

	first, err := repo.PublicJournals(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, j := range first {
		assert.True(t, j.IsPublic)
	}

	rest, err := repo.PublicJournals(ctx, first[1].ID, 100)
	require.NoError(t, err)
	assert.Len(t, rest, 2, "4 public journals in total")

	all, err := repo.JournalsByAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	updated, err := repo.UpdateJournal(ctx, "journal-01", journalTitle(99), false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, journalTitle(99), updated.Title)

	_, err = repo.UpdateJournal(ctx, "missing", journalTitle(1), true)
	assert.ErrorIs(t, err, ErrJournalNotFound)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateEntry(ctx, fmt.Sprintf("entry-%02d", i), "journal-00", fmt.Sprintf("Day %d", i), entryContent(i))
		require.NoError(t, err)
	}

	entries, err := repo.ListEntries(ctx, "journal-00")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entry, err := repo.UpdateEntry(ctx, "entry-01", entryContent(42))
	require.NoError(t, err)
	assert.Equal(t, entryContent(42), entry.Content)
	assert.Equal(t, "journal-00", entry.JournalID)

	require.NoError(t, repo.DeleteEntry(ctx, "entry-01"))
	assert.ErrorIs(t, repo.DeleteEntry(ctx, "entry-01"), ErrEntryNotFound)

	require.NoError(t, repo.DeleteJournal(ctx, "journal-00"))
	_, err = repo.GetEntry(ctx, "entry-00")
	assert.ErrorIs(t, err, ErrEntryNotFound, "entries go with their journal")
	_, err = repo.GetJournal(ctx, "journal-00")
	assert.ErrorIs(t, err, ErrJournalNotFound)
}

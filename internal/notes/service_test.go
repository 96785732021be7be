package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore keeps notes in memory and counts feed queries.
type stubStore struct {
	mu        sync.Mutex
	notes     map[string]*Note
	usernames map[string]string
	clock     time.Time
	feedCalls int
}

func newStubStore() *stubStore {
	return &stubStore{
		notes:     map[string]*Note{},
		usernames: map[string]string{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *stubStore) Create(_ context.Context, id, accountID, text string, published bool) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Second)
	n := &Note{ID: id, AccountID: accountID, Text: text, IsPublished: published, CreatedAt: s.clock, UpdatedAt: s.clock}
	s.notes[id] = n
	cp := *n
	return &cp, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *stubStore) sorted(filter func(*Note) bool) []Note {
	var out []Note
	for _, n := range s.notes {
		if filter(n) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *stubStore) Feed(_ context.Context, cursor string, limit int) ([]FeedNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedCalls++

	published := s.sorted(func(n *Note) bool { return n.IsPublished })
	start := 0
	if cursor != "" {
		for i, n := range published {
			if n.ID == cursor {
				start = i + 1
			}
		}
	}

	feed := []FeedNote{}
	for _, n := range published[start:] {
		if len(feed) == limit {
			break
		}
		feed = append(feed, FeedNote{Note: n, Username: s.usernames[n.AccountID]})
	}
	return feed, nil
}

func (s *stubStore) ListByAccount(_ context.Context, accountID string) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(n *Note) bool { return n.AccountID == accountID }), nil
}

func (s *stubStore) Update(_ context.Context, id, text string, published bool) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	n.Text = text
	n.IsPublished = published
	cp := *n
	return &cp, nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

func noteText(i int) string {
	return fmt.Sprintf("this is note number %03d in the feed", i)
}

func newCachedService(t *testing.T) (*Service, *stubStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newStubStore()
	return NewService(store, client), store, mr
}

func TestCreate_TextBounds(t *testing.T) {
	svc := NewService(newStubStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "too short", text: "short note", wantErr: true},
		{name: "short after trimming", text: "   " + strings.Repeat("a", 19) + "   ", wantErr: true},
		{name: "minimum", text: strings.Repeat("a", 20)},
		{name: "maximum", text: strings.Repeat("ä", 3000)},
		{name: "too long", text: strings.Repeat("a", 3001), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := svc.Create(ctx, "acct-1", CreateNoteRequest{Text: tt.text})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTextLength)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.text), note.Text)
			assert.True(t, note.IsPublished)
		})
	}
}

func TestCreate_PrivateNoteIsNotPublished(t *testing.T) {
	svc := NewService(newStubStore(), nil)

	note, err := svc.Create(context.Background(), "acct-1", CreateNoteRequest{Text: noteText(1), IsPrivate: true})
	require.NoError(t, err)
	assert.False(t, note.IsPublished)

	page, err := svc.Feed(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, page.Notes)
}

func TestFeed_Pagination(t *testing.T) {
	svc := NewService(newStubStore(), nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, "acct-1", CreateNoteRequest{Text: noteText(i)})
		require.NoError(t, err)
	}

	var seen []string
	cursor := ""
	for pages := 0; pages < 5; pages++ {
		page, err := svc.Feed(ctx, cursor)
		require.NoError(t, err)
		for _, n := range page.Notes {
			seen = append(seen, n.Text)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, seen, 25)
	assert.Equal(t, noteText(24), seen[0])
	assert.Equal(t, noteText(0), seen[24])
}

func TestFeed_FirstPageCachedAndInvalidated(t *testing.T) {
	svc, store, mr := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "acct-1", CreateNoteRequest{Text: noteText(1)})
	require.NoError(t, err)

	first, err := svc.Feed(ctx, "")
	require.NoError(t, err)
	require.Len(t, first.Notes, 1)
	assert.True(t, mr.Exists(feedCacheKey))

	again, err := svc.Feed(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.feedCalls, "second read should be served from cache")
	assert.Equal(t, first.Notes[0].ID, again.Notes[0].ID)

	_, err = svc.Create(ctx, "acct-1", CreateNoteRequest{Text: noteText(2)})
	require.NoError(t, err)
	assert.False(t, mr.Exists(feedCacheKey))

	fresh, err := svc.Feed(ctx, "")
	require.NoError(t, err)
	assert.Len(t, fresh.Notes, 2)
	assert.Equal(t, 2, store.feedCalls)

	mr.FastForward(feedCacheTTL)
	assert.False(t, mr.Exists(feedCacheKey))
}

func TestFeed_CacheOutageFallsBackToStore(t *testing.T) {
	svc, store, mr := newCachedService(t)
	mr.Close()

	page, err := svc.Feed(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, page.Notes)
	assert.Equal(t, 1, store.feedCalls)
}

func TestListByAccount_OwnerOnly(t *testing.T) {
	svc := NewService(newStubStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "acct-1", CreateNoteRequest{Text: noteText(1), IsPrivate: true})
	require.NoError(t, err)

	notes, err := svc.ListByAccount(ctx, "acct-1", "acct-1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	_, err = svc.ListByAccount(ctx, "acct-2", "acct-1")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	svc := NewService(newStubStore(), nil)
	ctx := context.Background()

	note, err := svc.Create(ctx, "acct-1", CreateNoteRequest{Text: noteText(1)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "acct-2", note.ID, UpdateNoteRequest{Text: noteText(2)})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, svc.Delete(ctx, "acct-2", note.ID), ErrNotOwner)

	updated, err := svc.Update(ctx, "acct-1", note.ID, UpdateNoteRequest{Text: noteText(2), IsPrivate: true})
	require.NoError(t, err)
	assert.Equal(t, noteText(2), updated.Text)
	assert.False(t, updated.IsPublished)

	require.NoError(t, svc.Delete(ctx, "acct-1", note.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "acct-1", note.ID), ErrNoteNotFound)

	_, err = svc.Update(ctx, "acct-1", "missing", UpdateNoteRequest{Text: noteText(3)})
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

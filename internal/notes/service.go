// Package notes implements the note procedures. Every procedure here is
// protected; ownership of a note is checked in the service.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// FeedPageSize is the number of notes per feed page.
	FeedPageSize = 10
	// MinTextLength and MaxTextLength bound a note's trimmed text, in characters.
	MinTextLength = 20
	MaxTextLength = 3000

	feedCacheKey     = "notes:feed:first"
	feedCachePattern = "notes:feed:*"
	feedCacheTTL     = 2 * time.Minute
)

var (
	// ErrNotOwner is returned when the caller does not own the note or account.
	ErrNotOwner = errors.New("not the owner")
	// ErrTextLength is returned for notes outside the allowed length.
	ErrTextLength = fmt.Errorf("note text must be between %d and %d characters", MinTextLength, MaxTextLength)
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, id, accountID, text string, published bool) (*Note, error)
	GetByID(ctx context.Context, id string) (*Note, error)
	Feed(ctx context.Context, cursor string, limit int) ([]FeedNote, error)
	ListByAccount(ctx context.Context, accountID string) ([]Note, error)
	Update(ctx context.Context, id, text string, published bool) (*Note, error)
	Delete(ctx context.Context, id string) error
}

// Service handles business logic for notes with caching
type Service struct {
	store Store
	cache redis.UniversalClient
}

// NewService creates a notes service. A nil cache disables feed caching.
func NewService(store Store, cache redis.UniversalClient) *Service {
	return &Service{store: store, cache: cache}
}

// Create writes a note for accountID and invalidates the cached feed
func (s *Service) Create(ctx context.Context, accountID string, req CreateNoteRequest) (*Note, error) {
	text, err := normalizeText(req.Text)
	if err != nil {
		return nil, err
	}

	note, err := s.store.Create(ctx, uuid.NewString(), accountID, text, !req.IsPrivate)
	if err != nil {
		return nil, err
	}

	if note.IsPublished {
		s.invalidateFeed(ctx)
	}
	return note, nil
}

// Feed returns one page of published notes. The first page is cached.
func (s *Service) Feed(ctx context.Context, cursor string) (*FeedPage, error) {
	if cursor == "" && s.cache != nil {
		cached, err := s.cache.Get(ctx, feedCacheKey).Bytes()
		if err == nil {
			var page FeedPage
			if err := json.Unmarshal(cached, &page); err == nil {
				slog.Debug("Cache hit for notes feed")
				return &page, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("Notes feed cache read failed", "error", err)
		}
	}

	// One extra row tells whether another page exists.
	notes, err := s.store.Feed(ctx, cursor, FeedPageSize+1)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{Notes: notes}
	if len(notes) > FeedPageSize {
		page.Notes = notes[:FeedPageSize]
		page.NextCursor = page.Notes[FeedPageSize-1].ID
	}

	if cursor == "" && s.cache != nil {
		data, _ := json.Marshal(page)
		if err := s.cache.Set(ctx, feedCacheKey, data, feedCacheTTL).Err(); err != nil {
			slog.Warn("Notes feed cache write failed", "error", err)
		}
	}

	return page, nil
}

// ListByAccount returns the notes of accountID. Only the account itself may
// list them, private notes included.
func (s *Service) ListByAccount(ctx context.Context, callerID, accountID string) ([]Note, error) {
	if callerID != accountID {
		return nil, ErrNotOwner
	}
	return s.store.ListByAccount(ctx, accountID)
}

// Update edits a note owned by callerID
func (s *Service) Update(ctx context.Context, callerID, noteID string, req UpdateNoteRequest) (*Note, error) {
	text, err := normalizeText(req.Text)
	if err != nil {
		return nil, err
	}

	existing, err := s.owned(ctx, callerID, noteID)
	if err != nil {
		return nil, err
	}

	note, err := s.store.Update(ctx, noteID, text, !req.IsPrivate)
	if err != nil {
		return nil, err
	}

	if existing.IsPublished || note.IsPublished {
		s.invalidateFeed(ctx)
	}
	return note, nil
}

// Delete removes a note owned by callerID
func (s *Service) Delete(ctx context.Context, callerID, noteID string) error {
	existing, err := s.owned(ctx, callerID, noteID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, noteID); err != nil {
		return err
	}

	if existing.IsPublished {
		s.invalidateFeed(ctx)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, callerID, noteID string) (*Note, error) {
	note, err := s.store.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.AccountID != callerID {
		return nil, ErrNotOwner
	}
	return note, nil
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < MinTextLength || n > MaxTextLength {
		return "", ErrTextLength
	}
	return text, nil
}

func (s *Service) invalidateFeed(ctx context.Context) {
	if s.cache != nil {
		s.deleteByPattern(ctx, feedCachePattern)
	}
}

func (s *Service) deleteByPattern(ctx context.Context, pattern string) {
	iter := s.cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		s.cache.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Error scanning cache keys", "pattern", pattern, "error", err)
	}
}

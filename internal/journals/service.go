// Package journals implements the journal and entry procedures. Every
// procedure here is protected; ownership is checked in the service, and an
// entry belongs to whoever owns its journal.
package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// BrowsePageSize is the number of public journals per page.
	BrowsePageSize = 3

	// Title and content bounds, in characters after trimming.
	MinJournalTitleLength = 20
	MaxJournalTitleLength = 50
	MinEntryTitleLength   = 1
	MaxEntryTitleLength   = 100
	MinEntryContentLength = 20
	MaxEntryContentLength = 3000
)

var (
	// ErrNotOwner is returned when the caller may not see or change a journal.
	ErrNotOwner = errors.New("not the owner")
	// ErrJournalTitleLength is returned for journal titles outside the allowed length.
	ErrJournalTitleLength = fmt.Errorf("journal title must be between %d and %d characters", MinJournalTitleLength, MaxJournalTitleLength)
	// ErrEntryTitleLength is returned for entry titles outside the allowed length.
	ErrEntryTitleLength = fmt.Errorf("entry title must be between %d and %d characters", MinEntryTitleLength, MaxEntryTitleLength)
	// ErrEntryContentLength is returned for entry content outside the allowed length.
	ErrEntryContentLength = fmt.Errorf("entry content must be between %d and %d characters", MinEntryContentLength, MaxEntryContentLength)
)

// Store is the persistence the service needs.
type Store interface {
	CreateJournal(ctx context.Context, id, accountID, title string, public bool) (*Journal, error)
	GetJournal(ctx context.Context, id string) (*Journal, error)
	PublicJournals(ctx context.Context, cursor string, limit int) ([]Journal, error)
	JournalsByAccount(ctx context.Context, accountID string) ([]Journal, error)
	UpdateJournal(ctx context.Context, id, title string, public bool) (*Journal, error)
	DeleteJournal(ctx context.Context, id string) error

	CreateEntry(ctx context.Context, id, journalID, title, content string) (*Entry, error)
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntries(ctx context.Context, journalID string) ([]EntrySummary, error)
	UpdateEntry(ctx context.Context, id, content string) (*Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// Service handles business logic for journals and entries
type Service struct {
	store Store
}

// NewService creates a journals service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateJournal creates a journal owned by accountID
func (s *Service) CreateJournal(ctx context.Context, accountID string, req JournalRequest) (*Journal, error) {
	title, err := bounded(req.Title, MinJournalTitleLength, MaxJournalTitleLength, ErrJournalTitleLength)
	if err != nil {
		return nil, err
	}
	return s.store.CreateJournal(ctx, uuid.NewString(), accountID, title, !req.IsPrivate)
}

// Browse returns one page of public journals, most recently updated first.
func (s *Service) Browse(ctx context.Context, cursor string) (*JournalPage, error) {
	// One extra row tells whether another page exists.
	journals, err := s.store.PublicJournals(ctx, cursor, BrowsePageSize+1)
	if err != nil {
		return nil, err
	}

	page := &JournalPage{Journals: journals}
	if len(journals) > BrowsePageSize {
		page.Journals = journals[:BrowsePageSize]
		page.NextCursor = page.Journals[BrowsePageSize-1].ID
	}
	return page, nil
}

// GetJournal returns a journal that is public or owned by callerID
func (s *Service) GetJournal(ctx context.Context, callerID, journalID string) (*Journal, error) {
	return s.readable(ctx, callerID, journalID)
}

// ListByAccount returns the journals of accountID, private ones included.
// Only the account itself may list them.
func (s *Service) ListByAccount(ctx context.Context, callerID, accountID string) ([]Journal, error) {
	if callerID != accountID {
		return nil, ErrNotOwner
	}
	return s.store.JournalsByAccount(ctx, accountID)
}

// UpdateJournal edits a journal owned by callerID
func (s *Service) UpdateJournal(ctx context.Context, callerID, journalID string, req JournalRequest) (*Journal, error) {
	title, err := bounded(req.Title, MinJournalTitleLength, MaxJournalTitleLength, ErrJournalTitleLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, callerID, journalID); err != nil {
		return nil, err
	}
	return s.store.UpdateJournal(ctx, journalID, title, !req.IsPrivate)
}

// DeleteJournal removes a journal owned by callerID together with its entries
func (s *Service) DeleteJournal(ctx context.Context, callerID, journalID string) error {
	if _, err := s.owned(ctx, callerID, journalID); err != nil {
		return err
	}
	return s.store.DeleteJournal(ctx, journalID)
}

// CreateEntry adds an entry to a journal owned by callerID
func (s *Service) CreateEntry(ctx context.Context, callerID, journalID string, req CreateEntryRequest) (*Entry, error) {
	title, err := bounded(req.Title, MinEntryTitleLength, MaxEntryTitleLength, ErrEntryTitleLength)
	if err != nil {
		return nil, err
	}
	content, err := bounded(req.Content, MinEntryContentLength, MaxEntryContentLength, ErrEntryContentLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, callerID, journalID); err != nil {
		return nil, err
	}
	return s.store.CreateEntry(ctx, uuid.NewString(), journalID, title, content)
}

// ListEntries lists the entries of a journal that is public or owned by callerID
func (s *Service) ListEntries(ctx context.Context, callerID, journalID string) ([]EntrySummary, error) {
	if _, err := s.readable(ctx, callerID, journalID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, journalID)
}

// GetEntry returns an entry whose journal is public or owned by callerID
func (s *Service) GetEntry(ctx context.Context, callerID, entryID string) (*Entry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.readable(ctx, callerID, entry.JournalID); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry replaces the content of an entry in a journal owned by callerID
func (s *Service) UpdateEntry(ctx context.Context, callerID, entryID string, req UpdateEntryRequest) (*Entry, error) {
	content, err := bounded(req.Content, MinEntryContentLength, MaxEntryContentLength, ErrEntryContentLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedEntry(ctx, callerID, entryID); err != nil {
		return nil, err
	}
	return s.store.UpdateEntry(ctx, entryID, content)
}

// DeleteEntry removes an entry from a journal owned by callerID
func (s *Service) DeleteEntry(ctx context.Context, callerID, entryID string) error {
	if _, err := s.ownedEntry(ctx, callerID, entryID); err != nil {
		return err
	}
	return s.store.DeleteEntry(ctx, entryID)
}

func (s *Service) owned(ctx context.Context, callerID, journalID string) (*Journal, error) {
	journal, err := s.store.GetJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if journal.AccountID != callerID {
		return nil, ErrNotOwner
	}
	return journal, nil
}

func (s *Service) readable(ctx context.Context, callerID, journalID string) (*Journal, error) {
	journal, err := s.store.GetJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if !journal.IsPublic && journal.AccountID != callerID {
		return nil, ErrNotOwner
	}
	return journal, nil
}

func (s *Service) ownedEntry(ctx context.Context, callerID, entryID string) (*Entry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, callerID, entry.JournalID); err != nil {
		return nil, err
	}
	return entry, nil
}

// bounded trims s and checks its length in characters.
func bounded(s string, lo, hi int, lengthErr error) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < lo || n > hi {
		return "", lengthErr
	}
	return s, nil
}

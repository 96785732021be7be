package journals

import "time"

// Journal groups the entries an account writes under one title
type Journal struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Title     string    `json:"title"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one dated piece of writing inside a journal
type Entry struct {
	ID        string    `json:"id"`
	JournalID string    `json:"journal_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntrySummary is the listing form of an entry, without its content
type EntrySummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalRequest is the body for creating or editing a journal.
// The owner comes from the session, never from the body.
type JournalRequest struct {
	Title     string `json:"title" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

// CreateEntryRequest is the body for adding an entry to a journal
type CreateEntryRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UpdateEntryRequest is the body for editing an entry
type UpdateEntryRequest struct {
	Content string `json:"content" binding:"required"`
}

// JournalPage is one page of public journals
type JournalPage struct {
	Journals   []Journal `json:"journals"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// JournalResponse is a standard response wrapper
type JournalResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

package notes

import "time"

// Note is a short text written by an account
type Note struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Text        string    `json:"text"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FeedNote is a published note with its author's public details
type FeedNote struct {
	Note
	Username string `json:"username"`
	AvatarID int    `json:"avatar_id"`
}

// CreateNoteRequest represents the request body for creating a note.
// The author comes from the session, never from the body.
type CreateNoteRequest struct {
	Text      string `json:"text" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

// UpdateNoteRequest represents the request body for editing a note
type UpdateNoteRequest struct {
	Text      string `json:"text" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

// FeedPage is one page of the public feed
type FeedPage struct {
	Notes      []FeedNote `json:"notes"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NoteResponse is a standard response wrapper
type NoteResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

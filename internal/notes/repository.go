package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"athing/internal/database"

	"github.com/jackc/pgx/v5"
)

// ErrNoteNotFound is returned when no note has the requested id.
var ErrNoteNotFound = errors.New("note not found")

// Repository handles all database operations for notes
type Repository struct {
	db database.Service
}

// NewRepository creates a new notes repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

const noteColumns = `id, account_id, text, is_published, created_at, updated_at`

// Create inserts a new note
func (r *Repository) Create(ctx context.Context, id, accountID, text string, published bool) (*Note, error) {
	query := `
		INSERT INTO notes (id, account_id, text, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRow(ctx, query, id, accountID, text, published))
	if err != nil {
		slog.Error("Error creating note", "error", err)
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// GetByID retrieves a single note by id
func (r *Repository) GetByID(ctx context.Context, id string) (*Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	note, err := scanNote(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// Feed returns up to limit published notes older than the note named by
// cursor, newest first. An empty cursor starts at the newest note.
func (r *Repository) Feed(ctx context.Context, cursor string, limit int) ([]FeedNote, error) {
	query := `
		SELECT n.id, n.account_id, n.text, n.is_published, n.created_at, n.updated_at,
		       a.username, a.avatar_id
		FROM notes n
		JOIN accounts a ON a.id = n.account_id
		WHERE n.is_published
		  AND ($1::text = '' OR (n.created_at, n.id) < (
		        SELECT c.created_at, c.id FROM notes c WHERE c.id = $1::text))
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	feed := []FeedNote{}
	for rows.Next() {
		var n FeedNote
		if err := rows.Scan(
			&n.ID, &n.AccountID, &n.Text, &n.IsPublished, &n.CreatedAt, &n.UpdatedAt,
			&n.Username, &n.AvatarID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feed note: %w", err)
		}
		feed = append(feed, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return feed, nil
}

// ListByAccount returns every note of an account, newest first
func (r *Repository) ListByAccount(ctx context.Context, accountID string) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE account_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account notes: %w", err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account notes: %w", err)
	}
	return notes, nil
}

// Update replaces the text and visibility of a note
func (r *Repository) Update(ctx context.Context, id, text string, published bool) (*Note, error) {
	query := `
		UPDATE notes SET text = $2, is_published = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRow(ctx, query, id, text, published))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// Delete removes a note
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*Note, error) {
	note := &Note{}
	err := row.Scan(
		&note.ID,
		&note.AccountID,
		&note.Text,
		&note.IsPublished,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

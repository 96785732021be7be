package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"athing/internal/database"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrJournalNotFound is returned when no journal has the requested id.
	ErrJournalNotFound = errors.New("journal not found")
	// ErrEntryNotFound is returned when no entry has the requested id.
	ErrEntryNotFound = errors.New("entry not found")
)

// Repository handles all database operations for journals and their entries
type Repository struct {
	db database.Service
}

// NewRepository creates a new journals repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

const (
	journalColumns = `id, account_id, title, is_public, created_at, updated_at`
	entryColumns   = `id, journal_id, title, content, created_at, updated_at`
)

// CreateJournal inserts a new journal
func (r *Repository) CreateJournal(ctx context.Context, id, accountID, title string, public bool) (*Journal, error) {
	query := `
		INSERT INTO journals (id, account_id, title, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + journalColumns

	journal, err := scanJournal(r.db.QueryRow(ctx, query, id, accountID, title, public))
	if err != nil {
		slog.Error("Error creating journal", "error", err)
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}
	return journal, nil
}

// GetJournal retrieves a single journal by id
func (r *Repository) GetJournal(ctx context.Context, id string) (*Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE id = $1`

	journal, err := scanJournal(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJournalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	return journal, nil
}

// PublicJournals returns up to limit public journals updated before the
// journal named by cursor, most recently updated first.
func (r *Repository) PublicJournals(ctx context.Context, cursor string, limit int) ([]Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals j
		WHERE j.is_public
		  AND ($1::text = '' OR (j.updated_at, j.id) < (
		        SELECT c.updated_at, c.id FROM journals c WHERE c.id = $1::text))
		ORDER BY j.updated_at DESC, j.id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query public journals: %w", err)
	}
	defer rows.Close()

	return collectJournals(rows)
}

// JournalsByAccount returns every journal of an account, newest first
func (r *Repository) JournalsByAccount(ctx context.Context, accountID string) ([]Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE account_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account journals: %w", err)
	}
	defer rows.Close()

	return collectJournals(rows)
}

// UpdateJournal replaces the title and visibility of a journal
func (r *Repository) UpdateJournal(ctx context.Context, id, title string, public bool) (*Journal, error) {
	query := `
		UPDATE journals SET title = $2, is_public = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + journalColumns

	journal, err := scanJournal(r.db.QueryRow(ctx, query, id, title, public))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJournalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update journal: %w", err)
	}
	return journal, nil
}

// DeleteJournal removes a journal and, by cascade, its entries
func (r *Repository) DeleteJournal(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJournalNotFound
	}
	return nil
}

// CreateEntry inserts an entry into a journal
func (r *Repository) CreateEntry(ctx context.Context, id, journalID, title, content string) (*Entry, error) {
	query := `
		INSERT INTO entries (id, journal_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRow(ctx, query, id, journalID, title, content))
	if err != nil {
		slog.Error("Error creating entry", "journal_id", journalID, "error", err)
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return entry, nil
}

// GetEntry retrieves a single entry by id
func (r *Repository) GetEntry(ctx context.Context, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the entries of a journal, newest first
func (r *Repository) ListEntries(ctx context.Context, journalID string) ([]EntrySummary, error) {
	query := `
		SELECT id, title, created_at FROM entries
		WHERE journal_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []EntrySummary{}
	for rows.Next() {
		var e EntrySummary
		if err := rows.Scan(&e.ID, &e.Title, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry replaces the content of an entry
func (r *Repository) UpdateEntry(ctx context.Context, id, content string) (*Entry, error) {
	query := `
		UPDATE entries SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRow(ctx, query, id, content))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry
func (r *Repository) DeleteEntry(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func collectJournals(rows pgx.Rows) ([]Journal, error) {
	journals := []Journal{}
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		journals = append(journals, *journal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journals: %w", err)
	}
	return journals, nil
}

func scanJournal(row pgx.Row) (*Journal, error) {
	journal := &Journal{}
	err := row.Scan(
		&journal.ID,
		&journal.AccountID,
		&journal.Title,
		&journal.IsPublic,
		&journal.CreatedAt,
		&journal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return journal, nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	entry := &Entry{}
	err := row.Scan(
		&entry.ID,
		&entry.JournalID,
		&entry.Title,
		&entry.Content,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

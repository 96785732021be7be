package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"athing/internal/database"
	"athing/internal/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var (
	// ErrAccountNotFound is returned when no account matches.
	// It is the same value the session resolver treats as "no session".
	ErrAccountNotFound = session.ErrAccountNotFound
	// ErrUsernameTaken is returned when the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// Repository handles all database operations for accounts
type Repository struct {
	db database.Service
}

// NewRepository creates a new accounts repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

const accountColumns = `id, username, password_hash, avatar_id, is_blacklisted, created_at, updated_at`

// FindByUsername retrieves an account by its unique username
func (r *Repository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return r.scanOne(ctx, query, username)
}

// FindByID retrieves an account by id
func (r *Repository) FindByID(ctx context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// LookupAccount is the session resolver's read of an account.
func (r *Repository) LookupAccount(ctx context.Context, id string) (*session.Account, error) {
	var acct session.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, is_blacklisted FROM accounts WHERE id = $1`, id,
	).Scan(&acct.ID, &acct.IsBlacklisted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return &acct, nil
}

// Create inserts a new account
func (r *Repository) Create(ctx context.Context, id, username, passwordHash string) (*Account, error) {
	query := `
		INSERT INTO accounts (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + accountColumns

	acct, err := r.scanOne(ctx, query, id, username, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return acct, nil
}

func (r *Repository) scanOne(ctx context.Context, query string, args ...any) (*Account, error) {
	acct := &Account{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&acct.ID,
		&acct.Username,
		&acct.PasswordHash,
		&acct.AvatarID,
		&acct.IsBlacklisted,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		slog.Error("Account query failed", "error", err)
		return nil, fmt.Errorf("account query failed: %w", err)
	}
	return acct, nil
}

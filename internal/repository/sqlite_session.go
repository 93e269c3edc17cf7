package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/labdesk/internal/db"
	"github.com/alexanderramin/labdesk/internal/domain"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
// Cookie values never reach the table unencoded.
type SQLiteSessionRepo struct {
	db    db.DBTX
	codec *CookieCodec
}

func NewSQLiteSessionRepo(conn db.DBTX, codec *CookieCodec) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn, codec: codec}
}

func (r *SQLiteSessionRepo) Get(ctx context.Context, profile string) (*domain.Session, error) {
	query := `SELECT profile, base_url, user_id, username, email, role, cookies, created_at, updated_at
		FROM sessions WHERE profile = ?`
	row := r.db.QueryRowContext(ctx, query, profile)

	var (
		s                    domain.Session
		role                 string
		encoded              string
		createdAt, updatedAt string
	)
	err := row.Scan(&s.Profile, &s.BaseURL, &s.User.ID, &s.User.Username, &s.User.Email,
		&role, &encoded, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %q: %w", profile, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	s.User.Role = domain.Role(role)
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)

	cookies, err := r.codec.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", profile, err)
	}
	s.Cookies = cookies
	return &s, nil
}

// Save inserts or replaces the profile's session. CreatedAt is preserved
// across replacements.
func (r *SQLiteSessionRepo) Save(ctx context.Context, s *domain.Session) error {
	encoded, err := r.codec.Encode(s.Cookies)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `INSERT INTO sessions (profile, base_url, user_id, username, email, role, cookies, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			base_url = excluded.base_url,
			user_id = excluded.user_id,
			username = excluded.username,
			email = excluded.email,
			role = excluded.role,
			cookies = excluded.cookies,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		s.Profile,
		s.BaseURL,
		s.User.ID,
		s.User.Username,
		s.User.Email,
		string(s.User.Role),
		encoded,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, profile string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

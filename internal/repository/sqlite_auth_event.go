package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/labdesk/internal/db"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/google/uuid"
)

// SQLiteAuthEventRepo implements AuthEventRepo using a SQLite database.
type SQLiteAuthEventRepo struct {
	db db.DBTX
}

func NewSQLiteAuthEventRepo(conn db.DBTX) *SQLiteAuthEventRepo {
	return &SQLiteAuthEventRepo{db: conn}
}

func (r *SQLiteAuthEventRepo) Append(ctx context.Context, e *domain.AuthEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO auth_events (id, profile, username, kind, base_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Profile, e.Username, string(e.Kind), e.BaseURL, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting auth event: %w", err)
	}
	return nil
}

// ListRecent returns the newest events for profile first.
func (r *SQLiteAuthEventRepo) ListRecent(ctx context.Context, profile string, limit int) ([]domain.AuthEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, profile, username, kind, base_url, created_at
		FROM auth_events WHERE profile = ?
		ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("listing auth events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuthEvent
	for rows.Next() {
		var e domain.AuthEvent
		var kind, createdAt string
		if err := rows.Scan(&e.ID, &e.Profile, &e.Username, &kind, &e.BaseURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning auth event: %w", err)
		}
		e.Kind = domain.AuthEventKind(kind)
		e.CreatedAt = parseTime(createdAt)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating auth events: %w", err)
	}
	return events, nil
}

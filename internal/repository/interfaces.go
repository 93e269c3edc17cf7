package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/labdesk/internal/domain"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("not found")

type SessionRepo interface {
	Get(ctx context.Context, profile string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, profile string) error
}

type AuthEventRepo interface {
	Append(ctx context.Context, e *domain.AuthEvent) error
	ListRecent(ctx context.Context, profile string, limit int) ([]domain.AuthEvent, error)
}

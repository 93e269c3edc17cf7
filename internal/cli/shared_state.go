package cli

import (
	"context"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Terminal dimensions
	Width  int
	Height int

	// Notice is the toast shown above the key hints, if any.
	Notice *notify.Toast
}

// User returns the signed-in user, or nil after the session was dropped.
func (s *SharedState) User() *domain.User {
	return s.App.Session.Snapshot().User
}

// Role returns the signed-in role, or "" when signed out.
func (s *SharedState) Role() domain.Role {
	if u := s.User(); u != nil {
		return u.Role
	}
	return ""
}

func (s *SharedState) ctx() context.Context {
	return context.Background()
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and
// status bar (2 lines: separator + hints) plus a notice line.
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}

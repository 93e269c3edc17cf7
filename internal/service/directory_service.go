package service

import (
	"context"

	"github.com/alexanderramin/labdesk/internal/domain"
)

type directoryService struct {
	api     DirectoryAPI
	session Session
}

func NewDirectoryService(backend DirectoryAPI, session Session) DirectoryService {
	return &directoryService{api: backend, session: session}
}

func (s *directoryService) Users(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return users, nil
	}
	return domain.FilterByRole(users, role), nil
}

func (s *directoryService) Announcements(ctx context.Context, kind string) ([]domain.Announcement, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	items, err := s.api.ListAnnouncements(ctx)
	if err != nil {
		return nil, err
	}
	if kind == "" || kind == domain.FilterAll {
		return items, nil
	}
	return domain.FilterAnnouncements(items, domain.AnnouncementType(kind)), nil
}

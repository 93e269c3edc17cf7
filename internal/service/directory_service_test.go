package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryService_UsersByRole(t *testing.T) {
	env := newServiceEnv(t)
	a := env.as(t, "alice")
	ctx := context.Background()

	all, err := a.directory.Users(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	students, err := a.directory.Users(ctx, domain.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "alice", students[0].Username)
}

func TestDirectoryService_AnnouncementsByKind(t *testing.T) {
	env := newServiceEnv(t)
	env.backend.AddAnnouncement(testutil.NewTestAnnouncement("Lab closed Friday", domain.AnnouncementNotice))
	env.backend.AddAnnouncement(testutil.NewTestAnnouncement("Fire drill", domain.AnnouncementWarning))
	a := env.as(t, "bob")
	ctx := context.Background()

	items, err := a.directory.Announcements(ctx, domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = a.directory.Announcements(ctx, string(domain.AnnouncementWarning))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fire drill", items[0].Title)
}

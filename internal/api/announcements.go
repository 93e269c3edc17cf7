package api

import (
	"context"

	"github.com/alexanderramin/labdesk/internal/domain"
)

func (c *Client) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	return listCall[domain.Announcement](ctx, c, "/announcement/", nil)
}

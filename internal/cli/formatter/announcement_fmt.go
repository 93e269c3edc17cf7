package formatter

import (
	"strings"

	"github.com/alexanderramin/labdesk/internal/domain"
)

// FormatAnnouncements renders announcements as cards in the order given.
func FormatAnnouncements(items []domain.Announcement) string {
	if len(items) == 0 {
		return Dim("暂无公告") + "\n"
	}
	var b strings.Builder
	for i, a := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(AnnouncementBadge(a.Type) + " " + Bold(a.Title) + "  " + Dim(a.CreatedAt.Display()) + "\n")
		for _, line := range strings.Split(strings.TrimSpace(a.Content), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

package domain

type Announcement struct {
	ID        int              `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Type      AnnouncementType `json:"type"`
	CreatedAt Timestamp        `json:"created_at"`
	UpdatedAt Timestamp        `json:"updated_at"`
}

// FilterAnnouncements keeps announcements of type t; an empty t keeps all.
func FilterAnnouncements(items []Announcement, t AnnouncementType) []Announcement {
	if t == "" {
		return items
	}
	out := make([]Announcement, 0, len(items))
	for _, a := range items {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

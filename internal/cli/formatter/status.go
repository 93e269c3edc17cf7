package formatter

import "github.com/alexanderramin/labdesk/internal/domain"

// WorkloadStatusPill renders a workload status with its Chinese label.
func WorkloadStatusPill(s domain.WorkloadStatus) string {
	icon := "○"
	switch s {
	case domain.WorkloadMentorApproved, domain.WorkloadTeacherApproved:
		icon = "✔"
	case domain.WorkloadMentorRejected, domain.WorkloadTeacherRejected:
		icon = "✖"
	case domain.WorkloadPending:
		icon = "●"
	}
	return WorkloadStatusColor(s).Render(icon + " " + s.Label())
}

// ReviewStatusPill renders a project review status.
func ReviewStatusPill(s domain.ReviewStatus) string {
	icon := "●"
	switch s {
	case domain.ReviewApproved:
		icon = "✔"
	case domain.ReviewRejected:
		icon = "✖"
	}
	return ReviewStatusColor(s).Render(icon + " " + s.Label())
}

func RoleBadge(r domain.Role) string {
	switch r {
	case domain.RoleTeacher:
		return StyleHeader.Render(r.Label())
	case domain.RoleMentor:
		return StylePurple.Render(r.Label())
	default:
		return StyleBlue.Render(r.Label())
	}
}

func AnnouncementBadge(t domain.AnnouncementType) string {
	return AnnouncementColor(t).Render("[" + t.Label() + "]")
}

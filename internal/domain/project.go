package domain

import "github.com/volatiletech/null/v8"

type Project struct {
	ID                int           `json:"id"`
	Name              string        `json:"name"`
	ProjectStatus     ProjectStatus `json:"project_status"`
	StartDate         Date          `json:"start_date"`
	Submitter         *UserRef      `json:"submitter"`
	TeacherReviewer   *UserRef      `json:"teacher_reviewer"`
	TeacherComment    null.String   `json:"teacher_comment"`
	TeacherReviewTime Timestamp     `json:"teacher_review_time"`
	ReviewStatus      ReviewStatus  `json:"review_status"`
	CreatedAt         Timestamp     `json:"created_at"`
	UpdatedAt         Timestamp     `json:"updated_at"`
}

// Editable reports whether a user with role r may edit or delete the project.
// Teachers always may; everyone else only while it is pending or rejected.
func (p *Project) Editable(r Role) bool {
	if r == RoleTeacher {
		return true
	}
	return p.ReviewStatus == ReviewPending || p.ReviewStatus == ReviewRejected
}

// ResubmitsOnEdit reports whether saving the project sends it back to review.
func (p *Project) ResubmitsOnEdit(r Role) bool {
	return r != RoleTeacher && p.ReviewStatus == ReviewRejected
}

// InitialReviewStatus is the review status a new declaration carries.
// Teacher declarations need no review.
func InitialReviewStatus(r Role) ReviewStatus {
	if r == RoleTeacher {
		return ReviewApproved
	}
	return ReviewPending
}

func (p *Project) Ref() ProjectRef {
	return ProjectRef{ID: p.ID, Name: p.Name}
}

func (p *Project) SubmitterName() string {
	if p.Submitter == nil {
		return "-"
	}
	return p.Submitter.Username
}

func (p *Project) ReviewerName() string {
	if p.TeacherReviewer == nil {
		return "-"
	}
	return p.TeacherReviewer.Username
}

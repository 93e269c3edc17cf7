package domain

import (
	"math"

	"github.com/volatiletech/null/v8"
)

type Workload struct {
	ID                  int             `json:"id"`
	Name                string          `json:"name"`
	Content             string          `json:"content"`
	Source              WorkloadSource  `json:"source"`
	WorkType            WorkType        `json:"work_type"`
	StartDate           Date            `json:"start_date"`
	EndDate             Date            `json:"end_date"`
	IntensityType       IntensityType   `json:"intensity_type"`
	IntensityValue      float64         `json:"intensity_value"`
	InnovationStage     null.String     `json:"innovation_stage"`
	AssistantSalaryPaid null.Float64    `json:"assistant_salary_paid"`
	Attachments         null.String     `json:"attachments"`
	AttachmentsURL      null.String     `json:"attachments_url"`
	OriginalFilename    null.String     `json:"original_filename"`
	Submitter           UserRef         `json:"submitter"`
	MentorReviewer      *UserRef        `json:"mentor_reviewer"`
	TeacherReviewer     *UserRef        `json:"teacher_reviewer"`
	Status              WorkloadStatus  `json:"status"`
	MentorComment       null.String     `json:"mentor_comment"`
	MentorReviewTime    Timestamp       `json:"mentor_review_time"`
	TeacherComment      null.String     `json:"teacher_comment"`
	TeacherReviewTime   Timestamp       `json:"teacher_review_time"`
	CreatedAt           Timestamp       `json:"created_at"`
	UpdatedAt           Timestamp       `json:"updated_at"`
	Shares              []WorkloadShare `json:"shares,omitempty"`
	Project             *ProjectRef     `json:"project,omitempty"`
	ProjectID           null.Int        `json:"project_id"`
}

// WorkloadShare is one participant's percentage of an innovation workload.
type WorkloadShare struct {
	User       int      `json:"user"`
	UserInfo   *UserRef `json:"user_info,omitempty"`
	Percentage float64  `json:"percentage"`
}

type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ShareTolerance bounds the rounding error accepted when shares are summed.
const ShareTolerance = 1e-6

// SharesTotal sums the share percentages.
func SharesTotal(shares []WorkloadShare) float64 {
	var total float64
	for _, s := range shares {
		total += s.Percentage
	}
	return total
}

// SharesComplete reports whether shares are non-empty and sum to 100.
func SharesComplete(shares []WorkloadShare) bool {
	if len(shares) == 0 {
		return false
	}
	return math.Abs(SharesTotal(shares)-100) < ShareTolerance
}

// Editable reports whether the submitter may still edit or delete the workload.
// The backend re-checks this; the client uses it to hide actions.
func (w *Workload) Editable() bool {
	switch w.Status {
	case WorkloadPending, WorkloadMentorRejected, WorkloadTeacherRejected:
		return true
	}
	return false
}

// AwaitingTeacher reports whether a teacher is the next reviewer.
// Non-student submissions skip the mentor stage.
func (w *Workload) AwaitingTeacher() bool {
	if w.Submitter.Role == RoleStudent {
		return w.Status == WorkloadMentorApproved
	}
	return w.Status == WorkloadPending
}

// ReviewerComment returns the comment left by reviewers of role r.
func (w *Workload) ReviewerComment(r Role) string {
	switch r {
	case RoleMentor:
		return StringOr(w.MentorComment, "")
	case RoleTeacher:
		return StringOr(w.TeacherComment, "")
	}
	return ""
}

// ProjectName returns the linked project's name, or "" when unlinked.
func (w *Workload) ProjectName() string {
	if w.Project == nil {
		return ""
	}
	return w.Project.Name
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestWorkloadEditable(t *testing.T) {
	cases := []struct {
		status   WorkloadStatus
		editable bool
	}{
		{WorkloadPending, true},
		{WorkloadMentorRejected, true},
		{WorkloadTeacherRejected, true},
		{WorkloadMentorApproved, false},
		{WorkloadTeacherApproved, false},
	}
	for _, tc := range cases {
		w := &Workload{Status: tc.status}
		assert.Equal(t, tc.editable, w.Editable(), "status=%s", tc.status)
	}
}

func TestAwaitingTeacher(t *testing.T) {
	student := &Workload{Submitter: UserRef{Role: RoleStudent}, Status: WorkloadPending}
	assert.False(t, student.AwaitingTeacher())
	student.Status = WorkloadMentorApproved
	assert.True(t, student.AwaitingTeacher())

	mentor := &Workload{Submitter: UserRef{Role: RoleMentor}, Status: WorkloadPending}
	assert.True(t, mentor.AwaitingTeacher())
}

func TestSharesComplete(t *testing.T) {
	assert.False(t, SharesComplete(nil))
	assert.True(t, SharesComplete([]WorkloadShare{{User: 1, Percentage: 60}, {User: 2, Percentage: 40}}))
	assert.True(t, SharesComplete([]WorkloadShare{
		{User: 1, Percentage: 33.3333333},
		{User: 2, Percentage: 33.3333333},
		{User: 3, Percentage: 33.3333334},
	}))
	assert.False(t, SharesComplete([]WorkloadShare{{User: 1, Percentage: 99}}))
}

func TestReviewerComment(t *testing.T) {
	w := &Workload{MentorComment: null.StringFrom("ok"), TeacherComment: null.String{}}
	assert.Equal(t, "ok", w.ReviewerComment(RoleMentor))
	assert.Equal(t, "", w.ReviewerComment(RoleTeacher))
	assert.Equal(t, "", w.ReviewerComment(RoleStudent))
}

func TestWorkloadDecode(t *testing.T) {
	body := `{
		"id": 7,
		"name": "lab report",
		"content": "wrote it",
		"source": "innovation",
		"work_type": "remote",
		"start_date": "2024-03-01",
		"end_date": "2024-03-10",
		"intensity_type": "daily",
		"intensity_value": 2.5,
		"innovation_stage": "before",
		"assistant_salary_paid": null,
		"attachments": null,
		"attachments_url": null,
		"original_filename": null,
		"submitter": {"id": 3, "username": "alice", "role": "student"},
		"mentor_reviewer": {"id": 4, "username": "bob", "role": "mentor"},
		"teacher_reviewer": null,
		"status": "mentor_approved",
		"mentor_comment": "fine",
		"mentor_review_time": "2024-03-11T09:30:00",
		"teacher_comment": null,
		"teacher_review_time": null,
		"created_at": "2024-03-10T08:00:00.123456+08:00",
		"updated_at": "2024-03-11T09:30:00+08:00",
		"shares": [{"user": 3, "user_info": {"id": 3, "username": "alice", "role": "student"}, "percentage": 100}],
		"project": {"id": 2, "name": "robot"},
		"project_id": 2
	}`
	var w Workload
	require.NoError(t, json.Unmarshal([]byte(body), &w))

	assert.Equal(t, 7, w.ID)
	assert.Equal(t, SourceInnovation, w.Source)
	assert.Equal(t, NewDate(2024, time.March, 1), w.StartDate)
	assert.Equal(t, 2.5, w.IntensityValue)
	assert.Equal(t, "before", w.InnovationStage.String)
	assert.False(t, w.AssistantSalaryPaid.Valid)
	require.NotNil(t, w.MentorReviewer)
	assert.Equal(t, "bob", w.MentorReviewer.Username)
	assert.Nil(t, w.TeacherReviewer)
	assert.True(t, w.MentorReviewTime.Valid())
	assert.False(t, w.TeacherReviewTime.Valid())
	assert.Equal(t, "robot", w.ProjectName())
	assert.Equal(t, 2, w.ProjectID.Int)
	assert.True(t, SharesComplete(w.Shares))
}

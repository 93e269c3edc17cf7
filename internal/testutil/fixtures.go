package testutil

import (
	"sync/atomic"
	"time"

	"github.com/alexanderramin/labdesk/internal/domain"
)

var idCounter atomic.Int64

func nextID() int {
	return int(idCounter.Add(1)) + 1000
}

// FixedNow is the reference time used by fixtures.
var FixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func NewTestUser(username string, role domain.Role) domain.User {
	return domain.User{
		ID:       nextID(),
		Username: username,
		Email:    username + "@lab.example.edu",
		Role:     role,
	}
}

// Workload options
type WorkloadOption func(*domain.Workload)

func WithWorkloadStatus(s domain.WorkloadStatus) WorkloadOption {
	return func(w *domain.Workload) {
		w.Status = s
	}
}

func WithSource(s domain.WorkloadSource) WorkloadOption {
	return func(w *domain.Workload) {
		w.Source = s
	}
}

func WithMentor(u domain.User) WorkloadOption {
	return func(w *domain.Workload) {
		ref := u.Ref()
		w.MentorReviewer = &ref
	}
}

func WithDates(start, end domain.Date) WorkloadOption {
	return func(w *domain.Workload) {
		w.StartDate = start
		w.EndDate = end
	}
}

func NewTestWorkload(name string, submitter domain.User, opts ...WorkloadOption) domain.Workload {
	w := domain.Workload{
		ID:             nextID(),
		Name:           name,
		Content:        name + " content",
		Source:         domain.SourceOther,
		WorkType:       domain.WorkRemote,
		StartDate:      domain.NewDate(2025, time.June, 1),
		EndDate:        domain.NewDate(2025, time.June, 10),
		IntensityType:  domain.IntensityTotal,
		IntensityValue: 8,
		Submitter:      submitter.Ref(),
		Status:         domain.WorkloadPending,
		CreatedAt:      domain.Timestamp{Time: FixedNow},
		UpdatedAt:      domain.Timestamp{Time: FixedNow},
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// Project options
type ProjectOption func(*domain.Project)

func WithReviewStatus(s domain.ReviewStatus) ProjectOption {
	return func(p *domain.Project) {
		p.ReviewStatus = s
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.ProjectStatus = s
	}
}

func NewTestProject(name string, submitter domain.User, opts ...ProjectOption) domain.Project {
	ref := submitter.Ref()
	p := domain.Project{
		ID:            nextID(),
		Name:          name,
		ProjectStatus: domain.ProjectInResearch,
		StartDate:     domain.NewDate(2025, time.March, 1),
		Submitter:     &ref,
		ReviewStatus:  domain.ReviewPending,
		CreatedAt:     domain.Timestamp{Time: FixedNow},
		UpdatedAt:     domain.Timestamp{Time: FixedNow},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func NewTestAnnouncement(title string, kind domain.AnnouncementType) domain.Announcement {
	return domain.Announcement{
		ID:        nextID(),
		Title:     title,
		Content:   title + " details",
		Type:      kind,
		CreatedAt: domain.Timestamp{Time: FixedNow},
		UpdatedAt: domain.Timestamp{Time: FixedNow},
	}
}

package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/volatiletech/null/v8"
)

type workloadService struct {
	api       WorkloadAPI
	session   Session
	validator *validation.Validator
	pageSize  int
	observer  UseCaseObserver
}

func NewWorkloadService(backend WorkloadAPI, session Session, v *validation.Validator, pageSize int, observers ...UseCaseObserver) WorkloadService {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &workloadService{
		api:       backend,
		session:   session,
		validator: v,
		pageSize:  pageSize,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// requireRole returns the signed-in user when allowed(role) holds.
func requireRole(session Session, allowed func(domain.Role) bool) (*domain.User, error) {
	user, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	if allowed != nil && !allowed(user.Role) {
		return nil, fmt.Errorf("role %s: %w", user.Role, ErrRoleNotAllowed)
	}
	return user, nil
}

func anyRole(domain.Role) bool { return true }

func (s *workloadService) ListMine(ctx context.Context) ([]domain.Workload, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.ListWorkloads(ctx)
}

func (s *workloadService) Get(ctx context.Context, id int) (*domain.Workload, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.GetWorkload(ctx, id)
}

func (s *workloadService) Submit(ctx context.Context, form validation.WorkloadForm) (w *domain.Workload, err error) {
	defer track(ctx, s.observer, "submit-workload", map[string]any{"source": string(form.Source)})(&err)

	var user *domain.User
	if user, err = requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	form.SubmitterRole = user.Role

	in, closeFn, err := s.input(form)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return s.api.CreateWorkload(ctx, in)
}

func (s *workloadService) Edit(ctx context.Context, id int, form validation.WorkloadForm) (w *domain.Workload, err error) {
	defer track(ctx, s.observer, "edit-workload", map[string]any{"id": id})(&err)

	var user *domain.User
	if user, err = requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	var current *domain.Workload
	if current, err = s.api.GetWorkload(ctx, id); err != nil {
		return nil, err
	}
	if !current.Editable() {
		return nil, fmt.Errorf("workload %d is %s: %w", id, current.Status, ErrNotEditable)
	}
	form.SubmitterRole = user.Role

	in, closeFn, err := s.input(form)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return s.api.UpdateWorkload(ctx, id, in)
}

func (s *workloadService) Delete(ctx context.Context, id int) (err error) {
	defer track(ctx, s.observer, "delete-workload", map[string]any{"id": id})(&err)

	if _, err = requireRole(s.session, anyRole); err != nil {
		return err
	}
	var current *domain.Workload
	if current, err = s.api.GetWorkload(ctx, id); err != nil {
		return err
	}
	if !current.Editable() {
		return fmt.Errorf("workload %d is %s: %w", id, current.Status, ErrNotEditable)
	}
	return s.api.DeleteWorkload(ctx, id)
}

func (s *workloadService) Pending(ctx context.Context) ([]domain.Workload, error) {
	if _, err := requireRole(s.session, domain.CanReviewWorkloads); err != nil {
		return nil, err
	}
	return s.api.PendingWorkloads(ctx)
}

func (s *workloadService) History(ctx context.Context) ([]domain.Workload, error) {
	if _, err := requireRole(s.session, domain.CanReviewWorkloads); err != nil {
		return nil, err
	}
	return s.api.ReviewedWorkloads(ctx)
}

// All fetches every workload and filters and pages it locally, the way the
// backend's unpaginated all_workloads endpoint is meant to be consumed.
func (s *workloadService) All(ctx context.Context, q AllWorkloadsQuery) (*WorkloadListing, error) {
	if _, err := requireRole(s.session, domain.CanViewAllWorkloads); err != nil {
		return nil, err
	}
	items, err := s.api.AllWorkloads(ctx)
	if err != nil {
		return nil, err
	}
	size := q.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	return &WorkloadListing{
		Page:       domain.Paginate(q.Filter.Apply(items), q.Page, size),
		Submitters: domain.UniqueSubmitters(items),
		Filter:     q.Filter,
	}, nil
}

func (s *workloadService) Review(ctx context.Context, id int, form validation.ReviewForm) (w *domain.Workload, err error) {
	defer track(ctx, s.observer, "review-workload", map[string]any{"id": id, "decision": string(form.Decision)})(&err)

	var user *domain.User
	if user, err = requireRole(s.session, domain.CanReviewWorkloads); err != nil {
		return nil, err
	}
	form.Comment = strings.TrimSpace(form.Comment)
	if err = s.validator.Validate(form); err != nil {
		return nil, err
	}
	status, err := domain.WorkloadReviewStatus(user.Role, form.Decision)
	if err != nil {
		return nil, err
	}
	return s.api.ReviewWorkload(ctx, id, status, domain.CommentField(user.Role), form.Comment)
}

func (s *workloadService) Export(ctx context.Context, filter domain.WorkloadFilter) (exp *api.Export, err error) {
	defer track(ctx, s.observer, "export-workloads", nil)(&err)

	if _, err = requireRole(s.session, domain.CanViewAllWorkloads); err != nil {
		return nil, err
	}
	return s.api.ExportWorkloads(ctx, filter)
}

// Mentors lists the users a student can pick as reviewer.
func (s *workloadService) Mentors(ctx context.Context) ([]domain.User, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterByRole(users, domain.RoleMentor), nil
}

// ProjectOptions lists the approved projects a workload may be linked to.
func (s *workloadService) ProjectOptions(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.ApprovedProjects(ctx)
}

// input validates form and converts it. The returned func closes the
// attachment, if one was opened.
func (s *workloadService) input(form validation.WorkloadForm) (api.WorkloadInput, func(), error) {
	noop := func() {}
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validator.Validate(form); err != nil {
		return api.WorkloadInput{}, noop, err
	}

	start, err := domain.ParseDate(form.StartDate)
	if err != nil {
		return api.WorkloadInput{}, noop, err
	}
	end, err := domain.ParseDate(form.EndDate)
	if err != nil {
		return api.WorkloadInput{}, noop, err
	}
	intensity, err := strconv.ParseFloat(form.IntensityValue, 64)
	if err != nil {
		return api.WorkloadInput{}, noop, fmt.Errorf("intensity value: %w", err)
	}

	in := api.WorkloadInput{
		Name:           form.Name,
		Content:        form.Content,
		Source:         form.Source,
		WorkType:       form.WorkType,
		StartDate:      start,
		EndDate:        end,
		IntensityType:  form.IntensityType,
		IntensityValue: intensity,
	}
	switch form.Source {
	case domain.SourceInnovation:
		in.InnovationStage = domain.InnovationStage(form.InnovationStage)
		in.Shares = form.DomainShares()
	case domain.SourceAssistant:
		salary, _ := strconv.ParseFloat(strings.TrimSpace(form.AssistantSalaryPaid), 64)
		in.AssistantSalaryPaid = null.Float64From(salary)
	}
	if form.MentorReviewerID > 0 {
		in.MentorReviewerID = null.IntFrom(form.MentorReviewerID)
	}
	if form.ProjectID > 0 {
		in.ProjectID = null.IntFrom(form.ProjectID)
	}

	if form.Attachment == nil {
		return in, noop, nil
	}
	f, err := os.Open(form.Attachment.Path)
	if err != nil {
		return api.WorkloadInput{}, noop, fmt.Errorf("opening attachment: %w", err)
	}
	in.Attachment = &api.File{Filename: form.Attachment.Filename, Content: f}
	return in, func() { f.Close() }, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
)

type projectService struct {
	api             ProjectAPI
	session         Session
	validator       *validation.Validator
	defaultReviewer string
	observer        UseCaseObserver
}

// NewProjectService creates the project service. defaultReviewer fills the
// teacher reviewer of a declaration that names none.
func NewProjectService(backend ProjectAPI, session Session, v *validation.Validator, defaultReviewer string, observers ...UseCaseObserver) ProjectService {
	return &projectService{
		api:             backend,
		session:         session,
		validator:       v,
		defaultReviewer: defaultReviewer,
		observer:        useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) ListMine(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.ListProjects(ctx, true)
}

func (s *projectService) Get(ctx context.Context, id int) (*domain.Project, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.GetProject(ctx, id)
}

// Declare submits a project. A teacher's own declaration is approved on
// creation.
func (s *projectService) Declare(ctx context.Context, form validation.ProjectForm) (p *domain.Project, err error) {
	defer track(ctx, s.observer, "declare-project", map[string]any{"name": form.Name})(&err)

	var user *domain.User
	if user, err = requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	in, err := s.input(form)
	if err != nil {
		return nil, err
	}
	if status := domain.InitialReviewStatus(user.Role); status == domain.ReviewApproved {
		in.ReviewStatus = status
	}
	if user.Role == domain.RoleStudent {
		in.TeacherReviewer = strings.TrimSpace(form.TeacherReviewer)
		if in.TeacherReviewer == "" {
			in.TeacherReviewer = s.defaultReviewer
		}
	}
	return s.api.CreateProject(ctx, in)
}

func (s *projectService) Edit(ctx context.Context, id int, form validation.ProjectForm) (p *domain.Project, err error) {
	defer track(ctx, s.observer, "edit-project", map[string]any{"id": id})(&err)

	var user *domain.User
	if user, err = requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	var current *domain.Project
	if current, err = s.api.GetProject(ctx, id); err != nil {
		return nil, err
	}
	if !current.Editable(user.Role) {
		return nil, fmt.Errorf("project %d is %s: %w", id, current.ReviewStatus, ErrNotEditable)
	}
	in, err := s.input(form)
	if err != nil {
		return nil, err
	}
	return s.api.UpdateProject(ctx, id, in)
}

func (s *projectService) Delete(ctx context.Context, id int) (err error) {
	defer track(ctx, s.observer, "delete-project", map[string]any{"id": id})(&err)

	var user *domain.User
	if user, err = requireRole(s.session, anyRole); err != nil {
		return err
	}
	var current *domain.Project
	if current, err = s.api.GetProject(ctx, id); err != nil {
		return err
	}
	if !current.Editable(user.Role) {
		return fmt.Errorf("project %d is %s: %w", id, current.ReviewStatus, ErrNotEditable)
	}
	return s.api.DeleteProject(ctx, id)
}

func (s *projectService) Pending(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, domain.CanReviewProjects); err != nil {
		return nil, err
	}
	return s.api.PendingProjects(ctx)
}

func (s *projectService) Reviewed(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, domain.CanReviewProjects); err != nil {
		return nil, err
	}
	return s.api.ReviewedProjects(ctx)
}

func (s *projectService) Approved(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.ApprovedProjects(ctx)
}

func (s *projectService) All(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, domain.CanReviewProjects); err != nil {
		return nil, err
	}
	return s.api.AllProjects(ctx)
}

func (s *projectService) Review(ctx context.Context, id int, form validation.ReviewForm) (p *domain.Project, err error) {
	defer track(ctx, s.observer, "review-project", map[string]any{"id": id, "decision": string(form.Decision)})(&err)

	if _, err = requireRole(s.session, domain.CanReviewProjects); err != nil {
		return nil, err
	}
	form.Comment = strings.TrimSpace(form.Comment)
	if err = s.validator.Validate(form); err != nil {
		return nil, err
	}
	status, err := domain.ProjectReviewStatus(form.Decision)
	if err != nil {
		return nil, err
	}
	return s.api.ReviewProject(ctx, id, status, form.Comment)
}

func (s *projectService) Declared(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.DeclaredProjects(ctx)
}

func (s *projectService) Related(ctx context.Context) ([]domain.Project, error) {
	if _, err := requireRole(s.session, anyRole); err != nil {
		return nil, err
	}
	return s.api.RelatedProjects(ctx)
}

func (s *projectService) input(form validation.ProjectForm) (api.ProjectInput, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validator.Validate(form); err != nil {
		return api.ProjectInput{}, err
	}
	start, err := domain.ParseDate(form.StartDate)
	if err != nil {
		return api.ProjectInput{}, err
	}
	return api.ProjectInput{
		Name:          form.Name,
		ProjectStatus: form.ProjectStatus,
		StartDate:     start,
	}, nil
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexanderramin/labdesk/internal/domain"
)

// ProjectInput is the writable part of a project declaration.
type ProjectInput struct {
	Name            string
	ProjectStatus   domain.ProjectStatus
	StartDate       domain.Date
	TeacherReviewer string
	// ReviewStatus is only sent when set; teacher declarations pass approved.
	ReviewStatus domain.ReviewStatus
}

func (in ProjectInput) Form() *Form {
	return NewForm().
		Set("name", in.Name).
		Set("project_status", string(in.ProjectStatus)).
		Set("start_date", in.StartDate.String()).
		SetIf("teacher_reviewer", in.TeacherReviewer).
		SetIf("review_status", string(in.ReviewStatus))
}

func projectPath(id int) string {
	return "/project/" + strconv.Itoa(id) + "/"
}

// ListProjects lists projects visible to the user; submitted narrows the
// list to the user's own declarations.
func (c *Client) ListProjects(ctx context.Context, submitted bool) ([]domain.Project, error) {
	var q url.Values
	if submitted {
		q = url.Values{"submitted": {"true"}}
	}
	return listCall[domain.Project](ctx, c, "/project/", q)
}

func (c *Client) GetProject(ctx context.Context, id int) (*domain.Project, error) {
	var out domain.Project
	if err := c.call(ctx, http.MethodGet, projectPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*domain.Project, error) {
	var out domain.Project
	if err := c.call(ctx, http.MethodPost, "/project/", nil, in.Form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int, in ProjectInput) (*domain.Project, error) {
	var out domain.Project
	if err := c.call(ctx, http.MethodPut, projectPath(id), nil, in.Form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, projectPath(id), nil, nil, nil)
}

func (c *Client) ReviewProject(ctx context.Context, id int, status domain.ReviewStatus, comment string) (*domain.Project, error) {
	body := map[string]string{
		"review_status":   string(status),
		"teacher_comment": comment,
	}
	var out domain.Project
	if err := c.call(ctx, http.MethodPost, projectPath(id)+"review/", nil, jsonBody{body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PendingProjects(ctx context.Context) ([]domain.Project, error) {
	return listCall[domain.Project](ctx, c, "/project/pending_review/", nil)
}

func (c *Client) ReviewedProjects(ctx context.Context) ([]domain.Project, error) {
	return listCall[domain.Project](ctx, c, "/project/reviewed/", nil)
}

// ApprovedProjects lists approved projects; workloads link to these.
func (c *Client) ApprovedProjects(ctx context.Context) ([]domain.Project, error) {
	return listCall[domain.Project](ctx, c, "/project/approved_review/", nil)
}

func (c *Client) AllProjects(ctx context.Context) ([]domain.Project, error) {
	return listCall[domain.Project](ctx, c, "/project/all_projects/", nil)
}

// DeclaredProjects lists projects the current user declared.
func (c *Client) DeclaredProjects(ctx context.Context) ([]domain.Project, error) {
	return listCall[domain.Project](ctx, c, "/project/getDeclaredById/", nil)
}

// RelatedProjects lists projects the current user takes part in.
func (c *Client) RelatedProjects(ctx context.Context) ([]domain.Project, error) {
	return listCall[domain.Project](ctx, c, "/project/getRelatedById/", nil)
}

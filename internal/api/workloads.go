package api

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/volatiletech/null/v8"
)

// WorkloadInput is the writable part of a workload, sent as multipart.
type WorkloadInput struct {
	Name                string
	Content             string
	Source              domain.WorkloadSource
	WorkType            domain.WorkType
	StartDate           domain.Date
	EndDate             domain.Date
	IntensityType       domain.IntensityType
	IntensityValue      float64
	InnovationStage     domain.InnovationStage
	AssistantSalaryPaid null.Float64
	MentorReviewerID    null.Int
	ProjectID           null.Int
	Shares              []domain.WorkloadShare
	Attachment          *File
}

type shareInput struct {
	User       int     `json:"user"`
	Percentage float64 `json:"percentage"`
}

// Form encodes the input with the backend's field names. Shares travel as a
// JSON-encoded field since multipart has no nesting.
func (in WorkloadInput) Form() (*Form, error) {
	f := NewForm().
		Set("name", in.Name).
		Set("content", in.Content).
		Set("source", string(in.Source)).
		Set("work_type", string(in.WorkType)).
		Set("start_date", in.StartDate.String()).
		Set("end_date", in.EndDate.String()).
		Set("intensity_type", string(in.IntensityType)).
		SetFloat("intensity_value", in.IntensityValue)

	if in.Source == domain.SourceInnovation {
		f.SetIf("innovation_stage", string(in.InnovationStage))
	}
	if in.AssistantSalaryPaid.Valid {
		f.SetFloat("assistant_salary_paid", in.AssistantSalaryPaid.Float64)
	}
	if in.MentorReviewerID.Valid {
		f.SetInt("mentor_reviewer_id", int64(in.MentorReviewerID.Int))
	}
	if in.ProjectID.Valid {
		f.SetInt("project_id", int64(in.ProjectID.Int))
	}
	if len(in.Shares) > 0 {
		shares := make([]shareInput, 0, len(in.Shares))
		for _, s := range in.Shares {
			shares = append(shares, shareInput{User: s.User, Percentage: s.Percentage})
		}
		data, err := json.Marshal(shares)
		if err != nil {
			return nil, fmt.Errorf("encoding shares: %w", err)
		}
		f.Set("shares", string(data))
	}
	if in.Attachment != nil {
		f.AddFile(File{Field: "attachments", Filename: in.Attachment.Filename, Content: in.Attachment.Content})
	}
	return f, nil
}

func workloadPath(id int) string {
	return "/workload/" + strconv.Itoa(id) + "/"
}

// ListWorkloads returns the current user's own workloads.
func (c *Client) ListWorkloads(ctx context.Context) ([]domain.Workload, error) {
	return listCall[domain.Workload](ctx, c, "/workload/", nil)
}

func (c *Client) GetWorkload(ctx context.Context, id int) (*domain.Workload, error) {
	var out domain.Workload
	if err := c.call(ctx, http.MethodGet, workloadPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateWorkload(ctx context.Context, in WorkloadInput) (*domain.Workload, error) {
	form, err := in.Form()
	if err != nil {
		return nil, err
	}
	var out domain.Workload
	if err := c.call(ctx, http.MethodPost, "/workload/", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateWorkload(ctx context.Context, id int, in WorkloadInput) (*domain.Workload, error) {
	form, err := in.Form()
	if err != nil {
		return nil, err
	}
	var out domain.Workload
	if err := c.call(ctx, http.MethodPut, workloadPath(id), nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWorkload(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, workloadPath(id), nil, nil, nil)
}

// PendingWorkloads returns workloads waiting for the current reviewer.
func (c *Client) PendingWorkloads(ctx context.Context) ([]domain.Workload, error) {
	return listCall[domain.Workload](ctx, c, "/workload/pending_review/", nil)
}

// ReviewedWorkloads returns workloads the current reviewer has decided.
func (c *Client) ReviewedWorkloads(ctx context.Context) ([]domain.Workload, error) {
	return listCall[domain.Workload](ctx, c, "/workload/reviewed/", nil)
}

// AllWorkloads returns every workload. Teachers only.
func (c *Client) AllWorkloads(ctx context.Context) ([]domain.Workload, error) {
	return listCall[domain.Workload](ctx, c, "/workload/all_workloads/", nil)
}

// ReviewWorkload posts a decision. commentField is "mentor_comment" or
// "teacher_comment" depending on the reviewer's role.
func (c *Client) ReviewWorkload(ctx context.Context, id int, status domain.WorkloadStatus, commentField, comment string) (*domain.Workload, error) {
	body := map[string]string{
		"status":     string(status),
		commentField: comment,
	}
	var out domain.Workload
	if err := c.call(ctx, http.MethodPost, workloadPath(id)+"review/", nil, jsonBody{body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export is a downloaded spreadsheet.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportWorkloads downloads the workload spreadsheet. Filter fields set to
// "all" or "" are omitted from the query.
func (c *Client) ExportWorkloads(ctx context.Context, filter domain.WorkloadFilter) (*Export, error) {
	q := url.Values{}
	for key, v := range map[string]string{
		"submitter": filter.Submitter,
		"source":    filter.Source,
		"status":    filter.Status,
	} {
		if v != "" && v != domain.FilterAll {
			q.Set(key, v)
		}
	}
	resp, err := c.do(ctx, http.MethodGet, "/workload/export/", q, nil)
	if err != nil {
		return nil, err
	}
	out := &Export{
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if cd := resp.header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			out.Filename = params["filename"]
		}
	}
	return out, nil
}

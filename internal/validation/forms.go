package validation

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/go-playground/validator/v10"
)

type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"min=6"`
}

type RegisterForm struct {
	Username        string      `json:"username" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"min=6"`
	ConfirmPassword string      `json:"confirm_password" validate:"min=6,eqfield=Password"`
	Role            domain.Role `json:"role" validate:"required,oneof=student mentor teacher"`
}

type ProfileForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// PasswordForm also carries the account's username and email so the new
// password can be compared against them.
type PasswordForm struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=NewPassword"`
	Username        string `json:"-"`
	Email           string `json:"-"`
}

type ShareForm struct {
	User       int     `json:"user" validate:"required"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// AttachmentForm describes a local file picked for upload.
type AttachmentForm struct {
	Path     string
	Filename string
	Size     int64
}

// MaxAttachmentSize is the largest upload the backend accepts.
const MaxAttachmentSize = 10 << 20

var attachmentExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// AttachmentFromFile stats path and describes it for upload.
func AttachmentFromFile(path string) (*AttachmentForm, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment: %s is a directory", path)
	}
	return &AttachmentForm{Path: path, Filename: filepath.Base(path), Size: info.Size()}, nil
}

// WorkloadForm is the raw workload form. Dates and numbers stay strings
// until the rules below accept them.
type WorkloadForm struct {
	Name                string                `json:"name" validate:"required"`
	Content             string                `json:"content" validate:"required"`
	Source              domain.WorkloadSource `json:"source" validate:"required,oneof=horizontal innovation hardware assessment documentation assistant other"`
	WorkType            domain.WorkType       `json:"work_type" validate:"required,oneof=remote onsite"`
	StartDate           string                `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string                `json:"end_date" validate:"required,datetime=2006-01-02"`
	IntensityType       domain.IntensityType  `json:"intensity_type" validate:"required,oneof=total daily weekly"`
	IntensityValue      string                `json:"intensity_value" validate:"required,numeric"`
	InnovationStage     string                `json:"innovation_stage"`
	AssistantSalaryPaid string                `json:"assistant_salary_paid"`
	MentorReviewerID    int                   `json:"mentor_reviewer_id"`
	ProjectID           int                   `json:"project_id"`
	Shares              []ShareForm           `json:"shares" validate:"dive"`
	Attachment          *AttachmentForm       `json:"attachments"`
	SubmitterRole       domain.Role           `json:"-"`
}

type ProjectForm struct {
	Name            string               `json:"name" validate:"required"`
	ProjectStatus   domain.ProjectStatus `json:"project_status" validate:"required,oneof=pre_research in_research"`
	StartDate       string               `json:"start_date" validate:"required,datetime=2006-01-02"`
	TeacherReviewer string               `json:"teacher_reviewer"`
}

type ReviewForm struct {
	Decision domain.Decision `json:"decision" validate:"required,oneof=approved rejected"`
	Comment  string          `json:"comment" validate:"required"`
}

// documentationWindow is how long after its end a documentation workload
// may still be declared.
const documentationWindow = 30 * 24 * time.Hour

func (v *Validator) workloadRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(WorkloadForm)
	report := func(value any, field, structField, tag string) {
		sl.ReportError(value, field, structField, tag, "")
	}

	loc := v.now().Location()
	start, startErr := time.ParseInLocation(domain.DateLayout, f.StartDate, loc)
	end, endErr := time.ParseInLocation(domain.DateLayout, f.EndDate, loc)
	if startErr == nil && endErr == nil && end.Before(start) {
		report(f.EndDate, "end_date", "EndDate", tagEndAfterStart)
	}
	if endErr == nil && f.Source == domain.SourceDocumentation && v.now().Sub(end) > documentationWindow {
		report(f.EndDate, "end_date", "EndDate", tagDocDeadline)
	}

	switch f.Source {
	case domain.SourceInnovation:
		if !domain.Valid(domain.InnovationStages, domain.InnovationStage(f.InnovationStage)) {
			report(f.InnovationStage, "innovation_stage", "InnovationStage", tagInnovationStage)
		}
		if !domain.SharesComplete(f.DomainShares()) {
			report(f.Shares, "shares", "Shares", tagSharesTotal)
		}
	case domain.SourceAssistant:
		if !finite(f.AssistantSalaryPaid) {
			report(f.AssistantSalaryPaid, "assistant_salary_paid", "AssistantSalaryPaid", tagSalary)
		}
	case domain.SourceHorizontal:
		if f.ProjectID == 0 {
			report(f.ProjectID, "project_id", "ProjectID", tagProjectRequired)
		}
	}

	if f.SubmitterRole == domain.RoleStudent && f.MentorReviewerID == 0 {
		report(f.MentorReviewerID, "mentor_reviewer_id", "MentorReviewerID", tagMentorRequired)
	}

	if a := f.Attachment; a != nil {
		if a.Size > MaxAttachmentSize {
			report(a.Size, "attachments", "Attachment", tagFileSize)
		}
		if !attachmentExts[strings.ToLower(filepath.Ext(a.Filename))] {
			report(a.Filename, "attachments", "Attachment", tagFileType)
		}
	}
}

// finite reports whether s parses as a finite number. ParseFloat alone
// accepts "NaN" and "Inf".
func finite(s string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
}

// DomainShares converts the share rows to domain shares.
func (f WorkloadForm) DomainShares() []domain.WorkloadShare {
	out := make([]domain.WorkloadShare, 0, len(f.Shares))
	for _, s := range f.Shares {
		out = append(out, domain.WorkloadShare{User: s.User, Percentage: s.Percentage})
	}
	return out
}

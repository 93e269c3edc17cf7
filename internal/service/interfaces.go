package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
)

var (
	// ErrRoleNotAllowed is returned when the signed-in role cannot use an action.
	ErrRoleNotAllowed = errors.New("action not available for this role")
	// ErrNotEditable is returned when a record's review state forbids changes.
	ErrNotEditable = errors.New("record can no longer be changed")
)

// Session yields the signed-in user. auth.Store implements it.
type Session interface {
	RequireUser() (*domain.User, error)
}

// Accounts is the auth store surface AccountService drives.
type Accounts interface {
	Session
	Login(ctx context.Context, creds api.Credentials) (*domain.User, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	CheckAuth(ctx context.Context) (*domain.User, error)
	Update(ctx context.Context, upd api.ProfileUpdate) (*api.AuthResponse, error)
	ChangePassword(ctx context.Context, chg api.PasswordChange) (string, error)
	History(ctx context.Context, limit int) ([]domain.AuthEvent, error)
}

type WorkloadAPI interface {
	ListWorkloads(ctx context.Context) ([]domain.Workload, error)
	GetWorkload(ctx context.Context, id int) (*domain.Workload, error)
	CreateWorkload(ctx context.Context, in api.WorkloadInput) (*domain.Workload, error)
	UpdateWorkload(ctx context.Context, id int, in api.WorkloadInput) (*domain.Workload, error)
	DeleteWorkload(ctx context.Context, id int) error
	PendingWorkloads(ctx context.Context) ([]domain.Workload, error)
	ReviewedWorkloads(ctx context.Context) ([]domain.Workload, error)
	AllWorkloads(ctx context.Context) ([]domain.Workload, error)
	ReviewWorkload(ctx context.Context, id int, status domain.WorkloadStatus, commentField, comment string) (*domain.Workload, error)
	ExportWorkloads(ctx context.Context, filter domain.WorkloadFilter) (*api.Export, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ApprovedProjects(ctx context.Context) ([]domain.Project, error)
}

type ProjectAPI interface {
	ListProjects(ctx context.Context, submitted bool) ([]domain.Project, error)
	GetProject(ctx context.Context, id int) (*domain.Project, error)
	CreateProject(ctx context.Context, in api.ProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, id int, in api.ProjectInput) (*domain.Project, error)
	DeleteProject(ctx context.Context, id int) error
	ReviewProject(ctx context.Context, id int, status domain.ReviewStatus, comment string) (*domain.Project, error)
	PendingProjects(ctx context.Context) ([]domain.Project, error)
	ReviewedProjects(ctx context.Context) ([]domain.Project, error)
	ApprovedProjects(ctx context.Context) ([]domain.Project, error)
	AllProjects(ctx context.Context) ([]domain.Project, error)
	DeclaredProjects(ctx context.Context) ([]domain.Project, error)
	RelatedProjects(ctx context.Context) ([]domain.Project, error)
}

type DirectoryAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListAnnouncements(ctx context.Context) ([]domain.Announcement, error)
}

// Compile-time check that the HTTP client serves every port.
var (
	_ WorkloadAPI  = (*api.Client)(nil)
	_ ProjectAPI   = (*api.Client)(nil)
	_ DirectoryAPI = (*api.Client)(nil)
)

type AccountService interface {
	Login(ctx context.Context, form validation.LoginForm) (*domain.User, error)
	Register(ctx context.Context, form validation.RegisterForm) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, form validation.ProfileForm) (*api.AuthResponse, error)
	ChangePassword(ctx context.Context, form validation.PasswordForm) (string, error)
	History(ctx context.Context, limit int) ([]domain.AuthEvent, error)
}

type WorkloadService interface {
	ListMine(ctx context.Context) ([]domain.Workload, error)
	Get(ctx context.Context, id int) (*domain.Workload, error)
	Submit(ctx context.Context, form validation.WorkloadForm) (*domain.Workload, error)
	Edit(ctx context.Context, id int, form validation.WorkloadForm) (*domain.Workload, error)
	Delete(ctx context.Context, id int) error
	Pending(ctx context.Context) ([]domain.Workload, error)
	History(ctx context.Context) ([]domain.Workload, error)
	All(ctx context.Context, q AllWorkloadsQuery) (*WorkloadListing, error)
	Review(ctx context.Context, id int, form validation.ReviewForm) (*domain.Workload, error)
	Export(ctx context.Context, filter domain.WorkloadFilter) (*api.Export, error)
	Mentors(ctx context.Context) ([]domain.User, error)
	ProjectOptions(ctx context.Context) ([]domain.Project, error)
}

type ProjectService interface {
	ListMine(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id int) (*domain.Project, error)
	Declare(ctx context.Context, form validation.ProjectForm) (*domain.Project, error)
	Edit(ctx context.Context, id int, form validation.ProjectForm) (*domain.Project, error)
	Delete(ctx context.Context, id int) error
	Pending(ctx context.Context) ([]domain.Project, error)
	Reviewed(ctx context.Context) ([]domain.Project, error)
	Approved(ctx context.Context) ([]domain.Project, error)
	All(ctx context.Context) ([]domain.Project, error)
	Review(ctx context.Context, id int, form validation.ReviewForm) (*domain.Project, error)
	Declared(ctx context.Context) ([]domain.Project, error)
	Related(ctx context.Context) ([]domain.Project, error)
}

type DirectoryService interface {
	// Users lists accounts, narrowed to role unless role is empty.
	Users(ctx context.Context, role domain.Role) ([]domain.User, error)
	// Announcements lists announcements of kind, or all for "" / "all".
	Announcements(ctx context.Context, kind string) ([]domain.Announcement, error)
}

// AllWorkloadsQuery selects a page of the teacher's all-workloads view.
type AllWorkloadsQuery struct {
	Filter   domain.WorkloadFilter
	Page     int
	PageSize int
}

// WorkloadListing is one page of the all-workloads view plus the submitter
// choices for its filter.
type WorkloadListing struct {
	Page       domain.Page[domain.Workload]
	Submitters []string
	Filter     domain.WorkloadFilter
}

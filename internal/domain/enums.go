package domain

type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleTeacher Role = "teacher"
)

// Roles lists every role in display order.
var Roles = []Role{RoleStudent, RoleMentor, RoleTeacher}

type WorkloadSource string

const (
	SourceHorizontal    WorkloadSource = "horizontal"
	SourceInnovation    WorkloadSource = "innovation"
	SourceHardware      WorkloadSource = "hardware"
	SourceAssessment    WorkloadSource = "assessment"
	SourceDocumentation WorkloadSource = "documentation"
	SourceAssistant     WorkloadSource = "assistant"
	SourceOther         WorkloadSource = "other"
)

var WorkloadSources = []WorkloadSource{
	SourceHorizontal, SourceInnovation, SourceHardware, SourceAssessment,
	SourceDocumentation, SourceAssistant, SourceOther,
}

type WorkType string

const (
	WorkRemote WorkType = "remote"
	WorkOnsite WorkType = "onsite"
)

var WorkTypes = []WorkType{WorkRemote, WorkOnsite}

type IntensityType string

const (
	IntensityTotal  IntensityType = "total"
	IntensityDaily  IntensityType = "daily"
	IntensityWeekly IntensityType = "weekly"
)

var IntensityTypes = []IntensityType{IntensityTotal, IntensityDaily, IntensityWeekly}

type InnovationStage string

const (
	StageBefore InnovationStage = "before"
	StageAfter  InnovationStage = "after"
)

var InnovationStages = []InnovationStage{StageBefore, StageAfter}

// WorkloadStatus is owned by the backend; the client only reads it.
type WorkloadStatus string

const (
	WorkloadPending         WorkloadStatus = "pending"
	WorkloadMentorApproved  WorkloadStatus = "mentor_approved"
	WorkloadMentorRejected  WorkloadStatus = "mentor_rejected"
	WorkloadTeacherApproved WorkloadStatus = "teacher_approved"
	WorkloadTeacherRejected WorkloadStatus = "teacher_rejected"
)

var WorkloadStatuses = []WorkloadStatus{
	WorkloadPending, WorkloadMentorApproved, WorkloadTeacherApproved,
	WorkloadMentorRejected, WorkloadTeacherRejected,
}

type ProjectStatus string

const (
	ProjectPreResearch ProjectStatus = "pre_research"
	ProjectInResearch  ProjectStatus = "in_research"
)

var ProjectStatuses = []ProjectStatus{ProjectPreResearch, ProjectInResearch}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

var ReviewStatuses = []ReviewStatus{ReviewPending, ReviewRejected, ReviewApproved}

type AnnouncementType string

const (
	AnnouncementNotice  AnnouncementType = "notice"
	AnnouncementGeneral AnnouncementType = "announcement"
	AnnouncementWarning AnnouncementType = "warning"
)

var AnnouncementTypes = []AnnouncementType{AnnouncementNotice, AnnouncementGeneral, AnnouncementWarning}

// Decision is a reviewer's verdict before it is mapped to a role-specific status.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

var Decisions = []Decision{DecisionApproved, DecisionRejected}

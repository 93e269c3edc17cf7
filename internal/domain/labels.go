package domain

var roleLabels = map[Role]string{
	RoleStudent: "学生",
	RoleMentor:  "导师",
	RoleTeacher: "老师",
}

var sourceLabels = map[WorkloadSource]string{
	SourceHorizontal:    "横向",
	SourceInnovation:    "大创",
	SourceHardware:      "硬件小组",
	SourceAssessment:    "考核小组",
	SourceDocumentation: "材料撰写",
	SourceAssistant:     "助教",
	SourceOther:         "其他",
}

var workTypeLabels = map[WorkType]string{
	WorkRemote: "远程",
	WorkOnsite: "实地",
}

var intensityLabels = map[IntensityType]string{
	IntensityTotal:  "总计",
	IntensityDaily:  "每天",
	IntensityWeekly: "每周",
}

var stageLabels = map[InnovationStage]string{
	StageBefore: "立项前",
	StageAfter:  "立项后",
}

var workloadStatusLabels = map[WorkloadStatus]string{
	WorkloadPending:         "待审核",
	WorkloadMentorApproved:  "导师已审核",
	WorkloadTeacherApproved: "教师已审核",
	WorkloadMentorRejected:  "导师已驳回",
	WorkloadTeacherRejected: "教师已驳回",
}

var projectStatusLabels = map[ProjectStatus]string{
	ProjectPreResearch: "预研",
	ProjectInResearch:  "在研",
}

var reviewStatusLabels = map[ReviewStatus]string{
	ReviewPending:  "审批中",
	ReviewRejected: "已驳回",
	ReviewApproved: "已通过",
}

var announcementTypeLabels = map[AnnouncementType]string{
	AnnouncementNotice:  "通知",
	AnnouncementGeneral: "公告",
	AnnouncementWarning: "警告",
}

var decisionLabels = map[Decision]string{
	DecisionApproved: "通过",
	DecisionRejected: "拒绝",
}

// label looks up a display label, falling back to the raw value so unknown
// backend values still render.
func label[K ~string](m map[K]string, k K) string {
	if l, ok := m[k]; ok {
		return l
	}
	return string(k)
}

func (r Role) Label() string             { return label(roleLabels, r) }
func (s WorkloadSource) Label() string   { return label(sourceLabels, s) }
func (t WorkType) Label() string         { return label(workTypeLabels, t) }
func (t IntensityType) Label() string    { return label(intensityLabels, t) }
func (s InnovationStage) Label() string  { return label(stageLabels, s) }
func (s WorkloadStatus) Label() string   { return label(workloadStatusLabels, s) }
func (s ProjectStatus) Label() string    { return label(projectStatusLabels, s) }
func (s ReviewStatus) Label() string     { return label(reviewStatusLabels, s) }
func (t AnnouncementType) Label() string { return label(announcementTypeLabels, t) }
func (d Decision) Label() string         { return label(decisionLabels, d) }

// Option is a value/label pair used to build select inputs.
type Option struct {
	Value string
	Label string
}

// Options builds select options from an ordered list of enum values.
func Options[T interface {
	~string
	Label() string
}](values []T) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: string(v), Label: v.Label()})
	}
	return out
}

// Valid reports whether v is one of values.
func Valid[T ~string](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

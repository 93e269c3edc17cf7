package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func labdeskHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(labdeskHuhTheme()).WithShowHelp(false)
}

// required returns a huh validator that rejects blank input with msg.
func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func validDate(s string) error {
	if _, err := domain.ParseDate(strings.TrimSpace(s)); err != nil {
		return errors.New("日期格式应为YYYY-MM-DD")
	}
	return nil
}

func validNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("请输入数字")
	}
	return nil
}

// enumOptions builds huh options from an ordered enum list.
func enumOptions[T interface {
	~string
	Label() string
}](values []T) []huh.Option[T] {
	out := make([]huh.Option[T], 0, len(values))
	for _, v := range values {
		out = append(out, huh.NewOption(v.Label(), v))
	}
	return out
}

func confirm(title string) (bool, error) {
	var ok bool
	err := newForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("确定").Negative("取消").Value(&ok),
	)).Run()
	return ok, err
}

func loginForm(f *validation.LoginForm) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewInput().Title("用户名").Value(&f.Username).Validate(required("用户名不能为空")),
		huh.NewInput().Title("密码").EchoMode(huh.EchoModePassword).Value(&f.Password),
	))
}

func registerForm(f *validation.RegisterForm) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewInput().Title("用户名").Value(&f.Username).Validate(required("用户名不能为空")),
		huh.NewInput().Title("邮箱").Value(&f.Email).Validate(required("请输入有效的邮箱地址")),
		huh.NewInput().Title("密码").EchoMode(huh.EchoModePassword).Value(&f.Password),
		huh.NewInput().Title("确认密码").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword),
		huh.NewSelect[domain.Role]().Title("角色").Options(enumOptions(domain.Roles)...).Value(&f.Role),
	))
}

func profileForm(f *validation.ProfileForm) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewInput().Title("用户名").Value(&f.Username).Validate(required("用户名不能为空")),
		huh.NewInput().Title("邮箱").Value(&f.Email).Validate(required("请输入有效的邮箱地址")),
	))
}

func passwordForm(f *validation.PasswordForm) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewInput().Title("当前密码").EchoMode(huh.EchoModePassword).Value(&f.CurrentPassword),
		huh.NewInput().Title("新密码").EchoMode(huh.EchoModePassword).Value(&f.NewPassword),
		huh.NewInput().Title("确认新密码").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword),
	))
}

func reviewForm(f *validation.ReviewForm) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewSelect[domain.Decision]().Title("审核结果").Options(enumOptions(domain.Decisions)...).Value(&f.Decision),
		huh.NewText().Title("审核意见").Value(&f.Comment).Validate(required("请填写完整的审核信息")),
	))
}

// projectForm asks for the reviewing teacher only when hint is set.
func projectForm(f *validation.ProjectForm, hint string) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().Title("项目名称").Value(&f.Name).Validate(required("请输入项目名称")),
		huh.NewSelect[domain.ProjectStatus]().Title("项目状态").Options(enumOptions(domain.ProjectStatuses)...).Value(&f.ProjectStatus),
		huh.NewInput().Title("开始日期").Placeholder("2025-06-30").Value(&f.StartDate).Validate(validDate),
	}
	if hint != "" {
		fields = append(fields, huh.NewInput().Title("审核老师").Placeholder(hint).Value(&f.TeacherReviewer))
	}
	return newForm(huh.NewGroup(fields...))
}

// reviewerHint is the placeholder of the reviewer field, or "" when user
// does not pick a reviewer. Only students' declarations name one.
func reviewerHint(user *domain.User) string {
	if user != nil && user.Role == domain.RoleStudent {
		return "默认审核老师"
	}
	return ""
}

// workloadDraft holds the text inputs of the workload form that do not map
// one-to-one onto validation.WorkloadForm.
type workloadDraft struct {
	Form   validation.WorkloadForm
	Shares string
	File   string
}

// workloadForm builds the multi-step workload form. Source-specific steps
// are hidden unless the chosen source needs them.
func workloadForm(d *workloadDraft, mentors []domain.User, projects []domain.Project) *huh.Form {
	f := &d.Form
	source := func(s domain.WorkloadSource) func() bool {
		return func() bool { return f.Source != s }
	}

	mentorOpts := []huh.Option[int]{huh.NewOption("不指定", 0)}
	for _, m := range mentors {
		mentorOpts = append(mentorOpts, huh.NewOption(m.Username, m.ID))
	}
	projectOpts := make([]huh.Option[int], 0, len(projects))
	for _, p := range projects {
		projectOpts = append(projectOpts, huh.NewOption(p.Name, p.ID))
	}

	return newForm(
		huh.NewGroup(
			huh.NewInput().Title("工作量名称").Value(&f.Name).Validate(required("请输入工作量名称")),
			huh.NewText().Title("工作内容").Value(&f.Content).Validate(required("请输入工作内容")),
			huh.NewSelect[domain.WorkloadSource]().Title("工作来源").Options(enumOptions(domain.WorkloadSources)...).Value(&f.Source),
			huh.NewSelect[domain.WorkType]().Title("工作类型").Options(enumOptions(domain.WorkTypes)...).Value(&f.WorkType),
		),
		huh.NewGroup(
			huh.NewInput().Title("开始日期").Placeholder("2025-06-01").Value(&f.StartDate).Validate(validDate),
			huh.NewInput().Title("结束日期").Placeholder("2025-06-30").Value(&f.EndDate).Validate(validDate),
			huh.NewSelect[domain.IntensityType]().Title("强度类型").Options(enumOptions(domain.IntensityTypes)...).Value(&f.IntensityType),
			huh.NewInput().Title("强度值（小时）").Value(&f.IntensityValue).Validate(validNumber),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("大创阶段").Options(stageOptions()...).Value(&f.InnovationStage),
			huh.NewInput().Title("占比").Description("用户名:百分比，以逗号分隔，例如 alice:60,bob:40").Value(&d.Shares),
		).WithHideFunc(source(domain.SourceInnovation)),
		huh.NewGroup(
			huh.NewInput().Title("已发助教工资").Value(&f.AssistantSalaryPaid).Validate(validNumber),
		).WithHideFunc(source(domain.SourceAssistant)),
		huh.NewGroup(
			huh.NewSelect[int]().Title("关联项目").Options(projectOpts...).Value(&f.ProjectID),
		).WithHideFunc(func() bool { return f.Source != domain.SourceHorizontal || len(projectOpts) == 0 }),
		huh.NewGroup(
			huh.NewSelect[int]().Title("审核导师").Options(mentorOpts...).Value(&f.MentorReviewerID),
			huh.NewInput().Title("附件").Description("本地文件路径，可留空").Value(&d.File),
		),
	)
}

func stageOptions() []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(domain.InnovationStages))
	for _, s := range domain.InnovationStages {
		out = append(out, huh.NewOption(s.Label(), string(s)))
	}
	return out
}

// parseShares reads "user:pct" pairs. Users may be named by username or ID.
func parseShares(input string, users []domain.User) ([]validation.ShareForm, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	byName := make(map[string]int, len(users))
	for _, u := range users {
		byName[u.Username] = u.ID
	}
	var out []validation.ShareForm
	for _, part := range strings.Split(input, ",") {
		who, pct, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("share %q: expected user:percentage", part)
		}
		id, known := byName[strings.TrimSpace(who)]
		if !known {
			n, err := strconv.Atoi(strings.TrimSpace(who))
			if err != nil {
				return nil, fmt.Errorf("share %q: unknown user %q", part, who)
			}
			id = n
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return nil, fmt.Errorf("share %q: invalid percentage", part)
		}
		out = append(out, validation.ShareForm{User: id, Percentage: p})
	}
	return out, nil
}

// formatShares is the inverse of parseShares for prefilling edits.
func formatShares(shares []domain.WorkloadShare) string {
	parts := make([]string, 0, len(shares))
	for _, s := range shares {
		who := strconv.Itoa(s.User)
		if s.UserInfo != nil {
			who = s.UserInfo.Username
		}
		parts = append(parts, who+":"+domain.FormatFloat(s.Percentage))
	}
	return strings.Join(parts, ",")
}

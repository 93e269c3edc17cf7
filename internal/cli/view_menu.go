package cli

import (
	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	label string
	// allowed gates the item by role; nil means every role.
	allowed func(domain.Role) bool
	open    func(*SharedState) tea.Cmd
}

func teacherOnly(r domain.Role) bool { return r == domain.RoleTeacher }

var menuItems = []menuItem{
	{label: "我的工作量", open: func(s *SharedState) tea.Cmd { return pushView(newMyWorkloadsView(s)) }},
	{label: "提交工作量", open: func(s *SharedState) tea.Cmd {
		d := &workloadDraft{Form: validation.WorkloadForm{
			Source:        domain.SourceOther,
			WorkType:      domain.WorkRemote,
			IntensityType: domain.IntensityTotal,
		}}
		return workloadWizard(s, "提交工作量", d, s.App.Workloads.Submit)
	}},
	{label: "待审核工作量", allowed: domain.CanReviewWorkloads, open: func(s *SharedState) tea.Cmd {
		return pushView(newPendingWorkloadsView(s))
	}},
	{label: "审核记录", allowed: domain.CanReviewWorkloads, open: func(s *SharedState) tea.Cmd {
		return pushView(newReviewedWorkloadsView(s))
	}},
	{label: "全部工作量", allowed: domain.CanViewAllWorkloads, open: func(s *SharedState) tea.Cmd {
		return pushView(newAllWorkloadsView(s))
	}},
	{label: "我的项目", open: func(s *SharedState) tea.Cmd {
		return pushView(newProjectListView(s, "我的项目", s.App.Projects.ListMine, false))
	}},
	{label: "申报项目", open: func(s *SharedState) tea.Cmd {
		f := &validation.ProjectForm{ProjectStatus: domain.ProjectInResearch}
		return projectWizard(s, "申报项目", f, reviewerHint(s.User()), s.App.Projects.Declare)
	}},
	{label: "已通过项目", open: func(s *SharedState) tea.Cmd {
		return pushView(newProjectListView(s, "已通过项目", s.App.Projects.Approved, false))
	}},
	{label: "待审核项目", allowed: domain.CanReviewProjects, open: func(s *SharedState) tea.Cmd {
		return pushView(newProjectListView(s, "待审核项目", s.App.Projects.Pending, true))
	}},
	{label: "全部项目", allowed: teacherOnly, open: func(s *SharedState) tea.Cmd {
		return pushView(newProjectListView(s, "全部项目", s.App.Projects.All, false))
	}},
	{label: "公告", open: func(s *SharedState) tea.Cmd { return pushView(newAnnouncementsView(s)) }},
}

// menuView is the home screen. Its entries depend on the signed-in role.
type menuView struct {
	state  *SharedState
	cursor int
}

func newMenuView(state *SharedState) *menuView {
	return &menuView{state: state}
}

func (v *menuView) ID() ViewID    { return ViewMenu }
func (v *menuView) Title() string { return "" }

func (v *menuView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	}
}

func (v *menuView) items() []menuItem {
	role := v.state.Role()
	var out []menuItem
	for _, it := range menuItems {
		if it.allowed == nil || it.allowed(role) {
			out = append(out, it)
		}
	}
	return out
}

func (v *menuView) Init() tea.Cmd { return nil }

func (v *menuView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	items := v.items()
	switch keyMsg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(items)-1 {
			v.cursor++
		}
	case "enter":
		if v.cursor < len(items) {
			return v, items[v.cursor].open(v.state)
		}
	}
	return v, nil
}

func (v *menuView) View() string {
	out := "\n"
	for i, it := range v.items() {
		if i == v.cursor {
			out += formatter.StyleGreen.Render("▸ ") + formatter.Bold(it.label) + "\n"
		} else {
			out += "  " + it.label + "\n"
		}
	}
	return out
}

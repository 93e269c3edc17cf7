package cli

import (
	"strings"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// announcementTabs are the filter tabs, in tab order.
var announcementTabs = []string{
	domain.FilterAll,
	string(domain.AnnouncementNotice),
	string(domain.AnnouncementGeneral),
	string(domain.AnnouncementWarning),
}

func tabLabel(kind string) string {
	if kind == domain.FilterAll {
		return "全部"
	}
	return domain.AnnouncementType(kind).Label()
}

type announcementsLoadedMsg struct {
	view  *announcementsView
	kind  string
	items []domain.Announcement
	err   error
}

func (m announcementsLoadedMsg) owner() View { return m.view }

type announcementsView struct {
	state   *SharedState
	tab     int
	vp      viewport.Model
	loading bool
	err     error
}

func newAnnouncementsView(state *SharedState) *announcementsView {
	vp := viewport.New(max(state.Width, 20), state.ContentHeight()-2)
	vp.KeyMap = outputViewportKeyMap()
	return &announcementsView{state: state, vp: vp, loading: true}
}

func (v *announcementsView) ID() ViewID    { return ViewAnnouncements }
func (v *announcementsView) Title() string { return "公告" }

func (v *announcementsView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "type")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (v *announcementsView) kind() string { return announcementTabs[v.tab] }

func (v *announcementsView) Init() tea.Cmd { return v.load() }

func (v *announcementsView) load() tea.Cmd {
	dir, ctx, kind := v.state.App.Directory, v.state.ctx(), v.kind()
	return func() tea.Msg {
		items, err := dir.Announcements(ctx, kind)
		return announcementsLoadedMsg{view: v, kind: kind, items: items, err: err}
	}
}

func (v *announcementsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case announcementsLoadedMsg:
		if msg.kind != v.kind() {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.vp.SetContent(formatter.FormatAnnouncements(msg.items))
			v.vp.GotoTop()
		}
		return v, nil

	case tea.WindowSizeMsg:
		v.vp.Width = msg.Width
		v.vp.Height = v.state.ContentHeight() - 2
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			v.tab = (v.tab + 1) % len(announcementTabs)
			v.loading = true
			return v, v.load()
		case "shift+tab":
			v.tab = (v.tab + len(announcementTabs) - 1) % len(announcementTabs)
			v.loading = true
			return v, v.load()
		case "r":
			v.loading = true
			return v, v.load()
		}
	}

	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *announcementsView) View() string {
	var tabs []string
	for i, k := range announcementTabs {
		if i == v.tab {
			tabs = append(tabs, formatter.StyleHeader.Render("["+tabLabel(k)+"]"))
		} else {
			tabs = append(tabs, formatter.Dim(" "+tabLabel(k)+" "))
		}
	}
	head := "  " + strings.Join(tabs, " ") + "\n"

	switch {
	case v.err != nil:
		return head + "\n  " + formatter.StyleRed.Render(notify.Describe(v.err, v.err.Error()))
	case v.loading:
		return head + "\n  " + formatter.Dim("加载中…")
	}
	return head + "\n" + v.vp.View()
}

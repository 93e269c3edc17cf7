package cli

import (
	"context"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// detailAction is a key bound on a detail screen.
type detailAction struct {
	key  string
	help string
	run  func() tea.Cmd
}

// detailContent is a rendered record plus the actions it allows.
type detailContent struct {
	body    string
	actions []detailAction
}

type detailLoadedMsg struct {
	view    *detailView
	content detailContent
	err     error
}

func (m detailLoadedMsg) owner() View { return m.view }

// detailView shows one record in a scrollable viewport.
type detailView struct {
	state   *SharedState
	id      ViewID
	title   string
	load    func(ctx context.Context) (detailContent, error)
	vp      viewport.Model
	content detailContent
	loading bool
	err     error
}

func newDetailView(state *SharedState, id ViewID, title string, load func(context.Context) (detailContent, error)) *detailView {
	vp := viewport.New(max(state.Width, 20), state.ContentHeight())
	vp.KeyMap = outputViewportKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return &detailView{state: state, id: id, title: title, load: load, vp: vp, loading: true}
}

func (v *detailView) ID() ViewID    { return v.id }
func (v *detailView) Title() string { return v.title }

func (v *detailView) ShortHelp() []key.Binding {
	var hints []key.Binding
	for _, a := range v.content.actions {
		hints = append(hints, key.NewBinding(key.WithKeys(a.key), key.WithHelp(a.key, a.help)))
	}
	hints = append(hints, key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")))
	if v.vp.TotalLineCount() > v.vp.Height {
		hints = append(hints, key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "scroll")))
	}
	return hints
}

func (v *detailView) Init() tea.Cmd {
	return v.fetch()
}

func (v *detailView) fetch() tea.Cmd {
	load, ctx := v.load, v.state.ctx()
	return func() tea.Msg {
		content, err := load(ctx)
		return detailLoadedMsg{view: v, content: content, err: err}
	}
}

func (v *detailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.content = msg.content
			v.vp.SetContent(msg.content.body)
		}
		return v, nil

	case tea.WindowSizeMsg:
		v.vp.Width = msg.Width
		v.vp.Height = v.state.ContentHeight()
		return v, nil

	case refreshViewMsg:
		return v, v.fetch()

	case tea.KeyMsg:
		if msg.String() == "r" {
			v.loading = true
			return v, v.fetch()
		}
		for _, a := range v.content.actions {
			if msg.String() == a.key {
				return v, a.run()
			}
		}
	}

	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *detailView) View() string {
	if v.loading && v.content.body == "" {
		return "\n  " + formatter.Dim("加载中…")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render(notify.Describe(v.err, v.err.Error()))
	}
	out := v.vp.View()
	if v.vp.TotalLineCount() > v.vp.Height {
		out += "\n" + scrollIndicator(v.vp)
	}
	return out
}

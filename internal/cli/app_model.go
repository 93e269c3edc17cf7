package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appModel is the root bubbletea Model for the TUI.
// It manages a view stack, a header with the signed-in user and a status bar.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool
}

func newAppModel(app *App) appModel {
	state := &SharedState{App: app}
	return appModel{
		state:     state,
		viewStack: []View{newMenuView(state)},
	}
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
// If the stack is empty, this is a no-op.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

func (m *appModel) pop(n int) {
	for ; n > 0 && len(m.viewStack) > 1; n-- {
		m.viewStack = m.viewStack[:len(m.viewStack)-1]
	}
}

// broadcast sends msg to every view on the stack.
func (m *appModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range m.viewStack {
		updated, cmd := v.Update(msg)
		m.viewStack[i] = updated.(View)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	if v := m.activeView(); v != nil {
		return v.Init()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		return m, m.broadcast(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ownedMsg:
		for i, v := range m.viewStack {
			if v == msg.owner() {
				updated, cmd := v.Update(msg)
				m.viewStack[i] = updated.(View)
				return m, cmd
			}
		}
		return m, nil

	// Navigation messages from views
	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		var size tea.Cmd
		if m.state.Width > 0 {
			updated, cmd := msg.view.Update(tea.WindowSizeMsg{Width: m.state.Width, Height: m.state.Height})
			m.setActiveView(updated.(View))
			size = cmd
		}
		return m, tea.Batch(size, m.activeView().Init())

	case refreshViewMsg:
		// Broadcast so underlying lists reload after mutations made in
		// views above them.
		return m, m.broadcast(msg)

	case noticeMsg:
		t := msg.toast
		m.state.Notice = &t
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			t := notify.Failure(msg.toast.Title, msg.err, notify.RetryLater)
			m.state.Notice = &t
			return m, nil
		}
		t := msg.toast
		m.state.Notice = &t
		m.pop(msg.popViews)
		return m, m.broadcast(refreshViewMsg{})

	case wizardCompleteMsg:
		// Atomically pop the wizard view and execute the follow-up command.
		m.pop(1)
		return m, msg.nextCmd
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	m.state.Notice = nil

	// Forms receive every key, including q and esc.
	if v := m.activeView(); v != nil && viewCapturesInput(v) {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	switch {
	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		// Pop view stack (go back)
		m.pop(1)
		return m, nil
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}
	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("labdesk")

	// Breadcrumb from view stack
	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	breadcrumb := ""
	if len(crumbs) > 0 {
		breadcrumb = " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	header := title + breadcrumb

	if u := m.state.User(); u != nil {
		who := formatter.StyleGreen.Render(u.Username) + " " + formatter.RoleBadge(u.Role)
		gap := m.state.Width - lipgloss.Width(header) - lipgloss.Width(who)
		if gap < 2 {
			gap = 2
		}
		header += strings.Repeat(" ", gap) + who
	} else {
		header += "  " + formatter.StyleRed.Render("未登录")
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderStatusBar() string {
	var hints []string
	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}
	if len(m.viewStack) > 1 && !viewCapturesInput(m.activeView()) {
		hints = append(hints, formatter.Dim("esc: back"))
	}
	hints = append(hints, formatter.Dim("q: quit"))

	sepStyle := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	sep := sepStyle.Render(strings.Repeat("─", max(m.state.Width, 20)))

	bar := sep + "\n" + strings.Join(hints, "  ")
	if n := m.state.Notice; n != nil {
		bar = noticeLine(*n) + "\n" + bar
	}
	return bar
}

// noticeLine flattens a toast onto one line for the status area.
func noticeLine(t notify.Toast) string {
	style := formatter.StyleBlue
	icon := "•"
	switch t.Kind {
	case notify.KindSuccess:
		style, icon = formatter.StyleGreen, "✓"
	case notify.KindError:
		style, icon = formatter.StyleRed, "✗"
	}
	line := style.Bold(true).Render(icon + " " + t.Title)
	if t.Description != "" {
		line += "  " + formatter.StyleFg.Render(strings.ReplaceAll(t.Description, "\n", "；"))
	}
	return line
}

// outputViewportKeyMap returns a restricted keymap for scrolling viewports.
// Only arrow/page keys scroll, so letter keys stay free for view actions.
func outputViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up")),
		Down:         key.NewBinding(key.WithKeys("down")),
	}
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	pct := int(vp.ScrollPercent() * 100)
	return formatter.Dim(fmt.Sprintf("[%d%%]", pct))
}

// viewCapturesInput returns true if the active view has its own text input
// and should receive all key events (bypassing global keybindings like q/Esc).
func viewCapturesInput(v View) bool {
	return v != nil && v.ID() == ViewForm
}

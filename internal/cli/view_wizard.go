package cli

import (
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// wizardView wraps a huh.Form as a View on the navigation stack.
// When the form completes, it sends a wizardCompleteMsg carrying the
// done callback's command.
type wizardView struct {
	state    *SharedState
	form     *huh.Form
	titleStr string
	done     func() tea.Cmd
}

func newWizardView(state *SharedState, title string, form *huh.Form, done func() tea.Cmd) *wizardView {
	return &wizardView{
		state:    state,
		form:     form,
		titleStr: title,
		done:     done,
	}
}

func (v *wizardView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *wizardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Escape cancels the wizard.
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return wizardCompleteMsg{nextCmd: showNotice(notify.Info("已取消", ""))}
		}
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateCompleted:
		var doneCmd tea.Cmd
		if v.done != nil {
			doneCmd = v.done()
		}
		return v, func() tea.Msg { return wizardCompleteMsg{nextCmd: doneCmd} }
	case huh.StateAborted:
		return v, func() tea.Msg {
			return wizardCompleteMsg{nextCmd: showNotice(notify.Info("已取消", ""))}
		}
	}

	return v, cmd
}

func (v *wizardView) View() string {
	return v.form.View()
}

func (v *wizardView) ID() ViewID    { return ViewForm }
func (v *wizardView) Title() string { return v.titleStr }
func (v *wizardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// confirmThen pushes a yes/no wizard and runs action only when confirmed.
func confirmThen(state *SharedState, title, prompt string, action func() tea.Msg) tea.Cmd {
	var confirmed bool
	form := newForm(huh.NewGroup(
		huh.NewConfirm().Title(prompt).Affirmative("确定").Negative("取消").Value(&confirmed),
	))
	return pushView(newWizardView(state, title, form, func() tea.Cmd {
		if !confirmed {
			return showNotice(notify.Info("已取消", ""))
		}
		return action
	}))
}

package cli

import (
	"github.com/alexanderramin/labdesk/internal/notify"
	tea "github.com/charmbracelet/bubbletea"
)

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// refreshViewMsg asks every view on the stack to reload its data.
type refreshViewMsg struct{}

// noticeMsg shows a toast in the status area until the next key press.
type noticeMsg struct {
	toast notify.Toast
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// actionDoneMsg reports the outcome of a mutation. On success the appModel
// pops popViews views and refreshes the stack.
type actionDoneMsg struct {
	toast    notify.Toast
	err      error
	popViews int
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func showNotice(t notify.Toast) tea.Cmd {
	return func() tea.Msg { return noticeMsg{toast: t} }
}

package cli

import (
	"testing"
	"time"

	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/teatest"
)

// TestDriver wraps teatest.Driver with labdesk-specific inspection methods.
// It provides access to appModel internals (view stack, shared state,
// notice) that the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver creates a TestDriver from a test App.
// Commands hit the fake backend over HTTP, so the per-Cmd timeout is raised
// above the driver default.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	m := newAppModel(app)
	d := teatest.New(t, m, teatest.WithSize(120, 40), teatest.WithCmdTimeout(400*time.Millisecond))
	d.DrainInit()

	return &TestDriver{Driver: d}
}

// ── High-level helpers ───────────────────────────────────────────────────────

// OpenMenu moves the menu cursor to label and presses Enter.
func (d *TestDriver) OpenMenu(label string) {
	d.T.Helper()
	menu, ok := d.ActiveView().(*menuView)
	if !ok {
		d.T.Fatalf("OpenMenu(%q): active view is not the menu", label)
	}
	for i, it := range menu.items() {
		if it.label == label {
			for ; menu.cursor < i; d.PressDown() {
			}
			for ; menu.cursor > i; d.PressUp() {
			}
			d.PressEnter()
			return
		}
	}
	d.T.Fatalf("OpenMenu(%q): no such menu item", label)
}

// ── labdesk-specific inspection ──────────────────────────────────────────────

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveView returns the top view on the stack.
func (d *TestDriver) ActiveView() View {
	m := d.appModel()
	return m.activeView()
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	v := d.ActiveView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ActiveViewTitle returns the Title() of the top view on the stack.
func (d *TestDriver) ActiveViewTitle() string {
	v := d.ActiveView()
	if v == nil {
		return ""
	}
	return v.Title()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// ViewStackIDs returns the ViewIDs of all views on the stack, bottom to top.
func (d *TestDriver) ViewStackIDs() []ViewID {
	m := d.appModel()
	ids := make([]ViewID, len(m.viewStack))
	for i, v := range m.viewStack {
		ids[i] = v.ID()
	}
	return ids
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// Notice returns the toast currently shown in the status area, if any.
func (d *TestDriver) Notice() *notify.Toast {
	return d.State().Notice
}

// IsQuitting returns whether the app has signaled a quit.
// Checks model.quitting (q/Ctrl+C) and the driver's Quitting flag
// (tea.QuitMsg seen while draining).
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

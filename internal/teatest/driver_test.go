package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type loadedMsg struct{ n int }

// counterModel loads a value through a Cmd that takes delay to return.
type counterModel struct {
	delay  time.Duration
	loaded []int
	keys   string
}

func (m counterModel) load(n int) tea.Cmd {
	delay := m.delay
	return func() tea.Msg {
		time.Sleep(delay)
		return loadedMsg{n: n}
	}
}

func (m counterModel) Init() tea.Cmd { return m.load(1) }

func (m counterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = append(m.loaded, msg.n)
		if msg.n < 3 {
			return m, tea.Batch(m.load(msg.n+1), nil)
		}
	case tea.KeyMsg:
		m.keys += msg.String() + " "
		if msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m counterModel) View() string { return "" }

func TestDriver_DrainsChainedCmds(t *testing.T) {
	d := New(t, counterModel{})
	d.DrainInit()
	assert.Equal(t, []int{1, 2, 3}, d.Model.(counterModel).loaded)
}

func TestDriver_SkipsSlowCmds(t *testing.T) {
	d := New(t, counterModel{delay: 50 * time.Millisecond})
	d.DrainInit()
	assert.Empty(t, d.Model.(counterModel).loaded)
}

func TestDriver_WithCmdTimeout(t *testing.T) {
	d := New(t, counterModel{delay: 50 * time.Millisecond}, WithCmdTimeout(time.Second))
	d.DrainInit()
	assert.Equal(t, []int{1, 2, 3}, d.Model.(counterModel).loaded)
}

func TestDriver_KeysAndQuit(t *testing.T) {
	d := New(t, counterModel{})
	d.PressTab()
	d.PressShiftTab()
	d.Type("ab")
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.PressKey('z')
	assert.Equal(t, "tab shift+tab a b q ", d.Model.(counterModel).keys)
}

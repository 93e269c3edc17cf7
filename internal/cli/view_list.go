package cli

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// listSpec describes one list screen.
type listSpec[T any] struct {
	id    ViewID
	title string
	// fetch loads page n (1-based). Unpaged sources return everything as page 1.
	fetch func(ctx context.Context, page int) (domain.Page[T], error)
	// row renders one item without the cursor column.
	row func(item T) string
	// key identifies an item across reloads, for new-item detection.
	key func(item T) int
	// open returns the command run on enter.
	open func(item T) tea.Cmd
	// poll reloads every Settings.PollInterval and announces new items.
	poll bool
	// pollNotice builds the toast shown when a poll finds n new items.
	pollNotice func(n int) notify.Toast
	empty      string
	// filters are keys that change what fetch returns. Each press goes
	// back to page 1.
	filters []listFilter
	// filterLine renders the active filter under the rows.
	filterLine func() string
}

// listFilter binds a key to a change of the list's filter.
type listFilter struct {
	key  string
	help string
	next func()
}

// unpaged adapts a plain list call to listSpec.fetch.
func unpaged[T any](fn func(ctx context.Context) ([]T, error)) func(context.Context, int) (domain.Page[T], error) {
	return func(ctx context.Context, _ int) (domain.Page[T], error) {
		items, err := fn(ctx)
		if err != nil {
			return domain.Page[T]{}, err
		}
		return domain.Page[T]{Items: items, Number: 1, TotalPages: 1, TotalItems: len(items)}, nil
	}
}

type listLoadedMsg[T any] struct {
	view   *listView[T]
	page   domain.Page[T]
	err    error
	polled bool
}

func (m listLoadedMsg[T]) owner() View { return m.view }

type pollTickMsg[T any] struct {
	view *listView[T]
	gen  int
}

func (m pollTickMsg[T]) owner() View { return m.view }

// listView shows a navigable, optionally paged and polled list.
type listView[T any] struct {
	state   *SharedState
	spec    listSpec[T]
	page    domain.Page[T]
	pageNum int
	cursor  int
	loading bool
	err     error

	seen    map[int]bool
	pollGen int
}

func newListView[T any](state *SharedState, spec listSpec[T]) *listView[T] {
	return &listView[T]{state: state, spec: spec, pageNum: 1, loading: true}
}

func (v *listView[T]) ID() ViewID    { return v.spec.id }
func (v *listView[T]) Title() string { return v.spec.title }

func (v *listView[T]) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	if v.page.TotalPages > 1 {
		hints = append(hints, key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "page")))
	}
	for _, f := range v.spec.filters {
		hints = append(hints, key.NewBinding(key.WithKeys(f.key), key.WithHelp(f.key, f.help)))
	}
	return hints
}

func (v *listView[T]) Init() tea.Cmd {
	return tea.Batch(v.load(false), v.schedulePoll())
}

func (v *listView[T]) load(polled bool) tea.Cmd {
	fetch, page := v.spec.fetch, v.pageNum
	ctx := v.state.ctx()
	return func() tea.Msg {
		p, err := fetch(ctx, page)
		return listLoadedMsg[T]{view: v, page: p, err: err, polled: polled}
	}
}

func (v *listView[T]) interval() time.Duration {
	return v.state.App.Settings.PollInterval
}

// schedulePoll starts a new tick generation. Ticks from older generations
// are dropped, so a manual refresh does not double the polling rate.
func (v *listView[T]) schedulePoll() tea.Cmd {
	if !v.spec.poll || v.interval() <= 0 {
		return nil
	}
	v.pollGen++
	gen := v.pollGen
	return tea.Tick(v.interval(), func(time.Time) tea.Msg {
		return pollTickMsg[T]{view: v, gen: gen}
	})
}

func (v *listView[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg[T]:
		return v, v.loaded(msg)

	case pollTickMsg[T]:
		if msg.gen != v.pollGen {
			return v, nil
		}
		return v, tea.Batch(v.load(true), v.schedulePoll())

	case refreshViewMsg:
		v.loading = true
		return v, v.load(false)

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *listView[T]) loaded(msg listLoadedMsg[T]) tea.Cmd {
	v.loading = false
	if msg.err != nil {
		if msg.polled {
			// Keep showing the last good page; the next tick retries.
			return nil
		}
		v.err = msg.err
		return nil
	}
	v.err = nil
	v.page = msg.page
	v.pageNum = max(msg.page.Number, 1)
	if v.cursor >= len(v.page.Items) {
		v.cursor = max(len(v.page.Items)-1, 0)
	}

	if !v.spec.poll || v.spec.key == nil {
		return nil
	}
	fresh := 0
	first := v.seen == nil
	if first {
		v.seen = make(map[int]bool, len(v.page.Items))
	}
	for _, item := range v.page.Items {
		k := v.spec.key(item)
		if !v.seen[k] {
			v.seen[k] = true
			fresh++
		}
	}
	if first || fresh == 0 || v.spec.pollNotice == nil {
		return nil
	}
	return showNotice(v.spec.pollNotice(fresh))
}

func (v *listView[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	for _, f := range v.spec.filters {
		if msg.String() == f.key {
			f.next()
			v.pageNum = 1
			v.cursor = 0
			v.loading = true
			return v.load(false)
		}
	}

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.page.Items)-1 {
			v.cursor++
		}
	case "left", "h":
		if v.page.HasPrev() {
			v.pageNum--
			v.cursor = 0
			v.loading = true
			return v.load(false)
		}
	case "right", "l":
		if v.page.HasNext() {
			v.pageNum++
			v.cursor = 0
			v.loading = true
			return v.load(false)
		}
	case "r":
		v.loading = true
		return v.load(false)
	case "enter":
		if v.cursor < len(v.page.Items) && v.spec.open != nil {
			return v.spec.open(v.page.Items[v.cursor])
		}
	}
	return nil
}

func (v *listView[T]) View() string {
	if v.loading && len(v.page.Items) == 0 {
		return "\n  " + formatter.Dim("加载中…")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render(notify.Describe(v.err, v.err.Error()))
	}

	var b strings.Builder
	b.WriteString("\n")
	if len(v.page.Items) == 0 {
		empty := v.spec.empty
		if empty == "" {
			empty = formatter.EmptyText
		}
		b.WriteString("  " + formatter.Dim(empty) + "\n")
		v.writeFilterLine(&b)
		return b.String()
	}

	for i, item := range v.page.Items {
		cursor := "  "
		line := v.spec.row(item)
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	if v.page.TotalPages > 1 {
		b.WriteString("\n  " + formatter.PageFooter(v.page.Number, v.page.TotalPages, v.page.TotalItems) + "\n")
	}
	v.writeFilterLine(&b)
	return b.String()
}

func (v *listView[T]) writeFilterLine(b *strings.Builder) {
	if v.spec.filterLine != nil {
		b.WriteString("\n  " + formatter.Dim(v.spec.filterLine()) + "\n")
	}
}

// cell pads or truncates s to width terminal cells.
func cell(s string, width int) string {
	s = formatter.Truncate(s, width)
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

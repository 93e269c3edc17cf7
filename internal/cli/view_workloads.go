package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/alexanderramin/labdesk/internal/validation"
	tea "github.com/charmbracelet/bubbletea"
)

func workloadRow(w domain.Workload) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		formatter.StyleGreen.Render(cell(fmt.Sprintf("#%d", w.ID), 6)),
		cell(w.Name, 24),
		cell(w.Source.Label(), 8),
		cell(formatter.WorkloadStatusPill(w.Status), 12),
		formatter.Dim(formatter.DateRange(w.StartDate, w.EndDate)),
	)
}

func workloadQueueRow(w domain.Workload) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		formatter.StyleGreen.Render(cell(fmt.Sprintf("#%d", w.ID), 6)),
		cell(w.Name, 24),
		cell(w.Submitter.Username, 12),
		cell(w.Source.Label(), 8),
		formatter.Dim(formatter.Intensity(&w)),
	)
}

func workloadKey(w domain.Workload) int { return w.ID }

func newMyWorkloadsView(state *SharedState) View {
	return newListView(state, listSpec[domain.Workload]{
		id:    ViewWorkloadList,
		title: "我的工作量",
		fetch: unpaged(state.App.Workloads.ListMine),
		row:   workloadRow,
		open:  func(w domain.Workload) tea.Cmd { return pushView(newWorkloadDetailView(state, w.ID, false)) },
		empty: "还没有提交过工作量",
	})
}

// newPendingWorkloadsView is the reviewer's queue. It polls so new
// submissions show up without a manual refresh.
func newPendingWorkloadsView(state *SharedState) View {
	return newListView(state, listSpec[domain.Workload]{
		id:    ViewWorkloadList,
		title: "待审核工作量",
		fetch: unpaged(state.App.Workloads.Pending),
		row:   workloadQueueRow,
		key:   workloadKey,
		open:  func(w domain.Workload) tea.Cmd { return pushView(newWorkloadDetailView(state, w.ID, true)) },
		poll:  true,
		pollNotice: func(n int) notify.Toast {
			return notify.Info("新的待审核工作量", fmt.Sprintf("有 %d 条工作量等待您审核", n))
		},
		empty: "没有待审核的工作量",
	})
}

func newReviewedWorkloadsView(state *SharedState) View {
	return newListView(state, listSpec[domain.Workload]{
		id:    ViewWorkloadList,
		title: "审核记录",
		fetch: unpaged(state.App.Workloads.History),
		row:   workloadRow,
		open:  func(w domain.Workload) tea.Cmd { return pushView(newWorkloadDetailView(state, w.ID, false)) },
	})
}

// workloadFilterState is the filter of the all-workloads screen. Keys change
// it while loads read it from their own goroutine.
type workloadFilterState struct {
	mu         sync.Mutex
	filter     domain.WorkloadFilter
	submitters []string
}

func (s *workloadFilterState) current() domain.WorkloadFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *workloadFilterState) setSubmitters(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitters = names
}

func (s *workloadFilterState) nextSubmitter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Submitter = nextFilterValue(s.filter.Submitter, s.submitters)
}

func (s *workloadFilterState) nextSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Source = nextFilterValue(s.filter.Source, domain.WorkloadSources)
}

func (s *workloadFilterState) nextStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Status = nextFilterValue(s.filter.Status, domain.WorkloadStatuses)
}

func (s *workloadFilterState) summary() string {
	if f := formatter.DescribeFilter(s.current()); f != "" {
		return "筛选: " + f
	}
	return "筛选: 全部"
}

// nextFilterValue steps from current to the following option. "all" comes
// after the last option, and an unknown current value restarts the cycle.
func nextFilterValue[S ~string](current string, options []S) string {
	if current == "" || current == domain.FilterAll {
		if len(options) == 0 {
			return domain.FilterAll
		}
		return string(options[0])
	}
	for i, o := range options {
		if string(o) != current {
			continue
		}
		if i+1 < len(options) {
			return string(options[i+1])
		}
		return domain.FilterAll
	}
	return nextFilterValue(domain.FilterAll, options)
}

func newAllWorkloadsView(state *SharedState) View {
	app := state.App
	fs := &workloadFilterState{filter: domain.WorkloadFilter{
		Submitter: domain.FilterAll, Source: domain.FilterAll, Status: domain.FilterAll,
	}}
	return newListView(state, listSpec[domain.Workload]{
		id:    ViewWorkloadList,
		title: "全部工作量",
		fetch: func(ctx context.Context, page int) (domain.Page[domain.Workload], error) {
			listing, err := app.Workloads.All(ctx, service.AllWorkloadsQuery{
				Filter:   fs.current(),
				Page:     page,
				PageSize: app.Settings.PageSize,
			})
			if err != nil {
				return domain.Page[domain.Workload]{}, err
			}
			fs.setSubmitters(listing.Submitters)
			return listing.Page, nil
		},
		row:   workloadQueueRow,
		open:  func(w domain.Workload) tea.Cmd { return pushView(newWorkloadDetailView(state, w.ID, false)) },
		empty: "没有符合条件的工作量",
		filters: []listFilter{
			{key: "u", help: "submitter", next: fs.nextSubmitter},
			{key: "o", help: "source", next: fs.nextSource},
			{key: "t", help: "status", next: fs.nextStatus},
		},
		filterLine: fs.summary,
	})
}

// newWorkloadDetailView shows one workload. reviewable enables the review
// action for workloads opened from the review queue.
func newWorkloadDetailView(state *SharedState, id int, reviewable bool) View {
	app := state.App
	title := fmt.Sprintf("工作量 #%d", id)
	return newDetailView(state, ViewWorkloadDetail, title, func(ctx context.Context) (detailContent, error) {
		w, err := app.Workloads.Get(ctx, id)
		if err != nil {
			return detailContent{}, err
		}
		content := detailContent{body: formatter.FormatWorkloadDetail(w)}
		me := state.User()
		if reviewable && me != nil && domain.CanReviewWorkloads(me.Role) {
			content.actions = append(content.actions, detailAction{key: "a", help: "review", run: func() tea.Cmd {
				return reviewWorkloadWizard(state, w)
			}})
		}
		if me != nil && w.Submitter.ID == me.ID && w.Editable() {
			content.actions = append(content.actions,
				detailAction{key: "e", help: "edit", run: func() tea.Cmd {
					return workloadWizard(state, "修改工作量", workloadDraftFrom(w), func(ctx context.Context, f validation.WorkloadForm) (*domain.Workload, error) {
						return app.Workloads.Edit(ctx, w.ID, f)
					})
				}},
				detailAction{key: "d", help: "delete", run: func() tea.Cmd {
					return confirmThen(state, "删除工作量", fmt.Sprintf("确定删除工作量 #%d 吗？", w.ID), func() tea.Msg {
						err := app.Workloads.Delete(state.ctx(), w.ID)
						return actionDoneMsg{toast: notify.Success("工作量已删除", w.Name), err: err, popViews: 1}
					})
				}},
			)
		}
		return content, nil
	})
}

func reviewWorkloadWizard(state *SharedState, w *domain.Workload) tea.Cmd {
	form := &validation.ReviewForm{Decision: domain.DecisionApproved}
	return pushView(newWizardView(state, "审核", reviewForm(form), func() tea.Cmd {
		return func() tea.Msg {
			updated, err := state.App.Workloads.Review(state.ctx(), w.ID, *form)
			if err != nil {
				return actionDoneMsg{toast: notify.Toast{Title: "审核失败"}, err: err}
			}
			return actionDoneMsg{
				toast:    notify.Success("审核完成", fmt.Sprintf("%s · %s", updated.Name, updated.Status.Label())),
				popViews: 1,
			}
		}
	}))
}

// workloadWizard loads the mentor and project choices, then pushes the
// workload form. save runs when the form completes.
func workloadWizard(state *SharedState, title string, d *workloadDraft, save func(context.Context, validation.WorkloadForm) (*domain.Workload, error)) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx := state.ctx()
		mentors, err := app.Workloads.Mentors(ctx)
		if err != nil {
			return noticeMsg{toast: notify.Failure("加载导师失败", err, notify.RetryLater)}
		}
		projects, err := app.Workloads.ProjectOptions(ctx)
		if err != nil {
			return noticeMsg{toast: notify.Failure("加载项目失败", err, notify.RetryLater)}
		}
		form := workloadForm(d, mentors, projects)
		return pushViewMsg{view: newWizardView(state, title, form, func() tea.Cmd {
			return func() tea.Msg {
				if err := d.finish(ctx, app); err != nil {
					return actionDoneMsg{toast: notify.Toast{Title: title + "失败"}, err: err}
				}
				w, err := save(ctx, d.Form)
				if err != nil {
					return actionDoneMsg{toast: notify.Toast{Title: title + "失败"}, err: err}
				}
				return actionDoneMsg{toast: notify.Success(title+"成功", fmt.Sprintf("#%d %s · %s", w.ID, w.Name, w.Status.Label()))}
			}
		})}
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/validation"
	tea "github.com/charmbracelet/bubbletea"
)

func projectRow(p domain.Project) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		formatter.StyleGreen.Render(cell(fmt.Sprintf("#%d", p.ID), 6)),
		cell(p.Name, 24),
		cell(p.ProjectStatus.Label(), 6),
		cell(formatter.ReviewStatusPill(p.ReviewStatus), 10),
		formatter.Dim(p.SubmitterName()),
	)
}

func projectKey(p domain.Project) int { return p.ID }

// newProjectListView lists projects from fetch. reviewable marks the
// teacher's review queue, which polls and offers the review action.
func newProjectListView(state *SharedState, title string, fetch func(context.Context) ([]domain.Project, error), reviewable bool) View {
	spec := listSpec[domain.Project]{
		id:    ViewProjectList,
		title: title,
		fetch: unpaged(fetch),
		row:   projectRow,
		open: func(p domain.Project) tea.Cmd {
			return pushView(newProjectDetailView(state, p.ID, reviewable))
		},
	}
	if reviewable {
		spec.key = projectKey
		spec.poll = true
		spec.pollNotice = func(n int) notify.Toast {
			return notify.Info("新的待审核项目", fmt.Sprintf("有 %d 个项目等待您审核", n))
		}
		spec.empty = "没有待审核的项目"
	}
	return newListView(state, spec)
}

func newProjectDetailView(state *SharedState, id int, reviewable bool) View {
	app := state.App
	return newDetailView(state, ViewProjectDetail, fmt.Sprintf("项目 #%d", id), func(ctx context.Context) (detailContent, error) {
		p, err := app.Projects.Get(ctx, id)
		if err != nil {
			return detailContent{}, err
		}
		content := detailContent{body: formatter.FormatProjectDetail(p)}
		me := state.User()
		if me == nil {
			return content, nil
		}
		if reviewable && domain.CanReviewProjects(me.Role) {
			content.actions = append(content.actions, detailAction{key: "a", help: "review", run: func() tea.Cmd {
				return reviewProjectWizard(state, p)
			}})
		}
		mine := p.Submitter != nil && p.Submitter.ID == me.ID
		if (mine || me.Role == domain.RoleTeacher) && p.Editable(me.Role) {
			content.actions = append(content.actions,
				detailAction{key: "e", help: "edit", run: func() tea.Cmd {
					return projectWizard(state, "修改项目", projectFormFrom(p), "", func(ctx context.Context, f validation.ProjectForm) (*domain.Project, error) {
						return app.Projects.Edit(ctx, p.ID, f)
					})
				}},
				detailAction{key: "d", help: "delete", run: func() tea.Cmd {
					return confirmThen(state, "删除项目", fmt.Sprintf("确定删除项目 #%d 吗？", p.ID), func() tea.Msg {
						err := app.Projects.Delete(state.ctx(), p.ID)
						return actionDoneMsg{toast: notify.Success("项目已删除", p.Name), err: err, popViews: 1}
					})
				}},
			)
		}
		return content, nil
	})
}

func projectFormFrom(p *domain.Project) *validation.ProjectForm {
	f := &validation.ProjectForm{
		Name:          p.Name,
		ProjectStatus: p.ProjectStatus,
		StartDate:     p.StartDate.String(),
	}
	return f
}

func reviewProjectWizard(state *SharedState, p *domain.Project) tea.Cmd {
	form := &validation.ReviewForm{Decision: domain.DecisionApproved}
	return pushView(newWizardView(state, "审核", reviewForm(form), func() tea.Cmd {
		return func() tea.Msg {
			updated, err := state.App.Projects.Review(state.ctx(), p.ID, *form)
			if err != nil {
				return actionDoneMsg{toast: notify.Toast{Title: "审核失败"}, err: err}
			}
			return actionDoneMsg{
				toast:    notify.Success("审核完成", fmt.Sprintf("%s · %s", updated.Name, updated.ReviewStatus.Label())),
				popViews: 1,
			}
		}
	}))
}

func projectWizard(state *SharedState, title string, f *validation.ProjectForm, hint string, save func(context.Context, validation.ProjectForm) (*domain.Project, error)) tea.Cmd {
	return pushView(newWizardView(state, title, projectForm(f, hint), func() tea.Cmd {
		return func() tea.Msg {
			p, err := save(state.ctx(), *f)
			if err != nil {
				return actionDoneMsg{toast: notify.Toast{Title: title + "失败"}, err: err}
			}
			return actionDoneMsg{toast: notify.Success(title+"成功", fmt.Sprintf("#%d %s · %s", p.ID, p.Name, p.ReviewStatus.Label()))}
		}
	}))
}

package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"proj"},
		Short:   "Declare and review projects",
	}

	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectDeclareCmd(app),
		newProjectEditCmd(app),
		newProjectDeleteCmd(app),
		newProjectReviewCmd(app),
		projectListing(app, "pending", "Projects waiting for your review (teachers)", service.ProjectService.Pending),
		projectListing(app, "reviewed", "Projects you have reviewed (teachers)", service.ProjectService.Reviewed),
		projectListing(app, "approved", "Approved projects", service.ProjectService.Approved),
		projectListing(app, "all", "Every declared project (teachers)", service.ProjectService.All),
		projectListing(app, "declared", "Projects you declared", service.ProjectService.Declared),
		projectListing(app, "related", "Projects linked to your workloads", service.ProjectService.Related),
	)

	return cmd
}

// projectListing builds a subcommand that prints one project list.
func projectListing(app *App, use, short string, fetch func(service.ProjectService, context.Context) ([]domain.Project, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := fetch(app.Projects, cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatProjectList(items))
			return nil
		},
	}
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the projects you submitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Projects.ListMine(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatProjectList(items))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatProjectDetail(p))
			return nil
		},
	}
}

type projectFlags struct {
	name, status, start, reviewer string
}

func (f *projectFlags) register(cmd *cobra.Command, withReviewer bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Project name")
	cmd.Flags().StringVar(&f.status, "status", "", "pre_research or in_research")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	if withReviewer {
		cmd.Flags().StringVar(&f.reviewer, "reviewer", "", "Reviewing teacher's username (students only)")
	}
}

func (f *projectFlags) apply(cmd *cobra.Command, form *validation.ProjectForm) {
	changed := cmd.Flags().Changed
	if changed("name") {
		form.Name = f.name
	}
	if changed("status") {
		form.ProjectStatus = domain.ProjectStatus(f.status)
	}
	if changed("start") {
		form.StartDate = f.start
	}
	if changed("reviewer") {
		form.TeacherReviewer = f.reviewer
	}
}

func newProjectDeclareCmd(app *App) *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:     "declare",
		Aliases: []string{"add"},
		Short:   "Declare a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validation.ProjectForm{ProjectStatus: domain.ProjectInResearch}
			flags.apply(cmd, &form)
			if !cmd.Flags().Changed("name") && app.interactive() {
				if err := projectForm(&form, reviewerHint(app.Session.Snapshot().User)).Run(); err != nil {
					return err
				}
			}

			p, err := app.Projects.Declare(cmd.Context(), form)
			if err != nil {
				return app.notifier(cmd).Failure("申报失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("项目已申报", fmt.Sprintf("#%d %s · %s", p.ID, p.Name, p.ReviewStatus.Label()))
			return nil
		},
	}

	flags.register(cmd, true)

	return cmd
}

func newProjectEditCmd(app *App) *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.Projects.Get(ctx, id)
			if err != nil {
				return err
			}

			form := validation.ProjectForm{
				Name:          current.Name,
				ProjectStatus: current.ProjectStatus,
				StartDate:     current.StartDate.String(),
			}
			flags.apply(cmd, &form)
			if cmd.Flags().NFlag() == 0 && app.interactive() {
				if err := projectForm(&form, "").Run(); err != nil {
					return err
				}
			}

			p, err := app.Projects.Edit(ctx, id, form)
			if err != nil {
				return app.notifier(cmd).Failure("修改失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("项目已更新", fmt.Sprintf("#%d %s · %s", p.ID, p.Name, p.ReviewStatus.Label()))
			return nil
		},
	}

	flags.register(cmd, false)

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				ok, err := confirm(fmt.Sprintf("确定删除项目 #%d 吗？", id))
				if err != nil || !ok {
					return err
				}
			}
			if err := app.Projects.Delete(cmd.Context(), id); err != nil {
				return app.notifier(cmd).Failure("删除失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("项目已删除", fmt.Sprintf("#%d", id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newProjectReviewCmd(app *App) *cobra.Command {
	var form validation.ReviewForm
	var decision string

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Approve or reject a project (teachers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			form.Decision = domain.Decision(decision)
			if decision == "" && app.interactive() {
				form.Decision = domain.DecisionApproved
				if err := reviewForm(&form).Run(); err != nil {
					return err
				}
			}

			p, err := app.Projects.Review(cmd.Context(), id, form)
			if err != nil {
				return app.notifier(cmd).Failure("审核失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("审核完成", fmt.Sprintf("#%d %s · %s", p.ID, p.Name, p.ReviewStatus.Label()))
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "approved or rejected")
	cmd.Flags().StringVarP(&form.Comment, "comment", "m", "", "Review comment")

	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", arg)
	}
	return id, nil
}

func newWorkloadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workload",
		Aliases: []string{"wl"},
		Short:   "Declare and review workloads",
	}

	cmd.AddCommand(
		newWorkloadListCmd(app),
		newWorkloadShowCmd(app),
		newWorkloadSubmitCmd(app),
		newWorkloadEditCmd(app),
		newWorkloadDeleteCmd(app),
		newWorkloadPendingCmd(app),
		newWorkloadHistoryCmd(app),
		newWorkloadAllCmd(app),
		newWorkloadReviewCmd(app),
		newWorkloadExportCmd(app),
	)

	return cmd
}

func newWorkloadListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the workloads you submitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Workloads.ListMine(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatWorkloadList(items))
			return nil
		},
	}
}

func newWorkloadShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one workload with its review trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			w, err := app.Workloads.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatWorkloadDetail(w))
			return nil
		},
	}
}

// workloadFlags are the flags shared by submit and edit.
type workloadFlags struct {
	name, content, source, workType string
	start, end                      string
	intensityType, intensity        string
	stage, salary                   string
	mentor, project, file           string
	shares                          []string
}

func (f *workloadFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Workload name")
	fl.StringVar(&f.content, "content", "", "What was done")
	fl.StringVar(&f.source, "source", "", "horizontal, innovation, hardware, assessment, documentation, assistant or other")
	fl.StringVar(&f.workType, "type", "", "remote or onsite")
	fl.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	fl.StringVar(&f.end, "end", "", "End date (YYYY-MM-DD)")
	fl.StringVar(&f.intensityType, "intensity-type", "", "total, daily or weekly")
	fl.StringVar(&f.intensity, "hours", "", "Intensity value in hours")
	fl.StringVar(&f.stage, "stage", "", "Innovation stage: before or after")
	fl.StringVar(&f.salary, "salary", "", "Assistant salary already paid")
	fl.StringVar(&f.mentor, "mentor", "", "Reviewing mentor, by username or ID")
	fl.StringVar(&f.project, "project", "", "Related approved project, by name or ID")
	fl.StringVar(&f.file, "file", "", "Attachment to upload")
	fl.StringArrayVar(&f.shares, "share", nil, "Participant share as user:percentage (repeatable)")
}

// apply copies the flags the user set onto d. Unset flags keep d's values.
func (f *workloadFlags) apply(cmd *cobra.Command, d *workloadDraft) {
	changed := cmd.Flags().Changed
	set := func(flag string, dst *string, v string) {
		if changed(flag) {
			*dst = v
		}
	}
	form := &d.Form
	set("name", &form.Name, f.name)
	set("content", &form.Content, f.content)
	if changed("source") {
		form.Source = domain.WorkloadSource(f.source)
	}
	if changed("type") {
		form.WorkType = domain.WorkType(f.workType)
	}
	set("start", &form.StartDate, f.start)
	set("end", &form.EndDate, f.end)
	if changed("intensity-type") {
		form.IntensityType = domain.IntensityType(f.intensityType)
	}
	set("hours", &form.IntensityValue, f.intensity)
	set("stage", &form.InnovationStage, f.stage)
	set("salary", &form.AssistantSalaryPaid, f.salary)
	set("file", &d.File, f.file)
	if changed("share") {
		d.Shares = strings.Join(f.shares, ",")
	}
}

// resolveRefs fills mentor and project IDs from their flags.
func (f *workloadFlags) resolveRefs(ctx context.Context, cmd *cobra.Command, app *App, form *validation.WorkloadForm) error {
	if cmd.Flags().Changed("mentor") {
		id, err := resolveMentor(ctx, app, f.mentor)
		if err != nil {
			return err
		}
		form.MentorReviewerID = id
	}
	if cmd.Flags().Changed("project") {
		id, err := resolveProject(ctx, app, f.project)
		if err != nil {
			return err
		}
		form.ProjectID = id
	}
	return nil
}

func resolveMentor(ctx context.Context, app *App, input string) (int, error) {
	if input == "" {
		return 0, nil
	}
	mentors, err := app.Workloads.Mentors(ctx)
	if err != nil {
		return 0, err
	}
	for _, m := range mentors {
		if m.Username == input || strconv.Itoa(m.ID) == input {
			return m.ID, nil
		}
	}
	return 0, fmt.Errorf("mentor not found: %q", input)
}

func resolveProject(ctx context.Context, app *App, input string) (int, error) {
	if input == "" {
		return 0, nil
	}
	projects, err := app.Workloads.ProjectOptions(ctx)
	if err != nil {
		return 0, err
	}
	var matches []int
	for _, p := range projects {
		if strconv.Itoa(p.ID) == input || p.Name == input {
			return p.ID, nil
		}
		if strings.Contains(p.Name, input) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("approved project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return 0, fmt.Errorf("project name %q is ambiguous (%d matches)", input, len(matches))
	}
}

// finish turns the draft's free-text parts into form fields.
func (d *workloadDraft) finish(ctx context.Context, app *App) error {
	if d.Form.Source == domain.SourceInnovation && strings.TrimSpace(d.Shares) != "" {
		users, err := app.Directory.Users(ctx, "")
		if err != nil {
			return err
		}
		shares, err := parseShares(d.Shares, users)
		if err != nil {
			return err
		}
		d.Form.Shares = shares
	}
	if d.Form.Source != domain.SourceInnovation {
		d.Form.Shares = nil
	}
	if strings.TrimSpace(d.File) != "" {
		att, err := validation.AttachmentFromFile(strings.TrimSpace(d.File))
		if err != nil {
			return err
		}
		d.Form.Attachment = att
	}
	return nil
}

func (a *App) runWorkloadForm(ctx context.Context, d *workloadDraft) error {
	mentors, err := a.Workloads.Mentors(ctx)
	if err != nil {
		return err
	}
	projects, err := a.Workloads.ProjectOptions(ctx)
	if err != nil {
		return err
	}
	return workloadForm(d, mentors, projects).Run()
}

func newWorkloadSubmitCmd(app *App) *cobra.Command {
	var flags workloadFlags

	cmd := &cobra.Command{
		Use:     "submit",
		Aliases: []string{"add"},
		Short:   "Declare a new workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := &workloadDraft{Form: validation.WorkloadForm{
				Source:        domain.SourceOther,
				WorkType:      domain.WorkRemote,
				IntensityType: domain.IntensityTotal,
			}}
			flags.apply(cmd, d)
			if err := flags.resolveRefs(ctx, cmd, app, &d.Form); err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") && app.interactive() {
				if err := app.runWorkloadForm(ctx, d); err != nil {
					return err
				}
			}
			if err := d.finish(ctx, app); err != nil {
				return err
			}

			w, err := app.Workloads.Submit(ctx, d.Form)
			if err != nil {
				return app.notifier(cmd).Failure("提交失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("工作量已提交", fmt.Sprintf("#%d %s · %s", w.ID, w.Name, w.Status.Label()))
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// workloadDraftFrom prefills a draft with a stored workload.
func workloadDraftFrom(w *domain.Workload) *workloadDraft {
	d := &workloadDraft{Form: validation.WorkloadForm{
		Name:            w.Name,
		Content:         w.Content,
		Source:          w.Source,
		WorkType:        w.WorkType,
		StartDate:       w.StartDate.String(),
		EndDate:         w.EndDate.String(),
		IntensityType:   w.IntensityType,
		IntensityValue:  domain.FormatFloat(w.IntensityValue),
		InnovationStage: w.InnovationStage.String,
	}}
	if w.AssistantSalaryPaid.Valid {
		d.Form.AssistantSalaryPaid = domain.FormatFloat(w.AssistantSalaryPaid.Float64)
	}
	if w.MentorReviewer != nil {
		d.Form.MentorReviewerID = w.MentorReviewer.ID
	}
	if w.ProjectID.Valid {
		d.Form.ProjectID = w.ProjectID.Int
	} else if w.Project != nil {
		d.Form.ProjectID = w.Project.ID
	}
	d.Shares = formatShares(w.Shares)
	return d
}

func newWorkloadEditCmd(app *App) *cobra.Command {
	var flags workloadFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a workload that is pending or was rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.Workloads.Get(ctx, id)
			if err != nil {
				return err
			}
			if !current.Editable() {
				return fmt.Errorf("workload %d is %s: %w", id, current.Status, service.ErrNotEditable)
			}

			d := workloadDraftFrom(current)
			flags.apply(cmd, d)
			if err := flags.resolveRefs(ctx, cmd, app, &d.Form); err != nil {
				return err
			}
			if cmd.Flags().NFlag() == 0 && app.interactive() {
				if err := app.runWorkloadForm(ctx, d); err != nil {
					return err
				}
			}
			if err := d.finish(ctx, app); err != nil {
				return err
			}

			w, err := app.Workloads.Edit(ctx, id, d.Form)
			if err != nil {
				return app.notifier(cmd).Failure("修改失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("工作量已更新", fmt.Sprintf("#%d %s · %s", w.ID, w.Name, w.Status.Label()))
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func newWorkloadDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a workload that is pending or was rejected",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				ok, err := confirm(fmt.Sprintf("确定删除工作量 #%d 吗？", id))
				if err != nil || !ok {
					return err
				}
			}
			if err := app.Workloads.Delete(cmd.Context(), id); err != nil {
				return app.notifier(cmd).Failure("删除失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("工作量已删除", fmt.Sprintf("#%d", id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newWorkloadPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Workloads waiting for your review",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Workloads.Pending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatWorkloadQueue(items))
			return nil
		},
	}
}

func newWorkloadHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Workloads you have already reviewed",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Workloads.History(cmd.Context())
			if err != nil {
				return err
			}
			var role domain.Role
			if u := app.Session.Snapshot().User; u != nil {
				role = u.Role
			}
			fmt.Fprint(out(cmd), formatter.FormatReviewHistory(items, role))
			return nil
		},
	}
}

// workloadFilterFlags binds the filters shared by "all" and "export".
func workloadFilterFlags(f *domain.WorkloadFilter) *pflag.FlagSet {
	fs := pflag.NewFlagSet("filter", pflag.ContinueOnError)
	fs.StringVar(&f.Submitter, "submitter", domain.FilterAll, "Submitter username or all")
	fs.StringVar(&f.Source, "source", domain.FilterAll, "Workload source or all")
	fs.StringVar(&f.Status, "status", domain.FilterAll, "Workload status or all")
	return fs
}

func newWorkloadAllCmd(app *App) *cobra.Command {
	var q service.AllWorkloadsQuery

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Browse every submitted workload (teachers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.PageSize <= 0 {
				q.PageSize = app.Settings.PageSize
			}
			listing, err := app.Workloads.All(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatWorkloadPage(listing.Page, listing.Filter))
			return nil
		},
	}

	cmd.Flags().AddFlagSet(workloadFilterFlags(&q.Filter))
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 0, "Items per page (defaults to the configured size)")

	return cmd
}

func newWorkloadReviewCmd(app *App) *cobra.Command {
	var form validation.ReviewForm
	var decision string

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Approve or reject a workload",
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

			w, err := app.Workloads.Review(cmd.Context(), id, form)
			if err != nil {
				return app.notifier(cmd).Failure("审核失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("审核完成", fmt.Sprintf("#%d %s · %s", w.ID, w.Name, w.Status.Label()))
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "approved or rejected")
	cmd.Flags().StringVarP(&form.Comment, "comment", "m", "", "Review comment")

	return cmd
}

func newWorkloadExportCmd(app *App) *cobra.Command {
	var filter domain.WorkloadFilter
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download workloads as a spreadsheet (teachers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "正在导出…")
			}
			exp, err := app.Workloads.Export(cmd.Context(), filter)
			stop()
			if err != nil {
				return app.notifier(cmd).Failure("导出失败", err, notify.RetryLater)
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("workloads_%s.xlsx", app.now().Format("20060102"))
			}
			if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			app.notifier(cmd).Success("导出成功", filepath.Clean(path))
			return nil
		},
	}

	cmd.Flags().AddFlagSet(workloadFilterFlags(&filter))
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default workloads_YYYYMMDD.xlsx)")

	return cmd
}

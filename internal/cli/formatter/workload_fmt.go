package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/labdesk/internal/domain"
)

const nameWidth = 24

// Intensity renders an intensity value with its unit, e.g. "8 小时/每天".
func Intensity(w *domain.Workload) string {
	return domain.FormatFloat(w.IntensityValue) + " 小时/" + w.IntensityType.Label()
}

// DateRange renders "start ~ end".
func DateRange(start, end domain.Date) string {
	return start.String() + " ~ " + end.String()
}

// FormatWorkloadList renders the signed-in user's own workloads.
func FormatWorkloadList(items []domain.Workload) string {
	headers := []string{"ID", "名称", "来源", "时间", "强度", "状态"}
	rows := make([][]string, 0, len(items))
	for i := range items {
		w := &items[i]
		rows = append(rows, []string{
			Dim(strconv.Itoa(w.ID)),
			Truncate(w.Name, nameWidth),
			w.Source.Label(),
			DateRange(w.StartDate, w.EndDate),
			Intensity(w),
			WorkloadStatusPill(w.Status),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWorkloadQueue renders workloads waiting for the reviewer.
func FormatWorkloadQueue(items []domain.Workload) string {
	headers := []string{"ID", "名称", "提交人", "来源", "时间", "强度", "状态"}
	rows := make([][]string, 0, len(items))
	for i := range items {
		w := &items[i]
		rows = append(rows, []string{
			Dim(strconv.Itoa(w.ID)),
			Truncate(w.Name, nameWidth),
			w.Submitter.Username,
			w.Source.Label(),
			DateRange(w.StartDate, w.EndDate),
			Intensity(w),
			WorkloadStatusPill(w.Status),
		})
	}
	return RenderTable(headers, rows)
}

// FormatReviewHistory renders workloads the reviewer has handled. The
// comment and time columns show the reviewer's own stage.
func FormatReviewHistory(items []domain.Workload, reviewer domain.Role) string {
	headers := []string{"ID", "名称", "提交人", "状态", "审核意见", "审核时间"}
	rows := make([][]string, 0, len(items))
	for i := range items {
		w := &items[i]
		when := w.TeacherReviewTime
		if reviewer == domain.RoleMentor {
			when = w.MentorReviewTime
		}
		rows = append(rows, []string{
			Dim(strconv.Itoa(w.ID)),
			Truncate(w.Name, nameWidth),
			w.Submitter.Username,
			WorkloadStatusPill(w.Status),
			OrPlaceholder(Truncate(w.ReviewerComment(reviewer), 30)),
			when.Display(),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWorkloadPage renders one page of the all-workloads view with its
// filter and page footer.
func FormatWorkloadPage(page domain.Page[domain.Workload], filter domain.WorkloadFilter) string {
	var b strings.Builder
	if f := DescribeFilter(filter); f != "" {
		b.WriteString(Dim("筛选: "+f) + "\n\n")
	}
	b.WriteString(FormatWorkloadQueue(page.Items))
	b.WriteString("\n" + PageFooter(page.Number, page.TotalPages, page.TotalItems) + "\n")
	return b.String()
}

// PageFooter renders "第 n / N 页 · 共 X 条".
func PageFooter(n, total, items int) string {
	return Dim(fmt.Sprintf("第 %d / %d 页 · 共 %d 条", n, total, items))
}

// DescribeFilter lists the active criteria of f, or "" when none are set.
func DescribeFilter(f domain.WorkloadFilter) string {
	var parts []string
	if f.Submitter != "" && f.Submitter != domain.FilterAll {
		parts = append(parts, "提交人="+f.Submitter)
	}
	if f.Source != "" && f.Source != domain.FilterAll {
		parts = append(parts, "来源="+domain.WorkloadSource(f.Source).Label())
	}
	if f.Status != "" && f.Status != domain.FilterAll {
		parts = append(parts, "状态="+domain.WorkloadStatus(f.Status).Label())
	}
	return strings.Join(parts, ", ")
}

// FormatWorkloadDetail renders every field of one workload.
func FormatWorkloadDetail(w *domain.Workload) string {
	var b strings.Builder
	b.WriteString(Field("名称", Bold(w.Name)))
	b.WriteString(Field("状态", WorkloadStatusPill(w.Status)))
	b.WriteString(Field("来源", w.Source.Label()))
	b.WriteString(Field("类型", w.WorkType.Label()))
	b.WriteString(Field("时间", DateRange(w.StartDate, w.EndDate)))
	b.WriteString(Field("强度", Intensity(w)))
	b.WriteString(Field("提交人", w.Submitter.Username))
	if w.Source == domain.SourceInnovation {
		b.WriteString(Field("大创阶段", domain.InnovationStage(w.InnovationStage.String).Label()))
	}
	if w.Source == domain.SourceAssistant {
		b.WriteString(Field("已发工资", domain.FloatOr(w.AssistantSalaryPaid, "")))
	}
	if name := w.ProjectName(); name != "" {
		b.WriteString(Field("关联项目", name))
	}
	if w.OriginalFilename.Valid {
		b.WriteString(Field("附件", w.OriginalFilename.String+" "+Dim(domain.StringOr(w.AttachmentsURL, ""))))
	}
	b.WriteString(Field("工作内容", w.Content))

	if len(w.Shares) > 0 {
		b.WriteString("\n  " + StyleHeader.Render("占比") + "\n")
		for _, s := range w.Shares {
			name := strconv.Itoa(s.User)
			if s.UserInfo != nil {
				name = s.UserInfo.Username
			}
			b.WriteString(fmt.Sprintf("    %s  %s%%\n", padCells(name, 12), domain.FormatFloat(s.Percentage)))
		}
	}

	b.WriteString("\n  " + StyleHeader.Render("审核") + "\n")
	if w.MentorReviewer != nil {
		b.WriteString(Field("审核导师", w.MentorReviewer.Username))
		b.WriteString(Field("导师意见", domain.StringOr(w.MentorComment, "")))
		b.WriteString(Field("导师审核于", w.MentorReviewTime.Display()))
	}
	if w.TeacherReviewer != nil {
		b.WriteString(Field("审核老师", w.TeacherReviewer.Username))
		b.WriteString(Field("老师意见", domain.StringOr(w.TeacherComment, "")))
		b.WriteString(Field("老师审核于", w.TeacherReviewTime.Display()))
	}
	if w.MentorReviewer == nil && w.TeacherReviewer == nil {
		b.WriteString("  " + Dim("尚未审核") + "\n")
	}
	b.WriteString(Field("更新于", w.UpdatedAt.Display()))
	return b.String()
}

package formatter

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/labdesk/internal/domain"
)

// FormatProjectList renders projects with their review state.
func FormatProjectList(items []domain.Project) string {
	headers := []string{"ID", "项目名称", "状态", "开始日期", "申报人", "审核老师", "审核状态"}
	rows := make([][]string, 0, len(items))
	for i := range items {
		p := &items[i]
		rows = append(rows, []string{
			Dim(strconv.Itoa(p.ID)),
			Truncate(p.Name, nameWidth),
			p.ProjectStatus.Label(),
			p.StartDate.String(),
			p.SubmitterName(),
			p.ReviewerName(),
			ReviewStatusPill(p.ReviewStatus),
		})
	}
	return RenderTable(headers, rows)
}

func FormatProjectDetail(p *domain.Project) string {
	var b strings.Builder
	b.WriteString(Field("项目名称", Bold(p.Name)))
	b.WriteString(Field("项目状态", p.ProjectStatus.Label()))
	b.WriteString(Field("开始日期", p.StartDate.String()))
	b.WriteString(Field("申报人", p.SubmitterName()))
	b.WriteString(Field("审核老师", p.ReviewerName()))
	b.WriteString(Field("审核状态", ReviewStatusPill(p.ReviewStatus)))
	b.WriteString(Field("审核意见", domain.StringOr(p.TeacherComment, "")))
	b.WriteString(Field("审核时间", p.TeacherReviewTime.Display()))
	b.WriteString(Field("更新于", p.UpdatedAt.Display()))
	return b.String()
}

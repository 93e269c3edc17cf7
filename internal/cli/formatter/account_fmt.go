package formatter

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/labdesk/internal/domain"
)

func FormatUser(u *domain.User) string {
	var b strings.Builder
	b.WriteString(Field("用户名", Bold(u.Username)))
	b.WriteString(Field("邮箱", u.Email))
	b.WriteString(Field("角色", RoleBadge(u.Role)))
	return b.String()
}

func FormatUserList(users []domain.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{Dim(strconv.Itoa(u.ID)), u.Username, u.Email, RoleBadge(u.Role)})
	}
	return RenderTable([]string{"ID", "用户名", "邮箱", "角色"}, rows)
}

var authEventLabels = map[domain.AuthEventKind]string{
	domain.AuthLogin:    "登录",
	domain.AuthRegister: "注册",
	domain.AuthLogout:   "登出",
	domain.AuthExpired:  "登录过期",
}

// FormatAuthEvents renders the local sign-in history.
func FormatAuthEvents(events []domain.AuthEvent) string {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		label, ok := authEventLabels[e.Kind]
		if !ok {
			label = string(e.Kind)
		}
		rows = append(rows, []string{
			HumanTimestamp(e.CreatedAt),
			label,
			OrPlaceholder(e.Username),
			Dim(e.BaseURL),
		})
	}
	return RenderTable([]string{"时间", "事件", "用户", "服务器"}, rows)
}

// Package notify turns errors into user-facing Chinese text and renders
// success/error/info toasts.
package notify

import (
	"errors"
	"strings"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/auth"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/alexanderramin/labdesk/internal/validation"
)

const (
	ServerErrorText  = "服务器内部错误，请联系管理员"
	NetworkErrorText = "网络连接错误，请检查您的网络连接"
	SessionExpired   = "登录已过期，请运行 labdesk login 重新登录"
	RetryLater       = "请稍后重试"
	NotLoggedIn      = "请先运行 labdesk login 登录"
	NotPermitted     = "您没有执行该操作的权限"
	NotEditable      = "当前审核状态不允许修改或删除"
)

// Describe returns the text to show for err. Backend messages are shown
// verbatim; anything unrecognised falls back to fallback.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return strings.Join(fe.Lines(), "\n")
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.SessionLost:
			return SessionExpired
		case apiErr.HTML || apiErr.ServerError():
			return ServerErrorText
		case apiErr.Detail != "":
			return apiErr.Detail
		case apiErr.Message != "":
			return apiErr.Message
		case len(apiErr.Fields) > 0:
			return strings.Join(apiErr.FieldLines(), "\n")
		case apiErr.StatusCode == 401:
			return SessionExpired
		}
		return fallback
	}

	switch {
	case errors.Is(err, api.ErrTimeout), errors.Is(err, api.ErrUnavailable):
		return NetworkErrorText
	case errors.Is(err, api.ErrUnauthorized):
		return SessionExpired
	case errors.Is(err, auth.ErrNotLoggedIn):
		return NotLoggedIn
	case errors.Is(err, service.ErrRoleNotAllowed):
		return NotPermitted
	case errors.Is(err, service.ErrNotEditable):
		return NotEditable
	}
	return fallback
}

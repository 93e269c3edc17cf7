package api

import (
	"context"
	"net/http"

	"github.com/alexanderramin/labdesk/internal/domain"
)

// loginPath answers 401 for bad credentials, which is not a lost session.
const loginPath = "/user/login/"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Password2 string      `json:"password2"`
	Role      domain.Role `json:"role,omitempty"`
}

type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthResponse is the body of login, register and profile update calls.
type AuthResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, loginPath, nil, jsonBody{creds}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, "/user/register/", nil, jsonBody{reg}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/user/logout/", nil, nil, nil)
}

// Me returns the user owning the current session.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.call(ctx, http.MethodGet, "/user/me/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPut, "/user/update/", nil, jsonBody{upd}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword returns the backend's confirmation message.
func (c *Client) ChangePassword(ctx context.Context, chg PasswordChange) (string, error) {
	var out messageResponse
	if err := c.call(ctx, http.MethodPost, "/user/change-password/", nil, jsonBody{chg}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return listCall[domain.User](ctx, c, "/user/list/", nil)
}

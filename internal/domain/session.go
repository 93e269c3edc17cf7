package domain

import "time"

// Cookie is a backend cookie kept between CLI invocations.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the locally persisted login for one profile.
type Session struct {
	Profile   string
	BaseURL   string
	User      User
	Cookies   []Cookie
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AuthEventKind string

const (
	AuthLogin    AuthEventKind = "login"
	AuthRegister AuthEventKind = "register"
	AuthLogout   AuthEventKind = "logout"
	// AuthExpired records a session dropped after the backend answered 401.
	AuthExpired AuthEventKind = "expired"
)

// AuthEvent is one entry of the local sign-in history.
type AuthEvent struct {
	ID        string
	Profile   string
	Username  string
	Kind      AuthEventKind
	BaseURL   string
	CreatedAt time.Time
}

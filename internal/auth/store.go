// Package auth holds the signed-in user for one profile and keeps the
// backend session on disk between labdesk invocations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/db"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/repository"
)

// ErrNotLoggedIn is returned by RequireUser when no session is held.
var ErrNotLoggedIn = errors.New("not logged in")

// Backend is the part of api.Client the store drives.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (*api.AuthResponse, error)
	ChangePassword(ctx context.Context, chg api.PasswordChange) (string, error)
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
	ClearCookies()
	BaseURL() string
	OnUnauthorized(fn func())
}

// Snapshot is a consistent read of the store's state.
type Snapshot struct {
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
	Err             error
}

// Store is safe for concurrent use. Backend calls are made without holding
// the lock, since a 401 re-enters the store through HandleUnauthorized.
type Store struct {
	backend  Backend
	uow      db.UnitOfWork
	codec    *repository.CookieCodec
	sessions repository.SessionRepo
	events   repository.AuthEventRepo
	profile  string

	mu      sync.RWMutex
	user    *domain.User
	loading int
	lastErr error
}

// NewStore wires the store to backend and registers it as the backend's
// unauthorized hook.
func NewStore(
	backend Backend,
	uow db.UnitOfWork,
	codec *repository.CookieCodec,
	sessions repository.SessionRepo,
	events repository.AuthEventRepo,
	profile string,
) *Store {
	s := &Store{
		backend:  backend,
		uow:      uow,
		codec:    codec,
		sessions: sessions,
		events:   events,
		profile:  profile,
	}
	backend.OnUnauthorized(s.HandleUnauthorized)
	return s
}

func (s *Store) Profile() string { return s.profile }

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		IsAuthenticated: s.user != nil,
		IsLoading:       s.loading > 0,
		Err:             s.lastErr,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) User() *domain.User {
	return s.Snapshot().User
}

func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated
}

func (s *Store) IsLoading() bool {
	return s.Snapshot().IsLoading
}

func (s *Store) Err() error {
	return s.Snapshot().Err
}

// RequireUser returns the signed-in user or ErrNotLoggedIn.
func (s *Store) RequireUser() (*domain.User, error) {
	if u := s.User(); u != nil {
		return u, nil
	}
	return nil, ErrNotLoggedIn
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading++
	s.lastErr = nil
	s.mu.Unlock()
}

// end finishes an operation started with begin. A non-nil user replaces
// the current one.
func (s *Store) end(user *domain.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	s.lastErr = err
	if user != nil {
		u := *user
		s.user = &u
	}
}

func (s *Store) setUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// Restore loads the saved session for the profile and hands its cookies to
// the backend. A session saved against another API root is ignored.
func (s *Store) Restore(ctx context.Context) error {
	sess, err := s.sessions.Get(ctx, s.profile)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	if sess.BaseURL != "" && sess.BaseURL != s.backend.BaseURL() {
		return nil
	}
	s.backend.SetCookies(toHTTPCookies(sess.Cookies))
	user := sess.User
	s.setUser(&user)
	return nil
}

func (s *Store) Login(ctx context.Context, creds api.Credentials) (*domain.User, error) {
	s.begin()
	resp, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.end(nil, err)
		return nil, err
	}
	if err := s.persist(ctx, resp.User, domain.AuthLogin); err != nil {
		s.end(nil, err)
		return nil, err
	}
	s.end(&resp.User, nil)
	return &resp.User, nil
}

// Register creates the account. It does not sign in; the caller logs in
// afterwards the way the web client redirected to its login page.
func (s *Store) Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error) {
	s.begin()
	resp, err := s.backend.Register(ctx, reg)
	if err == nil {
		err = s.events.Append(ctx, &domain.AuthEvent{
			Profile:  s.profile,
			Username: resp.User.Username,
			Kind:     domain.AuthRegister,
			BaseURL:  s.backend.BaseURL(),
		})
	}
	s.end(nil, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout ends the backend session and always drops the local one. A 401
// from the backend means the session was already gone and is not an error.
func (s *Store) Logout(ctx context.Context) error {
	s.begin()
	username := ""
	if u := s.User(); u != nil {
		username = u.Username
	}

	remoteErr := s.backend.Logout(ctx)
	if errors.Is(remoteErr, api.ErrUnauthorized) {
		remoteErr = nil
	}
	localErr := s.drop(ctx, username, domain.AuthLogout)

	err := errors.Join(remoteErr, localErr)
	s.end(nil, err)
	return err
}

// CheckAuth asks the backend who the session belongs to. Any failure clears
// the in-memory user; only a 401 also deletes the saved session.
func (s *Store) CheckAuth(ctx context.Context) (*domain.User, error) {
	s.begin()
	user, err := s.backend.Me(ctx)
	if err != nil {
		s.setUser(nil)
		s.end(nil, err)
		return nil, err
	}
	if err := s.persist(ctx, *user, ""); err != nil {
		s.end(nil, err)
		return nil, err
	}
	s.end(user, nil)
	return user, nil
}

func (s *Store) Update(ctx context.Context, upd api.ProfileUpdate) (*api.AuthResponse, error) {
	s.begin()
	resp, err := s.backend.UpdateProfile(ctx, upd)
	if err != nil {
		s.end(nil, err)
		return nil, err
	}
	if err := s.persist(ctx, resp.User, ""); err != nil {
		s.end(nil, err)
		return nil, err
	}
	s.end(&resp.User, nil)
	return resp, nil
}

// ChangePassword returns the backend's confirmation message. The backend
// may rotate the session cookie, so the saved cookies are refreshed.
func (s *Store) ChangePassword(ctx context.Context, chg api.PasswordChange) (string, error) {
	s.begin()
	msg, err := s.backend.ChangePassword(ctx, chg)
	if err == nil {
		if u := s.User(); u != nil {
			err = s.persist(ctx, *u, "")
		}
	}
	s.end(nil, err)
	if err != nil {
		return "", err
	}
	return msg, nil
}

// HandleUnauthorized drops the session after the backend answered 401.
func (s *Store) HandleUnauthorized() {
	u := s.User()
	if u == nil {
		s.backend.ClearCookies()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.drop(ctx, u.Username, domain.AuthExpired); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}
}

// History lists the profile's recent sign-in events, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]domain.AuthEvent, error) {
	return s.events.ListRecent(ctx, s.profile, limit)
}

// persist saves the session and, when kind is set, its audit event in one
// transaction.
func (s *Store) persist(ctx context.Context, user domain.User, kind domain.AuthEventKind) error {
	sess := &domain.Session{
		Profile: s.profile,
		BaseURL: s.backend.BaseURL(),
		User:    user,
		Cookies: toDomainCookies(s.backend.Cookies()),
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSessionRepo(tx, s.codec).Save(ctx, sess); err != nil {
			return err
		}
		if kind == "" {
			return nil
		}
		return repository.NewSQLiteAuthEventRepo(tx).Append(ctx, &domain.AuthEvent{
			Profile:  s.profile,
			Username: user.Username,
			Kind:     kind,
			BaseURL:  sess.BaseURL,
		})
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// drop clears cookies and the user, then deletes the saved session and
// records kind.
func (s *Store) drop(ctx context.Context, username string, kind domain.AuthEventKind) error {
	s.backend.ClearCookies()
	s.setUser(nil)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSessionRepo(tx, s.codec).Delete(ctx, s.profile); err != nil {
			return err
		}
		return repository.NewSQLiteAuthEventRepo(tx).Append(ctx, &domain.AuthEvent{
			Profile:  s.profile,
			Username: username,
			Kind:     kind,
			BaseURL:  s.backend.BaseURL(),
		})
	})
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func toDomainCookies(cookies []*http.Cookie) []domain.Cookie {
	out := make([]domain.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		out = append(out, domain.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func toHTTPCookies(cookies []domain.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		out = append(out, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

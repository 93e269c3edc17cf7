package service

import (
	"context"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
)

type accountService struct {
	accounts  Accounts
	validator *validation.Validator
	observer  UseCaseObserver
}

func NewAccountService(accounts Accounts, v *validation.Validator, observers ...UseCaseObserver) AccountService {
	return &accountService{accounts: accounts, validator: v, observer: useCaseObserverOrNoop(observers)}
}

func (s *accountService) Login(ctx context.Context, form validation.LoginForm) (user *domain.User, err error) {
	defer track(ctx, s.observer, "login", map[string]any{"username": form.Username})(&err)

	if err = s.validator.Validate(form); err != nil {
		return nil, err
	}
	return s.accounts.Login(ctx, api.Credentials{Username: form.Username, Password: form.Password})
}

func (s *accountService) Register(ctx context.Context, form validation.RegisterForm) (resp *api.AuthResponse, err error) {
	defer track(ctx, s.observer, "register", map[string]any{"username": form.Username, "role": string(form.Role)})(&err)

	if err = s.validator.Validate(form); err != nil {
		return nil, err
	}
	return s.accounts.Register(ctx, api.Registration{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		Password2: form.ConfirmPassword,
		Role:      form.Role,
	})
}

func (s *accountService) Logout(ctx context.Context) (err error) {
	defer track(ctx, s.observer, "logout", nil)(&err)
	return s.accounts.Logout(ctx)
}

// WhoAmI confirms the saved session with the backend.
func (s *accountService) WhoAmI(ctx context.Context) (user *domain.User, err error) {
	defer track(ctx, s.observer, "whoami", nil)(&err)

	if _, err = s.accounts.RequireUser(); err != nil {
		return nil, err
	}
	return s.accounts.CheckAuth(ctx)
}

func (s *accountService) UpdateProfile(ctx context.Context, form validation.ProfileForm) (resp *api.AuthResponse, err error) {
	defer track(ctx, s.observer, "update-profile", nil)(&err)

	if _, err = s.accounts.RequireUser(); err != nil {
		return nil, err
	}
	if err = s.validator.Validate(form); err != nil {
		return nil, err
	}
	return s.accounts.Update(ctx, api.ProfileUpdate{Username: form.Username, Email: form.Email})
}

// ChangePassword fills the account's username and email into form before
// validating, so the similarity rule sees them.
func (s *accountService) ChangePassword(ctx context.Context, form validation.PasswordForm) (msg string, err error) {
	defer track(ctx, s.observer, "change-password", nil)(&err)

	var user *domain.User
	if user, err = s.accounts.RequireUser(); err != nil {
		return "", err
	}
	form.Username, form.Email = user.Username, user.Email
	if err = s.validator.Validate(form); err != nil {
		return "", err
	}
	return s.accounts.ChangePassword(ctx, api.PasswordChange{
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
		ConfirmPassword: form.ConfirmPassword,
	})
}

func (s *accountService) History(ctx context.Context, limit int) ([]domain.AuthEvent, error) {
	return s.accounts.History(ctx, limit)
}

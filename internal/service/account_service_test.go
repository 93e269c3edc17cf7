package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/auth"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_LoginValidatesBeforeCallingBackend(t *testing.T) {
	env := newServiceEnv(t)
	a := env.newActor(t)

	_, err := a.accounts.Login(context.Background(), validation.LoginForm{Username: "", Password: "123"})
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "用户名不能为空", fe.First("username"))
	assert.Equal(t, "密码至少需要6个字符", fe.First("password"))

	_, called := env.backend.LastRequest("POST", "/user/login/")
	assert.False(t, called)
}

func TestAccountService_LoginRecordsUseCase(t *testing.T) {
	env := newServiceEnv(t)
	a := env.newActor(t)

	u, err := a.accounts.Login(context.Background(), validation.LoginForm{Username: "alice", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, env.alice.ID, u.ID)

	ev := a.observer.last()
	assert.Equal(t, "login", ev.Name)
	assert.True(t, ev.Success)
	assert.Equal(t, "alice", ev.Fields["username"])

	_, err = a.accounts.Login(context.Background(), validation.LoginForm{Username: "alice", Password: "wrong-password"})
	require.Error(t, err)
	ev = a.observer.last()
	assert.False(t, ev.Success)
	var apiErr *api.Error
	require.True(t, errors.As(ev.Err, &apiErr))
	assert.Equal(t, "用户名或密码错误", apiErr.Message)
}

func TestAccountService_RegisterMismatchedPasswords(t *testing.T) {
	env := newServiceEnv(t)
	a := env.newActor(t)

	_, err := a.accounts.Register(context.Background(), validation.RegisterForm{
		Username: "carol", Email: "carol@lab.example.edu",
		Password: "secret1", ConfirmPassword: "secret2", Role: domain.RoleStudent,
	})
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "两次输入的密码不一致", fe.First("confirm_password"))
}

func TestAccountService_RegisterThenLogin(t *testing.T) {
	env := newServiceEnv(t)
	a := env.newActor(t)
	ctx := context.Background()

	resp, err := a.accounts.Register(ctx, validation.RegisterForm{
		Username: "carol", Email: "carol@lab.example.edu",
		Password: "secret1", ConfirmPassword: "secret1", Role: domain.RoleMentor,
	})
	require.NoError(t, err)
	assert.Equal(t, "用户注册成功", resp.Message)
	assert.False(t, a.store.IsAuthenticated())

	u, err := a.accounts.Login(ctx, validation.LoginForm{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMentor, u.Role)
}

func TestAccountService_WhoAmIRequiresLogin(t *testing.T) {
	env := newServiceEnv(t)
	a := env.newActor(t)

	_, err := a.accounts.WhoAmI(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)

	a = env.as(t, "mona")
	u, err := a.accounts.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mona", u.Username)
}

func TestAccountService_ChangePasswordRejectsSimilarPassword(t *testing.T) {
	env := newServiceEnv(t)
	a := env.as(t, "alice")

	_, err := a.accounts.ChangePassword(context.Background(), validation.PasswordForm{
		CurrentPassword: testPassword, NewPassword: "alice1", ConfirmPassword: "alice1",
	})
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "新密码与用户名或邮箱过于相似", fe.First("new_password"))
}

func TestAccountService_ChangePassword(t *testing.T) {
	env := newServiceEnv(t)
	a := env.as(t, "alice")

	msg, err := a.accounts.ChangePassword(context.Background(), validation.PasswordForm{
		CurrentPassword: testPassword, NewPassword: "Tr0ub4dor&3", ConfirmPassword: "Tr0ub4dor&3",
	})
	require.NoError(t, err)
	assert.Equal(t, "密码修改成功", msg)
}

func TestAccountService_UpdateProfileAndHistory(t *testing.T) {
	env := newServiceEnv(t)
	a := env.as(t, "alice")
	ctx := context.Background()

	resp, err := a.accounts.UpdateProfile(ctx, validation.ProfileForm{Username: "alice", Email: "alice@new.example.edu"})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.edu", resp.User.Email)

	require.NoError(t, a.accounts.Logout(ctx))
	events, err := a.accounts.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.AuthLogout, events[0].Kind)
	assert.Equal(t, domain.AuthLogin, events[1].Kind)
}

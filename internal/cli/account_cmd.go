package cli

import (
	"fmt"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/validation"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var form validation.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Username == "" && app.interactive() {
				if err := loginForm(&form).Run(); err != nil {
					return err
				}
			}
			if form.Password == "" {
				pw, err := app.password(cmd, "", "密码: ")
				if err != nil {
					return err
				}
				form.Password = pw
			}

			user, err := app.Accounts.Login(cmd.Context(), form)
			if err != nil {
				return app.notifier(cmd).Failure("登录失败", err, "用户名或密码错误")
			}
			app.notifier(cmd).Success("登录成功", fmt.Sprintf("欢迎，%s（%s）", user.Username, user.Role.Label()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password (read from the terminal or stdin when omitted)")

	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var form validation.RegisterForm
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Role = domain.Role(role)
			if form.Username == "" && app.interactive() {
				if form.Role == "" {
					form.Role = domain.RoleStudent
				}
				if err := registerForm(&form).Run(); err != nil {
					return err
				}
			}
			var err error
			if form.Password, err = app.password(cmd, form.Password, "密码: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = app.password(cmd, form.ConfirmPassword, "确认密码: "); err != nil {
				return err
			}

			resp, err := app.Accounts.Register(cmd.Context(), form)
			if err != nil {
				return app.notifier(cmd).Failure("注册失败", err, notify.RetryLater)
			}
			msg := resp.Message
			if msg == "" {
				msg = "请运行 labdesk login 登录"
			}
			app.notifier(cmd).Success("注册成功", msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", "", "Role: student, mentor or teacher")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password again")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Accounts.Logout(cmd.Context()); err != nil {
				return app.notifier(cmd).Failure("退出失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("已退出登录", "")
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Accounts.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatUser(user))
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sign-ins and sign-outs on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Accounts.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatAuthEvents(events))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")

	return cmd
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Accounts.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatUser(user))
			return nil
		},
	}

	cmd.AddCommand(newProfileUpdateCmd(app), newPasswdCmd(app))

	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var form validation.ProfileForm

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change username or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := app.Session.Snapshot().User
			if current != nil {
				if !cmd.Flags().Changed("username") {
					form.Username = current.Username
				}
				if !cmd.Flags().Changed("email") {
					form.Email = current.Email
				}
			}
			if !cmd.Flags().Changed("username") && !cmd.Flags().Changed("email") && app.interactive() {
				if err := profileForm(&form).Run(); err != nil {
					return err
				}
			}

			resp, err := app.Accounts.UpdateProfile(cmd.Context(), form)
			if err != nil {
				return app.notifier(cmd).Failure("更新失败", err, notify.RetryLater)
			}
			app.notifier(cmd).Success("个人信息已更新", resp.Message)
			fmt.Fprint(out(cmd), formatter.FormatUser(&resp.User))
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "New username")
	cmd.Flags().StringVar(&form.Email, "email", "", "New email address")

	return cmd
}

func newPasswdCmd(app *App) *cobra.Command {
	var form validation.PasswordForm

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.CurrentPassword == "" && form.NewPassword == "" && app.interactive() {
				if err := passwordForm(&form).Run(); err != nil {
					return err
				}
			}
			var err error
			if form.CurrentPassword, err = app.password(cmd, form.CurrentPassword, "当前密码: "); err != nil {
				return err
			}
			if form.NewPassword, err = app.password(cmd, form.NewPassword, "新密码: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = app.password(cmd, form.ConfirmPassword, "确认新密码: "); err != nil {
				return err
			}

			msg, err := app.Accounts.ChangePassword(cmd.Context(), form)
			if err != nil {
				return app.notifier(cmd).Failure("修改密码失败", err, notify.RetryLater)
			}
			if msg == "" {
				msg = "密码修改成功"
			}
			app.notifier(cmd).Success("密码已修改", msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.CurrentPassword, "current", "", "Current password")
	cmd.Flags().StringVar(&form.NewPassword, "new", "", "New password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "New password again")

	return cmd
}

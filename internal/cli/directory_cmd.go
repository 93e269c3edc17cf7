package cli

import (
	"fmt"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "" && !domain.Valid(domain.Roles, domain.Role(role)) {
				return fmt.Errorf("unknown role %q: expected student, mentor or teacher", role)
			}
			users, err := app.Directory.Users(cmd.Context(), domain.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatUserList(users))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Only show this role (student, mentor, teacher)")

	return cmd
}

func newAnnouncementsCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"news"},
		Short:   "Show lab announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" && kind != domain.FilterAll && !domain.Valid(domain.AnnouncementTypes, domain.AnnouncementType(kind)) {
				return fmt.Errorf("unknown announcement type %q: expected notice, general, warning or all", kind)
			}
			items, err := app.Directory.Announcements(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatAnnouncements(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", domain.FilterAll, "notice, general, warning or all")

	return cmd
}

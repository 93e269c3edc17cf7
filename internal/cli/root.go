package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/labdesk/internal/auth"
	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/spf13/cobra"
)

// Session is the read side of the auth store the CLI renders from.
type Session interface {
	Snapshot() auth.Snapshot
	Profile() string
}

// Settings are the config values commands and views read.
type Settings struct {
	APIURL       string
	PollInterval time.Duration
	PageSize     int
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Accounts  service.AccountService
	Workloads service.WorkloadService
	Projects  service.ProjectService
	Directory service.DirectoryService
	Session   Session
	Settings  Settings

	// IsInteractive reports whether missing input may be asked for with
	// forms and prompts. Nil means never.
	IsInteractive func() bool
	// ReadPassword reads a password without echo. Nil falls back to a
	// plain line read from the command's input.
	ReadPassword func(prompt string) (string, error)
	// Now is the clock used for default file names.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "labdesk" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "labdesk",
		Short:         "Lab workload and project declarations from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newHistoryCmd(app),
		newProfileCmd(app),
		newUsersCmd(app),
		newAnnouncementsCmd(app),
		newWorkloadCmd(app),
		newProjectCmd(app),
		newUICmd(app),
	)

	return root
}

// PrintError writes the final error line for a failed command. Errors a
// command already showed as a toast are not repeated.
func PrintError(w io.Writer, err error) {
	if err == nil || notify.Shown(err) {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", notify.Describe(err, err.Error()))
}

// out is where a command writes its results.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

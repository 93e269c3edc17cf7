package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the full-screen workbench",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Confirm the saved session before drawing anything.
			if _, err := app.Accounts.WhoAmI(cmd.Context()); err != nil {
				return err
			}
			p := tea.NewProgram(newAppModel(app),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}

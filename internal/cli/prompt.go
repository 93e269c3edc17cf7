package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/labdesk/internal/notify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalPassword reads a password from the terminal without echo.
func TerminalPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// password returns value when set, otherwise reads one. Non-interactive
// runs read a line from the command's input so passwords can be piped.
func (a *App) password(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	if a.interactive() && a.ReadPassword != nil {
		return a.ReadPassword(prompt)
	}
	return readLine(cmd.InOrStdin())
}

// readLine reads up to the next newline one byte at a time, so successive
// calls on the same reader see successive lines.
func readLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			b.WriteByte(buf[0])
		}
		if err == io.EOF && b.Len() > 0 {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
	}
	return strings.TrimRight(b.String(), "\r"), nil
}

func (a *App) notifier(cmd *cobra.Command) *notify.Notifier {
	return notify.NewNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

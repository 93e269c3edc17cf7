package notify

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/labdesk/internal/cli/formatter"
	"github.com/charmbracelet/lipgloss"
)

type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

// Toast is a short notice with a title and optional description.
type Toast struct {
	Kind        Kind
	Title       string
	Description string
}

func Success(title, description string) Toast {
	return Toast{Kind: KindSuccess, Title: title, Description: description}
}

func Info(title, description string) Toast {
	return Toast{Kind: KindInfo, Title: title, Description: description}
}

// Failure builds an error toast whose description is Describe(err, fallback).
func Failure(title string, err error, fallback string) Toast {
	return Toast{Kind: KindError, Title: title, Description: Describe(err, fallback)}
}

func (t Toast) style() (string, lipgloss.Style) {
	switch t.Kind {
	case KindSuccess:
		return "✓", formatter.StyleGreen
	case KindError:
		return "✗", formatter.StyleRed
	default:
		return "•", formatter.StyleBlue
	}
}

// Render draws the toast as a left-bordered block.
func (t Toast) Render() string {
	icon, accent := t.style()
	var b strings.Builder
	b.WriteString(accent.Bold(true).Render(icon + " " + t.Title))
	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			b.WriteString("\n")
			b.WriteString(formatter.StyleFg.Render(line))
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(accent.GetForeground()).
		PaddingLeft(1).
		Render(b.String())
}

// Notifier writes toasts. Error toasts go to Err, the rest to Out.
type Notifier struct {
	Out io.Writer
	Err io.Writer
}

func NewNotifier(out, errOut io.Writer) *Notifier {
	return &Notifier{Out: out, Err: errOut}
}

func (n *Notifier) Show(t Toast) {
	w := n.Out
	if t.Kind == KindError && n.Err != nil {
		w = n.Err
	}
	fmt.Fprintln(w, t.Render())
}

func (n *Notifier) Success(title, description string) {
	n.Show(Success(title, description))
}

// Failure shows an error toast for err and returns err marked as shown, so
// the caller can return it without it being printed a second time.
func (n *Notifier) Failure(title string, err error, fallback string) error {
	n.Show(Failure(title, err, fallback))
	return shownError{err: err}
}

type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

// Shown reports whether err was already shown to the user as a toast.
func Shown(err error) bool {
	var s shownError
	return errors.As(err, &s)
}

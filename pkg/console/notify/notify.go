// Package notify is the transient success toast shown after a save.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DismissDelay is how long a toast stays up.
const DismissDelay = 2 * time.Second

// Kind selects the toast colour.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

// DismissMsg asks the notifier to hide the toast shown with generation ID.
type DismissMsg struct {
	ID int
}

// Notifier owns a single toast slot. Each Show bumps a generation id so a
// timer from an older toast cannot hide a newer one.
type Notifier struct {
	text    string
	kind    Kind
	visible bool
	gen     int
	delay   time.Duration
}

// New returns a notifier using DismissDelay.
func New() *Notifier {
	return &Notifier{delay: DismissDelay}
}

// Show displays text and returns the dismiss timer.
func (n *Notifier) Show(text string) tea.Cmd {
	return n.show(text, KindSuccess)
}

// ShowError displays an error toast.
func (n *Notifier) ShowError(text string) tea.Cmd {
	return n.show(text, KindError)
}

func (n *Notifier) show(text string, kind Kind) tea.Cmd {
	n.gen++
	n.text = text
	n.kind = kind
	n.visible = true
	id := n.gen
	return tea.Tick(n.delay, func(time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}

// Close hides the toast now and invalidates its pending timer.
func (n *Notifier) Close() {
	if !n.visible {
		return
	}
	n.visible = false
	n.gen++
}

// Update handles DismissMsg. Stale ids are ignored.
func (n *Notifier) Update(msg tea.Msg) {
	if m, ok := msg.(DismissMsg); ok && m.ID == n.gen {
		n.visible = false
	}
}

// Visible reports whether a toast is showing.
func (n *Notifier) Visible() bool { return n.visible }

// Text returns the current toast text.
func (n *Notifier) Text() string { return n.text }

// Generation returns the id carried by the current timer.
func (n *Notifier) Generation() int { return n.gen }

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("28")).
			Bold(true).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("160")).
			Bold(true).
			Padding(0, 1)
)

// View renders the toast, or "" when hidden.
func (n *Notifier) View() string {
	if !n.visible {
		return ""
	}
	if n.kind == KindError {
		return errorStyle.Render("✗ " + n.text)
	}
	return successStyle.Render("✓ " + n.text)
}

package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

var helpBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(modal.Primary).
	Padding(0, 1)

// helpMarkdown lists the bindings and mouse gestures.
func (m *Model) helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + m.deps.T.T("app.title", "Bizdesk") + "\n\n")
	sb.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	sb.WriteString("| `1`-`9` | jump to tab |\n")
	sb.WriteString("\n## Mouse\n\n")
	sb.WriteString("- Click a tab to switch to it.\n")
	sb.WriteString("- Click a row to select it, double click to edit.\n")
	sb.WriteString("- Scroll to move the selection.\n")
	sb.WriteString("\n## Forms\n\n")
	sb.WriteString("- `tab` and `shift+tab` move between fields, `enter` saves, `esc` cancels.\n")
	sb.WriteString("- Number fields step with `↑`/`↓`. Phone fields open the country list with `enter`.\n")
	sb.WriteString("- In phone lists: `p` makes a number primary, `t` changes its type, `x` removes it.\n")
	return sb.String()
}

// renderMarkdown renders md for the terminal, falling back to the source
// when glamour cannot.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (m Model) openHelp() (tea.Model, tea.Cmd) {
	m.showHelp = true
	m.helpView.Width = max(10, m.width-4)
	m.helpView.Height = max(3, m.height-4)
	m.helpView.SetContent(renderMarkdown(m.helpMarkdown(), m.helpView.Width))
	m.helpView.GotoTop()
	return m, nil
}

var closeHelp = key.NewBinding(key.WithKeys("?", "esc", "q"))

func (m Model) updateHelp(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, closeHelp) {
		m.showHelp = false
		return m, nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m *Model) renderHelp() string {
	box := helpBox.Render(m.helpView.View())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

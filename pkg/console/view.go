package console

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

var (
	appTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(modal.Primary).Padding(0, 1)
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	tabActive     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(modal.Primary).Bold(true).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(modal.Muted)
	spinnerStyle  = lipgloss.NewStyle().Foreground(modal.Primary)
	emptyStyle    = lipgloss.NewStyle().Foreground(modal.Muted).Italic(true).Padding(1, 2)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(modal.BorderNormal).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("237")).
		Bold(false)
	return s
}

// headerHeight is the number of lines the table header takes.
func headerHeight() int {
	return lipgloss.Height(tableStyles().Header.Render("x"))
}

// View implements tea.Model. Dialogs cover the whole screen, so only one
// layer is drawn.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	m.mouse.Clear()

	if m.showHelp {
		return m.renderHelp()
	}
	base := m.renderPage()
	if m.confirm.IsOpen() {
		return m.confirm.View(m.width, m.height)
	}
	if f := m.openForm(); f != nil {
		return f.View(m.width, m.height)
	}
	return base
}

func (m *Model) renderPage() string {
	lines := []string{m.renderTabs(), m.renderStatus()}
	body := m.renderTable(2)
	lines = append(lines, body)

	used := 0
	for _, l := range lines {
		used += lipgloss.Height(l)
	}
	if gap := m.height - used - 1; gap > 0 {
		lines = append(lines, strings.Repeat("\n", gap-1))
	}
	lines = append(lines, m.renderFooter())
	return lipgloss.NewStyle().MaxHeight(m.height).Render(strings.Join(lines, "\n"))
}

// renderTabs draws the tab bar and registers a region per tab.
func (m *Model) renderTabs() string {
	title := appTitleStyle.Render(m.deps.T.T("app.title", "Bizdesk"))
	parts := []string{title}
	for i, p := range m.pages {
		st := tabStyle
		if i == m.active {
			st = tabActive
		}
		parts = append(parts, st.Render(m.tabLabel(p.entity)))
	}
	rtl := m.deps.T.IsRTL()
	if rtl {
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	x := 0
	if rtl {
		x = max(0, m.width-lipgloss.Width(bar))
	}
	for k, part := range parts {
		w := lipgloss.Width(part)
		tab := k - 1
		if rtl {
			tab = len(parts) - 2 - k
		}
		if tab >= 0 && tab < len(m.pages) {
			m.mouse.HitMap.AddRect(regionTab+strconv.Itoa(tab), x, 0, w, 1, nil)
		}
		x += w
	}
	bar = ansi.Truncate(bar, m.width, "…")
	if rtl {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bar)
	}
	return bar
}

func (m *Model) renderStatus() string {
	p := m.current()
	var line string
	switch {
	case m.filtering:
		line = m.filter.View()
	case p.loading && !p.loaded:
		line = m.spin.View() + " " + m.deps.T.T("page.loading", "Loading…")
	case m.status != "":
		line = modal.ErrorText.Render(m.status)
	default:
		line = statusStyle.Render(m.deps.T.Tf("page.count", "{{.Count}} records",
			map[string]any{"Count": len(p.view)}))
		if m.query != "" {
			line += statusStyle.Render("  / " + m.query)
		}
		if p.loading {
			line += " " + m.spin.View()
		}
	}
	line = ansi.Truncate(line, m.width, "…")
	if m.deps.T.IsRTL() {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, line)
	}
	return line
}

// renderTable draws the visible window of the current page starting at
// screen line top, registering a region per row.
func (m *Model) renderTable(top int) string {
	p := m.current()
	if len(p.view) == 0 {
		if !p.loaded {
			return ""
		}
		text := m.deps.T.T("page.empty", "Nothing here yet. Press a to add one.")
		if m.query != "" {
			text = m.deps.T.T("page.no_match", "No matches")
		}
		return emptyStyle.Render(text)
	}

	rtl := m.deps.T.IsRTL()
	cols := make([]table.Column, len(p.entity.Columns))
	for i, c := range p.entity.Columns {
		cols[i] = table.Column{Title: m.columnLabel(c), Width: c.Width}
	}
	if rtl {
		reverse(cols)
	}

	rows := m.visibleRows()
	end := min(len(p.view), p.offset+rows)
	window := make([]table.Row, 0, end-p.offset)
	rowTop := top + headerHeight()
	for i := p.offset; i < end; i++ {
		rec := p.records[p.view[i]]
		row := make(table.Row, len(p.entity.Columns))
		for j, c := range p.entity.Columns {
			row[j] = c.Format(rec, m.deps.Currency)
		}
		if rtl {
			reverse(row)
		}
		window = append(window, row)
		m.mouse.HitMap.AddRect(regionRow+strconv.Itoa(i), 0, rowTop+i-p.offset, m.width, 1, nil)
	}

	t := m.table
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(window)
	t.SetHeight(len(window) + headerHeight())
	t.SetCursor(p.cursor - p.offset)

	out := t.View()
	if rtl {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, out)
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func (m *Model) renderFooter() string {
	keys := m.help.ShortHelpView(m.keys.ShortHelp())
	toast := m.notifier.View()
	if toast == "" {
		return ansi.Truncate(keys, m.width, "…")
	}
	gap := m.width - lipgloss.Width(keys) - lipgloss.Width(toast)
	if gap < 1 {
		return ansi.Truncate(toast, m.width, "…")
	}
	if m.deps.T.IsRTL() {
		return toast + strings.Repeat(" ", gap) + keys
	}
	return keys + strings.Repeat(" ", gap) + toast
}

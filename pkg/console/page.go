package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/entityform"
	"github.com/marcus/bizdesk/pkg/console/mouse"
)

// Hit region id prefixes for the page.
const (
	regionTab = "tab:"
	regionRow = "row:"
)

func (m *Model) tabLabel(e entityform.Entity) string {
	return m.deps.T.T("entities."+e.Name, e.Label)
}

func (m *Model) columnLabel(c entityform.Column) string {
	return m.deps.T.T("columns."+c.Field, c.Label)
}

// rowSource adapts a page's records to fuzzy matching over the formatted
// cells.
type rowSource struct {
	records  []models.Record
	columns  []entityform.Column
	currency string
}

func (s rowSource) String(i int) string {
	cells := make([]string, len(s.columns))
	for j, c := range s.columns {
		cells[j] = c.Format(s.records[i], s.currency)
	}
	return strings.Join(cells, " ")
}

func (s rowSource) Len() int { return len(s.records) }

// applyFilter rebuilds p.view from the query, best matches first, keeping
// the cursor on the same record when it is still shown.
func (m *Model) applyFilter(p *page) {
	selected := -1
	if p.cursor < len(p.view) {
		selected = p.view[p.cursor]
	}

	p.view = p.view[:0]
	if m.query == "" {
		for i := range p.records {
			p.view = append(p.view, i)
		}
	} else {
		src := rowSource{records: p.records, columns: p.entity.Columns, currency: m.deps.Currency}
		for _, match := range fuzzy.FindFrom(m.query, src) {
			p.view = append(p.view, match.Index)
		}
	}

	p.cursor = 0
	for i, idx := range p.view {
		if idx == selected {
			p.cursor = i
			break
		}
	}
	m.ensureVisible(p)
}

// visibleRows is the number of table rows that fit on screen.
func (m *Model) visibleRows() int {
	// tab bar, status line, table header and footer
	return max(1, m.height-3-headerHeight())
}

func (m *Model) ensureVisible(p *page) {
	if len(p.view) == 0 {
		p.cursor, p.offset = 0, 0
		return
	}
	p.cursor = max(0, min(p.cursor, len(p.view)-1))
	rows := m.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
	p.offset = max(0, min(p.offset, len(p.view)-rows))
}

func (m *Model) move(delta int) {
	p := m.current()
	p.cursor += delta
	m.ensureVisible(p)
}

// selected returns the record under the cursor.
func (m *Model) selected() (models.Record, bool) {
	p := m.current()
	if p.cursor < 0 || p.cursor >= len(p.view) {
		return nil, false
	}
	return p.records[p.view[p.cursor]], true
}

func (m *Model) switchTab(i int) tea.Cmd {
	if len(m.pages) == 0 {
		return nil
	}
	i = (i + len(m.pages)) % len(m.pages)
	m.active = i
	m.query = ""
	m.filter.SetValue("")
	p := m.current()
	m.status = ""
	if p.err != nil {
		m.status = m.loadError(p)
	}
	if !p.loaded && !p.loading {
		return m.load(p)
	}
	m.applyFilter(p)
	return nil
}

// allowed reports whether the user may change records of e.
func (m *Model) allowed(e entityform.Entity) bool {
	if e.Name == "users" && !m.deps.User.CanManageUsers() {
		m.status = m.deps.T.T("errors.forbidden", "Only administrators can manage users")
		return false
	}
	return true
}

func (m *Model) openCreate() tea.Cmd {
	e := m.current().entity
	if !m.allowed(e) {
		return nil
	}
	return m.form(e).OpenCreate()
}

func (m *Model) openEdit() tea.Cmd {
	rec, ok := m.selected()
	if !ok {
		return nil
	}
	e := m.current().entity
	if !m.allowed(e) {
		return nil
	}
	return m.form(e).OpenEdit(rec)
}

func (m *Model) openDelete() {
	rec, ok := m.selected()
	if !ok {
		return
	}
	e := m.current().entity
	if !m.allowed(e) {
		return
	}
	client, id := m.deps.Client, rec.ID()
	label := m.deps.T.T(e.Singular+".label", e.Label)
	m.confirm.Open(ConfirmRequest{
		Title:   m.deps.T.Tf("confirm.delete_title", "Delete {{.Entity}}", map[string]any{"Entity": label}),
		Message: m.deps.T.Tf("confirm.delete_body", "Are you sure? This cannot be undone.", map[string]any{"Entity": label}),
		Item:    rec.DisplayName(),
		Success: m.deps.T.T(e.Singular+".deleted", e.Label+" deleted"),
		Run: func(ctx context.Context) error {
			return client.Remove(ctx, e.Name, id)
		},
	})
}

func (m *Model) copySelected() tea.Cmd {
	rec, ok := m.selected()
	if !ok {
		return nil
	}
	text := formatRecordAsMarkdown(m.current().entity, rec, m.deps.Currency, m.columnLabel)
	clip := m.deps.Clipboard
	return func() tea.Msg {
		return copiedMsg{err: clip(text)}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.current()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		return m.openHelp()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.query)
		m.filter.CursorEnd()
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Add):
		return m, m.openCreate()
	case key.Matches(msg, m.keys.Edit):
		return m, m.openEdit()
	case key.Matches(msg, m.keys.Delete):
		m.openDelete()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copySelected()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load(p)
	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(m.active + 1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(m.active - 1)
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.visibleRows())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.visibleRows())
	case key.Matches(msg, m.keys.Top):
		m.move(-len(p.view))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(p.view))
	case msg.String() == "esc":
		if m.query != "" {
			m.query = ""
			m.applyFilter(p)
		}
		m.status = ""
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.pages) {
			return m, m.switchTab(n - 1)
		}
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.current()
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.query = ""
		m.applyFilter(p)
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "up", "down":
		if msg.String() == "up" {
			m.move(-1)
		} else {
			m.move(1)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if q := strings.TrimSpace(m.filter.Value()); q != m.query {
		m.query = q
		m.applyFilter(p)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	action := m.mouse.HandleMouse(msg)
	switch action.Type {
	case mouse.ActionScrollUp:
		m.move(-1)
		return m, nil
	case mouse.ActionScrollDown:
		m.move(1)
		return m, nil
	case mouse.ActionClick, mouse.ActionDoubleClick:
	default:
		return m, nil
	}
	if action.Region == nil {
		return m, nil
	}

	id := action.Region.ID
	if s, ok := strings.CutPrefix(id, regionTab); ok {
		if i, err := strconv.Atoi(s); err == nil && i != m.active {
			return m, m.switchTab(i)
		}
		return m, nil
	}
	if s, ok := strings.CutPrefix(id, regionRow); ok {
		i, err := strconv.Atoi(s)
		if err != nil {
			return m, nil
		}
		p := m.current()
		p.cursor = i
		m.ensureVisible(p)
		if action.Type == mouse.ActionDoubleClick {
			return m, m.openEdit()
		}
	}
	return m, nil
}

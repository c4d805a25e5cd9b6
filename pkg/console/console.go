// Package console is the bizdesk terminal UI: a tabbed page per entity type
// with a table, a fuzzy filter, the add/edit form and the delete dialog.
package console

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/entityform"
	"github.com/marcus/bizdesk/pkg/console/mouse"
	"github.com/marcus/bizdesk/pkg/console/notify"
)

// Client is the backend the console drives.
type Client interface {
	entityform.Querier
	entityform.Mutator
	Remove(ctx context.Context, entity, id string) error
}

// Deps is everything the console needs from main.
type Deps struct {
	Client         Client
	T              *intl.Translator
	Log            *zap.Logger
	User           models.User
	DefaultCountry string
	Currency       string
	Timeout        time.Duration
	// Entities defaults to the full catalog.
	Entities []entityform.Entity
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

// page is the loaded state of one entity tab.
type page struct {
	entity  entityform.Entity
	records []models.Record
	// view holds indexes into records after filtering, in display order
	view    []int
	cursor  int
	offset  int
	loading bool
	loaded  bool
	err     error
	gen     int
}

type pageLoadedMsg struct {
	entity string
	gen    int
	page   *models.Page
	err    error
}

type copiedMsg struct {
	err error
}

// Model is the root bubbletea model.
type Model struct {
	deps   Deps
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	table  table.Model
	filter textinput.Model

	mouse    *mouse.Handler
	notifier *notify.Notifier
	confirm  *ConfirmModal
	options  *entityform.OptionLoader
	forms    map[string]*entityform.Form

	pages  []*page
	active int

	query     string
	filtering bool

	showHelp bool
	helpView viewport.Model

	status string
	width  int
	height int
}

// New returns the console model.
func New(deps Deps) Model {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.T == nil {
		deps.T = intl.MustNew("en")
	}
	if deps.Timeout <= 0 {
		deps.Timeout = entityform.DefaultTimeout
	}
	if deps.Currency == "" {
		deps.Currency = "SAR"
	}
	if len(deps.Entities) == 0 {
		deps.Entities = entityform.Catalog()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = copyToClipboard
	}

	handler := mouse.NewHandler()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = deps.T.T("page.filter", "Filter")

	tbl := table.New(table.WithFocused(true))
	tbl.SetStyles(tableStyles())

	pages := make([]*page, len(deps.Entities))
	for i, e := range deps.Entities {
		pages[i] = &page{entity: e}
	}

	return Model{
		deps:     deps,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spin:     sp,
		table:    tbl,
		filter:   fi,
		mouse:    handler,
		notifier: notify.New(),
		confirm:  NewConfirmModal(deps.T, deps.Log, handler, deps.Timeout),
		options:  entityform.NewOptionLoader(deps.Client, deps.Log),
		forms:    map[string]*entityform.Form{},
		pages:    pages,
		helpView: viewport.New(0, 0),
	}
}

// Init loads the first tab.
func (m Model) Init() tea.Cmd {
	if len(m.pages) == 0 {
		return nil
	}
	return m.load(m.pages[m.active])
}

func (m *Model) current() *page {
	if len(m.pages) == 0 {
		return &page{}
	}
	return m.pages[m.active]
}

func (m *Model) pageFor(entity string) *page {
	for _, p := range m.pages {
		if p.entity.Name == entity {
			return p
		}
	}
	return nil
}

// form returns the add/edit form for e, creating it on first use.
func (m *Model) form(e entityform.Entity) *entityform.Form {
	if f, ok := m.forms[e.Name]; ok {
		return f
	}
	f := entityform.New(e, entityform.Deps{
		Mutator:        m.deps.Client,
		Options:        m.options,
		T:              m.deps.T,
		Log:            m.deps.Log,
		Mouse:          m.mouse,
		User:           m.deps.User,
		DefaultCountry: m.deps.DefaultCountry,
		Timeout:        m.deps.Timeout,
	})
	m.forms[e.Name] = f
	return f
}

// openForm returns the form that is showing, if any.
func (m *Model) openForm() *entityform.Form {
	for _, f := range m.forms {
		if f.IsOpen() {
			return f
		}
	}
	return nil
}

// load fetches p's records.
func (m *Model) load(p *page) tea.Cmd {
	ticking := m.anyLoading()
	p.gen++
	p.loading = true
	client, entity, gen, timeout := m.deps.Client, p.entity.Name, p.gen, m.deps.Timeout
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		pg, err := client.List(ctx, entity, nil)
		return pageLoadedMsg{entity: entity, gen: gen, page: pg, err: err}
	}
	if ticking {
		return fetch
	}
	return tea.Batch(fetch, m.spin.Tick)
}

func (m *Model) anyLoading() bool {
	for _, p := range m.pages {
		if p.loading {
			return true
		}
	}
	return false
}

func (m *Model) handlePageLoaded(msg pageLoadedMsg) {
	p := m.pageFor(msg.entity)
	if p == nil || msg.gen != p.gen {
		return
	}
	p.loading = false
	if msg.err != nil {
		p.err = msg.err
		m.deps.Log.Warn("list failed", zap.String("entity", msg.entity), zap.Error(msg.err))
		if p == m.current() {
			m.status = m.loadError(p)
		}
		return
	}
	p.err = nil
	p.loaded = true
	p.records = msg.page.Results
	if p == m.current() {
		m.status = ""
	}
	m.applyFilter(p)
}

func (m *Model) loadError(p *page) string {
	return m.deps.T.Tf("errors.load", "Could not load {{.Entity}}: {{.Error}}", map[string]any{
		"Entity": m.tabLabel(p.entity),
		"Error":  p.err.Error(),
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.helpView.Width = max(10, msg.Width-4)
		m.helpView.Height = max(3, msg.Height-4)
		m.ensureVisible(m.current())
		return m, nil

	case pageLoadedMsg:
		m.handlePageLoaded(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case notify.DismissMsg:
		m.notifier.Update(msg)
		return m, nil

	case entityform.SavedMsg:
		cmds := []tea.Cmd{m.notifier.Show(msg.Message)}
		if p := m.pageFor(msg.Entity); p != nil {
			cmds = append(cmds, m.load(p))
		}
		return m, tea.Batch(cmds...)

	case entityform.ClosedMsg:
		return m, nil

	case ConfirmedMsg:
		return m, tea.Batch(m.notifier.Show(msg.Message), m.load(m.current()))

	case confirmDoneMsg:
		return m, m.confirm.Update(msg)

	case copiedMsg:
		if msg.err != nil {
			m.deps.Log.Warn("copy failed", zap.Error(msg.err))
			return m, m.notifier.ShowError(msg.err.Error())
		}
		return m, m.notifier.Show(m.deps.T.T("page.copied", "Copied to clipboard"))
	}

	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		if m.showHelp {
			return m.updateHelp(msg)
		}
		if m.confirm.IsOpen() {
			return m, m.confirm.Update(msg)
		}
		if f := m.openForm(); f != nil {
			return m, f.Update(msg)
		}
	default:
		// async results and ticks for forms (option lists, submits, cursor
		// blink) arrive whether or not the form is still open
		cmds := []tea.Cmd{m.confirm.Update(msg)}
		for _, f := range m.forms {
			cmds = append(cmds, f.Update(msg))
		}
		if m.filtering {
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

var _ tea.Model = Model{}

// Overlay reports which dialog is showing, for tests and the status line.
func (m Model) Overlay() string {
	switch {
	case m.showHelp:
		return "help"
	case m.confirm.IsOpen():
		return "confirm"
	}
	if f := m.openForm(); f != nil {
		return "form:" + f.Entity().Name
	}
	return ""
}

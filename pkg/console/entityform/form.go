package entityform

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/internal/phone"
	"github.com/marcus/bizdesk/pkg/console/modal"
	"github.com/marcus/bizdesk/pkg/console/mouse"
	"github.com/marcus/bizdesk/pkg/console/widget"
)

// DefaultTimeout bounds a submit when Deps.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Button action ids.
const (
	actionSubmit = "submit"
	actionCancel = "cancel"
)

// Mode is create or edit.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// State is the lifecycle state of a form.
type State int

const (
	StateClosed State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	}
	return "closed"
}

// Mutator persists records.
type Mutator interface {
	Create(ctx context.Context, entity string, payload map[string]any) (models.Record, error)
	Update(ctx context.Context, entity, id string, payload map[string]any) (models.Record, error)
}

// Deps is everything a form needs from its surroundings.
type Deps struct {
	Mutator        Mutator
	Options        *OptionLoader
	T              *intl.Translator
	Log            *zap.Logger
	Mouse          *mouse.Handler
	User           models.User
	DefaultCountry string
	Timeout        time.Duration
}

// SavedMsg reports a successful submit. Message is the localized text for
// the success notification.
type SavedMsg struct {
	Entity  string
	Mode    Mode
	Record  models.Record
	Message string
}

// ClosedMsg reports that the form was dismissed without saving.
type ClosedMsg struct {
	Entity string
}

type submitDoneMsg struct {
	form   *Form
	token  int
	record models.Record
	err    error
}

type optionsMsg struct {
	form    *Form
	gen     int
	options map[string][]widget.Option
}

// control is the part of a widget the form drives.
type control interface {
	modal.Section
	SetError(string)
	SetAlign(lipgloss.Position)
}

// Form is the add/edit dialog for one entity type.
type Form struct {
	entity Entity
	deps   Deps
	modal  *modal.Modal

	state  State
	mode   Mode
	record models.Record
	values models.FormState
	errs   models.FieldErrors

	fields   []Field
	controls map[string]control
	selects  map[string]*widget.Select

	// inflight is the token of the pending submit; 0 when idle.
	inflight  int
	nextToken int
	// optionsGen discards option lists loaded for an earlier opening.
	optionsGen int
}

// New returns a closed form for entity.
func New(entity Entity, deps Deps) *Form {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.T == nil {
		deps.T = intl.MustNew("en")
	}
	if deps.Mouse == nil {
		deps.Mouse = mouse.NewHandler()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	return &Form{
		entity: entity,
		deps:   deps,
		values: models.FormState{},
		errs:   models.FieldErrors{},
	}
}

// Entity returns the form's configuration.
func (f *Form) Entity() Entity { return f.entity }

// State returns the lifecycle state.
func (f *Form) State() State { return f.state }

// Mode returns create or edit.
func (f *Form) Mode() Mode { return f.mode }

// IsOpen reports whether the dialog is showing.
func (f *Form) IsOpen() bool { return f.state != StateClosed }

// Values returns the live form state.
func (f *Form) Values() models.FormState { return f.values }

// Errors returns the live field errors.
func (f *Form) Errors() models.FieldErrors { return f.errs }

func (f *Form) t(key, fallback string) string {
	return f.deps.T.T(key, fallback)
}

func (f *Form) label(fd Field) string {
	return f.t("fields."+fd.Name, fd.Label)
}

// OpenCreate opens an empty form.
func (f *Form) OpenCreate() tea.Cmd {
	return f.open(ModeCreate, nil)
}

// OpenEdit opens the form seeded from rec.
func (f *Form) OpenEdit(rec models.Record) tea.Cmd {
	return f.open(ModeEdit, rec)
}

func (f *Form) open(mode Mode, rec models.Record) tea.Cmd {
	if f.state == StateSubmitting {
		return nil
	}
	f.dispose()
	f.mode = mode
	f.record = rec
	f.values = models.FormState{}
	f.errs = models.FieldErrors{}
	f.fields = f.entity.visible(mode)
	held := f.seed(rec)
	f.build(held)
	f.state = StateEditing
	f.modal.Open()
	if len(f.fields) > 0 {
		f.modal.SetFocus(focusTarget(f.fields[0]))
	}
	return f.loadOptions()
}

// seed fills values from rec and returns the display labels of reference
// fields.
func (f *Form) seed(rec models.Record) map[string]string {
	held := map[string]string{}
	for _, fd := range f.fields {
		switch fd.Kind {
		case KindCheckbox:
			f.values.Set(fd.Name, rec != nil && rec.Bool(fd.Name))
		case KindPhones:
			if rec == nil {
				f.values.Set(fd.Name, phone.List{})
			} else {
				f.values.Set(fd.Name, rec.Phones(fd.Name))
			}
		case KindSelect:
			id, name := "", ""
			if rec != nil {
				id, name = rec.Ref(fd.Name)
			}
			f.values.Set(fd.Name, id)
			held[fd.Name] = name
		case KindPassword:
			f.values.Set(fd.Name, "")
		default:
			v := ""
			if rec != nil {
				v = rec.String(fd.Name)
			}
			f.values.Set(fd.Name, v)
		}
	}
	return held
}

func focusTarget(fd Field) string {
	if fd.Kind == KindPhones {
		return fd.Name + ":new"
	}
	return fd.Name
}

func (f *Form) title() string {
	if f.mode == ModeEdit {
		return f.deps.T.Tf(f.entity.Singular+".edit_title", "Edit "+f.entity.Label, nil)
	}
	return f.deps.T.Tf(f.entity.Singular+".create_title", "Add "+f.entity.Label, nil)
}

// build creates the widgets and the dialog around them.
func (f *Form) build(held map[string]string) {
	rtl := f.deps.T.IsRTL()
	align := lipgloss.Left
	if rtl {
		align = lipgloss.Right
	}

	f.controls = map[string]control{}
	f.selects = map[string]*widget.Select{}
	for _, fd := range f.fields {
		c := f.newControl(fd, held[fd.Name])
		c.SetAlign(align)
		f.controls[fd.Name] = c
	}

	f.modal = modal.New(f.title(),
		modal.WithSize(f.entity.Size),
		modal.WithPrimaryAction(actionSubmit),
		modal.WithRTL(rtl),
		modal.WithHintText(f.t("hints.form", "tab next · enter save · esc cancel")),
	)
	f.layout()
}

// layout puts the general error slot, the field widgets and the buttons
// into the dialog.
func (f *Form) layout() {
	submitting := func() bool { return f.state == StateSubmitting }
	submitLabel := f.t("actions.save", "Save")
	if f.mode == ModeCreate {
		submitLabel = f.t("actions.create", "Create")
	}
	pos := lipgloss.Right
	if f.deps.T.IsRTL() {
		pos = lipgloss.Left
	}

	sections := make([]modal.Section, 0, len(f.fields)+3)
	sections = append(sections, modal.Custom(f.renderGeneral, nil))
	for _, fd := range f.fields {
		sections = append(sections, f.controls[fd.Name])
	}
	sections = append(sections,
		modal.Spacer(),
		modal.ButtonsAligned(pos,
			modal.Btn(f.t("actions.cancel", "Cancel"), actionCancel, modal.BtnDisabled(submitting)),
			modal.Btn(submitLabel, actionSubmit, modal.BtnBusy(submitting, f.t("actions.saving", "Saving…"))),
		),
	)
	f.modal.SetSections(sections...)
}

func (f *Form) renderGeneral(width int, _, _ string) modal.RenderedSection {
	msg := f.errs.Get(models.GeneralError)
	if msg == "" {
		return modal.RenderedSection{}
	}
	return modal.RenderedSection{Content: modal.ErrorText.Width(width).Render(msg)}
}

func (f *Form) newControl(fd Field, heldLabel string) control {
	name := fd.Name
	label := f.label(fd)
	onString := func(v string) { f.change(name, v) }

	var c control
	switch fd.Kind {
	case KindNumber:
		opts := []widget.StepperOption{}
		if fd.Min != "" {
			opts = append(opts, widget.WithMin(fd.Min))
		}
		if fd.Max != "" {
			opts = append(opts, widget.WithMax(fd.Max))
		}
		if fd.Step != "" {
			opts = append(opts, widget.WithStep(fd.Step))
		}
		s := widget.NewStepper(name, label, f.values.String(name), onString, opts...)
		s.Required = fd.required()
		c = s
	case KindPhone:
		p := widget.NewPhoneInput(name, label, f.values.String(name), f.deps.DefaultCountry, f.deps.Mouse, onString,
			widget.WithCountryNamer(f.countryName))
		p.Required = fd.required()
		c = p
	case KindPhones:
		l := widget.NewPhoneList(name, label, f.values.Phones(name), f.deps.DefaultCountry, f.deps.Mouse, f.phoneListText(),
			func(pl phone.List) { f.change(name, pl) },
			widget.WithCountryNamer(f.countryName))
		l.Required = fd.required()
		c = l
	case KindSelect:
		opts := make([]widget.Option, 0, len(fd.Choices))
		for _, ch := range fd.Choices {
			opts = append(opts, widget.Option{Value: ch.Value, Label: f.t(ch.Key, ch.Fallback)})
		}
		s := widget.NewSelect(name, label, f.values.String(name), heldLabel, opts, onString)
		s.Required = fd.required()
		s.SetPlaceholder(f.t("select.placeholder", "Select…"))
		if fd.Source != nil {
			s.SetLoading(true)
		}
		f.selects[name] = s
		c = s
	case KindCheckbox:
		c = widget.NewCheckbox(name, label, f.values.Bool(name), func(v bool) { f.change(name, v) })
	case KindTextArea:
		a := widget.NewTextArea(name, label, f.values.String(name), 3, onString)
		a.Required = fd.required()
		c = a
	default:
		tf := widget.NewTextField(name, label, f.values.String(name), onString)
		tf.Required = fd.required()
		if fd.Kind == KindPassword {
			tf.SetPassword(true)
		}
		c = tf
	}
	return c
}

func (f *Form) countryName(c phone.Country) string {
	return f.t("countries."+c.ISO, c.Name)
}

func (f *Form) phoneListText() widget.PhoneListText {
	return widget.PhoneListText{
		NewNumber: f.t("phones.new", "New number"),
		Type:      f.t("phones.type", "Type"),
		Notes:     f.t("phones.notes", "Notes"),
		Add:       f.t("phones.add", "Add"),
		Primary:   f.t("phones.primary", "primary"),
		Empty:     f.t("phones.empty", "No phone numbers"),
		Invalid:   f.t("errors.dialphone", "Enter a valid phone number with country code"),
		Hint:      f.t("phones.hint", "p primary · t type · x remove"),
		TypeName: func(t phone.Type) string {
			return f.t("phones.types."+string(t), string(t))
		},
	}
}

// change records an edit and clears that field's error.
func (f *Form) change(name string, v any) {
	f.values.Set(name, v)
	f.errs.Clear(name)
	if c, ok := f.controls[name]; ok {
		c.SetError("")
	}
}

// Set changes a field as if the user had edited it. It does nothing unless
// the form is editing.
func (f *Form) Set(name string, v any) {
	if f.state != StateEditing {
		return
	}
	f.change(name, v)
	fd, ok := f.entity.Field(name)
	if !ok {
		return
	}

	var (
		held    string
		opts    []widget.Option
		loading bool
	)
	if s, ok := f.selects[name]; ok {
		held, opts, loading = s.Label(), s.Options(), s.Loading()
	}
	c := f.newControl(fd, held)
	if s, ok := c.(*widget.Select); ok && fd.Source != nil {
		s.SetOptions(opts)
		s.SetLoading(loading)
	}
	if old, ok := f.controls[name].(interface{ Dispose() }); ok {
		old.Dispose()
	}
	if f.deps.T.IsRTL() {
		c.SetAlign(lipgloss.Right)
	}
	f.controls[name] = c
	f.layout()
}

// Focus moves keyboard focus to element id.
func (f *Form) Focus(id string) {
	if f.modal != nil {
		f.modal.SetFocus(id)
	}
}

// FocusedID returns the focused element.
func (f *Form) FocusedID() string {
	if f.modal == nil {
		return ""
	}
	return f.modal.FocusedID()
}

func (f *Form) loadOptions() tea.Cmd {
	f.optionsGen++
	if f.deps.Options == nil {
		for _, s := range f.selects {
			s.SetLoading(false)
		}
		return nil
	}
	sources := map[string]Source{}
	for _, fd := range f.fields {
		if fd.Kind == KindSelect && fd.Source != nil {
			sources[fd.Name] = *fd.Source
		}
	}
	if len(sources) == 0 {
		return nil
	}
	loader, gen, timeout := f.deps.Options, f.optionsGen, f.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		// failures are logged by the loader; selects keep their held labels
		opts, _ := loader.Load(ctx, sources)
		return optionsMsg{form: f, gen: gen, options: opts}
	}
}

// Validate checks every visible field, filling the field errors. It
// reports whether the form may be submitted.
func (f *Form) Validate() bool {
	ok := true
	for _, fd := range f.fields {
		v, _ := check(fd, f.values[fd.Name])
		if v.Tag == "" {
			continue
		}
		ok = false
		msg := ruleMessage(f.deps.T, fd, f.label(fd), v)
		f.errs.Set(fd.Name, msg)
		if c, found := f.controls[fd.Name]; found {
			c.SetError(msg)
		}
	}
	return ok
}

// Payload builds the request body from the form state.
func (f *Form) Payload() map[string]any {
	p := map[string]any{}
	for _, fd := range f.fields {
		v := f.values[fd.Name]
		switch fd.Kind {
		case KindCheckbox:
			p[fd.Name] = f.values.Bool(fd.Name)
		case KindPhones:
			l := f.values.Phones(fd.Name)
			if l == nil {
				l = phone.List{}
			}
			p[fd.Name] = l
		case KindNumber:
			s := strings.TrimSpace(f.values.String(fd.Name))
			if d, err := decimal.NewFromString(s); err == nil {
				p[fd.Name] = json.Number(d.String())
			} else {
				p[fd.Name] = nil
			}
		case KindSelect:
			if s := f.values.String(fd.Name); s != "" {
				p[fd.Name] = s
			} else {
				p[fd.Name] = nil
			}
		case KindPassword:
			// an empty password on edit means unchanged
			if s := f.values.String(fd.Name); s != "" {
				p[fd.Name] = s
			}
		default:
			s, _ := v.(string)
			p[fd.Name] = strings.TrimSpace(s)
		}
	}
	if f.entity.Payload != nil {
		f.entity.Payload(p, f.values, f.deps.User)
	}
	return p
}

// Submit validates and starts the mutation. It returns nil when the form
// is not editing, a submit is already in flight or validation failed.
func (f *Form) Submit() tea.Cmd {
	if f.state != StateEditing || f.inflight != 0 {
		return nil
	}
	f.errs.Clear(models.GeneralError)
	if !f.Validate() {
		return nil
	}

	f.nextToken++
	f.inflight = f.nextToken
	f.state = StateSubmitting

	var (
		payload = f.Payload()
		m       = f.deps.Mutator
		mode    = f.mode
		entity  = f.entity.Name
		id      = f.record.ID()
		token   = f.inflight
		timeout = f.deps.Timeout
	)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var (
			rec models.Record
			err error
		)
		if mode == ModeEdit {
			rec, err = m.Update(ctx, entity, id, payload)
		} else {
			rec, err = m.Create(ctx, entity, payload)
		}
		return submitDoneMsg{form: f, token: token, record: rec, err: err}
	}
}

// Cancel discards the edits and closes. It does nothing while submitting.
func (f *Form) Cancel() tea.Cmd {
	if f.state != StateEditing {
		return nil
	}
	f.close()
	entity := f.entity.Name
	return func() tea.Msg { return ClosedMsg{Entity: entity} }
}

func (f *Form) close() {
	f.dispose()
	f.state = StateClosed
	f.inflight = 0
	f.modal.Close()
}

// dispose releases listeners held by widgets.
func (f *Form) dispose() {
	for _, c := range f.controls {
		if d, ok := c.(interface{ Dispose() }); ok {
			d.Dispose()
		}
	}
}

func (f *Form) finish(msg submitDoneMsg) tea.Cmd {
	f.inflight = 0
	if msg.err != nil {
		f.state = StateEditing
		f.deps.Log.Warn("submit failed",
			zap.String("entity", f.entity.Name),
			zap.Stringer("mode", f.mode),
			zap.Error(msg.err))
		f.applyRemoteError(msg.err)
		return nil
	}

	f.errs.Reset()
	mode := f.mode
	if mode == ModeCreate {
		f.values.Reset()
	}
	f.close()

	key, fallback := f.entity.Singular+".created", f.entity.Label+" created"
	if mode == ModeEdit {
		key, fallback = f.entity.Singular+".updated", f.entity.Label+" updated"
	}
	saved := SavedMsg{
		Entity:  f.entity.Name,
		Mode:    mode,
		Record:  msg.record,
		Message: f.t(key, fallback),
	}
	return func() tea.Msg { return saved }
}

// Update handles input and async results.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case submitDoneMsg:
		if msg.form != f || msg.token != f.inflight || f.state != StateSubmitting {
			return nil
		}
		return f.finish(msg)

	case optionsMsg:
		if msg.form != f || msg.gen != f.optionsGen {
			return nil
		}
		for name, opts := range msg.options {
			if s, ok := f.selects[name]; ok {
				s.SetOptions(opts)
			}
		}
		for _, s := range f.selects {
			s.SetLoading(false)
		}
		return nil
	}

	if f.state == StateClosed {
		return nil
	}

	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		// the payload is already captured
		if f.state == StateSubmitting {
			return nil
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		action, cmd := f.modal.HandleKey(msg)
		return tea.Batch(cmd, f.act(action))
	case tea.MouseMsg:
		action, cmd := f.modal.HandleMouse(msg, f.deps.Mouse)
		return tea.Batch(cmd, f.act(action))
	}
	return f.modal.Update(msg)
}

func (f *Form) act(action string) tea.Cmd {
	switch action {
	case actionSubmit:
		return f.Submit()
	case actionCancel, modal.ActionClose:
		return f.Cancel()
	}
	return nil
}

// View renders the dialog over a width x height screen.
func (f *Form) View(width, height int) string {
	if f.state == StateClosed {
		return ""
	}
	for name, c := range f.controls {
		c.SetError(f.errs.Get(name))
	}
	return f.modal.Render(width, height, f.deps.Mouse)
}

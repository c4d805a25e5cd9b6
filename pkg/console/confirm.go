package console

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/api"
	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/pkg/console/modal"
	"github.com/marcus/bizdesk/pkg/console/mouse"
)

const (
	confirmActionOK     = "confirm"
	confirmActionCancel = "cancel"
)

// ConfirmRequest describes one confirmation. Run performs the confirmed
// action; Success is the toast text shown when it succeeds.
type ConfirmRequest struct {
	Title   string
	Message string
	Item    string
	Label   string
	Success string
	Run     func(ctx context.Context) error
}

// ConfirmedMsg reports that the confirmed action succeeded.
type ConfirmedMsg struct {
	Message string
}

type confirmDoneMsg struct {
	c     *ConfirmModal
	token int
	err   error
}

// ConfirmModal asks before a destructive action. Confirm runs the action
// once; while it is pending both buttons are disabled and a second confirm
// is ignored. Failures keep the dialog open with the error shown.
type ConfirmModal struct {
	modal   *modal.Modal
	t       *intl.Translator
	log     *zap.Logger
	mouse   *mouse.Handler
	timeout time.Duration

	req      ConfirmRequest
	err      string
	inflight int
	token    int
}

// NewConfirmModal returns a closed dialog.
func NewConfirmModal(t *intl.Translator, log *zap.Logger, handler *mouse.Handler, timeout time.Duration) *ConfirmModal {
	if log == nil {
		log = zap.NewNop()
	}
	if handler == nil {
		handler = mouse.NewHandler()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ConfirmModal{t: t, log: log, mouse: handler, timeout: timeout}
}

// Open shows the dialog for req, replacing any earlier request.
func (c *ConfirmModal) Open(req ConfirmRequest) {
	if c.Pending() {
		return
	}
	c.req = req
	c.err = ""

	rtl := c.t.IsRTL()
	pos := lipgloss.Right
	align := lipgloss.Left
	if rtl {
		pos, align = lipgloss.Left, lipgloss.Right
	}
	label := req.Label
	if label == "" {
		label = c.t.T("actions.delete", "Delete")
	}
	pending := c.Pending

	c.modal = modal.New(req.Title,
		modal.WithSize(modal.SizeSmall),
		modal.WithVariant(modal.VariantDanger),
		modal.WithPrimaryAction(confirmActionOK),
		modal.WithRTL(rtl),
		modal.WithHintText(c.t.T("hints.confirm", "enter confirm · esc cancel")),
	)
	c.modal.SetSections(
		modal.Text(req.Message, modal.TextAlign(align)),
		modal.Text(req.Item, modal.TextStyle(modal.ModalTitle), modal.TextAlign(align)),
		modal.Custom(c.renderError, nil),
		modal.Spacer(),
		modal.ButtonsAligned(pos,
			modal.Btn(c.t.T("actions.cancel", "Cancel"), confirmActionCancel, modal.BtnDisabled(pending)),
			modal.Btn(label, confirmActionOK, modal.BtnDanger(),
				modal.BtnBusy(pending, c.t.T("actions.deleting", "Deleting…"))),
		),
	)
	c.modal.Open()
	c.modal.SetFocus(confirmActionCancel)
}

func (c *ConfirmModal) renderError(width int, _, _ string) modal.RenderedSection {
	if c.err == "" {
		return modal.RenderedSection{}
	}
	return modal.RenderedSection{Content: modal.ErrorText.Width(width).Render(c.err)}
}

// IsOpen reports whether the dialog is showing.
func (c *ConfirmModal) IsOpen() bool {
	return c.modal != nil && c.modal.IsOpen()
}

// Pending reports whether the action is running.
func (c *ConfirmModal) Pending() bool { return c.inflight != 0 }

// Err returns the error from the last failed attempt.
func (c *ConfirmModal) Err() string { return c.err }

// Cancel closes the dialog without running the action. It does nothing
// while the action is pending.
func (c *ConfirmModal) Cancel() {
	if !c.IsOpen() || c.Pending() {
		return
	}
	c.modal.Close()
}

// Confirm starts the action. It returns nil when the dialog is closed or
// the action is already running.
func (c *ConfirmModal) Confirm() tea.Cmd {
	if !c.IsOpen() || c.Pending() || c.req.Run == nil {
		return nil
	}
	c.err = ""
	c.token++
	c.inflight = c.token

	run, token, timeout := c.req.Run, c.inflight, c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return confirmDoneMsg{c: c, token: token, err: run(ctx)}
	}
}

// Update handles input and the action's result.
func (c *ConfirmModal) Update(msg tea.Msg) tea.Cmd {
	if done, ok := msg.(confirmDoneMsg); ok {
		if done.c != c || done.token != c.inflight {
			return nil
		}
		c.inflight = 0
		if done.err != nil {
			c.log.Warn("confirm action failed", zap.String("title", c.req.Title), zap.Error(done.err))
			c.err = c.errorText(done.err)
			return nil
		}
		c.modal.Close()
		text := c.req.Success
		return func() tea.Msg { return ConfirmedMsg{Message: text} }
	}

	if !c.IsOpen() {
		return nil
	}
	var action string
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		action, cmd = c.modal.HandleKey(msg)
	case tea.MouseMsg:
		action, cmd = c.modal.HandleMouse(msg, c.mouse)
	default:
		return c.modal.Update(msg)
	}
	switch action {
	case confirmActionOK:
		return tea.Batch(cmd, c.Confirm())
	case confirmActionCancel, modal.ActionClose:
		c.Cancel()
	}
	return cmd
}

func (c *ConfirmModal) errorText(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return c.t.T("errors.timeout", "The server took too long to respond. Please try again.")
	case errors.Is(err, context.Canceled):
		return c.t.T("errors.canceled", "The request was cancelled.")
	}
	var se *api.StructuredError
	if !errors.As(err, &se) {
		return c.t.T("errors.network", "Could not reach the server. Check your connection and try again.")
	}
	if se.Message != "" {
		return se.Message
	}
	return c.t.T("errors.unexpected", "Something went wrong. Please try again.")
}

// View renders the dialog over a width x height screen.
func (c *ConfirmModal) View(width, height int) string {
	if !c.IsOpen() {
		return ""
	}
	return c.modal.Render(width, height, c.mouse)
}

// Package modal provides declarative dialogs with automatic hit region
// management for mouse support.
//
// A modal is built once, opened and closed many times. While closed it
// renders nothing and registers no regions. While open it draws a dimmed
// backdrop with a centered panel whose width comes from a fixed Size class.
// Regions are registered in priority order (backdrop, panel, close glyph,
// then each focusable element) so a click inside the panel never reaches the
// backdrop.
//
// # Quick Start
//
//	m := modal.New("Delete lead", modal.WithSize(modal.SizeSmall), modal.WithVariant(modal.VariantDanger)).
//	    AddSection(modal.Text("Delete Ali?")).
//	    AddSection(modal.Spacer()).
//	    AddSection(modal.Buttons(
//	        modal.Btn(" Cancel ", "cancel"),
//	        modal.Btn(" Delete ", "delete", modal.BtnDanger(), modal.BtnBusy(isDeleting, " Deleting… ")),
//	    ))
//	m.Open()
//
//	// In View():
//	handler.Clear()
//	overlay := m.Render(screenW, screenH, handler)
//
//	// In Update():
//	action, cmd := m.HandleKey(keyMsg)          // or m.HandleMouse(mouseMsg, handler)
//	switch action {
//	case modal.ActionClose, "cancel":
//	    m.Close()
//	case "delete":
//	    return m, deleteCmd
//	}
//
// # Built-in Sections
//
//   - Text(s, opts...) - static text, wrapped and aligned
//   - Spacer() - blank line
//   - Buttons(btns...) / ButtonsAligned(pos, btns...) - button row; disabled and busy states
//   - List(id, items, selectedIdx, opts...) - scrollable list
//   - When(cond, section) - conditional rendering
//   - Custom(render, update) - escape hatch; the console widgets use it or
//     implement Section directly
//
// Sections receive tea.KeyMsg for the focused element, ClickMsg and WheelMsg
// for pointer events on their elements, and every other message through
// Modal.Update. A section returns an action id to report activation, or
// ActionBlur to drop focus.
package modal

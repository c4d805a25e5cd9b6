// Package mouse maps terminal mouse events onto rectangular hit regions
// registered while rendering.
package mouse

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DoubleClickWindow is the maximum gap between clicks of a double click.
const DoubleClickWindow = 400 * time.Millisecond

// Rect is a screen rectangle. W and H are exclusive bounds.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named hit area.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds the regions of the current frame. Later regions win.
type HitMap struct {
	regions []Region
}

// NewHitMap returns an empty hit map.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// AddRect registers a region.
func (hm *HitMap) AddRect(id string, x, y, w, h int, data any) {
	hm.regions = append(hm.regions, Region{ID: id, Rect: Rect{X: x, Y: y, W: w, H: h}, Data: data})
}

// Test returns the topmost region at (x, y), or nil.
func (hm *HitMap) Test(x, y int) *Region {
	for i := len(hm.regions) - 1; i >= 0; i-- {
		if hm.regions[i].Rect.Contains(x, y) {
			return &hm.regions[i]
		}
	}
	return nil
}

// Clear removes every region.
func (hm *HitMap) Clear() {
	hm.regions = hm.regions[:0]
}

// Regions returns the registered regions in priority order (lowest first).
func (hm *HitMap) Regions() []Region {
	return hm.regions
}

// ActionType classifies a mouse event.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionHover
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
	ActionDrag
	ActionDragEnd
)

// Action is the result of HandleMouse.
type Action struct {
	Type           ActionType
	Region         *Region
	X, Y           int
	DragDX, DragDY int
}

// ClickResult is the result of HandleClick.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// PointerDownFunc observes every press, wherever it lands. It returns true
// to consume the press.
type PointerDownFunc func(x, y int, region *Region) bool

type listener struct {
	id string
	fn PointerDownFunc
}

// Handler tracks hit regions, click timing, drags and pointer-down
// listeners for one program.
type Handler struct {
	HitMap *HitMap

	lastClickRegion string
	lastClickTime   time.Time
	now             func() time.Time

	dragging       bool
	dragRegion     string
	dragStartX     int
	dragStartY     int
	dragStartValue int

	listeners []listener
}

// NewHandler returns a handler with an empty hit map.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// HandleClick resolves a click and detects double clicks on the same region.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)
	if region == nil {
		h.lastClickRegion = ""
		return ClickResult{}
	}

	now := h.now()
	double := h.lastClickRegion == region.ID && now.Sub(h.lastClickTime) <= DoubleClickWindow
	if double {
		h.lastClickRegion = ""
	} else {
		h.lastClickRegion = region.ID
		h.lastClickTime = now
	}
	return ClickResult{Region: region, IsDoubleClick: double}
}

// OnPointerDown registers fn under id, replacing any listener with that id.
func (h *Handler) OnPointerDown(id string, fn PointerDownFunc) {
	for i := range h.listeners {
		if h.listeners[i].id == id {
			h.listeners[i].fn = fn
			return
		}
	}
	h.listeners = append(h.listeners, listener{id: id, fn: fn})
}

// Release removes the listener registered under id. Unknown ids are ignored.
func (h *Handler) Release(id string) {
	for i := range h.listeners {
		if h.listeners[i].id == id {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// Listening reports whether a listener is registered under id.
func (h *Handler) Listening(id string) bool {
	for _, l := range h.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of registered pointer-down listeners.
func (h *Handler) ListenerCount() int {
	return len(h.listeners)
}

// dispatchPointerDown runs listeners newest first; the first to consume the
// press stops propagation.
func (h *Handler) dispatchPointerDown(x, y int, region *Region) bool {
	snapshot := make([]listener, len(h.listeners))
	copy(snapshot, h.listeners)
	for i := len(snapshot) - 1; i >= 0; i-- {
		if snapshot[i].fn(x, y, region) {
			return true
		}
	}
	return false
}

// StartDrag begins a drag at (x, y) on region, remembering a start value.
func (h *Handler) StartDrag(x, y int, region string, startValue int) {
	h.dragging = true
	h.dragRegion = region
	h.dragStartX = x
	h.dragStartY = y
	h.dragStartValue = startValue
}

// DragDelta returns the offset from the drag start.
func (h *Handler) DragDelta(x, y int) (int, int) {
	return x - h.dragStartX, y - h.dragStartY
}

// EndDrag stops dragging.
func (h *Handler) EndDrag() {
	h.dragging = false
	h.dragRegion = ""
}

func (h *Handler) IsDragging() bool    { return h.dragging }
func (h *Handler) DragRegion() string  { return h.dragRegion }
func (h *Handler) DragStartValue() int { return h.dragStartValue }

// HandleMouse classifies msg. Presses go to pointer-down listeners first;
// a consumed press yields ActionNone.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	region := h.HitMap.Test(msg.X, msg.Y)
	a := Action{Region: region, X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionMotion:
		if h.dragging {
			a.Type = ActionDrag
			a.DragDX, a.DragDY = h.DragDelta(msg.X, msg.Y)
			return a
		}
		a.Type = ActionHover
		return a

	case tea.MouseActionRelease:
		if h.dragging {
			a.Type = ActionDragEnd
			a.DragDX, a.DragDY = h.DragDelta(msg.X, msg.Y)
			h.EndDrag()
			return a
		}
		return a
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.Type = ActionScrollUp
		if msg.Shift {
			a.Type = ActionScrollLeft
		}
	case tea.MouseButtonWheelDown:
		a.Type = ActionScrollDown
		if msg.Shift {
			a.Type = ActionScrollRight
		}
	case tea.MouseButtonWheelLeft:
		a.Type = ActionScrollLeft
	case tea.MouseButtonWheelRight:
		a.Type = ActionScrollRight
	case tea.MouseButtonLeft:
		if h.dispatchPointerDown(msg.X, msg.Y, region) {
			return Action{Type: ActionNone, X: msg.X, Y: msg.Y}
		}
		res := h.HandleClick(msg.X, msg.Y)
		a.Type = ActionClick
		if res.IsDoubleClick {
			a.Type = ActionDoubleClick
		}
	}
	return a
}

// Clear drops the frame's regions. Listeners survive; they belong to the
// components that registered them.
func (h *Handler) Clear() {
	h.HitMap.Clear()
}

// SortedIDs returns region ids, useful in tests and debug output.
func (h *Handler) SortedIDs() []string {
	ids := make([]string, 0, len(h.HitMap.regions))
	for _, r := range h.HitMap.regions {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

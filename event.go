package tray

import "strings"

// MouseButton identifies the button of a tray icon click.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
)

// Event is a user interaction reported by the tray host. It is one of
// [ClickEvent], [ScrollEvent], or [MenuClickEvent].
type Event interface {
	isEvent()
}

// ClickEvent is a click on the tray icon itself. X and Y are screen
// coordinates and are a hint about where to show eventual windows.
type ClickEvent struct {
	Button MouseButton
	X, Y   int32
}

func (ClickEvent) isEvent() {}

// ScrollEvent is a scroll over the tray icon. Exactly one of DeltaX and
// DeltaY is non-zero.
type ScrollEvent struct {
	DeltaX, DeltaY int32
}

func (ScrollEvent) isEvent() {}

// MenuClickEvent is an activation of a menu entry, carrying the
// caller-assigned id of the [Submenu] that was clicked.
type MenuClickEvent struct {
	ID string
}

func (MenuClickEvent) isEvent() {}

// rawEvent is the fan-in vocabulary the two bus objects reduce their
// native event shapes to.
type rawEvent struct {
	kind        rawEventKind
	x, y        int32
	delta       int32
	orientation string
	userID      string
}

type rawEventKind int

const (
	rawActivate rawEventKind = iota
	rawSecondaryActivate
	rawScroll
	rawMenuClick
)

// normalize maps a raw bus event to the public event vocabulary.
func (e rawEvent) normalize() Event {
	switch e.kind {
	case rawActivate:
		return ClickEvent{Button: MouseLeft, X: e.x, Y: e.y}
	case rawSecondaryActivate:
		return ClickEvent{Button: MouseMiddle, X: e.x, Y: e.y}
	case rawScroll:
		if strings.Contains(strings.ToLower(e.orientation), "horizontal") {
			return ScrollEvent{DeltaX: e.delta}
		}
		return ScrollEvent{DeltaY: e.delta}
	case rawMenuClick:
		return MenuClickEvent{ID: e.userID}
	}

	return nil
}

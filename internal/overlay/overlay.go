// Package overlay drives an always-on-top companion window: its visibility,
// click-through interactivity, placement, and focus, plus the message
// channel between the window host and the UI it renders.
package overlay

import "fmt"

// State is the observable window state.
type State int

const (
	Hidden State = iota
	VisibleInteractive
	VisiblePassive
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case VisibleInteractive:
		return "visible_interactive"
	case VisiblePassive:
		return "visible_passive"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Point is a screen coordinate.
type Point struct {
	X, Y int
}

// Rect is a screen rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Level is an always-on-top stacking level.
type Level string

// LevelFloating stacks above normal and full-screen application windows.
const LevelFloating Level = "floating"

// Window is the windowing-system handle the controller drives. Calls are
// fire-and-forget and are only made from the controller's event loop.
type Window interface {
	Bounds() Rect
	SetPosition(p Point)
	Show()
	Hide()
	SetAlwaysOnTop(on bool, level Level)
	SetVisibleOnAllWorkspaces(on bool)
	// SetIgnoreMouseEvents toggles click-through.
	SetIgnoreMouseEvents(ignore bool)
	Focus()
	Blur()
	// FocusInput moves focus to the UI's text entry.
	FocusInput()
	Destroy()
}

// Display reports the primary display's work area.
type Display interface {
	WorkArea() Rect
}

// Hotkeys registers global keyboard shortcuts.
type Hotkeys interface {
	Register(accelerator string, fn func()) error
	UnregisterAll()
}

// MenuItem is a tray context-menu entry.
type MenuItem struct {
	Label  string
	Action func()
}

// Tray is the system tray icon.
type Tray interface {
	Setup(tooltip string, menu []MenuItem, onClick func()) error
	Remove()
}

// UIMessage is a message from the UI to the host.
type UIMessage int

const (
	ToggleFocusMode UIMessage = iota + 1
	RequestInputFocus
	HideWindow
	MinimizeWindow
)

var uiMessageNames = map[UIMessage]string{
	ToggleFocusMode:   "toggle-focus-mode",
	RequestInputFocus: "request-input-focus",
	HideWindow:        "hide-window",
	MinimizeWindow:    "minimize-window",
}

func (m UIMessage) String() string {
	if name, ok := uiMessageNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ui-message(%d)", int(m))
}

// ParseUIMessage maps a channel name such as "hide-window" to its UIMessage.
func ParseUIMessage(name string) (UIMessage, bool) {
	for m, n := range uiMessageNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// EventKind is the kind of a host-to-UI notification.
type EventKind int

const (
	FocusModeChanged EventKind = iota + 1
	VisibilityChanged
)

func (k EventKind) String() string {
	switch k {
	case FocusModeChanged:
		return "focus-mode-changed"
	case VisibilityChanged:
		return "visibility-changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a host-to-UI notification.
type Event struct {
	Kind  EventKind
	Value bool
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%t)", e.Kind, e.Value)
}

// Snapshot is a consistent view of the controller's state.
type Snapshot struct {
	State       State
	Visible     bool
	Interactive bool
	Position    Point
	Ready       bool
	Quitting    bool
	Generation  uint64
}

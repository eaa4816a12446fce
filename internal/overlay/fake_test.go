package overlay

import (
	"sort"
	"sync"
	"time"
)

type fakeWindow struct {
	mu        sync.Mutex
	bounds    Rect
	calls     []string
	position  Point
	shown     bool
	ignore    bool
	onTop     bool
	level     Level
	allSpaces bool
	destroyed bool
}

func newFakeWindow(w, h int) *fakeWindow {
	return &fakeWindow{bounds: Rect{Width: w, Height: h}}
}

func (w *fakeWindow) record(call string) {
	w.calls = append(w.calls, call)
}

func (w *fakeWindow) Bounds() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *fakeWindow) SetPosition(p Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("set-position")
	w.position = p
}

func (w *fakeWindow) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("show")
	w.shown = true
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("hide")
	w.shown = false
}

func (w *fakeWindow) SetAlwaysOnTop(on bool, level Level) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("always-on-top")
	w.onTop, w.level = on, level
}

func (w *fakeWindow) SetVisibleOnAllWorkspaces(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("all-workspaces")
	w.allSpaces = on
}

func (w *fakeWindow) SetIgnoreMouseEvents(ignore bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("ignore-mouse")
	w.ignore = ignore
}

func (w *fakeWindow) Focus() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("focus")
}

func (w *fakeWindow) Blur() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("blur")
}

func (w *fakeWindow) FocusInput() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("focus-input")
}

func (w *fakeWindow) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("destroy")
	w.destroyed = true
}

func (w *fakeWindow) count(call string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c == call {
			n++
		}
	}
	return n
}

type windowState struct {
	position  Point
	shown     bool
	ignore    bool
	onTop     bool
	level     Level
	allSpaces bool
	destroyed bool
}

func (w *fakeWindow) state() windowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return windowState{
		position:  w.position,
		shown:     w.shown,
		ignore:    w.ignore,
		onTop:     w.onTop,
		level:     w.level,
		allSpaces: w.allSpaces,
		destroyed: w.destroyed,
	}
}

type fakeDisplay struct {
	area Rect
}

func (d fakeDisplay) WorkArea() Rect {
	return d.area
}

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that came due, in
// due order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due, pending []*manualTimer
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.stopped = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.timers = pending
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type fakeHotkeys struct {
	mu         sync.Mutex
	registered map[string]func()
	failOn     string
	cleared    bool
}

func (h *fakeHotkeys) Register(accelerator string, fn func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if accelerator == h.failOn {
		return errHotkeyTaken
	}
	if h.registered == nil {
		h.registered = map[string]func(){}
	}
	h.registered[accelerator] = fn
	return nil
}

func (h *fakeHotkeys) UnregisterAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered = nil
	h.cleared = true
}

func (h *fakeHotkeys) press(accelerator string) bool {
	h.mu.Lock()
	fn, ok := h.registered[accelerator]
	h.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

type fakeTray struct {
	mu      sync.Mutex
	tooltip string
	menu    []MenuItem
	onClick func()
	removed bool
}

func (t *fakeTray) Setup(tooltip string, menu []MenuItem, onClick func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tooltip, t.menu, t.onClick = tooltip, menu, onClick
	return nil
}

func (t *fakeTray) Remove() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removed = true
}

func (t *fakeTray) click() {
	t.mu.Lock()
	fn := t.onClick
	t.mu.Unlock()
	fn()
}

func (t *fakeTray) choose(label string) bool {
	t.mu.Lock()
	menu := t.menu
	t.mu.Unlock()
	for _, item := range menu {
		if item.Label == label {
			item.Action()
			return true
		}
	}
	return false
}

package overlay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/logging"
)

// Defaults for Options fields left zero.
const (
	DefaultWidth                 = 400
	DefaultHeight                = 600
	DefaultPadding               = 20
	DefaultAutoHideDelay         = 3 * time.Second
	DefaultShowFocusDelay        = 100 * time.Millisecond
	DefaultInteractiveFocusDelay = 50 * time.Millisecond
	DefaultHotkeyToggle          = "CommandOrControl+."
	DefaultHotkeyInteract        = "CommandOrControl+Shift+."
	DefaultEventBuffer           = 16

	TrayTooltip  = "ChatStevePT - Minecraft Assistant"
	MenuShowHide = "Show/Hide ChatStevePT"
	MenuQuit     = "Quit"
)

// ErrStarted is returned by Start when the controller is already running.
var ErrStarted = errors.New("overlay: controller already started")

// Options configures a Controller.
type Options struct {
	// Width and Height are used for placement when the window reports
	// empty bounds.
	Width, Height int

	// Padding is the gap between the window and the work area's
	// bottom-right corner.
	Padding int

	// AutoHideDelay is how long the first show stays up without input.
	AutoHideDelay time.Duration

	// ShowFocusDelay and InteractiveFocusDelay give the UI time to render
	// before its text entry is focused.
	ShowFocusDelay        time.Duration
	InteractiveFocusDelay time.Duration

	HotkeyToggle   string
	HotkeyInteract string

	// EventBuffer is the capacity of the Events channel.
	EventBuffer int

	Scheduler Scheduler
	Hotkeys   Hotkeys
	Tray      Tray
	Logger    logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.AutoHideDelay == 0 {
		o.AutoHideDelay = DefaultAutoHideDelay
	}
	if o.ShowFocusDelay == 0 {
		o.ShowFocusDelay = DefaultShowFocusDelay
	}
	if o.InteractiveFocusDelay == 0 {
		o.InteractiveFocusDelay = DefaultInteractiveFocusDelay
	}
	if o.HotkeyToggle == "" {
		o.HotkeyToggle = DefaultHotkeyToggle
	}
	if o.HotkeyInteract == "" {
		o.HotkeyInteract = DefaultHotkeyInteract
	}
	if o.EventBuffer == 0 {
		o.EventBuffer = DefaultEventBuffer
	}
	if o.Scheduler == nil {
		o.Scheduler = Clock{}
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Controller owns the overlay window. All state lives in a single event
// loop goroutine; public methods post commands to it.
type Controller struct {
	win     Window
	display Display
	opts    Options
	log     logrus.FieldLogger

	inbox  chan func()
	events chan Event
	quit   chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	started  bool
	stopped  bool
	final    Snapshot
	quitOnce sync.Once

	// Owned by the event loop.
	visible       bool
	interactive   bool
	position      Point
	ready         bool
	autoHideArmed bool
	quitting      bool
	closeAllowed  bool
	gen           uint64
	timerSeq      int
	timers        map[int]Timer
}

// New creates a Controller for win on display. Nothing happens until Start.
func New(win Window, display Display, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		win:     win,
		display: display,
		opts:    opts,
		log:     opts.Logger.WithField("component", "overlay"),
		inbox:   make(chan func()),
		events:  make(chan Event, opts.EventBuffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		timers:  make(map[int]Timer),
	}
}

// Start registers hotkeys and the tray icon and runs the event loop until
// ctx is cancelled or Shutdown is called. Registration failures are logged;
// the overlay still works through the remaining inputs.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return ErrStarted
	}
	c.started = true
	c.mu.Unlock()

	if c.opts.Hotkeys != nil {
		if err := c.opts.Hotkeys.Register(c.opts.HotkeyToggle, c.ToggleVisibility); err != nil {
			c.log.WithError(err).WithField("accelerator", c.opts.HotkeyToggle).Warn("hotkey registration failed")
		}
		if err := c.opts.Hotkeys.Register(c.opts.HotkeyInteract, c.ToggleInteractivity); err != nil {
			c.log.WithError(err).WithField("accelerator", c.opts.HotkeyInteract).Warn("hotkey registration failed")
		}
	}
	if c.opts.Tray != nil {
		menu := []MenuItem{
			{Label: MenuShowHide, Action: c.ToggleVisibility},
			{Label: MenuQuit, Action: c.Quit},
		}
		if err := c.opts.Tray.Setup(TrayTooltip, menu, c.ToggleVisibility); err != nil {
			c.log.WithError(err).Warn("tray setup failed")
		}
	}

	go c.run(ctx)
	return nil
}

func (c *Controller) run(ctx context.Context) {
	c.log.Debug("event loop started")
	defer c.cleanup()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.inbox:
			if fn == nil {
				return
			}
			fn()
		}
	}
}

func (c *Controller) cleanup() {
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	if c.opts.Hotkeys != nil {
		c.opts.Hotkeys.UnregisterAll()
	}
	if c.opts.Tray != nil {
		c.opts.Tray.Remove()
	}
	if !c.closeAllowed {
		c.win.Destroy()
	}

	c.mu.Lock()
	c.stopped = true
	c.final = c.snapshot()
	c.mu.Unlock()

	close(c.events)
	close(c.done)
	c.log.Debug("event loop stopped")
}

// Shutdown stops the event loop, releases hotkeys and the tray icon, and
// destroys the window. It blocks until the loop has exited and is safe to
// call more than once.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if !c.started {
		if !c.stopped {
			c.stopped = true
			close(c.events)
			close(c.done)
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	select {
	case c.inbox <- nil:
	case <-c.done:
	}
	<-c.done
}

// Done is closed once the event loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Events delivers host-to-UI notifications. It is closed on shutdown.
// Events are dropped, with a warning, when the buffer is full.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Quitting is closed when a quit has been requested, e.g. from the tray
// menu. The host should then close the window and call Shutdown.
func (c *Controller) Quitting() <-chan struct{} {
	return c.quit
}

// post queues fn on the event loop. It reports false if the loop is gone.
func (c *Controller) post(fn func()) bool {
	select {
	case c.inbox <- fn:
		return true
	case <-c.done:
		return false
	}
}

// call runs fn on the event loop and waits for it.
func (c *Controller) call(fn func()) bool {
	finished := make(chan struct{})
	if !c.post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-c.done:
		return false
	}
}

// ToggleVisibility shows a hidden window or hides a visible one.
func (c *Controller) ToggleVisibility() {
	c.post(c.toggleVisibility)
}

// ToggleInteractivity switches a visible window between interactive and
// click-through. It does nothing while hidden.
func (c *Controller) ToggleInteractivity() {
	c.post(c.toggleInteractivity)
}

// RenderReady signals that the UI surface can be shown. The first call
// shows the window and arms the one-shot auto-hide.
func (c *Controller) RenderReady() {
	c.post(c.renderReady)
}

// Send delivers a UI message to the host.
func (c *Controller) Send(msg UIMessage) {
	c.post(func() { c.handleUI(msg) })
}

// Quit marks the application as quitting. Close requests are allowed from
// then on.
func (c *Controller) Quit() {
	c.post(c.markQuitting)
}

// CloseRequested handles a close request from the windowing system. It
// reports whether the window may really be destroyed; otherwise the window
// is hidden and stays alive. Once the loop has stopped, closing is allowed.
func (c *Controller) CloseRequested() bool {
	allow := true
	c.call(func() { allow = c.closeRequested() })
	return allow
}

// Snapshot returns the current state. After shutdown it returns the final
// state.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot
	if c.call(func() { s = c.snapshot() }) {
		return s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.final
}

// State returns the current window state.
func (c *Controller) State() State {
	return c.Snapshot().State
}

// Everything below runs on the event loop.

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		Visible:     c.visible,
		Interactive: c.interactive,
		Position:    c.position,
		Ready:       c.ready,
		Quitting:    c.quitting,
		Generation:  c.gen,
	}
	switch {
	case !c.visible:
		s.State = Hidden
	case c.interactive:
		s.State = VisibleInteractive
	default:
		s.State = VisiblePassive
	}
	return s
}

func (c *Controller) toggleVisibility() {
	if c.visible {
		c.hide()
		return
	}
	c.show()
}

func (c *Controller) renderReady() {
	if c.ready {
		return
	}
	c.ready = true
	c.log.Debug("render surface ready")
	c.show()
	if !c.autoHideArmed {
		c.autoHideArmed = true
		c.schedule("auto-hide", c.opts.AutoHideDelay, c.hide)
	}
}

func (c *Controller) show() {
	if !c.ready {
		c.log.Debug("show deferred until render surface is ready")
		return
	}
	if c.visible {
		return
	}
	c.gen++

	c.position = c.placement()
	c.win.SetPosition(c.position)
	c.win.SetAlwaysOnTop(true, LevelFloating)
	c.win.SetVisibleOnAllWorkspaces(true)
	c.win.Show()
	c.visible = true
	c.setInteractive(true)

	c.publish(Event{Kind: VisibilityChanged, Value: true})
	c.publish(Event{Kind: FocusModeChanged, Value: true})

	c.schedule("show-focus", c.opts.ShowFocusDelay, func() {
		if c.visible && c.interactive {
			c.win.Focus()
			c.win.FocusInput()
		}
	})

	c.log.WithFields(logrus.Fields{
		"x": c.position.X, "y": c.position.Y, "gen": c.gen,
	}).Debug("shown")
}

func (c *Controller) hide() {
	if !c.visible {
		return
	}
	c.gen++
	c.win.Hide()
	c.visible = false
	c.publish(Event{Kind: VisibilityChanged, Value: false})
	c.log.WithField("gen", c.gen).Debug("hidden")
}

func (c *Controller) toggleInteractivity() {
	if !c.visible {
		c.log.Debug("interactivity toggle ignored while hidden")
		return
	}
	c.gen++
	c.setInteractive(!c.interactive)
	c.publish(Event{Kind: FocusModeChanged, Value: c.interactive})
}

func (c *Controller) setInteractive(on bool) {
	c.interactive = on
	if !on {
		c.win.SetIgnoreMouseEvents(true)
		c.win.Blur()
		return
	}
	c.win.SetIgnoreMouseEvents(false)
	c.win.Focus()
	c.schedule("input-focus", c.opts.InteractiveFocusDelay, func() {
		if c.visible && c.interactive {
			c.win.FocusInput()
		}
	})
}

func (c *Controller) handleUI(msg UIMessage) {
	switch msg {
	case ToggleFocusMode:
		c.toggleInteractivity()
	case RequestInputFocus:
		if c.visible && c.interactive {
			c.win.Focus()
			c.win.FocusInput()
		}
	case HideWindow, MinimizeWindow:
		// The overlay has no taskbar entry to minimize to.
		c.hide()
	default:
		c.log.WithField("message", msg.String()).Warn("unknown UI message")
	}
}

func (c *Controller) markQuitting() {
	if c.quitting {
		return
	}
	c.quitting = true
	c.gen++
	c.quitOnce.Do(func() { close(c.quit) })
	c.log.Info("quit requested")
}

func (c *Controller) closeRequested() bool {
	if c.quitting {
		c.closeAllowed = true
		return true
	}
	c.log.Debug("close request converted to hide")
	c.hide()
	return false
}

// placement puts the window at the bottom-right of the primary work area.
func (c *Controller) placement() Point {
	wa := c.display.WorkArea()
	b := c.win.Bounds()
	w, h := b.Width, b.Height
	if w <= 0 || h <= 0 {
		w, h = c.opts.Width, c.opts.Height
	}
	return Point{
		X: wa.X + wa.Width - w - c.opts.Padding,
		Y: wa.Y + wa.Height - h - c.opts.Padding,
	}
}

func (c *Controller) publish(e Event) {
	select {
	case c.events <- e:
	default:
		c.log.WithField("event", e.String()).Warn("event dropped; UI is not draining")
	}
}

// schedule runs fn on the loop after d, unless a transition happens first.
func (c *Controller) schedule(name string, d time.Duration, fn func()) {
	gen := c.gen
	c.timerSeq++
	id := c.timerSeq
	c.timers[id] = c.opts.Scheduler.AfterFunc(d, func() {
		c.post(func() {
			delete(c.timers, id)
			if c.gen != gen {
				c.log.WithFields(logrus.Fields{
					"timer": name, "scheduled_gen": gen, "gen": c.gen,
				}).Debug("stale timer ignored")
				return
			}
			fn()
		})
	})
}

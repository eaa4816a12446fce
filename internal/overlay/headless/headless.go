// Package headless is an overlay backend with no real window. It logs every
// window operation and is driven by line commands, which makes the overlay
// state machine usable from a terminal or a script.
package headless

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/overlay"
)

// Backend implements overlay.Window, overlay.Display, overlay.Hotkeys and
// overlay.Tray.
type Backend struct {
	log      logrus.FieldLogger
	workArea overlay.Rect

	outMu sync.Mutex
	out   io.Writer

	mu        sync.Mutex
	bounds    overlay.Rect
	hotkeys   map[string]func()
	menu      []overlay.MenuItem
	onClick   func()
	destroyed bool
}

// New creates a backend whose window is width x height on a display with
// the given work area. Command replies go to out.
func New(width, height int, workArea overlay.Rect, out io.Writer, logger logrus.FieldLogger) *Backend {
	return &Backend{
		log:      logger.WithField("component", "headless"),
		workArea: workArea,
		out:      out,
		bounds:   overlay.Rect{Width: width, Height: height},
		hotkeys:  make(map[string]func()),
	}
}

// ParseSize parses "WIDTHxHEIGHT" into a rectangle at the origin.
func ParseSize(s string) (overlay.Rect, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return overlay.Rect{}, fmt.Errorf("size %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return overlay.Rect{}, fmt.Errorf("size %q: bad width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return overlay.Rect{}, fmt.Errorf("size %q: bad height", s)
	}
	return overlay.Rect{Width: width, Height: height}, nil
}

func (b *Backend) printf(format string, args ...any) {
	b.outMu.Lock()
	defer b.outMu.Unlock()
	fmt.Fprintf(b.out, format+"\n", args...)
}

func (b *Backend) op(name string, fields logrus.Fields) {
	b.log.WithFields(fields).WithField("op", name).Info("window")
}

// Window

func (b *Backend) Bounds() overlay.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bounds
}

func (b *Backend) SetPosition(p overlay.Point) {
	b.mu.Lock()
	b.bounds.X, b.bounds.Y = p.X, p.Y
	b.mu.Unlock()
	b.op("set-position", logrus.Fields{"x": p.X, "y": p.Y})
}

func (b *Backend) Show() { b.op("show", nil) }
func (b *Backend) Hide() { b.op("hide", nil) }

func (b *Backend) SetAlwaysOnTop(on bool, level overlay.Level) {
	b.op("always-on-top", logrus.Fields{"on": on, "level": level})
}

func (b *Backend) SetVisibleOnAllWorkspaces(on bool) {
	b.op("all-workspaces", logrus.Fields{"on": on})
}

func (b *Backend) SetIgnoreMouseEvents(ignore bool) {
	b.op("ignore-mouse-events", logrus.Fields{"ignore": ignore})
}

func (b *Backend) Focus()      { b.op("focus", nil) }
func (b *Backend) Blur()       { b.op("blur", nil) }
func (b *Backend) FocusInput() { b.op("focus-input", nil) }

func (b *Backend) Destroy() {
	b.mu.Lock()
	already := b.destroyed
	b.destroyed = true
	b.mu.Unlock()
	if !already {
		b.op("destroy", nil)
	}
}

// Destroyed reports whether the window has been destroyed.
func (b *Backend) Destroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

// Display

func (b *Backend) WorkArea() overlay.Rect {
	return b.workArea
}

// Hotkeys

func (b *Backend) Register(accelerator string, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.hotkeys[accelerator]; taken {
		return fmt.Errorf("accelerator %q already registered", accelerator)
	}
	b.hotkeys[accelerator] = fn
	b.log.WithField("accelerator", accelerator).Debug("hotkey registered")
	return nil
}

func (b *Backend) UnregisterAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hotkeys = make(map[string]func())
	b.log.Debug("hotkeys unregistered")
}

// Tray

func (b *Backend) Setup(tooltip string, menu []overlay.MenuItem, onClick func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menu, b.onClick = menu, onClick
	b.log.WithField("tooltip", tooltip).Debug("tray ready")
	return nil
}

func (b *Backend) Remove() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menu, b.onClick = nil, nil
	b.log.Debug("tray removed")
}

const usage = `commands:
  ready                    render surface is ready (first show + auto-hide)
  toggle | interact        toggle visibility | interactivity
  hotkey <accelerator>     press a registered global hotkey
  click                    click the tray icon
  menu <label>             choose a tray menu item
  close                    window close request
  quit                     quit the application
  state                    print the window state
  <ui-message>             toggle-focus-mode, request-input-focus, hide-window, minimize-window`

// Run feeds commands read from in to ctrl, which must already be started,
// and prints events and replies. It returns when in is exhausted, ctx is
// done, or a quit is requested, and shuts ctrl down before returning.
func (b *Backend) Run(ctx context.Context, ctrl *overlay.Controller, in io.Reader) error {
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for e := range ctrl.Events() {
			b.printf("event %s", e)
		}
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-ctrl.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	defer func() {
		ctrl.Shutdown()
		<-printed
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ctrl.Quitting():
			b.close(ctrl)
			return nil
		case line, ok := <-lines:
			if !ok {
				if ctrl.Snapshot().Quitting {
					b.close(ctrl)
				}
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			b.exec(ctrl, strings.TrimSpace(line))
		}
	}
}

func (b *Backend) exec(ctrl *overlay.Controller, line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case "ready":
		ctrl.RenderReady()
	case "toggle":
		ctrl.ToggleVisibility()
	case "interact":
		ctrl.ToggleInteractivity()
	case "hotkey":
		b.mu.Lock()
		fn, ok := b.hotkeys[arg]
		b.mu.Unlock()
		if !ok {
			b.printf("error no hotkey %q (registered: %s)", arg, strings.Join(b.accelerators(), ", "))
			return
		}
		fn()
	case "click":
		b.mu.Lock()
		fn := b.onClick
		b.mu.Unlock()
		if fn != nil {
			fn()
		}
	case "menu":
		b.mu.Lock()
		menu := b.menu
		b.mu.Unlock()
		for _, item := range menu {
			if strings.EqualFold(item.Label, arg) {
				item.Action()
				return
			}
		}
		b.printf("error no menu item %q", arg)
	case "close":
		b.close(ctrl)
	case "quit":
		ctrl.Quit()
	case "state":
		s := ctrl.Snapshot()
		b.printf("state %s position=%d,%d gen=%d", s.State, s.Position.X, s.Position.Y, s.Generation)
	case "help":
		b.printf("%s", usage)
	default:
		msg, ok := overlay.ParseUIMessage(cmd)
		if !ok {
			b.printf("error unknown command %q", cmd)
			return
		}
		ctrl.Send(msg)
	}
}

// close asks the controller whether the window may close and destroys it
// when allowed.
func (b *Backend) close(ctrl *overlay.Controller) {
	if ctrl.CloseRequested() {
		b.Destroy()
		b.printf("closed")
		return
	}
	b.printf("close converted to hide")
}

func (b *Backend) accelerators() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.hotkeys))
	for k := range b.hotkeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

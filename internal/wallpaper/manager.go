package wallpaper

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// Status is what the manager reports over IPC.
type Status struct {
	Directory    string     `json:"directory"`
	Surface      uint32     `json:"surface"`
	Desktop      string     `json:"desktop"`
	DesktopIndex int        `json:"desktop_index"`
	Width        uint16     `json:"width"`
	Height       uint16     `json:"height"`
	Pixmap       uint32     `json:"pixmap"`
	Cycles       int        `json:"cycles"`
	Pending      bool       `json:"pending"`
	LastUpdate   time.Time  `json:"last_update"`
	LastError    string     `json:"last_error,omitempty"`
	Cache        CacheStats `json:"cache"`
}

// Manager drives the event loop. Everything except the status snapshot is
// owned by the goroutine calling Run.
type Manager struct {
	display  Display
	atoms    Atoms
	root     xproto.Window
	resolver *Resolver
	debounce Debouncer
	logger   *log.Logger
	events   io.Writer

	mu     sync.Mutex
	status Status
}

// NewManager creates a manager for the root window of d.
func NewManager(d Display, atoms Atoms, root xproto.Window, resolver *Resolver, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		display:  d,
		atoms:    atoms,
		root:     root,
		resolver: resolver,
		logger:   logger,
		events:   os.Stdout,
		status:   Status{Directory: resolver.Dir(), Surface: uint32(root)},
	}
}

// SetEventOutput changes where unrecognised events are printed.
func (m *Manager) SetEventOutput(w io.Writer) {
	m.events = w
}

// Run subscribes to property changes on the root window, sets the initial
// wallpaper and then handles events until the display connection closes.
func (m *Manager) Run() error {
	if err := m.display.SelectPropertyChanges(m.root); err != nil {
		return errors.Wrap(err, "select property changes on root window")
	}

	m.logger.Info("Starting wallpaper manager", "root", m.root)
	m.update(m.root)

	for {
		ev, xerr := m.display.WaitForEvent()
		if ev == nil && xerr == nil {
			m.logger.Info("Display connection closed, wallpaper manager stopped")
			return nil
		}
		if xerr != nil {
			m.logger.Error("X protocol error", "err", xerr)
			m.setError(xerr)
			continue
		}
		m.dispatch(ev)
	}
}

func (m *Manager) dispatch(ev xgb.Event) {
	e, ok := ev.(xproto.PropertyNotifyEvent)
	if !ok {
		fmt.Fprintln(m.events, ev)
		return
	}
	if !m.atoms.Tracked(e.Atom) {
		return
	}

	if err := m.debounce.Handle(m.display, m.atoms, e, m.update); err != nil {
		m.logger.Error("failed to schedule wallpaper update", "window", e.Window, "err", err)
		m.setError(err)
	}

	m.mu.Lock()
	m.status.Pending = m.debounce.Pending()
	m.mu.Unlock()
}

func (m *Manager) update(win xproto.Window) {
	if err := m.Cycle(win); err != nil {
		m.logger.Error("failed to update wallpaper", "window", win, "err", err)
		m.setError(err)
	}
}

// Cycle resolves the wallpaper for the current desktop of win and applies
// it. A missing or unreadable wallpaper is logged by the resolver and
// leaves the background untouched.
func (m *Manager) Cycle(win xproto.Window) error {
	names, err := m.display.GetProperty(win, m.atoms.DesktopNames, m.atoms.UTF8String)
	if err != nil {
		return errors.Wrap(err, "read _NET_DESKTOP_NAMES")
	}
	index, err := m.display.GetProperty(win, m.atoms.CurrentDesktop, xproto.AtomCardinal)
	if err != nil {
		return errors.Wrap(err, "read _NET_CURRENT_DESKTOP")
	}
	width, height, err := m.display.Geometry(win)
	if err != nil {
		return errors.Wrap(err, "get geometry")
	}

	name, i, err := DesktopName(names, index)
	if err != nil {
		return errors.Wrap(err, "look up desktop name")
	}
	m.logger.Debug("resolving wallpaper", "window", win, "desktop", name, "index", i, "size", sizeString(width, height))

	pixmap, ok := m.resolver.Resolve(m.display, win, name, width, height)
	m.record(func(s *Status) {
		s.Cycles++
		s.Surface = uint32(win)
		s.Desktop = name
		s.DesktopIndex = i
		s.Width = width
		s.Height = height
		s.Cache = m.resolver.Stats()
	})
	if !ok {
		return nil
	}

	if err := Apply(m.display, m.atoms, win, pixmap, width, height); err != nil {
		return errors.Wrapf(err, "apply wallpaper for desktop %q", name)
	}

	m.record(func(s *Status) {
		s.Pixmap = uint32(pixmap)
		s.LastUpdate = time.Now()
		s.LastError = ""
	})
	m.logger.Info("wallpaper applied", "desktop", name, "pixmap", pixmap)
	return nil
}

// Refresh writes the update marker on the root window so the event loop
// runs a new cycle. It is safe to call from other goroutines.
func (m *Manager) Refresh() error {
	if err := m.display.ChangeProperty(m.root, m.atoms.Update, xproto.AtomInteger, 32, nil); err != nil {
		return errors.Wrap(err, "write update marker")
	}
	return m.display.Flush()
}

// Status returns a snapshot of the manager state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) record(fn func(*Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.status)
}

func (m *Manager) setError(err error) {
	m.record(func(s *Status) {
		s.LastError = err.Error()
	})
}

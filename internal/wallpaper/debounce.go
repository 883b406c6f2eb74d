package wallpaper

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/pkg/errors"
)

// Debouncer coalesces bursts of _NET_CURRENT_DESKTOP / _NET_DESKTOP_NAMES
// changes. The first change of a burst writes the marker property back onto
// the window; the server queues the marker's PropertyNotify behind every
// change already sent, so when it arrives the desktop properties are
// settled and a single cycle runs.
type Debouncer struct {
	dirty bool
}

// Pending reports whether a marker has been written and not yet seen.
func (b *Debouncer) Pending() bool {
	return b.dirty
}

// Handle routes one PropertyNotify. cycle runs when the marker arrives.
// It returns an error only if the marker could not be written.
func (b *Debouncer) Handle(d Display, atoms Atoms, ev xproto.PropertyNotifyEvent, cycle func(xproto.Window)) error {
	switch ev.Atom {
	case atoms.CurrentDesktop, atoms.DesktopNames:
		if b.dirty {
			return nil
		}
		if err := d.ChangeProperty(ev.Window, atoms.Update, xproto.AtomInteger, 32, nil); err != nil {
			return errors.Wrap(err, "write update marker")
		}
		if err := d.Flush(); err != nil {
			return errors.Wrap(err, "flush update marker")
		}
		b.dirty = true
	case atoms.Update:
		cycle(ev.Window)
		b.dirty = false
	}
	return nil
}

// Tracked reports whether atom is one of the properties the debouncer
// cares about.
func (atoms Atoms) Tracked(atom xproto.Atom) bool {
	return atom == atoms.CurrentDesktop || atom == atoms.DesktopNames || atom == atoms.Update
}

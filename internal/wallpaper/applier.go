package wallpaper

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/pkg/errors"
)

type rootProperty struct {
	name string
	atom xproto.Atom
	prev []byte
}

// Apply makes pixmap the background of surface: it advertises the pixmap in
// _XROOTPMAP_ID and ESETROOT_PMAP_ID, sets the background attribute, clears
// the window and flushes. If any step fails the properties and the
// background attribute are put back the way they were before the call.
func Apply(d Display, atoms Atoms, surface xproto.Window, pixmap xproto.Pixmap, width, height uint16) (err error) {
	props := []*rootProperty{
		{name: "_XROOTPMAP_ID", atom: atoms.XRootPmapID},
		{name: "ESETROOT_PMAP_ID", atom: atoms.EsetrootPmapID},
	}
	for _, p := range props {
		p.prev, err = d.GetProperty(surface, p.atom, xproto.AtomPixmap)
		if err != nil {
			return errors.Wrapf(err, "read %s", p.name)
		}
	}

	var (
		written       []*rootProperty
		backgroundSet bool
	)
	defer func() {
		if err != nil {
			rollback(d, surface, written, backgroundSet, width, height)
		}
	}()

	value := make([]byte, 4)
	xgb.Put32(value, uint32(pixmap))

	for _, p := range props {
		if err = d.ChangeProperty(surface, p.atom, xproto.AtomPixmap, 32, value); err != nil {
			return errors.Wrapf(err, "write %s", p.name)
		}
		written = append(written, p)
	}

	if err = d.SetBackground(surface, pixmap); err != nil {
		return errors.Wrap(err, "set background pixmap")
	}
	backgroundSet = true

	if err = d.ClearArea(surface, width, height); err != nil {
		return errors.Wrap(err, "clear area")
	}

	if err = d.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}

	return nil
}

// rollback is best effort; the connection may already be unusable.
func rollback(d Display, surface xproto.Window, written []*rootProperty, backgroundSet bool, width, height uint16) {
	for _, p := range written {
		if len(p.prev) == 0 {
			d.DeleteProperty(surface, p.atom)
			continue
		}
		d.ChangeProperty(surface, p.atom, xproto.AtomPixmap, 32, p.prev)
	}

	if backgroundSet && len(written) > 0 {
		prev := written[0].prev
		var pixmap xproto.Pixmap
		if len(prev) == 4 {
			pixmap = xproto.Pixmap(xgb.Get32(prev))
		}
		d.SetBackground(surface, pixmap)
		d.ClearArea(surface, width, height)
	}

	d.Flush()
}

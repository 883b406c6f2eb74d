package xconn

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/matjam/deskpaper/internal/wallpaper"
	"github.com/pkg/errors"
)

// UpdateAtom names the zero-length marker property written to coalesce
// desktop changes.
const UpdateAtom = "_DESKPAPER_UPDATE"

type namedAtom struct {
	name string
	dst  *xproto.Atom
}

func atomNames(atoms *wallpaper.Atoms) []namedAtom {
	return []namedAtom{
		{"UTF8_STRING", &atoms.UTF8String},
		{"_NET_DESKTOP_NAMES", &atoms.DesktopNames},
		{"_NET_CURRENT_DESKTOP", &atoms.CurrentDesktop},
		{"ESETROOT_PMAP_ID", &atoms.EsetrootPmapID},
		{"_XROOTPMAP_ID", &atoms.XRootPmapID},
		{UpdateAtom, &atoms.Update},
	}
}

// Atoms interns the atoms used by the wallpaper engine.
func (c *Conn) Atoms() (wallpaper.Atoms, error) {
	var atoms wallpaper.Atoms
	for _, a := range atomNames(&atoms) {
		atom, err := xprop.Atm(c.xu, a.name)
		if err != nil {
			return atoms, errors.Wrapf(err, "intern %s", a.name)
		}
		*a.dst = atom
	}
	return atoms, nil
}

package wallpaper

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Display is the subset of the X protocol the wallpaper engine needs. It is
// implemented by xconn.Conn and by fakes in tests.
type Display interface {
	GetProperty(win xproto.Window, prop, typ xproto.Atom) ([]byte, error)
	ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, data []byte) error
	DeleteProperty(win xproto.Window, prop xproto.Atom) error
	Geometry(win xproto.Window) (width, height uint16, err error)
	Format() NativeFormat

	CreatePixmap(parent xproto.Window, width, height uint16) (xproto.Pixmap, error)
	FreePixmap(pixmap xproto.Pixmap) error
	CreateGC(drawable xproto.Drawable) (xproto.Gcontext, error)
	FreeGC(gc xproto.Gcontext) error
	PutImage(drawable xproto.Drawable, gc xproto.Gcontext, width, height uint16, stride int, data []byte) error

	SelectPropertyChanges(win xproto.Window) error
	SetBackground(win xproto.Window, pixmap xproto.Pixmap) error
	ClearArea(win xproto.Window, width, height uint16) error
	Flush() error
	WaitForEvent() (xgb.Event, xgb.Error)
}

// Atoms holds the interned atoms the engine reads and writes.
type Atoms struct {
	UTF8String     xproto.Atom
	DesktopNames   xproto.Atom
	CurrentDesktop xproto.Atom
	EsetrootPmapID xproto.Atom
	XRootPmapID    xproto.Atom
	Update         xproto.Atom
}

// NativeFormat describes how the server wants ZPixmap image data laid out
// for the root depth.
type NativeFormat struct {
	Depth        byte
	BitsPerPixel byte
	ScanlinePad  byte
	MSBFirst     bool
	RedMask      uint32
	GreenMask    uint32
	BlueMask     uint32
}

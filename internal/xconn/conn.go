// Package xconn implements wallpaper.Display on top of xgb.
package xconn

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/matjam/deskpaper/internal/wallpaper"
	"github.com/pkg/errors"
)

// putImageHeader is the size of a PutImage request without its data.
const putImageHeader = 24

// Conn is an X11 connection to the default screen.
type Conn struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	root   xproto.Window
	format wallpaper.NativeFormat
	maxReq int
}

var _ wallpaper.Display = (*Conn)(nil)

// Dial connects to $DISPLAY.
func Dial() (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "connect to X server")
	}

	setup := xproto.Setup(xu.Conn())
	screen := xu.Screen()
	if setup == nil || screen == nil {
		xu.Conn().Close()
		return nil, errors.New("no default screen")
	}

	format, err := nativeFormat(setup, screen)
	if err != nil {
		xu.Conn().Close()
		return nil, err
	}

	return &Conn{
		xu:     xu,
		conn:   xu.Conn(),
		root:   xu.RootWin(),
		format: format,
		maxReq: int(setup.MaximumRequestLength) * 4,
	}, nil
}

func nativeFormat(setup *xproto.SetupInfo, screen *xproto.ScreenInfo) (wallpaper.NativeFormat, error) {
	f := wallpaper.NativeFormat{
		Depth:    screen.RootDepth,
		MSBFirst: setup.ImageByteOrder == xproto.ImageOrderMSBFirst,
	}

	for _, pf := range setup.PixmapFormats {
		if pf.Depth == screen.RootDepth {
			f.BitsPerPixel = pf.BitsPerPixel
			f.ScanlinePad = pf.ScanlinePad
			break
		}
	}
	if f.BitsPerPixel == 0 {
		return f, errors.Errorf("no pixmap format for depth %d", screen.RootDepth)
	}

	for _, depth := range screen.AllowedDepths {
		for _, visual := range depth.Visuals {
			if visual.VisualId == screen.RootVisual {
				f.RedMask = visual.RedMask
				f.GreenMask = visual.GreenMask
				f.BlueMask = visual.BlueMask
				return f, nil
			}
		}
	}
	return f, errors.Errorf("root visual %d not found", screen.RootVisual)
}

// Root returns the root window of the default screen.
func (c *Conn) Root() xproto.Window {
	return c.root
}

// Close disconnects. A goroutine blocked in WaitForEvent returns nil, nil.
func (c *Conn) Close() {
	c.conn.Close()
}

func (c *Conn) Format() wallpaper.NativeFormat {
	return c.format
}

func (c *Conn) GetProperty(win xproto.Window, prop, typ xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, win, prop, typ, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *Conn) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, data []byte) error {
	n := uint32(len(data)) / uint32(format/8)
	return xproto.ChangePropertyChecked(c.conn, xproto.PropModeReplace, win, prop, typ, format, n, data).Check()
}

func (c *Conn) DeleteProperty(win xproto.Window, prop xproto.Atom) error {
	return xproto.DeletePropertyChecked(c.conn, win, prop).Check()
}

func (c *Conn) Geometry(win xproto.Window) (uint16, uint16, error) {
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, err
	}
	return geom.Width, geom.Height, nil
}

func (c *Conn) CreatePixmap(parent xproto.Window, width, height uint16) (xproto.Pixmap, error) {
	pixmap, err := xproto.NewPixmapId(c.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreatePixmapChecked(c.conn, c.format.Depth, pixmap, xproto.Drawable(parent), width, height).Check()
	if err != nil {
		return 0, err
	}
	return pixmap, nil
}

func (c *Conn) FreePixmap(pixmap xproto.Pixmap) error {
	return xproto.FreePixmapChecked(c.conn, pixmap).Check()
}

func (c *Conn) CreateGC(drawable xproto.Drawable) (xproto.Gcontext, error) {
	gc, err := xproto.NewGcontextId(c.conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateGCChecked(c.conn, gc, drawable, 0, nil).Check(); err != nil {
		return 0, err
	}
	return gc, nil
}

func (c *Conn) FreeGC(gc xproto.Gcontext) error {
	return xproto.FreeGCChecked(c.conn, gc).Check()
}

// PutImage uploads ZPixmap data, splitting it into as many requests as the
// server's maximum request length requires.
func (c *Conn) PutImage(drawable xproto.Drawable, gc xproto.Gcontext, width, height uint16, stride int, data []byte) error {
	rows := rowsPerRequest(stride, c.maxReq)
	if rows == 0 {
		return errors.Errorf("a single row of %d bytes exceeds the maximum request length", stride)
	}

	for _, ch := range splitRows(data, stride, int(height), rows) {
		err := xproto.PutImageChecked(c.conn, xproto.ImageFormatZPixmap, drawable, gc,
			width, uint16(ch.rows), 0, int16(ch.y), 0, c.format.Depth, ch.data).Check()
		if err != nil {
			return errors.Wrapf(err, "rows %d-%d", ch.y, ch.y+ch.rows)
		}
	}
	return nil
}

func rowsPerRequest(stride, maxReq int) int {
	if stride <= 0 {
		return 0
	}
	return (maxReq - putImageHeader) / stride
}

type chunk struct {
	y, rows int
	data    []byte
}

// splitRows cuts height rows of stride bytes into runs of at most rows.
func splitRows(data []byte, stride, height, rows int) []chunk {
	var chunks []chunk
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		chunks = append(chunks, chunk{y: y, rows: n, data: data[y*stride : (y+n)*stride]})
	}
	return chunks
}

func (c *Conn) SelectPropertyChanges(win xproto.Window) error {
	return xproto.ChangeWindowAttributesChecked(c.conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check()
}

func (c *Conn) SetBackground(win xproto.Window, pixmap xproto.Pixmap) error {
	return xproto.ChangeWindowAttributesChecked(c.conn, win, xproto.CwBackPixmap,
		[]uint32{uint32(pixmap)}).Check()
}

// ClearArea repaints the area from the background without generating
// Expose events.
func (c *Conn) ClearArea(win xproto.Window, width, height uint16) error {
	return xproto.ClearAreaChecked(c.conn, false, win, 0, 0, width, height).Check()
}

// Flush waits for a round trip so every request sent so far has been
// processed by the server.
func (c *Conn) Flush() error {
	_, err := xproto.GetInputFocus(c.conn).Reply()
	return err
}

func (c *Conn) WaitForEvent() (xgb.Event, xgb.Error) {
	return c.conn.WaitForEvent()
}

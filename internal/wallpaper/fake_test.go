package wallpaper

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/pkg/errors"
)

const testRoot xproto.Window = 1

var testAtoms = Atoms{
	UTF8String:     300,
	DesktopNames:   301,
	CurrentDesktop: 302,
	EsetrootPmapID: 303,
	XRootPmapID:    304,
	Update:         305,
}

var testFormat = NativeFormat{
	Depth:        24,
	BitsPerPixel: 32,
	ScanlinePad:  32,
	RedMask:      0xff0000,
	GreenMask:    0x00ff00,
	BlueMask:     0x0000ff,
}

type queued struct {
	ev  xgb.Event
	err xgb.Error
}

type propWrite struct {
	win  xproto.Window
	atom xproto.Atom
	data []byte
}

// fakeDisplay models just enough of an X server: properties with
// PropertyNotify delivery in write order, pixmaps, GCs and background
// attributes. Entries in fail are one-shot.
type fakeDisplay struct {
	props      map[xproto.Window]map[xproto.Atom][]byte
	geometry   map[xproto.Window][2]uint16
	selected   map[xproto.Window]bool
	background map[xproto.Window]xproto.Pixmap
	pixmaps    map[xproto.Pixmap]bool
	gcs        map[xproto.Gcontext]bool
	nextID     uint32

	writes  []propWrite
	puts    int
	clears  int
	flushes int

	fail   map[string]error
	queue  []queued
	script []func()
}

func newFakeDisplay(width, height uint16) *fakeDisplay {
	return &fakeDisplay{
		props:      make(map[xproto.Window]map[xproto.Atom][]byte),
		geometry:   map[xproto.Window][2]uint16{testRoot: {width, height}},
		selected:   make(map[xproto.Window]bool),
		background: make(map[xproto.Window]xproto.Pixmap),
		pixmaps:    make(map[xproto.Pixmap]bool),
		gcs:        make(map[xproto.Gcontext]bool),
		nextID:     0x200000,
		fail:       make(map[string]error),
	}
}

func (f *fakeDisplay) failing(op string) error {
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return err
	}
	return nil
}

func changeOp(atom xproto.Atom) string {
	return fmt.Sprintf("ChangeProperty#%d", atom)
}

// setProp is a property write by another client, e.g. the window manager.
func (f *fakeDisplay) setProp(win xproto.Window, atom xproto.Atom, data []byte) {
	if f.props[win] == nil {
		f.props[win] = make(map[xproto.Atom][]byte)
	}
	f.props[win][atom] = append([]byte{}, data...)
	if f.selected[win] {
		f.queue = append(f.queue, queued{ev: xproto.PropertyNotifyEvent{
			Window: win,
			Atom:   atom,
			State:  xproto.PropertyNewValue,
		}})
	}
}

func (f *fakeDisplay) setDesktops(index uint32, names ...string) {
	f.setProp(testRoot, testAtoms.DesktopNames, []byte(strings.Join(names, "\x00")+"\x00"))
	f.setIndex(index)
}

func (f *fakeDisplay) setIndex(index uint32) {
	f.setProp(testRoot, testAtoms.CurrentDesktop, le32(index))
}

func (f *fakeDisplay) prop(win xproto.Window, atom xproto.Atom) []byte {
	return f.props[win][atom]
}

func (f *fakeDisplay) markerWrites() int {
	n := 0
	for _, w := range f.writes {
		if w.atom == testAtoms.Update {
			n++
		}
	}
	return n
}

func (f *fakeDisplay) GetProperty(win xproto.Window, prop, typ xproto.Atom) ([]byte, error) {
	if err := f.failing("GetProperty"); err != nil {
		return nil, err
	}
	return f.props[win][prop], nil
}

func (f *fakeDisplay) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, data []byte) error {
	if err := f.failing("ChangeProperty"); err != nil {
		return err
	}
	if err := f.failing(changeOp(prop)); err != nil {
		return err
	}
	f.writes = append(f.writes, propWrite{win: win, atom: prop, data: append([]byte{}, data...)})
	f.setProp(win, prop, data)
	return nil
}

func (f *fakeDisplay) DeleteProperty(win xproto.Window, prop xproto.Atom) error {
	if err := f.failing("DeleteProperty"); err != nil {
		return err
	}
	delete(f.props[win], prop)
	return nil
}

func (f *fakeDisplay) Geometry(win xproto.Window) (uint16, uint16, error) {
	if err := f.failing("Geometry"); err != nil {
		return 0, 0, err
	}
	g, ok := f.geometry[win]
	if !ok {
		return 0, 0, errors.Errorf("bad window %d", win)
	}
	return g[0], g[1], nil
}

func (f *fakeDisplay) Format() NativeFormat {
	return testFormat
}

func (f *fakeDisplay) CreatePixmap(parent xproto.Window, width, height uint16) (xproto.Pixmap, error) {
	if err := f.failing("CreatePixmap"); err != nil {
		return 0, err
	}
	f.nextID++
	p := xproto.Pixmap(f.nextID)
	f.pixmaps[p] = true
	return p, nil
}

func (f *fakeDisplay) FreePixmap(pixmap xproto.Pixmap) error {
	delete(f.pixmaps, pixmap)
	return nil
}

func (f *fakeDisplay) CreateGC(drawable xproto.Drawable) (xproto.Gcontext, error) {
	if err := f.failing("CreateGC"); err != nil {
		return 0, err
	}
	f.nextID++
	gc := xproto.Gcontext(f.nextID)
	f.gcs[gc] = true
	return gc, nil
}

func (f *fakeDisplay) FreeGC(gc xproto.Gcontext) error {
	delete(f.gcs, gc)
	return nil
}

func (f *fakeDisplay) PutImage(drawable xproto.Drawable, gc xproto.Gcontext, width, height uint16, stride int, data []byte) error {
	if err := f.failing("PutImage"); err != nil {
		return err
	}
	if !f.gcs[gc] {
		return errors.New("bad gc")
	}
	if len(data) != stride*int(height) {
		return errors.Errorf("bad length %d", len(data))
	}
	f.puts++
	return nil
}

func (f *fakeDisplay) SelectPropertyChanges(win xproto.Window) error {
	if err := f.failing("SelectPropertyChanges"); err != nil {
		return err
	}
	f.selected[win] = true
	return nil
}

func (f *fakeDisplay) SetBackground(win xproto.Window, pixmap xproto.Pixmap) error {
	if err := f.failing("SetBackground"); err != nil {
		return err
	}
	f.background[win] = pixmap
	return nil
}

func (f *fakeDisplay) ClearArea(win xproto.Window, width, height uint16) error {
	if err := f.failing("ClearArea"); err != nil {
		return err
	}
	f.clears++
	return nil
}

func (f *fakeDisplay) Flush() error {
	if err := f.failing("Flush"); err != nil {
		return err
	}
	f.flushes++
	return nil
}

// WaitForEvent runs script steps until an event is queued and returns
// nil, nil once both are exhausted, like a closed connection.
func (f *fakeDisplay) WaitForEvent() (xgb.Event, xgb.Error) {
	for len(f.queue) == 0 && len(f.script) > 0 {
		step := f.script[0]
		f.script = f.script[1:]
		step()
	}
	if len(f.queue) == 0 {
		return nil, nil
	}
	q := f.queue[0]
	f.queue = f.queue[1:]
	return q.ev, q.err
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	xgb.Put32(b, v)
	return b
}

func solid(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 0xff
	}
	return img
}

// fakeFiles is a decoder backed by an in-memory directory.
type fakeFiles struct {
	files map[string]*image.RGBA
	bad   map[string]error
	calls map[string]int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		files: make(map[string]*image.RGBA),
		bad:   make(map[string]error),
		calls: make(map[string]int),
	}
}

func (ff *fakeFiles) decode(path string) (*image.RGBA, error) {
	ff.calls[path]++
	if err, ok := ff.bad[path]; ok {
		return nil, err
	}
	img, ok := ff.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return img, nil
}

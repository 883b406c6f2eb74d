package wallpaper

import (
	"fmt"
	"image"
	"io/fs"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/log"
	"github.com/matjam/deskpaper/internal/decode"
	"github.com/pkg/errors"
)

type cacheKey struct {
	surface xproto.Window
	name    string
	width   uint16
	height  uint16
}

// CacheStats is a snapshot of resolver activity.
type CacheStats struct {
	Entries  int `json:"entries"`
	Hits     int `json:"hits"`
	Misses   int `json:"misses"`
	Failures int `json:"failures"`
}

// Resolver turns a desktop name into an uploaded pixmap, caching every
// successful upload for the life of the process. Failed lookups are not
// cached so a wallpaper added later is picked up on the next request.
type Resolver struct {
	dir        string
	extensions []string
	decode     decode.Func
	logger     *log.Logger

	cache map[cacheKey]xproto.Pixmap
	stats CacheStats
}

// NewResolver creates a resolver reading wallpapers from dir. Extensions are
// tried in order; the first one with an existing file wins.
func NewResolver(dir string, extensions []string, fn decode.Func, logger *log.Logger) *Resolver {
	if len(extensions) == 0 {
		extensions = []string{"png"}
	}
	if fn == nil {
		fn = decode.File
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		dir:        dir,
		extensions: extensions,
		decode:     fn,
		logger:     logger,
		cache:      make(map[cacheKey]xproto.Pixmap),
	}
}

// Resolve returns the pixmap for name at width x height on surface. The
// second return value is false when no image could be produced; the reason
// has already been logged.
func (r *Resolver) Resolve(d Display, surface xproto.Window, name string, width, height uint16) (xproto.Pixmap, bool) {
	key := cacheKey{surface: surface, name: name, width: width, height: height}
	if pixmap, ok := r.cache[key]; ok {
		r.stats.Hits++
		return pixmap, true
	}
	r.stats.Misses++

	img, path, err := r.load(name, width, height)
	if err != nil {
		r.stats.Failures++
		r.logger.Error("failed to load wallpaper", "desktop", name, "size", sizeString(width, height), "err", err)
		return 0, false
	}

	pixmap, err := upload(d, surface, img, width, height)
	if err != nil {
		r.stats.Failures++
		r.logger.Error("failed to upload wallpaper", "path", path, "err", err)
		return 0, false
	}

	r.logger.Info("cached wallpaper", "path", path, "pixmap", pixmap)
	r.cache[key] = pixmap
	return pixmap, true
}

// Dir returns the wallpaper directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Stats returns a copy of the resolver counters.
func (r *Resolver) Stats() CacheStats {
	s := r.stats
	s.Entries = len(r.cache)
	return s
}

func (r *Resolver) load(name string, width, height uint16) (*image.RGBA, string, error) {
	var (
		path string
		img  *image.RGBA
		err  error
	)
	for _, ext := range r.extensions {
		path = decode.Path(r.dir, name, width, height, ext)
		img, err = r.decode(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if err != nil {
		return nil, path, err
	}

	b := img.Bounds()
	if b.Dx() != int(width) || b.Dy() != int(height) {
		return nil, path, errors.Errorf("%s is %dx%d, want %s", path, b.Dx(), b.Dy(), sizeString(width, height))
	}
	if b.Min != (image.Point{}) {
		img = decode.ToRGBA(img)
	}
	return img, path, nil
}

// upload packs img for the display, copies it into a new pixmap and frees
// the temporary GC. The pixmap is freed again if any step fails.
func upload(d Display, surface xproto.Window, img *image.RGBA, width, height uint16) (xproto.Pixmap, error) {
	data, stride, err := Pack(img, d.Format())
	if err != nil {
		return 0, err
	}

	pixmap, err := d.CreatePixmap(surface, width, height)
	if err != nil {
		return 0, errors.Wrap(err, "create pixmap")
	}

	gc, err := d.CreateGC(xproto.Drawable(pixmap))
	if err != nil {
		d.FreePixmap(pixmap)
		return 0, errors.Wrap(err, "create gc")
	}

	err = d.PutImage(xproto.Drawable(pixmap), gc, width, height, stride, data)
	d.FreeGC(gc)
	if err != nil {
		d.FreePixmap(pixmap)
		return 0, errors.Wrap(err, "put image")
	}

	return pixmap, nil
}

func sizeString(width, height uint16) string {
	return fmt.Sprintf("%dx%d", width, height)
}

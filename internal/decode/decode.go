// Package decode turns wallpaper files on disk into 8-bit RGB pixel buffers.
package decode

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	// register image formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrChannels is returned for images that are not 3-channel 8-bit color.
var ErrChannels = errors.New("image is not 3-channel 8-bit color")

// Func decodes the file at path. File is the production implementation;
// tests substitute their own.
type Func func(path string) (*image.RGBA, error)

// Path builds the wallpaper file name for a desktop at the given size.
func Path(dir, name string, width, height uint16, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%dx%d.%s", name, width, height, ext))
}

// File decodes the image at path into an RGBA buffer anchored at the origin.
// Only 3-channel 8-bit color is accepted; images with an alpha channel,
// grayscale, CMYK and 16-bit images fail with ErrChannels.
func File(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	if !rgb8(img) {
		return nil, errors.Wrapf(ErrChannels, "%s (%s, %T)", path, format, img)
	}

	return ToRGBA(img), nil
}

// rgb8 reports whether img carries exactly three 8-bit color channels.
// Decoders return *image.RGBA for alpha-carrying TIFFs too, so RGBA must
// also be opaque.
func rgb8(img image.Image) bool {
	switch m := img.(type) {
	case *image.YCbCr:
		return true
	case *image.RGBA:
		return m.Opaque()
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return false
			}
		}
		return true
	}
	return false
}

// ToRGBA copies img into a new RGBA image anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

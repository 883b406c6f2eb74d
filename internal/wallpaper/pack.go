package wallpaper

import (
	"image"
	"math/bits"

	"github.com/pkg/errors"
)

type channel struct {
	shift int
	width int
}

func newChannel(mask uint32) channel {
	return channel{
		shift: bits.TrailingZeros32(mask),
		width: bits.OnesCount32(mask),
	}
}

func (c channel) scale(v uint8) uint32 {
	if c.width == 0 {
		return 0
	}
	if c.width <= 8 {
		return uint32(v) >> (8 - c.width) << c.shift
	}
	return uint32(v) << (c.width - 8) << c.shift
}

// Pack converts img into ZPixmap data for the given format and returns the
// data along with the padded row stride in bytes.
func Pack(img *image.RGBA, f NativeFormat) ([]byte, int, error) {
	bpp := int(f.BitsPerPixel) / 8
	switch bpp {
	case 2, 3, 4:
	default:
		return nil, 0, errors.Errorf("unsupported bits per pixel: %d", f.BitsPerPixel)
	}

	pad := int(f.ScanlinePad) / 8
	if pad == 0 {
		pad = 1
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	// Rows are padded up to the scanline pad.
	stride := (w*bpp + pad - 1) / pad * pad

	red := newChannel(f.RedMask)
	green := newChannel(f.GreenMask)
	blue := newChannel(f.BlueMask)

	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		row := data[y*stride:]
		for x := 0; x < w; x++ {
			s := src[x*4:]
			pixel := red.scale(s[0]) | green.scale(s[1]) | blue.scale(s[2])

			d := row[x*bpp : x*bpp+bpp]
			for i := 0; i < bpp; i++ {
				b := byte(pixel >> (8 * i))
				if f.MSBFirst {
					d[bpp-1-i] = b
				} else {
					d[i] = b
				}
			}
		}
	}

	return data, stride, nil
}

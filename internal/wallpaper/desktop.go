package wallpaper

import (
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/xgb"
	"github.com/pkg/errors"
)

var (
	ErrInvalidNames    = errors.New("desktop names are not valid UTF-8")
	ErrMalformedIndex  = errors.New("current desktop is not a single 32-bit value")
	ErrIndexOutOfRange = errors.New("current desktop has no name")
)

// DesktopNames splits a _NET_DESKTOP_NAMES value into its NUL terminated
// entries.
func DesktopNames(raw []byte) ([]string, error) {
	if !utf8.Valid(raw) {
		return nil, ErrInvalidNames
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return strings.Split(strings.TrimSuffix(string(raw), "\x00"), "\x00"), nil
}

// DesktopName returns the name of the desktop selected by a raw
// _NET_CURRENT_DESKTOP value.
func DesktopName(names, index []byte) (string, int, error) {
	list, err := DesktopNames(names)
	if err != nil {
		return "", 0, err
	}
	if len(index) != 4 {
		return "", 0, errors.Wrapf(ErrMalformedIndex, "got %d bytes", len(index))
	}
	i := xgb.Get32(index)
	if uint64(i) >= uint64(len(list)) {
		return "", int(i), errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", i, len(list))
	}
	return list[i], int(i), nil
}

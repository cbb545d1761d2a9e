// Package icns writes Apple icon files from a single square master image.
package icns

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	icnsenc "github.com/jackmordaunt/icns/v3"
)

var ErrNotSquare = errors.New("icns: master image is not square")

// Encode writes img as an icns resource. The encoder derives every smaller
// resolution from the master, so img should be at least 512px.
func Encode(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return fmt.Errorf("%w: %dx%d", ErrNotSquare, b.Dx(), b.Dy())
	}
	if err := icnsenc.Encode(w, img); err != nil {
		return fmt.Errorf("encode icns: %w", err)
	}
	return nil
}

func Marshal(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

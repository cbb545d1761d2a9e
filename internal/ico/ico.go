// Package ico reads and writes Windows icon containers whose entries embed
// PNG streams.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
)

const (
	HeaderSize   = 6
	DirEntrySize = 16

	TypeIcon = 1

	// MaxSize is the largest edge a directory entry can describe; it is
	// stored as 0 in the width and height bytes.
	MaxSize = 256
)

var (
	ErrNoImages            = errors.New("ico: no images")
	ErrTooManyImages       = errors.New("ico: too many images")
	ErrUnsupportedBitCount = errors.New("ico: unsupported bit count")
	ErrMixedBitDepth       = errors.New("ico: mixed bit depths")
	ErrInvalidSize         = errors.New("ico: invalid image size")
	ErrDuplicateSize       = errors.New("ico: duplicate image size")
	ErrEmptyData           = errors.New("ico: empty image data")
	ErrNotSquare           = errors.New("ico: image is not square")
	ErrFormat              = errors.New("ico: invalid format")
)

// Header is the ICONDIR record at the start of the file.
type Header struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

// DirEntry is the ICONDIRENTRY record describing one image.
type DirEntry struct {
	Width      uint8
	Height     uint8
	ColorCount uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

// Image is one resolution of an icon. Data holds a complete PNG stream.
type Image struct {
	Size     int
	BitCount uint16
	Data     []byte
}

// NewImage encodes img as a PNG entry. A bit count of 24 flattens the image
// onto white so the PNG is written without an alpha channel.
func NewImage(img image.Image, bitCount uint16) (Image, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return Image{}, fmt.Errorf("%w: %dx%d", ErrNotSquare, b.Dx(), b.Dy())
	}
	size := b.Dx()
	if size < 1 || size > MaxSize {
		return Image{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	switch bitCount {
	case 24:
		img = flatten(img)
	case 32:
	default:
		return Image{}, fmt.Errorf("%w: %d", ErrUnsupportedBitCount, bitCount)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("encode %dx%d png: %w", size, size, err)
	}
	return Image{Size: size, BitCount: bitCount, Data: buf.Bytes()}, nil
}

// Image decodes the embedded PNG.
func (im Image) Image() (image.Image, error) {
	return png.Decode(bytes.NewReader(im.Data))
}

// Validate checks that images can form one container.
func Validate(images []Image) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	if len(images) > math.MaxUint16 {
		return fmt.Errorf("%w: %d", ErrTooManyImages, len(images))
	}

	bitCount := images[0].BitCount
	seen := make(map[int]bool, len(images))
	for i, im := range images {
		if im.BitCount != 24 && im.BitCount != 32 {
			return fmt.Errorf("%w: entry %d has %d", ErrUnsupportedBitCount, i, im.BitCount)
		}
		if im.BitCount != bitCount {
			return fmt.Errorf("%w: entry %d has %d, entry 0 has %d", ErrMixedBitDepth, i, im.BitCount, bitCount)
		}
		if im.Size < 1 || im.Size > MaxSize {
			return fmt.Errorf("%w: entry %d is %d", ErrInvalidSize, i, im.Size)
		}
		if seen[im.Size] {
			return fmt.Errorf("%w: %d", ErrDuplicateSize, im.Size)
		}
		seen[im.Size] = true
		if len(im.Data) == 0 {
			return fmt.Errorf("%w: entry %d", ErrEmptyData, i)
		}
	}
	return nil
}

// Directory computes the header and directory entries for images without
// serializing anything.
func Directory(images []Image) (Header, []DirEntry, error) {
	if err := Validate(images); err != nil {
		return Header{}, nil, err
	}

	h := Header{Type: TypeIcon, Count: uint16(len(images))}
	entries := make([]DirEntry, len(images))

	offset := uint64(HeaderSize + len(images)*DirEntrySize)
	for i, im := range images {
		if offset+uint64(len(im.Data)) > math.MaxUint32 {
			return Header{}, nil, fmt.Errorf("%w: container exceeds 4GiB", ErrFormat)
		}
		entries[i] = DirEntry{
			Width:      sizeByte(im.Size),
			Height:     sizeByte(im.Size),
			Planes:     1,
			BitCount:   im.BitCount,
			BytesInRes: uint32(len(im.Data)),
			Offset:     uint32(offset),
		}
		offset += uint64(len(im.Data))
	}
	return h, entries, nil
}

// Encode writes the container for images to w. Nothing is written when
// validation fails.
func Encode(w io.Writer, images []Image) error {
	h, entries, err := Directory(images)
	if err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
		return err
	}
	for _, im := range images {
		if _, err := w.Write(im.Data); err != nil {
			return err
		}
	}
	return nil
}

// Marshal returns the whole container as a byte slice.
func Marshal(images []Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, images); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile assembles the container in memory and replaces path with it.
// On failure path is left untouched.
func WriteFile(path string, images []Image) error {
	data, err := Marshal(images)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func sizeByte(size int) uint8 {
	if size >= MaxSize {
		return 0
	}
	return uint8(size)
}

func entrySize(b uint8) int {
	if b == 0 {
		return MaxSize
	}
	return int(b)
}

package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sort"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// ReadDirectory parses the header and directory at the start of data and
// checks that every entry lies inside data.
func ReadDirectory(data []byte) (Header, []DirEntry, error) {
	var h Header
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, nil, fmt.Errorf("%w: short header", ErrFormat)
	}
	if h.Reserved != 0 || h.Type != TypeIcon {
		return Header{}, nil, fmt.Errorf("%w: reserved=%d type=%d", ErrFormat, h.Reserved, h.Type)
	}

	entries := make([]DirEntry, h.Count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return Header{}, nil, fmt.Errorf("%w: short directory for %d entries", ErrFormat, h.Count)
	}

	for i, e := range entries {
		end := uint64(e.Offset) + uint64(e.BytesInRes)
		if uint64(e.Offset) < uint64(HeaderSize+len(entries)*DirEntrySize) || end > uint64(len(data)) {
			return Header{}, nil, fmt.Errorf("%w: entry %d [%d,%d) outside file of %d bytes",
				ErrFormat, i, e.Offset, end, len(data))
		}
	}
	return h, entries, nil
}

// CheckLayout reports whether the blobs exactly tile the region after the
// directory, with no gaps or overlaps, and end at fileSize.
func CheckLayout(entries []DirEntry, fileSize int) error {
	sorted := make([]DirEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	cursor := uint64(HeaderSize + len(entries)*DirEntrySize)
	for _, e := range sorted {
		if uint64(e.Offset) != cursor {
			return fmt.Errorf("%w: blob at %d, expected %d", ErrFormat, e.Offset, cursor)
		}
		cursor += uint64(e.BytesInRes)
	}
	if cursor != uint64(fileSize) {
		return fmt.Errorf("%w: blobs end at %d, file is %d bytes", ErrFormat, cursor, fileSize)
	}
	return nil
}

// Decode reads a container and returns its entries in directory order.
// Only PNG-embedded entries are accepted.
func Decode(r io.Reader) ([]Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	_, entries, err := ReadDirectory(data)
	if err != nil {
		return nil, err
	}

	images := make([]Image, len(entries))
	for i, e := range entries {
		blob := data[e.Offset : e.Offset+e.BytesInRes]
		if !bytes.HasPrefix(blob, pngMagic) {
			return nil, fmt.Errorf("%w: entry %d is not PNG", ErrFormat, i)
		}
		if e.Width != e.Height {
			return nil, fmt.Errorf("%w: entry %d is %dx%d", ErrNotSquare, i, entrySize(e.Width), entrySize(e.Height))
		}
		images[i] = Image{
			Size:     entrySize(e.Width),
			BitCount: e.BitCount,
			Data:     append([]byte(nil), blob...),
		}
	}
	return images, nil
}

func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

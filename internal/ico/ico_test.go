package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func mustImages(t *testing.T, bitCount uint16, sizes ...int) []Image {
	t.Helper()
	var images []Image
	for i, s := range sizes {
		im, err := NewImage(solid(s, color.RGBA{R: uint8(40 * i), G: 100, B: 200, A: 255}), bitCount)
		if err != nil {
			t.Fatalf("NewImage(%d): %v", s, err)
		}
		images = append(images, im)
	}
	return images
}

func TestEncodeLayout(t *testing.T) {
	images := mustImages(t, 24, 16, 32, 256)

	data, err := Marshal(images)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := HeaderSize + 3*DirEntrySize
	for _, im := range images {
		want += len(im.Data)
	}
	if len(data) != want {
		t.Errorf("Expected file size %d, got %d", want, len(data))
	}

	if !bytes.Equal(data[:6], []byte{0, 0, 1, 0, 3, 0}) {
		t.Errorf("Unexpected header % x", data[:6])
	}

	first := data[HeaderSize : HeaderSize+DirEntrySize]
	if first[0] != 16 || first[1] != 16 {
		t.Errorf("Expected first entry 16x16, got %dx%d", first[0], first[1])
	}
	if got := binary.LittleEndian.Uint16(first[4:6]); got != 1 {
		t.Errorf("Expected planes 1, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(first[6:8]); got != 24 {
		t.Errorf("Expected bit count 24, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(first[12:16]); got != uint32(HeaderSize+3*DirEntrySize) {
		t.Errorf("Expected first offset %d, got %d", HeaderSize+3*DirEntrySize, got)
	}

	third := data[HeaderSize+2*DirEntrySize : HeaderSize+3*DirEntrySize]
	if third[0] != 0 || third[1] != 0 {
		t.Errorf("Expected 256 stored as 0x0, got %dx%d", third[0], third[1])
	}
}

func TestDirectoryTilesFile(t *testing.T) {
	images := mustImages(t, 32, 16, 32, 48, 64, 128, 256)
	data, err := Marshal(images)
	if err != nil {
		t.Fatal(err)
	}

	h, entries, err := ReadDirectory(data)
	if err != nil {
		t.Fatalf("ReadDirectory failed: %v", err)
	}
	if int(h.Count) != len(images) {
		t.Errorf("Expected count %d, got %d", len(images), h.Count)
	}
	if err := CheckLayout(entries, len(data)); err != nil {
		t.Errorf("CheckLayout: %v", err)
	}

	for i, e := range entries {
		if int(e.Offset)+int(e.BytesInRes) > len(data) {
			t.Errorf("Entry %d runs past end of file", i)
		}
		for j := i + 1; j < len(entries); j++ {
			o := entries[j]
			if e.Offset < o.Offset+o.BytesInRes && o.Offset < e.Offset+e.BytesInRes {
				t.Errorf("Entries %d and %d overlap", i, j)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	images := mustImages(t, 32, 16, 32, 48, 256)
	data, err := Marshal(images)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(images) {
		t.Fatalf("Expected %d images, got %d", len(images), len(decoded))
	}
	for i := range images {
		if decoded[i].Size != images[i].Size || decoded[i].BitCount != images[i].BitCount {
			t.Errorf("Entry %d: expected %d/%d, got %d/%d", i,
				images[i].Size, images[i].BitCount, decoded[i].Size, decoded[i].BitCount)
		}
		if !bytes.Equal(decoded[i].Data, images[i].Data) {
			t.Errorf("Entry %d: data differs", i)
		}
	}

	img, err := decoded[3].Image()
	if err != nil {
		t.Fatalf("Image() failed: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("Expected 256 wide image, got %d", img.Bounds().Dx())
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r>>8 != 120 || g>>8 != 100 || b>>8 != 200 {
		t.Errorf("Unexpected pixel %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestValidation(t *testing.T) {
	good := mustImages(t, 32, 16, 32)

	tests := []struct {
		name   string
		images []Image
		want   error
	}{
		{"empty", nil, ErrNoImages},
		{"mixed depth", append(mustImages(t, 24, 16), good[1]), ErrMixedBitDepth},
		{"bad bit count", []Image{{Size: 16, BitCount: 8, Data: good[0].Data}}, ErrUnsupportedBitCount},
		{"too large", []Image{{Size: 512, BitCount: 32, Data: good[0].Data}}, ErrInvalidSize},
		{"zero size", []Image{{Size: 0, BitCount: 32, Data: good[0].Data}}, ErrInvalidSize},
		{"duplicate", []Image{good[0], good[0]}, ErrDuplicateSize},
		{"empty data", []Image{{Size: 16, BitCount: 32}}, ErrEmptyData},
		{"too many", make([]Image, 65536), ErrTooManyImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Encode(&buf, tt.images)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if buf.Len() != 0 {
				t.Errorf("Expected nothing written, got %d bytes", buf.Len())
			}
		})
	}
}

func TestNewImage(t *testing.T) {
	if _, err := NewImage(image.NewRGBA(image.Rect(0, 0, 16, 32)), 32); !errors.Is(err, ErrNotSquare) {
		t.Errorf("Expected ErrNotSquare, got %v", err)
	}
	if _, err := NewImage(solid(300, color.RGBA{A: 255}), 32); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
	if _, err := NewImage(solid(16, color.RGBA{A: 255}), 16); !errors.Is(err, ErrUnsupportedBitCount) {
		t.Errorf("Expected ErrUnsupportedBitCount, got %v", err)
	}

	// A transparent image keeps alpha at 32 bits and is flattened at 24.
	clear := image.NewRGBA(image.Rect(0, 0, 16, 16))
	rgba, err := NewImage(clear, 32)
	if err != nil {
		t.Fatal(err)
	}
	rgb, err := NewImage(clear, 24)
	if err != nil {
		t.Fatal(err)
	}
	// PNG color type lives at byte 25 of the stream.
	if rgba.Data[25] != 6 {
		t.Errorf("Expected RGBA color type 6, got %d", rgba.Data[25])
	}
	if rgb.Data[25] != 2 {
		t.Errorf("Expected RGB color type 2, got %d", rgb.Data[25])
	}

	img, err := rgb.Image()
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, a := img.At(3, 3).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("Expected opaque white, got %d,%d,%d,%d", r, g, b, a)
	}
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	data, err := Marshal(mustImages(t, 32, 16, 32))
	if err != nil {
		t.Fatal(err)
	}

	truncated := data[:len(data)-10]
	if _, err := Decode(bytes.NewReader(truncated)); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for truncated file, got %v", err)
	}

	badType := append([]byte(nil), data...)
	badType[2] = 2
	if _, err := Decode(bytes.NewReader(badType)); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for cursor type, got %v", err)
	}

	if _, err := Decode(bytes.NewReader(data[:4])); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for short header, got %v", err)
	}

	_, entries, err := ReadDirectory(data)
	if err != nil {
		t.Fatal(err)
	}
	entries[1].Offset++
	if err := CheckLayout(entries, len(data)); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected gap to be reported, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.ico")

	images := mustImages(t, 32, 16, 32, 256)
	if err := WriteFile(path, images); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("Expected 3 images, got %d", len(decoded))
	}

	// A failed encode leaves the previous file in place and no temp files.
	if err := WriteFile(path, nil); !errors.Is(err, ErrNoImages) {
		t.Errorf("Expected ErrNoImages, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "icon.ico" {
		t.Errorf("Unexpected directory contents: %v", entries)
	}

	missing := filepath.Join(dir, "missing", "icon.ico")
	if err := WriteFile(missing, images); err == nil {
		t.Errorf("Expected error writing into missing directory")
	}
}

package datastore

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DataStore owns the directory generated assets are written to.
type DataStore struct {
	DataDir string
}

func NewDataStore(dataDir string) *DataStore {
	if dataDir == "" {
		dataDir = "icons"
	}
	return &DataStore{DataDir: dataDir}
}

// Asset describes one file in the data directory.
type Asset struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func (ds *DataStore) Path(name string) string {
	return filepath.Join(ds.DataDir, name)
}

func (ds *DataStore) EnsureDir() error {
	return os.MkdirAll(ds.DataDir, 0755)
}

// WriteFile replaces name with data. The content goes to a temporary file
// in the same directory first, so a failed write never leaves a truncated
// file under the final name.
func (ds *DataStore) WriteFile(name string, data []byte) (err error) {
	if err := ds.EnsureDir(); err != nil {
		return err
	}
	path := ds.Path(name)

	tmp, err := os.CreateTemp(ds.DataDir, "."+name+".*.tmp")
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
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WritePNG encodes img and writes it like WriteFile. It returns the number
// of bytes written.
func (ds *DataStore) WritePNG(name string, img image.Image) (int64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := ds.WriteFile(name, buf.Bytes()); err != nil {
		return 0, err
	}
	return int64(buf.Len()), nil
}

func (ds *DataStore) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(ds.Path(name))
}

// ListAssets returns the regular files in the data directory sorted by
// name. Hidden files, including in-flight temporaries, are skipped.
func (ds *DataStore) ListAssets() ([]Asset, error) {
	entries, err := os.ReadDir(ds.DataDir)
	if err != nil {
		return nil, err
	}

	var assets []Asset
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		assets = append(assets, Asset{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

func (ds *DataStore) GetETagForAsset(name string) int64 {
	info, err := os.Stat(ds.Path(name))
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano() / int64(time.Millisecond)
}

// GetETagForDir is the newest modification time across all assets.
func (ds *DataStore) GetETagForDir() int64 {
	assets, err := ds.ListAssets()
	if err != nil {
		return 0
	}
	var max int64
	for _, a := range assets {
		if e := a.ModTime.UnixNano() / int64(time.Millisecond); e > max {
			max = e
		}
	}
	return max
}

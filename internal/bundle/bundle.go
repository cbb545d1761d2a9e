package bundle

import (
	"fmt"
	"log"

	"github.com/aether/icongen/internal/constants"
	"github.com/aether/icongen/internal/datastore"
	"github.com/aether/icongen/internal/icns"
	"github.com/aether/icongen/internal/ico"
	"github.com/aether/icongen/internal/render"
)

// PNGTarget is a standalone PNG written to the output directory.
type PNGTarget struct {
	Name string
	Size int
}

// Plan lists every asset a run produces. Empty file names skip that asset.
type Plan struct {
	PNGs []PNGTarget

	ICOFile     string
	ICOSizes    []int
	ICOBitCount uint16

	ICNSFile       string
	ICNSMasterSize int

	PlaceholderFile string
	PlaceholderSize int
}

func DefaultPlan() Plan {
	p := Plan{
		ICOFile:         constants.ICOFile,
		ICOSizes:        append([]int(nil), constants.ICOSizes...),
		ICOBitCount:     constants.ICOBitCount,
		ICNSFile:        constants.ICNSFile,
		ICNSMasterSize:  constants.ICNSMasterSize,
		PlaceholderFile: constants.ICNSPlaceholderFile,
		PlaceholderSize: constants.ICNSPlaceholderSize,
	}
	for _, t := range constants.PNGTargets {
		p.PNGs = append(p.PNGs, PNGTarget{Name: t.Name, Size: t.Size})
	}
	return p
}

// Report lists what a run wrote, in order.
type Report struct {
	Files []datastore.Asset
}

// Generate renders src at every size the plan needs and writes the assets
// into ds. The first failure stops the run.
func Generate(src render.Source, ds *datastore.DataStore, plan Plan) (*Report, error) {
	if err := ds.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	cached := render.NewCached(src)
	report := &Report{}

	record := func(name string, size int64) {
		log.Printf("Created %s (%d bytes)", ds.Path(name), size)
		report.Files = append(report.Files, datastore.Asset{Name: name, Size: size})
	}

	writePNG := func(name string, size int) error {
		img, err := cached.Render(size)
		if err != nil {
			return fmt.Errorf("render %dx%d: %w", size, size, err)
		}
		n, err := ds.WritePNG(name, img)
		if err != nil {
			return err
		}
		record(name, n)
		return nil
	}

	for _, t := range plan.PNGs {
		log.Printf("Generating %s...", t.Name)
		if err := writePNG(t.Name, t.Size); err != nil {
			return nil, err
		}
	}

	if plan.ICOFile != "" {
		log.Printf("Generating %s...", plan.ICOFile)
		data, err := BuildICO(cached, plan.ICOSizes, plan.ICOBitCount)
		if err != nil {
			return nil, err
		}
		if err := ds.WriteFile(plan.ICOFile, data); err != nil {
			return nil, err
		}
		record(plan.ICOFile, int64(len(data)))
	}

	if plan.ICNSFile != "" {
		log.Printf("Generating %s...", plan.ICNSFile)
		master, err := cached.Render(plan.ICNSMasterSize)
		if err != nil {
			return nil, fmt.Errorf("render icns master: %w", err)
		}
		data, err := icns.Marshal(master)
		if err != nil {
			return nil, err
		}
		if err := ds.WriteFile(plan.ICNSFile, data); err != nil {
			return nil, err
		}
		record(plan.ICNSFile, int64(len(data)))
	}

	if plan.PlaceholderFile != "" {
		log.Printf("Generating %s placeholder...", plan.PlaceholderFile)
		if err := writePNG(plan.PlaceholderFile, plan.PlaceholderSize); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// BuildICO renders src at each size and assembles the icon container.
func BuildICO(src render.Source, sizes []int, bitCount uint16) ([]byte, error) {
	images := make([]ico.Image, 0, len(sizes))
	for _, size := range sizes {
		img, err := src.Render(size)
		if err != nil {
			return nil, fmt.Errorf("render %dx%d: %w", size, size, err)
		}
		entry, err := ico.NewImage(img, bitCount)
		if err != nil {
			return nil, err
		}
		images = append(images, entry)
	}
	return ico.Marshal(images)
}

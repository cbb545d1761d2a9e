package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/aether/icongen/internal/bundle"
	"github.com/aether/icongen/internal/config"
	"github.com/aether/icongen/internal/datastore"
	"github.com/aether/icongen/internal/preview"
	"github.com/aether/icongen/internal/render"
)

const usage = `usage: icongen [generate|preview] [flags]

Commands:
  generate   write the icon set to the output directory (default)
  preview    serve the output directory over HTTP

Flags:
`

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "icongen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	cmd := "generate"
	if len(args) > 0 && (args[0] == "generate" || args[0] == "preview") {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("icongen "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	cfg, err := config.Parse(fs, args)
	if err != nil {
		return err
	}

	ds := datastore.NewDataStore(cfg.OutDir)
	if cmd == "preview" {
		return servePreview(cfg, ds)
	}
	return generate(cfg, ds)
}

func generate(cfg config.Config, ds *datastore.DataStore) error {
	src, err := openSource(cfg)
	if err != nil {
		return err
	}

	plan := bundle.DefaultPlan()
	plan.ICOBitCount = uint16(cfg.ICOBits)

	report, err := bundle.Generate(src, ds, plan)
	if err != nil {
		return err
	}
	log.Printf("All icons generated! (%d files in %s)", len(report.Files), ds.DataDir)
	return nil
}

func openSource(cfg config.Config) (render.Source, error) {
	switch cfg.Source {
	case config.SourceSVG:
		return render.OpenSVG(cfg.Input)
	case config.SourcePNG:
		return render.OpenRaster(cfg.Input)
	default:
		return render.DefaultLogo(), nil
	}
}

func servePreview(cfg config.Config, ds *datastore.DataStore) error {
	if _, err := ds.ListAssets(); err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}
	srv := preview.NewServer(ds)
	log.Printf("Serving %s on %s", ds.DataDir, cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Router())
}

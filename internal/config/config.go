package config

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/aether/icongen/internal/constants"
)

const (
	SourceLogo = "logo"
	SourceSVG  = "svg"
	SourcePNG  = "png"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings for one icongen run. Environment variables
// provide defaults; command-line flags override them.
type Config struct {
	OutDir  string `env:"ICONGEN_OUT_DIR" envDefault:"gui/src-tauri/icons"`
	Source  string `env:"ICONGEN_SOURCE" envDefault:"logo"`
	Input   string `env:"ICONGEN_INPUT"`
	ICOBits uint   `env:"ICONGEN_ICO_BITS" envDefault:"32"`
	Addr    string `env:"ICONGEN_ADDR" envDefault:":8000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Parse reads the environment, then applies flags from args on fs.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory for generated icons")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "artwork source: logo, svg or png")
	fs.StringVar(&cfg.Input, "in", cfg.Input, "input file for svg and png sources (svg defaults to <out>/icon.svg)")
	fs.UintVar(&cfg.ICOBits, "ico-bits", cfg.ICOBits, "bit depth of icon.ico entries: 24 or 32")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address for preview")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	if c.OutDir == "" {
		c.OutDir = constants.DefaultOutDir
	}
	switch c.Source {
	case SourceLogo:
	case SourceSVG:
		if c.Input == "" {
			c.Input = filepath.Join(c.OutDir, constants.SVGSourceFile)
		}
	case SourcePNG:
		if c.Input == "" {
			return fmt.Errorf("%w: -in is required for the png source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	if c.ICOBits != 24 && c.ICOBits != 32 {
		return fmt.Errorf("%w: ico bit depth must be 24 or 32, got %d", ErrInvalidConfig, c.ICOBits)
	}
	return nil
}

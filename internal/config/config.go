// Package config loads the gfxdemo configuration from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/gfx/internal/capture"
)

// ErrUnknownFormat is returned for config files whose extension is neither
// TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Format is a config file encoding.
type Format int

const (
	TOML Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Demo configures the demo window and renderer.
type Demo struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`

	// Backend is a registered gfx backend name.
	Backend string `toml:"backend" yaml:"backend"`
	VSync   bool   `toml:"vsync" yaml:"vsync"`

	// ClearColor is RGBA in [0, 1].
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`

	Profiling bool `toml:"profiling" yaml:"profiling"`

	// Capture, when set, is the image file the first frame is written to.
	Capture string `toml:"capture" yaml:"capture"`
}

// Default returns the configuration used when no file is given.
func Default() Demo {
	return Demo{
		Width:      800,
		Height:     600,
		Title:      "gfxdemo",
		Backend:    "gl",
		VSync:      true,
		ClearColor: [4]float32{0.1, 0.1, 0.15, 1},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Demo, error) {
	d := Default()
	f, err := FormatFromPath(path)
	if err != nil {
		return d, err
	}
	file, err := os.Open(path)
	if err != nil {
		return d, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	if err := Decode(file, f, &d); err != nil {
		return d, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("config: %s: %w", path, err)
	}
	return d, nil
}

// Decode reads r into d. Fields missing from the input keep their values;
// unknown keys are errors.
func Decode(r io.Reader, f Format, d *Demo) error {
	switch f {
	case TOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(d)
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(d); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Encode writes d to w.
func Encode(w io.Writer, f Format, d *Demo) error {
	switch f {
	case TOML:
		return toml.NewEncoder(w).Encode(d)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Validate reports the first invalid field.
func (d *Demo) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", d.Width, d.Height)
	}
	if d.Backend == "" {
		return errors.New("backend must be set")
	}
	for i, c := range d.ClearColor {
		if c < 0 || c > 1 {
			return fmt.Errorf("clear_color[%d] = %v, want a value in [0, 1]", i, c)
		}
	}
	if d.Capture != "" {
		if _, err := capture.FormatFromPath(d.Capture); err != nil {
			return err
		}
	}
	return nil
}

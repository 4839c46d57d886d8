// Package config loads the tunable geometry and theme of the chart viewers
// from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"

	"git.sr.ht/~whereswaldon/spanchart/chart"
)

// Options is the on-disk configuration. Lengths are logical pixels.
type Options struct {
	// MinWindow is the narrowest main chart window in sample indices.
	MinWindow float64 `yaml:"min_window"`
	// InitialFraction places the initial left edge of the window.
	InitialFraction float64 `yaml:"initial_fraction"`
	IndexPadding    float64 `yaml:"index_padding"`

	AbscissaHeight    float32 `yaml:"abscissa_height"`
	TopPadding        float32 `yaml:"top_padding"`
	LineWidth         float32 `yaml:"line_width"`
	OverviewLineWidth float32 `yaml:"overview_line_width"`
	GrabWidth         float32 `yaml:"grab_width"`
	LabelSize         float32 `yaml:"label_size"`
	TooltipGap        float32 `yaml:"tooltip_gap"`

	Gridlines     int `yaml:"gridlines"`
	MaxTimeLabels int `yaml:"max_time_labels"`

	SnapThreshold float64 `yaml:"snap_threshold"`
	Damping       float64 `yaml:"damping"`

	// MaxWidth caps the width of a chart block.
	MaxWidth float32 `yaml:"max_width"`
	// OverviewRatio sizes the overview height relative to the block width,
	// never below OverviewMinHeight.
	OverviewRatio     float32 `yaml:"overview_ratio"`
	OverviewMinHeight float32 `yaml:"overview_min_height"`
	// Aspect is the main chart height relative to its width.
	Aspect float32 `yaml:"aspect"`

	// Theme names the initial palette, "day" or "night".
	Theme string `yaml:"theme"`
}

// Default returns the stock configuration.
func Default() Options {
	c := chart.DefaultOptions()
	return Options{
		MinWindow:         c.MinWindow,
		InitialFraction:   c.InitialFraction,
		IndexPadding:      c.IndexPadding,
		AbscissaHeight:    c.AbscissaHeight,
		TopPadding:        c.TopPadding,
		LineWidth:         c.LineWidth,
		OverviewLineWidth: c.OverviewLineWidth,
		GrabWidth:         c.GrabWidth,
		LabelSize:         16,
		TooltipGap:        20,
		Gridlines:         c.Gridlines,
		MaxTimeLabels:     c.MaxTimeLabels,
		SnapThreshold:     c.SnapThreshold,
		Damping:           c.Damping,
		MaxWidth:          500,
		OverviewRatio:     0.12,
		OverviewMinHeight: 20,
		Aspect:            0.993,
		Theme:             chart.DayName,
	}
}

// Load reads the options stored at path on fsys. A missing file yields the
// defaults. Fields absent from the file keep their default values and every
// value is clamped into a usable range.
func Load(fsys afero.Fs, path string) (Options, error) {
	opts := Default()
	if path == "" {
		return opts, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("failed reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Default(), fmt.Errorf("failed parsing config %q: %w", path, err)
	}
	opts.normalize()
	return opts, nil
}

// Save writes o to path on fsys, creating parent directories as needed.
func (o Options) Save(fsys afero.Fs, path string) (err error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed creating config directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed creating config %q: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return o.Write(f)
}

// Write encodes o as YAML.
func (o Options) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("failed encoding config: %w", err)
	}
	return enc.Close()
}

// normalize ensures all values are within valid ranges.
func (o *Options) normalize() {
	d := Default()
	o.MinWindow = positiveOr(o.MinWindow, d.MinWindow)
	o.InitialFraction = clamp(o.InitialFraction, 0, 1)
	o.IndexPadding = max(o.IndexPadding, 0)

	o.AbscissaHeight = max(o.AbscissaHeight, 0)
	o.TopPadding = max(o.TopPadding, 0)
	o.LineWidth = positiveOr(o.LineWidth, d.LineWidth)
	o.OverviewLineWidth = positiveOr(o.OverviewLineWidth, d.OverviewLineWidth)
	o.GrabWidth = positiveOr(o.GrabWidth, d.GrabWidth)
	o.LabelSize = positiveOr(o.LabelSize, d.LabelSize)
	o.TooltipGap = max(o.TooltipGap, 0)

	o.Gridlines = clamp(o.Gridlines, 1, 50)
	o.MaxTimeLabels = clamp(o.MaxTimeLabels, 1, 50)

	o.SnapThreshold = clamp(o.SnapThreshold, 0, 1)
	if o.Damping <= 0 || o.Damping > 1 {
		o.Damping = d.Damping
	}

	o.MaxWidth = positiveOr(o.MaxWidth, d.MaxWidth)
	o.OverviewRatio = positiveOr(o.OverviewRatio, d.OverviewRatio)
	o.OverviewMinHeight = max(o.OverviewMinHeight, 0)
	o.Aspect = positiveOr(o.Aspect, d.Aspect)

	if _, ok := chart.PaletteByName(o.Theme); !ok {
		o.Theme = d.Theme
	}
}

// ChartOptions converts o into the chart package's options.
func (o Options) ChartOptions() chart.Options {
	c := chart.DefaultOptions()
	c.MinWindow = o.MinWindow
	c.InitialFraction = o.InitialFraction
	c.IndexPadding = o.IndexPadding
	c.AbscissaHeight = o.AbscissaHeight
	c.TopPadding = o.TopPadding
	c.LineWidth = o.LineWidth
	c.OverviewLineWidth = o.OverviewLineWidth
	c.GrabWidth = o.GrabWidth
	c.Gridlines = o.Gridlines
	c.MaxTimeLabels = o.MaxTimeLabels
	c.SnapThreshold = o.SnapThreshold
	c.Damping = o.Damping
	return c
}

// Palette returns the configured initial palette.
func (o Options) Palette() chart.Palette {
	p, ok := chart.PaletteByName(o.Theme)
	if !ok {
		return chart.Day()
	}
	return p
}

// MainSize returns the main chart size for a host of the given width.
func (o Options) MainSize(hostWidth float32) (width, height float32) {
	width = min(o.MaxWidth, hostWidth)
	return width, width * o.Aspect
}

// OverviewHeight returns the overview height for a block of the given width.
func (o Options) OverviewHeight(width float32) float32 {
	return max(o.OverviewMinHeight, width*o.OverviewRatio)
}

type number interface {
	constraints.Integer | constraints.Float
}

func clamp[T number](val, minimum, maximum T) T {
	return min(max(val, minimum), maximum)
}

func positiveOr[T number](val, fallback T) T {
	if val <= 0 {
		return fallback
	}
	return val
}

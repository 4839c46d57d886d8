// Package raster implements chart.Surface on an in-memory RGBA image so that
// charts can be rendered without a window.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"sync"

	"gioui.org/f32"
	"github.com/fogleman/gg"
	"github.com/spf13/afero"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"git.sr.ht/~whereswaldon/spanchart/chart"
)

// DefaultLabelSize is the text size in logical pixels.
const DefaultLabelSize = 16

var regular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// Surface is a chart.Surface backed by a gg drawing context.
type Surface struct {
	dc    *gg.Context
	scale float32
	face  font.Face
}

var _ chart.Surface = (*Surface)(nil)

// New creates a surface of width by height device pixels, with scale device
// pixels per logical pixel.
func New(width, height int, scale float32) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if scale <= 0 {
		scale = 1
	}
	s := &Surface{
		dc:    gg.NewContext(width, height),
		scale: scale,
	}
	if err := s.SetLabelSize(DefaultLabelSize); err != nil {
		return nil, err
	}
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
	return s, nil
}

// SetLabelSize changes the text size, given in logical pixels.
func (s *Surface) SetLabelSize(size float32) error {
	f, err := regular()
	if err != nil {
		return fmt.Errorf("failed parsing label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size * s.scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed creating label face: %w", err)
	}
	if s.face != nil {
		s.face.Close()
	}
	s.face = face
	s.dc.SetFontFace(face)
	return nil
}

func (s *Surface) Size() image.Point {
	return image.Pt(s.dc.Width(), s.dc.Height())
}

func (s *Surface) Scale() float32 {
	return s.scale
}

func (s *Surface) Fill(c color.NRGBA) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

func (s *Surface) FillRect(min, max f32.Point, c color.NRGBA) {
	if max.X <= min.X || max.Y <= min.Y {
		return
	}
	s.dc.SetColor(c)
	s.dc.DrawRectangle(float64(min.X), float64(min.Y), float64(max.X-min.X), float64(max.Y-min.Y))
	s.dc.Fill()
}

func (s *Surface) Polyline(pts []f32.Point, width float32, c color.NRGBA) {
	if len(pts) == 0 {
		return
	}
	s.dc.SetColor(c)
	s.dc.SetLineWidth(float64(width))
	s.dc.MoveTo(float64(pts[0].X), float64(pts[0].Y))
	for _, p := range pts[1:] {
		s.dc.LineTo(float64(p.X), float64(p.Y))
	}
	s.dc.Stroke()
}

func (s *Surface) Circle(center f32.Point, radius, strokeWidth float32, fill, stroke color.NRGBA) {
	s.dc.DrawCircle(float64(center.X), float64(center.Y), float64(radius))
	s.dc.SetColor(fill)
	s.dc.FillPreserve()
	s.dc.SetColor(stroke)
	s.dc.SetLineWidth(float64(strokeWidth))
	s.dc.Stroke()
}

func (s *Surface) Text(str string, at f32.Point, align chart.Align, c color.NRGBA) {
	var ax float64
	switch align {
	case chart.AlignMiddle:
		ax = 0.5
	case chart.AlignEnd:
		ax = 1
	}
	s.dc.SetColor(c)
	s.dc.DrawStringAnchored(str, float64(at.X), float64(at.Y), ax, 0)
}

// Image returns the rendered image.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the image to w in PNG format.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// SavePNG writes the image to path on fsys, creating parent directories.
func (s *Surface) SavePNG(fsys afero.Fs, path string) (err error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed creating output directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed creating %q: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := s.EncodePNG(f); err != nil {
		return fmt.Errorf("failed encoding %q: %w", path, err)
	}
	return nil
}

// Close releases the font face.
func (s *Surface) Close() error {
	if s.face == nil {
		return nil
	}
	err := s.face.Close()
	s.face = nil
	return err
}

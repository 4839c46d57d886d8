package chart

import (
	"image"

	"gioui.org/f32"
)

// OverviewChart draws every visible series across the whole index domain and
// marks the main chart's window on top of it with a mask and two grab
// handles.
type OverviewChart struct {
	vp    *Viewport
	opts  Options
	size  image.Point
	scale float32
	// scratch is reused to build each series' polyline.
	scratch []f32.Point
}

// NewOverviewChart creates an overview whose viewport always spans
// [minIndex, maxIndex].
func NewOverviewChart(minIndex, maxIndex float64, opts Options) *OverviewChart {
	vp := NewViewport(minIndex, maxIndex, minIndex, maxIndex, 0)
	vp.SetSmoothing(opts.SnapThreshold, opts.Damping)
	return &OverviewChart{vp: vp, opts: opts, scale: 1}
}

func (o *OverviewChart) Viewport() *Viewport {
	return o.vp
}

// Resize records the surface dimensions used to map between pixels and
// indices.
func (o *OverviewChart) Resize(size image.Point, scale float32) {
	o.size = size
	o.scale = scale
	o.vp.SetDrawableHeight(float64(size.Y))
}

// x maps an index linearly onto the overview width.
func (o *OverviewChart) x(i float64) float32 {
	lo, hi := o.vp.Bounds()
	if hi == lo {
		return 0
	}
	return float32((i - lo) * float64(o.size.X) / (hi - lo))
}

// IndexAt maps a horizontal pixel offset to a fractional index.
func (o *OverviewChart) IndexAt(x float32) float64 {
	lo, hi := o.vp.Bounds()
	if o.size.X == 0 {
		return lo
	}
	return lo + float64(x)*(hi-lo)/float64(o.size.X)
}

// HandlePositions returns the pixel offsets of the window edges.
func (o *OverviewChart) HandlePositions(left, right float64) (lx, rx float32) {
	return o.x(left), o.x(right)
}

// GrabWidth returns the handle width in device pixels.
func (o *OverviewChart) GrabWidth() float32 {
	return o.opts.GrabWidth * o.scale
}

// Render draws the overview with the main window [left, right] highlighted.
func (o *OverviewChart) Render(s Surface, pal Palette, left, right float64) {
	size := s.Size()
	if size != o.size || s.Scale() != o.scale {
		o.Resize(size, s.Scale())
	}
	mult := o.vp.Tick()
	w, h := float32(size.X), float32(size.Y)

	s.Fill(pal.Background)
	width := o.opts.OverviewLineWidth * o.scale
	for _, line := range o.vp.Series() {
		o.scratch = o.scratch[:0]
		for i, v := range line.Samples() {
			o.scratch = append(o.scratch, f32.Pt(o.x(float64(i)), h-float32(v*mult)))
		}
		s.Polyline(o.scratch, width, line.Color)
	}

	lx, rx := o.HandlePositions(left, right)
	g := o.GrabWidth()
	mask := pal.Mask()
	s.FillRect(f32.Pt(0, 0), f32.Pt(lx, h), mask)
	s.FillRect(f32.Pt(rx, 0), f32.Pt(w, h), mask)

	s.FillRect(f32.Pt(lx, 0), f32.Pt(lx+g, h), pal.HandleFill)
	s.FillRect(f32.Pt(rx-g, 0), f32.Pt(rx, h), pal.HandleFill)
	bar := o.scale
	if rx-g > lx+g {
		s.FillRect(f32.Pt(lx+g, 0), f32.Pt(rx-g, bar), pal.HandleFill)
		s.FillRect(f32.Pt(lx+g, h-bar), f32.Pt(rx-g, h), pal.HandleFill)
	}
}

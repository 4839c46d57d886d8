package main

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/spanchart/chart"
)

// gioSurface draws chart output into the frame's op list. Every operation is
// offset to origin and clipped to size, so several surfaces can share one
// op list.
type gioSurface struct {
	gtx    C
	th     *material.Theme
	origin image.Point
	size   image.Point
	label  unit.Sp
}

var _ chart.Surface = (*gioSurface)(nil)

func newSurface(gtx C, th *material.Theme, origin, size image.Point, labelSize float32) *gioSurface {
	return &gioSurface{
		gtx:    gtx,
		th:     th,
		origin: origin,
		size:   size,
		label:  unit.Sp(labelSize),
	}
}

func (s *gioSurface) Size() image.Point { return s.size }
func (s *gioSurface) Scale() float32    { return s.gtx.Metric.PxPerDp }

// push moves drawing into the surface's rectangle. The returned func restores
// the previous state.
func (s *gioSurface) push() func() {
	offset := op.Offset(s.origin).Push(s.gtx.Ops)
	area := clip.Rect{Max: s.size}.Push(s.gtx.Ops)
	return func() {
		area.Pop()
		offset.Pop()
	}
}

func (s *gioSurface) Fill(c color.NRGBA) {
	defer s.push()()
	paint.Fill(s.gtx.Ops, c)
}

func (s *gioSurface) FillRect(min, max f32.Point, c color.NRGBA) {
	defer s.push()()
	var p clip.Path
	p.Begin(s.gtx.Ops)
	p.MoveTo(min)
	p.LineTo(f32.Pt(max.X, min.Y))
	p.LineTo(max)
	p.LineTo(f32.Pt(min.X, max.Y))
	p.Close()
	paint.FillShape(s.gtx.Ops, c, clip.Outline{Path: p.End()}.Op())
}

func (s *gioSurface) Polyline(pts []f32.Point, width float32, c color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	defer s.push()()
	var p clip.Path
	p.Begin(s.gtx.Ops)
	p.MoveTo(pts[0])
	for _, pt := range pts[1:] {
		p.LineTo(pt)
	}
	paint.FillShape(s.gtx.Ops, c, clip.Stroke{Path: p.End(), Width: width}.Op())
}

func (s *gioSurface) Circle(center f32.Point, radius, strokeWidth float32, fill, stroke color.NRGBA) {
	defer s.push()()
	bounds := image.Rectangle{
		Min: image.Pt(round(center.X-radius), round(center.Y-radius)),
		Max: image.Pt(round(center.X+radius), round(center.Y+radius)),
	}
	paint.FillShape(s.gtx.Ops, fill, clip.Ellipse(bounds).Op(s.gtx.Ops))
	if strokeWidth > 0 {
		paint.FillShape(s.gtx.Ops, stroke, clip.Stroke{
			Path:  clip.Ellipse(bounds).Path(s.gtx.Ops),
			Width: strokeWidth,
		}.Op())
	}
}

func (s *gioSurface) Text(str string, at f32.Point, align chart.Align, c color.NRGBA) {
	defer s.push()()
	l := material.Label(s.th, s.label, str)
	l.Color = c
	l.MaxLines = 1
	gtx := s.gtx
	gtx.Constraints = layout.Constraints{Max: s.size}
	dims, call := rec(gtx, l.Layout)
	x := at.X
	switch align {
	case chart.AlignMiddle:
		x -= float32(dims.Size.X) / 2
	case chart.AlignEnd:
		x -= float32(dims.Size.X)
	}
	y := at.Y - float32(dims.Size.Y-dims.Baseline)
	defer op.Offset(image.Pt(round(x), round(y))).Push(s.gtx.Ops).Pop()
	call.Add(s.gtx.Ops)
}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

func round(v float32) int {
	return int(floor(v + 0.5))
}

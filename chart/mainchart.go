package chart

import (
	"image/color"

	"gioui.org/f32"

	"git.sr.ht/~whereswaldon/spanchart/backend"
)

// TooltipValue is one series' reading at the hovered index.
type TooltipValue struct {
	Label string
	Color color.NRGBA
	Value float64
}

// Tooltip describes the panel a host should show for the hovered sample.
// It is the zero value while no pointer is over the chart.
type Tooltip struct {
	Visible   bool
	Index     int
	Timestamp int64
	Date      string
	Values    []TooltipValue
}

// MainChart draws the zoomed view of a block: gridlines, time labels, a
// crosshair, the series and markers on the hovered samples.
type MainChart struct {
	vp   *Viewport
	axis *backend.TimeAxis
	opts Options

	pointerX   float32
	hasPointer bool

	transform Transform
	tooltip   Tooltip
	// scratch is reused to build each series' polyline.
	scratch []f32.Point
}

func NewMainChart(vp *Viewport, axis *backend.TimeAxis, opts Options) *MainChart {
	return &MainChart{vp: vp, axis: axis, opts: opts}
}

// PointerMove records the pointer position in device pixels.
func (m *MainChart) PointerMove(x float32) {
	m.pointerX = x
	m.hasPointer = true
}

// PointerLeave forgets the pointer and hides the tooltip.
func (m *MainChart) PointerLeave() {
	m.hasPointer = false
	m.tooltip = Tooltip{}
}

// Pointer returns the recorded pointer position.
func (m *MainChart) Pointer() (x float32, ok bool) {
	return m.pointerX, m.hasPointer
}

// Nearest returns the sample index under the pointer as of the last render.
func (m *MainChart) Nearest() (int, bool) {
	return m.tooltip.Index, m.tooltip.Visible
}

// Tooltip returns the hover details computed by the last render.
func (m *MainChart) Tooltip() Tooltip {
	return m.tooltip
}

// Transform returns the pixel mapping used by the last render.
func (m *MainChart) Transform() Transform {
	return m.transform
}

// Render draws the chart. Later layers sit above earlier ones: background,
// grid, time axis, crosshair, series, then the hovered sample markers.
func (m *MainChart) Render(s Surface, pal Palette) {
	size, scale := s.Size(), s.Scale()
	m.vp.SetDrawableHeight(float64(size.Y) - float64((m.opts.AbscissaHeight+m.opts.TopPadding)*scale))
	m.vp.Tick()
	m.transform = m.vp.Transform(size, m.opts.AbscissaHeight*scale)

	s.Fill(pal.Background)
	m.drawGrid(s, pal)
	m.drawTimeAxis(s, pal)
	m.drawCrosshair(s, pal)
	m.drawSeries(s)
	m.drawNearest(s, pal)
}

func (m *MainChart) drawGrid(s Surface, pal Palette) {
	size, scale := s.Size(), s.Scale()
	step := NiceStep(m.vp.VisibleMaximum())
	inset := m.opts.LabelInset * scale
	for i := 0; i < m.opts.Gridlines; i++ {
		value := step * float64(i)
		y := m.transform.Y(value)
		s.Polyline([]f32.Point{{Y: y}, {X: float32(size.X), Y: y}}, scale, pal.Grid)
		s.Text(PrettyNum(value), f32.Pt(inset, y-inset), AlignStart, pal.Text)
	}
}

// visibleRange returns the index range drawn by the series, which runs two
// indices past the right edge so lines leave the surface cleanly.
func (m *MainChart) visibleRange() (int, int) {
	return int(m.vp.Left()), int(m.vp.Right()) + 2
}

func (m *MainChart) drawTimeAxis(s Surface, pal Palette) {
	if m.axis == nil {
		return
	}
	size, scale := s.Size(), s.Scale()
	a, b := m.visibleRange()
	labels := m.axis.Labels(a, b)
	stride := LabelStride(len(labels), m.vp.Right()-m.vp.Left()+2, m.opts.MaxTimeLabels)
	y := float32(size.Y) - m.opts.LabelInset*scale
	first := max(a, 0)
	for i, label := range labels {
		idx := first + i
		if idx%stride != 0 {
			continue
		}
		s.Text(label, f32.Pt(m.transform.X(float64(idx)), y), AlignMiddle, pal.Text)
	}
}

func (m *MainChart) drawCrosshair(s Surface, pal Palette) {
	if !m.hasPointer {
		return
	}
	s.Polyline([]f32.Point{
		{X: m.pointerX},
		{X: m.pointerX, Y: float32(m.transform.Bottom)},
	}, s.Scale(), pal.Crosshair)
}

func (m *MainChart) drawSeries(s Surface) {
	a, b := m.visibleRange()
	first := max(a, 0)
	width := m.opts.LineWidth * s.Scale()
	for _, line := range m.vp.Series() {
		m.scratch = m.scratch[:0]
		for i, v := range line.Range(a, b) {
			m.scratch = append(m.scratch, f32.Pt(m.transform.X(float64(first+i)), m.transform.Y(v)))
		}
		s.Polyline(m.scratch, width, line.Color)
	}
}

func (m *MainChart) drawNearest(s Surface, pal Palette) {
	m.tooltip = Tooltip{}
	lines := m.vp.Series()
	if !m.hasPointer || len(lines) == 0 || m.axis == nil || m.axis.Len() == 0 {
		return
	}
	idx := clamp(m.transform.Nearest(m.pointerX), 0, m.axis.Len()-1)
	scale := s.Scale()
	x := m.transform.X(float64(idx))
	tip := Tooltip{
		Visible:   true,
		Index:     idx,
		Timestamp: m.axis.Timestamp(idx),
		Date:      m.axis.LongLabel(idx),
		Values:    make([]TooltipValue, 0, len(lines)),
	}
	for _, line := range lines {
		if idx >= line.Len() {
			continue
		}
		v := line.At(idx)
		s.Circle(f32.Pt(x, m.transform.Y(v)), m.opts.MarkerRadius*scale, 0.9*m.opts.LineWidth*scale, pal.Background, line.Color)
		tip.Values = append(tip.Values, TooltipValue{Label: line.Label, Color: line.Color, Value: v})
	}
	m.tooltip = tip
}

// TooltipX places a tooltip of the given width beside the pointer: to its
// right while the pointer is in the left half of the surface and to its left
// otherwise. The result never overflows the surface.
func TooltipX(pointerX, tooltipWidth, surfaceWidth, gap float32) float32 {
	var x float32
	if pointerX*2 < surfaceWidth {
		x = pointerX + gap
	} else {
		x = pointerX - tooltipWidth - gap
	}
	return clamp(x, 0, max(surfaceWidth-tooltipWidth, 0))
}

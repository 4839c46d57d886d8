package main

import (
	"image"
	"math"

	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"github.com/dustin/go-humanize"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/spanchart/backend"
	"git.sr.ht/~whereswaldon/spanchart/chart"
	"git.sr.ht/~whereswaldon/spanchart/config"
)

var resetIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ActionZoomOut)
	return icon
}()

// BlockView lays out one chart block: a title row, the main chart with its
// tooltip, the overview selector and a legend that toggles series.
type BlockView struct {
	block *chart.Block
	opts  config.Options
	pal   chart.Palette
	title string

	enabled  []widget.Bool
	legend   component.GridState
	zoom     gesture.Scroll
	click    gesture.Click
	resetBtn widget.Clickable

	// pointerX is the last hover position over the main chart in pixels.
	pointerX   float32
	mainHeight int
	// overviewTag is the event target of the overview area.
	overviewTag bool
}

func NewBlockView(block *chart.Block, opts config.Options, pal chart.Palette, title string) *BlockView {
	v := &BlockView{
		block:   block,
		opts:    opts,
		pal:     pal,
		title:   title,
		enabled: make([]widget.Bool, len(block.Data().Series)),
	}
	for i := range v.enabled {
		v.enabled[i].Value = block.Visible(i)
	}
	return v
}

func (v *BlockView) Block() *chart.Block { return v.block }

// SetPalette changes the colors used from the next frame on.
func (v *BlockView) SetPalette(pal chart.Palette) {
	v.pal = pal
}

// Update processes input since the last frame.
func (v *BlockView) Update(gtx C) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: v,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Enter, pointer.Move:
			v.pointerX = e.Position.X
			v.block.PointerMove(e.Position.X)
		case pointer.Leave, pointer.Cancel:
			v.block.PointerLeave()
		}
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: &v.overviewTag,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Leave,
		})
		if !ok {
			break
		}
		if e, ok := ev.(pointer.Event); ok {
			overviewEvent(v.block, e.Kind, e.Position.X)
		}
	}
	dist := v.zoom.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Vertical, image.Rect(0, -1e6, 0, 1e6))
	if dist != 0 && v.mainHeight > 0 {
		v.block.ZoomAt(v.pointerX, 1+float64(dist)/float64(v.mainHeight))
	}
	for {
		ev, ok := v.click.Update(gtx.Source)
		if !ok {
			break
		}
		if ev.Kind == gesture.KindClick && ev.NumClicks == 2 {
			v.block.ResetWindow()
		}
	}
	if v.resetBtn.Clicked(gtx) {
		v.block.ResetWindow()
	}
	for i := range v.enabled {
		if v.enabled[i].Update(gtx) {
			v.block.ToggleSeries(i)
			// The block refuses to hide its last visible series.
			v.enabled[i].Value = v.block.Visible(i)
		}
	}
}

// overviewEvent feeds one overview pointer event at x into the block's drag
// state machine. Leaving the overview ends any drag.
func overviewEvent(b *chart.Block, kind pointer.Kind, x float32) {
	switch kind {
	case pointer.Press:
		b.OverviewPress(x)
	case pointer.Drag:
		b.OverviewDrag(x)
	case pointer.Release, pointer.Cancel, pointer.Leave:
		b.OverviewRelease()
	}
}

func (v *BlockView) Layout(gtx C, th *material.Theme) D {
	v.Update(gtx)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return v.layoutHeader(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			return v.layoutCharts(gtx, th)
		}),
		layout.Rigid(layout.Spacer{Height: 8}.Layout),
		layout.Rigid(func(gtx C) D {
			return v.layoutLegend(gtx, th)
		}),
	)
}

func (v *BlockView) layoutHeader(gtx C, th *material.Theme) D {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, material.H6(th, v.title).Layout),
		layout.Rigid(func(gtx C) D {
			size := gtx.Dp(32)
			gtx.Constraints = layout.Exact(image.Pt(size, size))
			return material.Clickable(gtx, &v.resetBtn, func(gtx C) D {
				return layout.Center.Layout(gtx, func(gtx C) D {
					return resetIcon.Layout(gtx, th.Fg)
				})
			})
		}),
	)
}

func (v *BlockView) layoutCharts(gtx C, th *material.Theme) D {
	width := min(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(v.opts.MaxWidth)))
	if width <= 0 {
		return D{}
	}
	mainSize := image.Pt(width, int(float32(width)*v.opts.Aspect))
	overviewHeight := v.opts.OverviewHeight(float32(gtx.Metric.PxToDp(width)))
	overviewSize := image.Pt(width, gtx.Dp(unit.Dp(overviewHeight)))
	overviewOrigin := image.Pt(0, mainSize.Y+gtx.Dp(8))
	v.mainHeight = mainSize.Y

	v.block.Resize(mainSize, overviewSize, gtx.Metric.PxPerDp)
	main := newSurface(gtx, th, image.Point{}, mainSize, v.opts.LabelSize)
	overview := newSurface(gtx, th, overviewOrigin, overviewSize, v.opts.LabelSize)
	if v.block.Render(main, overview, v.pal) {
		gtx.Execute(op.InvalidateCmd{})
	}

	area := clip.Rect{Max: mainSize}.Push(gtx.Ops)
	event.Op(gtx.Ops, v)
	v.zoom.Add(gtx.Ops)
	v.click.Add(gtx.Ops)
	area.Pop()

	offset := op.Offset(overviewOrigin).Push(gtx.Ops)
	area = clip.Rect{Max: overviewSize}.Push(gtx.Ops)
	pointer.CursorGrab.Add(gtx.Ops)
	event.Op(gtx.Ops, &v.overviewTag)
	area.Pop()
	offset.Pop()

	v.layoutTooltip(gtx, th, mainSize)
	return D{Size: image.Pt(width, overviewOrigin.Y+overviewSize.Y)}
}

// layoutTooltip draws the hover panel over the main chart.
func (v *BlockView) layoutTooltip(gtx C, th *material.Theme, mainSize image.Point) {
	tip := v.block.Tooltip()
	pointerX, ok := v.block.Main().Pointer()
	if !tip.Visible || !ok {
		return
	}
	gtx.Constraints = layout.Constraints{Max: mainSize}
	dims, call := rec(gtx, func(gtx C) D {
		return layout.Background{}.Layout(gtx,
			func(gtx C) D {
				bounds := image.Rectangle{Max: gtx.Constraints.Min}
				paint.FillShape(gtx.Ops, panelColor(v.pal), clip.UniformRRect(bounds, gtx.Dp(4)).Op(gtx.Ops))
				return D{Size: gtx.Constraints.Min}
			},
			func(gtx C) D {
				return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
					children := make([]layout.FlexChild, 0, len(tip.Values)+1)
					date := material.Body1(th, tip.Date)
					date.Color = v.pal.TooltipText
					children = append(children, layout.Rigid(date.Layout))
					for _, val := range tip.Values {
						val := val
						children = append(children, layout.Rigid(func(gtx C) D {
							return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
								layout.Rigid(func(gtx C) D {
									size := image.Pt(gtx.Dp(8), gtx.Dp(8))
									paint.FillShape(gtx.Ops, val.Color, clip.Ellipse{Max: size}.Op(gtx.Ops))
									return D{Size: size}
								}),
								layout.Rigid(layout.Spacer{Width: 6}.Layout),
								layout.Rigid(func(gtx C) D {
									l := material.Body2(th, val.Label+": "+formatValue(val.Value))
									l.Color = v.pal.TooltipText
									return l.Layout(gtx)
								}),
							)
						}))
					}
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
				})
			},
		)
	})
	gap := float32(gtx.Dp(unit.Dp(v.opts.TooltipGap)))
	x := chart.TooltipX(pointerX, float32(dims.Size.X), float32(mainSize.X), gap)
	defer op.Offset(image.Pt(round(x), gtx.Dp(unit.Dp(v.opts.TopPadding)))).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}

func (v *BlockView) layoutLegend(gtx C, th *material.Theme) D {
	series := v.block.Data().Series
	table := component.Table(th, &v.legend)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	rowHeight := gtx.Sp(24)
	width := min(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(v.opts.MaxWidth)))
	colorColWidth := gtx.Dp(40)
	valueColWidth := gtx.Dp(90)
	nameColWidth := max(width-colorColWidth-2*valueColWidth, 0)
	const (
		colorCol = iota
		nameCol
		hoverCol
		maxCol
		numCols
	)
	height := rowHeight * (len(series) + 1)
	gtx.Constraints = layout.Exact(image.Pt(width, height))

	tip := v.block.Tooltip()
	left, right := v.block.Viewport().Left(), v.block.Viewport().Right()
	return table.Layout(gtx, len(series), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			var size int
			switch index {
			case colorCol:
				size = colorColWidth
			case nameCol:
				size = nameColWidth
			default:
				size = valueColWidth
			}
			return min(size, constraint)
		},
		func(gtx C, index int) D {
			var l material.LabelStyle
			switch index {
			case colorCol:
				l = material.Body2(th, "")
			case nameCol:
				l = material.Body2(th, "Series")
			case hoverCol:
				l = material.Body2(th, "Value")
				l.Alignment = text.End
			case maxCol:
				l = material.Body2(th, "Window max")
				l.Alignment = text.End
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					return layout.UniformInset(2).Layout(gtx, l.Layout)
				},
			)
		},
		func(gtx C, row, col int) (dims D) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			s := series[row]
			enabled := v.block.Visible(row)
			return layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				switch col {
				case colorCol:
					return v.enabled[row].Layout(gtx, func(gtx C) D {
						return layout.Center.Layout(gtx, func(gtx C) D {
							sideLen := gtx.Dp(10)
							sz := image.Pt(sideLen, sideLen)
							swatch := s.Color
							if !enabled {
								swatch.A = disabledAlpha
							}
							paint.FillShape(gtx.Ops, swatch, clip.Rect{Max: sz}.Op())
							return D{Size: sz}
						})
					})
				case nameCol:
					return legendLabel(th, s.Label, enabled, text.Start).Layout(gtx)
				case hoverCol:
					value := "-"
					if tip.Visible && enabled && tip.Index < s.Len() {
						value = formatValue(s.At(tip.Index))
					}
					return legendLabel(th, value, enabled, text.End).Layout(gtx)
				case maxCol:
					return legendLabel(th, formatValue(windowMax(s, left, right)), enabled, text.End).Layout(gtx)
				}
				return D{Size: gtx.Constraints.Min}
			})
		})
}

func legendLabel(th *material.Theme, txt string, enabled bool, align text.Alignment) material.LabelStyle {
	l := material.Body2(th, txt)
	l.Alignment = align
	l.MaxLines = 1
	if !enabled {
		l.Color.A = disabledAlpha
	}
	return l
}

// windowMax returns the largest sample of s with an index inside
// [left, right], or zero when none is.
func windowMax(s *backend.Series, left, right float64) float64 {
	samples := s.Range(int(ceil(left)), int(floor(right))+1)
	if len(samples) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, v := range samples {
		best = max(best, v)
	}
	return best
}

func formatValue(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

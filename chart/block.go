package chart

import (
	"image"
	"math"
	"sync/atomic"

	"git.sr.ht/~whereswaldon/spanchart/backend"
)

// DragState is the overview gesture in progress.
type DragState uint8

const (
	DragIdle DragState = iota
	DragLeftHandle
	DragRightHandle
	DragPan
)

func (d DragState) String() string {
	switch d {
	case DragIdle:
		return "idle"
	case DragLeftHandle:
		return "left handle"
	case DragRightHandle:
		return "right handle"
	case DragPan:
		return "pan"
	default:
		return "unknown"
	}
}

var lastBlockID atomic.Int64

// Block composes the main chart, the overview and the series visibility of
// one input block. It is not safe for concurrent use; distinct blocks share
// no state.
type Block struct {
	id   int64
	data *backend.Block
	opts Options

	visible []bool
	vp      *Viewport

	main     *MainChart
	overview *OverviewChart

	drag   DragState
	lastX  float32
	scale  float32
	sized  bool
	frames int
}

// NewBlock prepares a block for display. The index domain runs from zero to
// the sample count plus opts.IndexPadding and the initial window starts at
// opts.InitialFraction of it.
func NewBlock(data *backend.Block, opts Options) *Block {
	maxIndex := float64(data.Len()) + opts.IndexPadding
	left := math.Floor(opts.InitialFraction * maxIndex)
	vp := NewViewport(0, maxIndex, left, maxIndex, opts.MinWindow)
	vp.SetSmoothing(opts.SnapThreshold, opts.Damping)
	b := &Block{
		id:       lastBlockID.Add(1),
		data:     data,
		opts:     opts,
		visible:  make([]bool, len(data.Series)),
		vp:       vp,
		main:     NewMainChart(vp, data.Axis, opts),
		overview: NewOverviewChart(0, maxIndex, opts),
		scale:    1,
	}
	for i := range b.visible {
		b.visible[i] = true
	}
	b.syncSeries()
	return b
}

// ID identifies the block for the lifetime of the process.
func (b *Block) ID() int64 { return b.id }

func (b *Block) Data() *backend.Block     { return b.data }
func (b *Block) Viewport() *Viewport      { return b.vp }
func (b *Block) Main() *MainChart         { return b.main }
func (b *Block) Overview() *OverviewChart { return b.overview }
func (b *Block) Drag() DragState          { return b.drag }
func (b *Block) Options() Options         { return b.opts }
func (b *Block) PointerMove(x float32)    { b.main.PointerMove(x) }
func (b *Block) PointerLeave()            { b.main.PointerLeave() }
func (b *Block) Tooltip() Tooltip         { return b.main.Tooltip() }
func (b *Block) HandlePositions() (float32, float32) {
	return b.overview.HandlePositions(b.vp.Left(), b.vp.Right())
}

// Visible reports whether series i is drawn.
func (b *Block) Visible(i int) bool {
	return i >= 0 && i < len(b.visible) && b.visible[i]
}

// VisibleSeries returns the series currently drawn by both charts.
func (b *Block) VisibleSeries() []*backend.Series {
	return b.vp.Series()
}

// ToggleSeries flips the visibility of series i. Hiding the only visible
// series is refused. It reports whether anything changed.
func (b *Block) ToggleSeries(i int) bool {
	if i < 0 || i >= len(b.visible) {
		return false
	}
	if b.visible[i] && len(b.vp.Series()) == 1 {
		return false
	}
	b.visible[i] = !b.visible[i]
	b.syncSeries()
	return true
}

func (b *Block) syncSeries() {
	lines := make([]*backend.Series, 0, len(b.visible))
	for i, s := range b.data.Series {
		if b.visible[i] {
			lines = append(lines, s)
		}
	}
	b.vp.SetSeries(lines)
	b.overview.Viewport().SetSeries(lines)
}

// Resize informs the block of its surface sizes in device pixels. The first
// call settles both multipliers so the initial frame needs no animation.
func (b *Block) Resize(mainSize, overviewSize image.Point, scale float32) {
	if scale <= 0 {
		scale = 1
	}
	b.scale = scale
	b.vp.SetDrawableHeight(float64(mainSize.Y) - float64((b.opts.AbscissaHeight+b.opts.TopPadding)*scale))
	b.overview.Resize(overviewSize, scale)
	if !b.sized {
		b.sized = true
		b.vp.Settle()
		b.overview.Viewport().Settle()
	}
}

// Render draws both charts and reports whether another frame is needed for
// the vertical scale to finish animating.
func (b *Block) Render(main, overview Surface, pal Palette) bool {
	b.frames++
	b.main.Render(main, pal)
	b.overview.Render(overview, pal, b.vp.Left(), b.vp.Right())
	return !b.vp.Converged() || !b.overview.Viewport().Converged()
}

// Frames returns the number of renders so far.
func (b *Block) Frames() int { return b.frames }

// OverviewPress classifies a press at x (device pixels on the overview)
// against the handles and returns the resulting drag state.
func (b *Block) OverviewPress(x float32) DragState {
	lx, rx := b.HandlePositions()
	g := b.overview.GrabWidth()
	b.lastX = x
	switch {
	case abs(x-(lx+g/2)) < g/2:
		b.drag = DragLeftHandle
	case abs(x-(rx-g/2)) < g/2:
		b.drag = DragRightHandle
	case x > lx+g && x < rx-g:
		b.drag = DragPan
	default:
		b.drag = DragIdle
	}
	return b.drag
}

// OverviewDrag applies pointer movement to x according to the drag state. It
// reports whether the window changed.
func (b *Block) OverviewDrag(x float32) bool {
	left, right := b.vp.Left(), b.vp.Right()
	g := b.overview.GrabWidth()
	switch b.drag {
	case DragLeftHandle:
		b.vp.SetLeft(b.overview.IndexAt(x - g/2))
	case DragRightHandle:
		b.vp.SetRight(b.overview.IndexAt(x + g/2))
	case DragPan:
		b.vp.Shift(b.overview.IndexAt(x) - b.overview.IndexAt(b.lastX))
		b.lastX = x
	default:
		return false
	}
	return left != b.vp.Left() || right != b.vp.Right()
}

// OverviewRelease ends any drag.
func (b *Block) OverviewRelease() {
	b.drag = DragIdle
}

// ZoomAt scales the main window by factor around the index under x (device
// pixels on the main chart).
func (b *Block) ZoomAt(x float32, factor float64) {
	anchor := (b.vp.Left() + b.vp.Right()) / 2
	if tr := b.main.Transform(); tr.XStep != 0 {
		anchor = tr.Index(x)
	}
	b.vp.Zoom(factor, anchor)
}

// ResetWindow restores the initial window.
func (b *Block) ResetWindow() {
	b.vp.Reset()
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

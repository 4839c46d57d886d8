package chart

import (
	"image"
	"math"

	"golang.org/x/exp/constraints"

	"git.sr.ht/~whereswaldon/spanchart/backend"
)

// Viewport owns a fractional window [left, right] over the sample indices of
// a set of series, and the smoothed vertical multiplier that fits the tallest
// visible value into the drawable height.
//
// After every mutation minIndex <= left < right <= maxIndex and
// right-left >= minWindow hold.
type Viewport struct {
	minIndex, maxIndex float64
	left, right        float64
	initLeft           float64
	initRight          float64
	minWindow          float64

	lines  []*backend.Series
	height float64

	current       float64
	snapThreshold float64
	damping       float64
}

// NewViewport creates a viewport over [minIndex, maxIndex] showing
// [left, right]. When the domain is narrower than minWindow the whole domain
// becomes the minimum window.
func NewViewport(minIndex, maxIndex, left, right, minWindow float64) *Viewport {
	if maxIndex < minIndex {
		minIndex, maxIndex = maxIndex, minIndex
	}
	v := &Viewport{
		minIndex:      minIndex,
		maxIndex:      maxIndex,
		minWindow:     min(max(minWindow, 0), maxIndex-minIndex),
		snapThreshold: 0.01,
		damping:       0.2,
	}
	v.SetWindow(left, right)
	v.initLeft, v.initRight = v.left, v.right
	return v
}

// SetSmoothing configures the snap threshold and per-frame damping of Tick.
func (v *Viewport) SetSmoothing(snapThreshold, damping float64) {
	v.snapThreshold = max(snapThreshold, 0)
	v.damping = clamp(damping, 0, 1)
}

// SetSeries replaces the visible series.
func (v *Viewport) SetSeries(lines []*backend.Series) {
	v.lines = lines
}

func (v *Viewport) Series() []*backend.Series {
	return v.lines
}

// SetDrawableHeight sets the pixel height available to sample values.
func (v *Viewport) SetDrawableHeight(h float64) {
	v.height = max(h, 0)
}

func (v *Viewport) Left() float64  { return v.left }
func (v *Viewport) Right() float64 { return v.right }

// Bounds returns the index domain.
func (v *Viewport) Bounds() (minIndex, maxIndex float64) {
	return v.minIndex, v.maxIndex
}

func (v *Viewport) MinWindow() float64 { return v.minWindow }

// Multiplier returns the current smoothed multiplier.
func (v *Viewport) Multiplier() float64 { return v.current }

// VisibleMaximum returns the largest visible sample within the window. The
// edge samples are blended toward their inner neighbours by the fractional
// offsets of left and right. Once the window extends past the end of the
// data the last sample counts twice. It returns 0 when nothing is visible.
func (v *Viewport) VisibleMaximum() float64 {
	best := math.Inf(-1)
	fracLeft, fracRight := frac(v.left), frac(v.right)
	var scratch []float64
	for _, s := range v.lines {
		scratch = append(scratch[:0], s.Range(int(v.left), int(v.right))...)
		if v.right > float64(s.Len()+1) && len(scratch) > 0 {
			scratch = append(scratch, scratch[len(scratch)-1])
		}
		if n := len(scratch); n > 1 {
			scratch[0] -= (scratch[0] - scratch[1]) * fracLeft
			scratch[n-1] -= (scratch[n-1] - scratch[n-2]) * (1 - fracRight)
		}
		for _, sample := range scratch {
			best = max(best, sample)
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// TargetMultiplier returns the multiplier that fits VisibleMaximum into the
// drawable height. A non-positive maximum is treated as 1.
func (v *Viewport) TargetMultiplier() float64 {
	m := v.VisibleMaximum()
	if m <= 0 {
		m = 1
	}
	return v.height / m
}

// Tick advances the smoothed multiplier toward its target and returns it.
// Within the snap threshold the target is taken exactly; otherwise the
// damping share of the gap is closed, so the value never overshoots.
func (v *Viewport) Tick() float64 {
	target := v.TargetMultiplier()
	gap := target - v.current
	if math.Abs(gap) < math.Abs(target)*v.snapThreshold {
		v.current = target
	} else {
		v.current += gap * v.damping
	}
	return v.current
}

// Settle jumps the multiplier straight to its target.
func (v *Viewport) Settle() {
	v.current = v.TargetMultiplier()
}

// Converged reports whether the multiplier has reached its target.
func (v *Viewport) Converged() bool {
	return v.current == v.TargetMultiplier()
}

// SetLeft moves the left edge. If the window becomes too narrow the right
// edge is pushed out, and once it reaches the domain end the left edge gives
// way instead.
func (v *Viewport) SetLeft(left float64) {
	v.left = clamp(left, v.minIndex, v.maxIndex)
	if v.right-v.left < v.minWindow {
		v.right = min(v.left+v.minWindow, v.maxIndex)
		v.left = max(v.right-v.minWindow, v.minIndex)
	}
}

// SetRight is the mirror image of SetLeft.
func (v *Viewport) SetRight(right float64) {
	v.right = clamp(right, v.minIndex, v.maxIndex)
	if v.right-v.left < v.minWindow {
		v.left = max(v.right-v.minWindow, v.minIndex)
		v.right = min(v.left+v.minWindow, v.maxIndex)
	}
}

// Shift moves both edges by delta. The delta is clamped at the domain ends so
// the window width never changes.
func (v *Viewport) Shift(delta float64) {
	width := v.right - v.left
	switch {
	case v.left+delta < v.minIndex:
		v.left, v.right = v.minIndex, min(v.minIndex+width, v.maxIndex)
	case v.right+delta > v.maxIndex:
		v.left, v.right = max(v.maxIndex-width, v.minIndex), v.maxIndex
	default:
		v.left += delta
		v.right += delta
	}
}

// SetWindow sets both edges at once, widening around left if the requested
// window is narrower than the minimum.
func (v *Viewport) SetWindow(left, right float64) {
	if right < left {
		left, right = right, left
	}
	v.left = clamp(left, v.minIndex, v.maxIndex)
	v.right = clamp(right, v.minIndex, v.maxIndex)
	if v.right-v.left < v.minWindow {
		v.right = min(v.left+v.minWindow, v.maxIndex)
		v.left = max(v.right-v.minWindow, v.minIndex)
	}
}

// Zoom scales the window width by factor while keeping anchor (an index) at
// the same relative position inside the window.
func (v *Viewport) Zoom(factor, anchor float64) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	width := v.right - v.left
	newWidth := clamp(width*factor, v.minWindow, v.maxIndex-v.minIndex)
	anchor = clamp(anchor, v.left, v.right)
	pos := 0.5
	if width > 0 {
		pos = (anchor - v.left) / width
	}
	left := anchor - pos*newWidth
	right := left + newWidth
	if left < v.minIndex {
		left, right = v.minIndex, min(v.minIndex+newWidth, v.maxIndex)
	}
	if right > v.maxIndex {
		left, right = max(v.maxIndex-newWidth, v.minIndex), v.maxIndex
	}
	v.left, v.right = left, right
}

// Reset restores the window the viewport was created with.
func (v *Viewport) Reset() {
	v.left, v.right = v.initLeft, v.initRight
}

// Transform captures the mapping from (index, value) to device pixels for the
// current window and multiplier.
type Transform struct {
	Left       float64
	XStep      float64
	Bottom     float64
	Multiplier float64
}

// Transform returns the pixel mapping for a surface of the given size with
// abscissa pixels reserved below the plot. Whole-index steps span the
// surface width minus two indices of lookahead, offset by the fractional
// part of left so panning is continuous.
func (v *Viewport) Transform(size image.Point, abscissa float32) Transform {
	span := floor(v.right) - floor(v.left) - 2 - frac(v.left) + frac(v.right)
	if span <= 0 {
		span = 1
	}
	return Transform{
		Left:       v.left,
		XStep:      float64(size.X) / span,
		Bottom:     float64(size.Y) - float64(abscissa),
		Multiplier: v.current,
	}
}

// X maps a sample index to a horizontal pixel offset.
func (t Transform) X(i float64) float32 {
	return float32((i - t.Left) * t.XStep)
}

// Y maps a sample value to a vertical pixel offset.
func (t Transform) Y(value float64) float32 {
	return float32(t.Bottom - value*t.Multiplier)
}

// Index maps a horizontal pixel offset back to a fractional sample index.
func (t Transform) Index(x float32) float64 {
	if t.XStep == 0 {
		return t.Left
	}
	return t.Left + float64(x)/t.XStep
}

// Nearest returns the whole sample index closest to x.
func (t Transform) Nearest(x float32) int {
	return int(math.Round(t.Index(x)))
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func frac[T constraints.Float](a T) T {
	return a - floor(a)
}

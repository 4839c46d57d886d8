package chart

import (
	"image"
	"image/color"
	"testing"
	"time"

	"gioui.org/f32"

	"git.sr.ht/~whereswaldon/spanchart/backend"
)

type drawKind uint8

const (
	drawFill drawKind = iota
	drawRect
	drawPolyline
	drawCircle
	drawText
)

type drawOp struct {
	kind  drawKind
	color color.NRGBA
	pts   []f32.Point
	width float32
	text  string
	align Align
}

// recorder is a Surface that remembers every draw call in order.
type recorder struct {
	size  image.Point
	scale float32
	ops   []drawOp
}

var _ Surface = (*recorder)(nil)

func newRecorder(w, h int) *recorder {
	return &recorder{size: image.Pt(w, h), scale: 1}
}

func (r *recorder) Size() image.Point { return r.size }
func (r *recorder) Scale() float32    { return r.scale }

func (r *recorder) Fill(c color.NRGBA) {
	r.ops = append(r.ops, drawOp{kind: drawFill, color: c})
}

func (r *recorder) FillRect(min, max f32.Point, c color.NRGBA) {
	r.ops = append(r.ops, drawOp{kind: drawRect, color: c, pts: []f32.Point{min, max}})
}

func (r *recorder) Polyline(pts []f32.Point, width float32, c color.NRGBA) {
	r.ops = append(r.ops, drawOp{kind: drawPolyline, color: c, width: width, pts: append([]f32.Point(nil), pts...)})
}

func (r *recorder) Circle(center f32.Point, radius, strokeWidth float32, fill, stroke color.NRGBA) {
	r.ops = append(r.ops, drawOp{kind: drawCircle, color: stroke, width: strokeWidth, pts: []f32.Point{center}})
}

func (r *recorder) Text(s string, at f32.Point, align Align, c color.NRGBA) {
	r.ops = append(r.ops, drawOp{kind: drawText, color: c, text: s, align: align, pts: []f32.Point{at}})
}

func (r *recorder) reset() {
	r.ops = r.ops[:0]
}

// indexes returns the positions of ops matching kind and color.
func (r *recorder) indexes(kind drawKind, c color.NRGBA) []int {
	var out []int
	for i, op := range r.ops {
		if op.kind == kind && op.color == c {
			out = append(out, i)
		}
	}
	return out
}

func (r *recorder) count(kind drawKind) int {
	n := 0
	for _, op := range r.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

// makeBlock builds a block with one series per argument, all sharing a daily
// time axis.
func makeBlock(t *testing.T, series ...[]float64) *backend.Block {
	t.Helper()
	start := time.Date(2016, time.March, 5, 0, 0, 0, 0, time.UTC)
	n := len(series[0])
	ts := make([]int64, n)
	for i := range ts {
		ts[i] = start.AddDate(0, 0, i).UnixMilli()
	}
	colors := []color.NRGBA{red, blue}
	b := &backend.Block{Axis: backend.NewTimeAxis(ts, time.UTC)}
	for i, samples := range series {
		if len(samples) != n {
			t.Fatalf("series %d has %d samples, want %d", i, len(samples), n)
		}
		b.Series = append(b.Series, backend.NewSeries(string(rune('a'+i)), samples, colors[i%len(colors)], string(rune('A'+i))))
	}
	return b
}

func ramp(n int, scale float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * scale
	}
	return out
}

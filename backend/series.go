package backend

import (
	"image/color"
	"time"
)

// Series represents one data set in a visualization. A Series is never
// mutated after construction, so it may be shared freely between charts.
type Series struct {
	id      string
	samples []float64
	max     float64
	// Color is the display color of the series.
	Color color.NRGBA
	// Label is the human readable name of the series.
	Label string
}

// NewSeries builds a series from its samples. The samples slice is copied.
func NewSeries(id string, samples []float64, col color.NRGBA, label string) *Series {
	s := &Series{
		id:      id,
		samples: append([]float64(nil), samples...),
		Color:   col,
		Label:   label,
	}
	for i, v := range s.samples {
		if i == 0 || v > s.max {
			s.max = v
		}
	}
	return s
}

// ID returns the column identifier the series was parsed from.
func (s *Series) ID() string {
	return s.id
}

func (s *Series) Len() int {
	return len(s.samples)
}

// At returns the sample at index i.
func (s *Series) At(i int) float64 {
	return s.samples[i]
}

// Samples returns the underlying samples. Callers must not modify the result.
func (s *Series) Samples() []float64 {
	return s.samples
}

// Max returns the largest sample in the series.
func (s *Series) Max() float64 {
	return s.max
}

// Range returns the samples in the half-open index interval [a,b). A negative
// a is treated as zero and b is clamped to the length of the series, so the
// result may be shorter than requested (or empty). Callers must not modify the
// result.
func (s *Series) Range(a, b int) []float64 {
	a, b = clampRange(a, b, len(s.samples))
	return s.samples[a:b]
}

func clampRange(a, b, n int) (int, int) {
	a = max(a, 0)
	b = min(b, n)
	if b < a {
		b = a
	}
	if a > n {
		a, b = n, n
	}
	return a, b
}

const (
	shortLabelLayout = "Jan 2"
	longLabelLayout  = "Mon, Jan 2"
)

// TimeAxis is the shared x axis of a chart block: one millisecond timestamp per
// sample index, plus a short calendar label precomputed for each.
type TimeAxis struct {
	timestamps []int64
	labels     []string
	loc        *time.Location
}

// NewTimeAxis builds an axis from millisecond timestamps, rendering labels in
// loc. A nil loc means UTC.
func NewTimeAxis(timestamps []int64, loc *time.Location) *TimeAxis {
	if loc == nil {
		loc = time.UTC
	}
	t := &TimeAxis{
		timestamps: append([]int64(nil), timestamps...),
		labels:     make([]string, len(timestamps)),
		loc:        loc,
	}
	for i, ms := range t.timestamps {
		t.labels[i] = time.UnixMilli(ms).In(loc).Format(shortLabelLayout)
	}
	return t
}

func (t *TimeAxis) Len() int {
	return len(t.timestamps)
}

// Timestamp returns the millisecond timestamp at index i.
func (t *TimeAxis) Timestamp(i int) int64 {
	return t.timestamps[i]
}

// Time returns the instant at index i in the axis' location.
func (t *TimeAxis) Time(i int) time.Time {
	return time.UnixMilli(t.timestamps[i]).In(t.loc)
}

// Label returns the short label ("Jan 2") at index i.
func (t *TimeAxis) Label(i int) string {
	return t.labels[i]
}

// LongLabel returns a label including the weekday ("Mon, Jan 2").
func (t *TimeAxis) LongLabel(i int) string {
	return t.Time(i).Format(longLabelLayout)
}

// Labels returns the short labels in [a,b) with the same clamping rules as
// [Series.Range].
func (t *TimeAxis) Labels(a, b int) []string {
	a, b = clampRange(a, b, len(t.labels))
	return t.labels[a:b]
}

// Block is one parsed chart: the line series sharing a time axis.
type Block struct {
	Series []*Series
	Axis   *TimeAxis
}

// Len returns the number of sample indices in the block.
func (b *Block) Len() int {
	return b.Axis.Len()
}

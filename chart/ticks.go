package chart

import (
	"math"
	"strconv"
)

// NiceStep chooses a round gridline increment for values up to max.
func NiceStep(max float64) float64 {
	switch {
	case max <= 4:
		return 0.5
	case max < 200:
		step := math.Floor(max/10) * 2
		if step == 0 {
			return 1
		}
		return step
	}
	base := math.Floor(max / 4)
	digits := len(strconv.FormatFloat(base, 'f', 0, 64))
	scale := math.Pow(10, float64(digits-1))
	lead := base / scale
	whole := math.Floor(lead)
	switch f := lead - whole; {
	case f <= 0.25:
		lead = whole
	case f < 0.75:
		lead = whole + 0.5
	default:
		lead = whole + 1
	}
	return lead * scale
}

var magnitudes = []string{"", "K", "M", "B"}

// PrettyNum abbreviates v for axis labels to at most one decimal, adding a
// magnitude suffix from a thousand up. Values past the billions fall back to
// two significant digits in exponent form.
func PrettyNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v < 0 {
		return "-" + PrettyNum(-v)
	}
	scaled := v
	exp := 0
	for scaled >= 1000 && exp < len(magnitudes)-1 {
		scaled /= 1000
		exp++
	}
	rounded := roundTenths(scaled)
	if rounded >= 1000 && exp < len(magnitudes)-1 {
		exp++
		rounded = roundTenths(rounded / 1000)
	}
	if rounded >= 1000 {
		return strconv.FormatFloat(v, 'e', 1, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + magnitudes[exp]
}

func roundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}

// LabelStride returns how many indices separate drawn time labels. When no
// more than maxLabels would be visible every label is drawn; otherwise the
// window span is divided evenly among maxLabels.
func LabelStride(visible int, span float64, maxLabels int) int {
	if maxLabels <= 0 || visible <= maxLabels {
		return 1
	}
	return max(int(math.Round(span/float64(maxLabels))), 1)
}

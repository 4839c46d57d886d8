package chart

// Options tunes the geometry and animation of a chart block. Lengths are in
// logical pixels and are multiplied by the surface scale when drawing.
type Options struct {
	// MinWindow is the narrowest visible window, in sample indices.
	MinWindow float64
	// InitialFraction positions the initial left edge as a fraction of the
	// index domain.
	InitialFraction float64
	// IndexPadding extends the index domain past the final sample so that the
	// newest point is not drawn against the right edge.
	IndexPadding float64

	AbscissaHeight    float32
	TopPadding        float32
	LineWidth         float32
	OverviewLineWidth float32
	GrabWidth         float32
	LabelInset        float32
	MarkerRadius      float32

	Gridlines     int
	MaxTimeLabels int

	// SnapThreshold is the gap, relative to the target multiplier, below
	// which smoothing snaps to the target.
	SnapThreshold float64
	// Damping is the share of the remaining gap closed by each frame.
	Damping float64
}

// DefaultOptions returns the stock chart geometry.
func DefaultOptions() Options {
	return Options{
		MinWindow:         7,
		InitialFraction:   0.9,
		IndexPadding:      1.2,
		AbscissaHeight:    20,
		TopPadding:        10,
		LineWidth:         4,
		OverviewLineWidth: 1,
		GrabWidth:         10,
		LabelInset:        10,
		MarkerRadius:      5,
		Gridlines:         7,
		MaxTimeLabels:     6,
		SnapThreshold:     0.01,
		Damping:           0.2,
	}
}

package chart

import (
	"image"
	"image/color"

	"gioui.org/f32"
)

// Align positions text horizontally relative to its anchor point.
type Align uint8

const (
	AlignStart Align = iota
	AlignMiddle
	AlignEnd
)

// Surface is a raster target charts draw into. Coordinates are device pixels
// with the origin at the top left.
type Surface interface {
	// Size returns the surface dimensions in device pixels.
	Size() image.Point
	// Scale returns the number of device pixels per logical pixel.
	Scale() float32
	Fill(c color.NRGBA)
	FillRect(min, max f32.Point, c color.NRGBA)
	// Polyline strokes a connected line through pts with rounded joins and
	// caps where the implementation supports them.
	Polyline(pts []f32.Point, width float32, c color.NRGBA)
	Circle(center f32.Point, radius, strokeWidth float32, fill, stroke color.NRGBA)
	// Text draws s with its baseline at at.
	Text(s string, at f32.Point, align Align, c color.NRGBA)
}

// Palette is the set of colors shared by every chart in a display theme.
type Palette struct {
	Name        string
	Background  color.NRGBA
	Text        color.NRGBA
	Grid        color.NRGBA
	Crosshair   color.NRGBA
	HandleFill  color.NRGBA
	TooltipText color.NRGBA
}

const (
	DayName   = "day"
	NightName = "night"
)

func Day() Palette {
	return Palette{
		Name:        DayName,
		Background:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Text:        color.NRGBA{R: 100, G: 120, B: 140, A: 204},
		Grid:        color.NRGBA{R: 170, G: 170, B: 200, A: 128},
		Crosshair:   color.NRGBA{R: 215, G: 224, B: 229, A: 128},
		HandleFill:  color.NRGBA{R: 120, G: 140, B: 200, A: 51},
		TooltipText: color.NRGBA{A: 0xff},
	}
}

func Night() Palette {
	p := Day()
	p.Name = NightName
	p.Background = color.NRGBA{R: 25, G: 35, B: 48, A: 0xff}
	p.TooltipText = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	return p
}

// Toggle returns the other palette.
func (p Palette) Toggle() Palette {
	if p.Name == NightName {
		return Day()
	}
	return Night()
}

// Mask is the translucent background drawn over the unselected parts of the
// overview.
func (p Palette) Mask() color.NRGBA {
	c := p.Background
	c.A = 153
	return c
}

// PaletteByName looks up the "day" or "night" palette.
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case DayName:
		return Day(), true
	case NightName:
		return Night(), true
	}
	return Palette{}, false
}

package main

import (
	"image/color"

	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/spanchart/chart"
)

// disabledAlpha dims legend rows of hidden series.
const disabledAlpha = 100

// themePalette derives the colors of the surrounding widgets from the chart
// palette so both follow the day/night switch.
func themePalette(p chart.Palette) material.Palette {
	accent := p.Text
	accent.A = 0xff
	return material.Palette{
		Bg:         p.Background,
		Fg:         p.TooltipText,
		ContrastBg: accent,
		ContrastFg: p.Background,
	}
}

// panelColor is the tooltip background.
func panelColor(p chart.Palette) color.NRGBA {
	return withAlpha(p.Background, 230)
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

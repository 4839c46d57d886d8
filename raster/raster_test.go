package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"gioui.org/f32"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~whereswaldon/spanchart/backend"
	"git.sr.ht/~whereswaldon/spanchart/chart"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
)

func rgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func TestNewRejectsEmptySurface(t *testing.T) {
	_, err := New(0, 10, 1)
	require.Error(t, err)
}

func TestDrawing(t *testing.T) {
	s, err := New(100, 50, 2)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, image.Pt(100, 50), s.Size())
	require.Equal(t, float32(2), s.Scale())

	s.Fill(white)
	require.Equal(t, white, rgba(s.Image().At(5, 5)))

	s.FillRect(f32.Pt(10, 10), f32.Pt(20, 20), red)
	require.Equal(t, red, rgba(s.Image().At(15, 15)))
	require.Equal(t, white, rgba(s.Image().At(25, 15)))

	s.Polyline([]f32.Point{{X: 0, Y: 40}, {X: 100, Y: 40}}, 4, red)
	require.Equal(t, red, rgba(s.Image().At(50, 40)))

	s.Circle(f32.Pt(70, 15), 8, 4, white, red)
	require.Equal(t, white, rgba(s.Image().At(70, 15)))
	require.Equal(t, red, rgba(s.Image().At(78, 15)))
}

func TestTextMarksPixels(t *testing.T) {
	s, err := New(120, 40, 1)
	require.NoError(t, err)
	defer s.Close()
	s.Fill(white)
	s.Text("Mar 5", f32.Pt(60, 30), chart.AlignMiddle, red)
	img := s.Image()
	inked := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if rgba(img.At(x, y)) != white {
				inked++
			}
		}
	}
	require.Greater(t, inked, 20)
}

func TestRenderBlockToPNG(t *testing.T) {
	start := time.Date(2016, time.March, 5, 0, 0, 0, 0, time.UTC)
	ts := make([]int64, 40)
	samples := make([]float64, 40)
	for i := range ts {
		ts[i] = start.AddDate(0, 0, i).UnixMilli()
		samples[i] = float64(i * i)
	}
	data := &backend.Block{
		Series: []*backend.Series{backend.NewSeries("y0", samples, red, "Squares")},
		Axis:   backend.NewTimeAxis(ts, nil),
	}
	block := chart.NewBlock(data, chart.DefaultOptions())
	main, err := New(500, 496, 1)
	require.NoError(t, err)
	overview, err := New(500, 60, 1)
	require.NoError(t, err)
	block.Resize(main.Size(), overview.Size(), 1)
	block.PointerMove(300)
	frames := chart.Animate(func() bool {
		return block.Render(main, overview, chart.Night())
	}, 50)
	require.Equal(t, 1, frames)
	require.True(t, block.Tooltip().Visible)

	var buf bytes.Buffer
	require.NoError(t, main.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 500, 496), img.Bounds())

	fs := afero.NewMemMapFs()
	require.NoError(t, overview.SavePNG(fs, "out/block-1-overview.png"))
	exists, err := afero.Exists(fs, "out/block-1-overview.png")
	require.NoError(t, err)
	require.True(t, exists)
}

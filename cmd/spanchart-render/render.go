package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~whereswaldon/spanchart/backend"
	"git.sr.ht/~whereswaldon/spanchart/chart"
	"git.sr.ht/~whereswaldon/spanchart/config"
	"git.sr.ht/~whereswaldon/spanchart/raster"
)

type renderParams struct {
	outDir string
	opts   config.Options
	// width and scale describe the host, in logical pixels.
	width, scale float32
	// Negative window edges and pointer positions are unset.
	left, right float64
	pointer     float32
	maxFrames   int
}

type seriesPeak struct {
	label string
	value float64
}

type renderResult struct {
	index    int
	files    []string
	frames   int
	left     float64
	right    float64
	tooltip  chart.Tooltip
	peaks    []seriesPeak
	rendered bool
}

func (r renderResult) report(w io.Writer) {
	if !r.rendered {
		return
	}
	fmt.Fprintf(w, "block %d: window [%.2f, %.2f] in %d frame(s): %s\n", r.index, r.left, r.right, r.frames, strings.Join(r.files, ", "))
	peaks := make([]string, 0, len(r.peaks))
	for _, p := range r.peaks {
		peaks = append(peaks, p.label+"="+humanize.Commaf(p.value))
	}
	fmt.Fprintf(w, "  peak: %s\n", strings.Join(peaks, " "))
	if !r.tooltip.Visible {
		return
	}
	values := make([]string, 0, len(r.tooltip.Values))
	for _, v := range r.tooltip.Values {
		values = append(values, v.Label+"="+humanize.Commaf(v.Value))
	}
	fmt.Fprintf(w, "  %s: %s\n", r.tooltip.Date, strings.Join(values, " "))
}

// renderBlocks draws each block concurrently and writes its images beneath
// p.outDir. Results are returned in block order, including those rendered
// before any failure.
func renderBlocks(ctx context.Context, fsys afero.Fs, blocks []*backend.Block, p renderParams) ([]renderResult, error) {
	if p.scale <= 0 {
		p.scale = 1
	}
	results := make([]renderResult, len(blocks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, data := range blocks {
		i, data := i, data
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := renderBlock(fsys, i, data, p)
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}

func renderBlock(fsys afero.Fs, index int, data *backend.Block, p renderParams) (renderResult, error) {
	w, h := p.opts.MainSize(p.width)
	oh := p.opts.OverviewHeight(w)
	main, err := newSurface(w, h, p)
	if err != nil {
		return renderResult{}, err
	}
	defer main.Close()
	overview, err := newSurface(w, oh, p)
	if err != nil {
		return renderResult{}, err
	}
	defer overview.Close()

	block := chart.NewBlock(data, p.opts.ChartOptions())
	vp := block.Viewport()
	switch {
	case p.left >= 0 && p.right >= 0:
		vp.SetWindow(p.left, p.right)
	case p.left >= 0:
		vp.SetLeft(p.left)
	case p.right >= 0:
		vp.SetRight(p.right)
	}
	block.Resize(main.Size(), overview.Size(), p.scale)
	if p.pointer >= 0 {
		block.PointerMove(p.pointer * p.scale)
	}
	pal := p.opts.Palette()
	chart.Animate(func() bool {
		return block.Render(main, overview, pal)
	}, p.maxFrames)

	res := renderResult{
		index:    index,
		frames:   block.Frames(),
		left:     vp.Left(),
		right:    vp.Right(),
		tooltip:  block.Tooltip(),
		rendered: true,
	}
	for _, s := range data.Series {
		res.peaks = append(res.peaks, seriesPeak{label: s.Label, value: s.Max()})
	}
	for _, out := range []struct {
		name string
		s    *raster.Surface
	}{
		{name: "main", s: main},
		{name: "overview", s: overview},
	} {
		path := filepath.Join(p.outDir, fmt.Sprintf("block-%d-%s.png", index, out.name))
		if err := out.s.SavePNG(fsys, path); err != nil {
			return res, err
		}
		res.files = append(res.files, path)
	}
	return res, nil
}

func newSurface(w, h float32, p renderParams) (*raster.Surface, error) {
	s, err := raster.New(int(w*p.scale), int(h*p.scale), p.scale)
	if err != nil {
		return nil, err
	}
	if err := s.SetLabelSize(p.opts.LabelSize); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

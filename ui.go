package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/spanchart/backend"
	"git.sr.ht/~whereswaldon/spanchart/chart"
	"git.sr.ht/~whereswaldon/spanchart/config"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// WindowState is the backend as seen by the UI of one window.
type WindowState struct {
	backend.Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle backend.Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

var nightIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ImageBrightness2)
	return icon
}()

var dayIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ImageBrightness5)
	return icon
}()

var openIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.FileFolderOpen)
	return icon
}()

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   WindowState
	expl *explorer.Explorer
	th   *material.Theme
	opts config.Options

	board *chart.Board
	// views maps the data of each live block to its widget.
	views map[*backend.Block]*BlockView
	list  widget.List

	themeBtn   widget.Clickable
	openBtn    widget.Clickable
	startBtn   widget.Clickable
	sessions   *stream.Stream[backend.Session]
	session    backend.Session
	sessionErr string
}

func NewUI(ws WindowState, expl *explorer.Explorer, opts config.Options) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	pal := opts.Palette()
	th.Palette = themePalette(pal)
	return &UI{
		ws:       ws,
		expl:     expl,
		th:       th,
		opts:     opts,
		board:    chart.NewBoard(pal),
		views:    make(map[*backend.Block]*BlockView),
		list:     widget.List{List: layout.List{Axis: layout.Vertical}},
		sessions: stream.New(ws.Controller, ws.Feed.Sessions),
	}
}

// Update the state of the UI from input and newly arrived sessions.
func (ui *UI) Update(gtx C) {
	if s, ok := ui.sessions.ReadNew(gtx); ok {
		ui.load(s)
	}
	if ui.themeBtn.Clicked(gtx) {
		pal := ui.board.SwitchTheme(func(b *chart.Block, pal chart.Palette) {
			if v, ok := ui.views[b.Data()]; ok {
				v.SetPalette(pal)
			}
		})
		ui.th.Palette = themePalette(pal)
		gtx.Execute(op.InvalidateCmd{})
	}
	if ui.openBtn.Clicked(gtx) || ui.startBtn.Clicked(gtx) {
		ui.open()
	}
}

// load replaces the displayed blocks with those of s. Blocks whose data
// survive from the previous session keep their widget, so a growing stream
// does not reset windows or legend choices.
func (ui *UI) load(s backend.Session) {
	ui.session = s
	ui.sessionErr = ""
	if s.Err != nil {
		ui.sessionErr = s.Err.Error()
		log.Printf("session %s from %s: %v", s.ID, s.Source, s.Err)
		if len(s.Blocks) == 0 {
			return
		}
	}
	pal := ui.board.Palette()
	views := make(map[*backend.Block]*BlockView, len(s.Blocks))
	blocks := make([]*chart.Block, 0, len(s.Blocks))
	for i, data := range s.Blocks {
		v, ok := ui.views[data]
		if !ok {
			v = NewBlockView(chart.NewBlock(data, ui.opts.ChartOptions()), ui.opts, pal, fmt.Sprintf("Chart %d", i+1))
		}
		views[data] = v
		blocks = append(blocks, v.Block())
	}
	ui.views = views
	ui.board.Replace(blocks)
}

// open lets the user pick a data file. The dialog blocks, so it runs off the
// UI goroutine.
func (ui *UI) open() {
	go func() {
		rc, err := ui.expl.ChooseFile(".json")
		if err != nil {
			if !errors.Is(err, explorer.ErrUserDecline) {
				log.Printf("failed browsing for file: %v", err)
			}
			return
		}
		name := "chosen file"
		if f, ok := rc.(*os.File); ok {
			name = f.Name()
		}
		ui.ws.Open(name, rc)
	}()
}

func (ui *UI) layoutToolbar(gtx C) D {
	themeIcon := nightIcon
	if ui.board.Palette().Name == chart.NightName {
		themeIcon = dayIcon
	}
	title := "spanchart"
	if ui.session.Source != "" {
		title += " - " + ui.session.Source
	}
	return layout.UniformInset(4).Layout(gtx, func(gtx C) D {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx C) D {
				l := material.Subtitle1(ui.th, title)
				l.MaxLines = 1
				return l.Layout(gtx)
			}),
			layout.Rigid(func(gtx C) D {
				return iconButton(gtx, ui.th, &ui.openBtn, openIcon)
			}),
			layout.Rigid(func(gtx C) D {
				return iconButton(gtx, ui.th, &ui.themeBtn, themeIcon)
			}),
		)
	})
}

func iconButton(gtx C, th *material.Theme, btn *widget.Clickable, icon *widget.Icon) D {
	size := gtx.Dp(36)
	gtx.Constraints = layout.Exact(image.Pt(size, size))
	return material.Clickable(gtx, btn, func(gtx C) D {
		return layout.Center.Layout(gtx, func(gtx C) D {
			return icon.Layout(gtx, th.Fg)
		})
	})
}

func (ui *UI) layoutStartScreen(gtx C) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body1(ui.th, "No data yet.").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.startBtn, "Open Data File").Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	paint.Fill(gtx.Ops, ui.th.Bg)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(ui.layoutToolbar),
		layout.Rigid(func(gtx C) D {
			if ui.sessionErr == "" {
				return D{}
			}
			l := material.Body2(ui.th, ui.sessionErr)
			l.Color = color.NRGBA{R: 150, A: 255}
			return layout.UniformInset(4).Layout(gtx, l.Layout)
		}),
		layout.Flexed(1, func(gtx C) D {
			blocks := ui.board.Blocks()
			if len(blocks) == 0 {
				return ui.layoutStartScreen(gtx)
			}
			return material.List(ui.th, &ui.list).Layout(gtx, len(blocks), func(gtx C, i int) D {
				v, ok := ui.views[blocks[i].Data()]
				if !ok {
					return D{}
				}
				return layout.UniformInset(12).Layout(gtx, func(gtx C) D {
					return v.Layout(gtx, ui.th)
				})
			})
		}),
	)
}

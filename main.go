package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/x/explorer"
	"github.com/spf13/afero"

	"git.sr.ht/~whereswaldon/spanchart/backend"
	"git.sr.ht/~whereswaldon/spanchart/chart"
	"git.sr.ht/~whereswaldon/spanchart/config"
)

func main() {
	dataPath := flag.String("data", "", "JSON file of chart blocks, reloaded whenever it changes")
	useStdin := flag.Bool("stdin", false, "read newline-delimited chart blocks from stdin")
	configPath := flag.String("config", "", "YAML options file")
	theme := flag.String("theme", "", "initial palette: day or night (default from config)")
	tz := flag.String("tz", "Local", "IANA time zone used for date labels")
	flag.Parse()

	opts, err := config.Load(afero.NewOsFs(), *configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *theme != "" {
		if _, ok := chart.PaletteByName(*theme); !ok {
			log.Fatalf("unknown theme %q", *theme)
		}
		opts.Theme = *theme
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("invalid time zone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds := backend.NewDatasource(nil, loc)
	var src <-chan backend.Session
	switch {
	case *useStdin:
		src = ds.Stream(ctx, os.Stdin)
	case *dataPath != "":
		src = ds.Watch(ctx, *dataPath)
	}
	bundle := backend.NewBundle(ds, backend.NewFeed(ctx, src))

	go func() {
		w := app.NewWindow(app.Title("spanchart"))
		ws := NewWindowState(ctx, bundle, w)
		ui := NewUI(ws, explorer.NewExplorer(w), opts)
		if err := loop(w, ui); err != nil {
			log.Fatal(err)
		}
		cancel()
		os.Exit(0)
	}()

	app.Main()
}

func loop(w *app.Window, ui *UI) error {
	var ops op.Ops
	for {
		ev := w.NextEvent()
		ui.expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

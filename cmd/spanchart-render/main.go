// Command spanchart-render draws every chart block of a data file to PNG
// images without opening a window.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"git.sr.ht/~whereswaldon/spanchart/backend"
	"git.sr.ht/~whereswaldon/spanchart/chart"
	"git.sr.ht/~whereswaldon/spanchart/config"
)

var (
	outputDir  string
	configPath string
	theme      string
	timezone   string
	width      float32
	scale      float32
	left       float64
	right      float64
	pointer    float32
	maxFrames  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spanchart-render [input.json]",
		Short: "Render time-series chart blocks to PNG",
		Long: `spanchart-render reads a JSON array of chart blocks (from a file, or stdin
when no file or "-" is given) and writes the main chart and the overview of
every block as PNG images.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for rendered images")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML options file")
	rootCmd.Flags().StringVar(&theme, "theme", "", "Palette: day or night (default from config)")
	rootCmd.Flags().StringVar(&timezone, "tz", "UTC", "IANA time zone for date labels")
	rootCmd.Flags().Float32Var(&width, "width", 500, "Host width in logical pixels")
	rootCmd.Flags().Float32Var(&scale, "scale", 1, "Device pixels per logical pixel")
	rootCmd.Flags().Float64Var(&left, "left", -1, "Left edge of the window as a sample index (default: initial window)")
	rootCmd.Flags().Float64Var(&right, "right", -1, "Right edge of the window as a sample index (default: initial window)")
	rootCmd.Flags().Float32Var(&pointer, "pointer", -1, "Hover position in logical pixels on the main chart")
	rootCmd.Flags().IntVar(&maxFrames, "max-frames", 0, "Stop animating after this many frames (0: until settled)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: "Print the default options file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Default().Write(cmd.OutOrStdout())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	opts, err := config.Load(fsys, configPath)
	if err != nil {
		return err
	}
	if theme != "" {
		if _, ok := chart.PaletteByName(theme); !ok {
			return fmt.Errorf("unknown theme %q", theme)
		}
		opts.Theme = theme
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}

	var in io.Reader = cmd.InOrStdin()
	source := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := fsys.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed opening input: %w", err)
		}
		defer f.Close()
		in, source = f, args[0]
	}
	session := backend.NewDatasource(fsys, loc).Read(source, in)
	if session.Err != nil {
		return session.Err
	}

	results, err := renderBlocks(context.Background(), fsys, session.Blocks, renderParams{
		outDir:    outputDir,
		opts:      opts,
		width:     width,
		scale:     scale,
		left:      left,
		right:     right,
		pointer:   pointer,
		maxFrames: maxFrames,
	})
	for _, r := range results {
		r.report(cmd.OutOrStdout())
	}
	return err
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/match-odds-chart/internal/chart"
	"github.com/match-odds-chart/internal/config"
	"github.com/match-odds-chart/internal/dataset"
	"github.com/match-odds-chart/internal/logging"
	"github.com/match-odds-chart/internal/state"
)

func newRenderCmd(configPath *string) *cobra.Command {
	var (
		seriesName string
		width      float64
		height     float64
		format     string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart to an SVG or PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log)

			f, err := chart.ParseFormat(format)
			if err != nil {
				return err
			}
			st, err := loadState(cfg.Data)
			if err != nil {
				return err
			}
			if seriesName == "" {
				seriesName = cfg.Data.DefaultSeries
			}
			series, err := st.Lookup(seriesName)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("width") {
				width = cfg.Chart.DefaultWidth
			}
			if !cmd.Flags().Changed("height") {
				height = cfg.Chart.DefaultHeight
			}
			if width < 0 || height < 0 {
				return fmt.Errorf("width and height must not be negative")
			}

			g := chart.NewEngine(cfg.Chart).Compute(series, chart.Viewport{Width: width, Height: height})

			var w io.Writer = os.Stdout
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer file.Close()
				w = file
			}
			if err := chart.Render(w, g, f); err != nil {
				return err
			}
			if out != "" && out != "-" {
				log.Info().Str("series", series.Name).Str("out", out).Msg("Chart rendered")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&seriesName, "series", "s", "", "series name (default data.default_series)")
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width in pixels (default chart.default_width)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height in pixels (default chart.default_height)")
	cmd.Flags().StringVarP(&format, "format", "f", string(chart.FormatSVG), "output format: svg or png")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			st, err := loadState(cfg.Data)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			warnings := 0
			for _, info := range st.List() {
				series, _ := st.Get(info.Name)
				fmt.Fprintf(w, "%s: %d samples\n", info.Name, info.Count)
				for _, warning := range dataset.Validate(series) {
					fmt.Fprintf(w, "  warning: %s\n", warning)
					warnings++
				}
			}
			if _, err := st.Lookup(cfg.Data.DefaultSeries); err != nil {
				return fmt.Errorf("data.default_series: %w", err)
			}
			fmt.Fprintf(w, "ok, %d warnings\n", warnings)
			return nil
		},
	}
}

// loadState fills a state engine from the dataset file, or with the built-in
// history when no file is configured.
func loadState(cfg config.DataConfig) (*state.Engine, error) {
	st := state.NewEngine()
	if cfg.Path == "" {
		st.Put(state.MatchHistory())
		return st, nil
	}
	series, err := dataset.Load(cfg.Path)
	if err != nil {
		return nil, err
	}
	for _, s := range series {
		st.Put(s)
	}
	return st, nil
}

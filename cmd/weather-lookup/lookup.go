package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/render"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var lookupFlags struct {
	forecast bool
	preset   string
	start    string
	end      string
	chart    string
}

var lookupCmd = &cobra.Command{
	Use:   "lookup PLACE",
	Short: "Print current weather for a place, optionally with forecast and history",
	Example: `  weather-lookup lookup paris --forecast
  weather-lookup lookup "new york" --preset month
  weather-lookup lookup berlin --start 2024-01-01 --end 2024-01-31 --chart history.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupFlags.forecast, "forecast", false, "print the 7-day forecast")
	lookupCmd.Flags().StringVar(&lookupFlags.preset, "preset", "", "historical range preset (month or year)")
	lookupCmd.Flags().StringVar(&lookupFlags.start, "start", "", "historical start date (YYYY-MM-DD)")
	lookupCmd.Flags().StringVar(&lookupFlags.end, "end", "", "historical end date (YYYY-MM-DD)")
	lookupCmd.Flags().StringVar(&lookupFlags.chart, "chart", "", "write the forecast or historical chart to this PNG file")
	lookupCmd.MarkFlagsMutuallyExclusive("preset", "start")
	lookupCmd.MarkFlagsMutuallyExclusive("preset", "end")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	service := newService(cfg, nil)
	sess := weather.NewSession("cli")

	snap, err := service.Search(ctx, sess, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, render.Summarize(snap))

	var chartSeries *weather.DailySeries

	if lookupFlags.forecast {
		series, err := service.Forecast(ctx, sess)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		if err := render.TextTable(out, series); err != nil {
			return err
		}
		chartSeries = &series
	}

	start, end := lookupFlags.start, lookupFlags.end
	if lookupFlags.preset != "" {
		r, err := service.Preset(weather.Preset(lookupFlags.preset))
		if err != nil {
			return err
		}
		start, end = r.StartDate(), r.EndDate()
	}
	if start != "" || end != "" {
		series, err := service.Historical(ctx, sess, start, end)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		if err := render.TextTable(out, series); err != nil {
			return err
		}
		chartSeries = &series
	}

	if lookupFlags.chart != "" {
		if chartSeries == nil {
			return errors.New("--chart needs --forecast or a historical range")
		}
		return writeChart(lookupFlags.chart, *chartSeries)
	}
	return nil
}

func writeChart(path string, series weather.DailySeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Chart(f, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

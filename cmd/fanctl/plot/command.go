package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/go-analyze/charts"
	"github.com/mattn/go-sixel"
	"github.com/mdouchement/fans"
	"github.com/mdouchement/fans/link"
	"github.com/spf13/cobra"
)

const (
	MetricRPM       = "rpm"
	MetricDutyCycle = "duty_cycle"
)

func Command() *cobra.Command {
	var metric string
	var resolution int

	cmd := &cobra.Command{
		Use:   "plot CAPTURE",
		Short: "Plot the fan speeds recorded in a capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}

			l := link.New(args[0], f)
			defer l.Close()

			reports, err := ReadAll(l)
			if err != nil {
				return err
			}

			set, frames, err := Series(reports, metric)
			if err != nil {
				return err
			}
			if len(set) == 0 {
				return errors.New("empty capture")
			}

			opt := charts.NewLineChartOptionWithSeries(set)
			opt.Theme = charts.GetTheme(charts.ThemeVividDark)
			opt.Padding = charts.NewBox(20, 20, 20, 20)
			opt.Title.Text = fmt.Sprintf("%s: %s", args[0], metric)
			opt.Title.FontStyle.FontSize = 16
			opt.Title.Offset = charts.OffsetLeft
			opt.Legend = charts.LegendOption{
				Show:     fans.ToPtr(true),
				Offset:   charts.OffsetCenter,
				Vertical: fans.ToPtr(true),
				Padding:  charts.NewBox(0, 0, 0, 20),
			}
			opt.Symbol = charts.SymbolNone
			opt.LineStrokeWidth = 2
			opt.XAxis.Show = fans.ToPtr(true)
			opt.XAxis.Title = "round"
			opt.XAxis.Labels = []string{} // Reset
			for i := range frames {
				opt.XAxis.Labels = append(opt.XAxis.Labels, strconv.Itoa(i+1))
			}
			opt.XAxis.LabelCount = min(frames, 10)

			yaxis := charts.YAxisOption{
				Show:                   fans.ToPtr(true),
				Title:                  "RPM",
				Min:                    fans.ToPtr(float64(0)),
				RangeValuePaddingScale: fans.ToPtr(float64(0)),
			}
			if metric == MetricDutyCycle {
				yaxis.Title = "%"
				yaxis.Max = fans.ToPtr(float64(100))
				yaxis.Unit = 10
			}
			opt.YAxis = []charts.YAxisOption{yaxis}

			p := charts.NewPainter(charts.PainterOptions{
				OutputFormat: charts.ChartOutputPNG,
				Width:        resolution,
				Height:       int(float64(resolution) / (16.0 / 9.0)),
			})

			if err = p.LineChart(opt); err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			mPNG, err := p.Bytes()
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			m, _, err := image.Decode(bytes.NewReader(mPNG))
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			codec := sixel.NewEncoder(os.Stdout)
			return codec.Encode(m)
		},
	}
	cmd.Flags().StringVarP(&metric, "metric", "m", MetricRPM, "Plotted value: rpm or duty_cycle")
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 1000, "The width size in pixel of the graph")

	return cmd
}

func ReadAll(l *link.Link) ([]fans.Report, error) {
	var reports []fans.Report
	for {
		r, err := l.Receive()
		if errors.Is(err, io.EOF) {
			return reports, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(reports)+1, err)
		}

		reports = append(reports, r)
	}
}

// Series groups the reports per fan and per round. A publisher sends its fans in select
// order, so a select lower or equal to the previous one starts a new round.
// A fan missing from a round repeats its previous value, or 0 before its first report.
func Series(reports []fans.Report, metric string) (charts.LineSeriesList, int, error) {
	var rounds []map[fans.Select]float64
	var previous fans.Select
	for _, r := range reports {
		var v float64
		switch metric {
		case MetricRPM:
			v = float64(r.RPM)
		case MetricDutyCycle:
			v = float64(r.DutyCycle)
		default:
			return nil, 0, fmt.Errorf("unsupported metric %s", strconv.Quote(metric))
		}

		if len(rounds) == 0 || r.Select <= previous {
			rounds = append(rounds, map[fans.Select]float64{})
		}
		rounds[len(rounds)-1][r.Select] = v
		previous = r.Select
	}

	selects := map[fans.Select]bool{}
	for _, round := range rounds {
		for s := range round {
			selects[s] = true
		}
	}

	var set charts.LineSeriesList
	for _, s := range slices.Sorted(maps.Keys(selects)) {
		vs := make([]float64, len(rounds))
		var last float64
		for i, round := range rounds {
			if v, ok := round[s]; ok {
				last = v
			}
			vs[i] = last
		}

		set = append(set, charts.LineSeries{
			Name:   fmt.Sprintf("fan%d", s),
			Values: vs,
		})
	}

	return set, len(rounds), nil
}

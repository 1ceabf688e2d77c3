package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"mq-dashboard/internal/dashboard"
)

const (
	minChartWidth  = 20
	minChartHeight = 6
)

// renderChart draws both sources of one chart as braille lines over a shared
// arrival-time axis, with a title and legend above it.
func renderChart(c dashboard.Chart, width, height int) string {
	width = max(width, minChartWidth)
	height = max(height, minChartHeight)

	header := headerStyle.Render(c.Title) + " " + legend(c)
	if c.Empty() {
		body := mutedStyle.Render("waiting for data...")
		return sectionStyle.Width(width).Render(header + "\n" + body)
	}

	minT, maxT, minV, maxV := c.Bounds()
	if !maxT.After(minT) {
		maxT = minT.Add(time.Second)
	}
	if maxV <= minV {
		maxV = minV + 1
	}
	if minV > 0 {
		minV = 0
	}

	opts := []timeserieslinechart.Option{
		timeserieslinechart.WithTimeRange(minT, maxT),
		timeserieslinechart.WithYRange(minV, maxV),
		timeserieslinechart.WithXLabelFormatter(clockLabel),
	}
	for _, line := range c.Lines {
		opts = append(opts, timeserieslinechart.WithDataSetStyle(string(line.Source), sourceStyle(line.Source)))
	}

	// leave room for the border and the header line
	chart := timeserieslinechart.New(width-2, height-3, opts...)
	for _, line := range c.Lines {
		for _, p := range line.Points {
			chart.PushDataSet(string(line.Source), timeserieslinechart.TimePoint{Time: p.At, Value: p.Value})
		}
	}
	chart.DrawBrailleAll()

	return sectionStyle.Width(width).Render(header + "\n" + chart.View())
}

func clockLabel(_ int, v float64) string {
	return time.Unix(int64(v), 0).Format("15:04:05")
}

func legend(c dashboard.Chart) string {
	format := c.Format
	if format == nil {
		format = dashboard.FormatCount
	}
	parts := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		value := "-"
		if n := len(line.Points); n > 0 {
			value = fmt.Sprintf("%s%s", format(line.Points[n-1].Value), c.Unit)
		}
		parts = append(parts, sourceStyle(line.Source).Render("● "+line.Source.DisplayName()+" "+value))
	}
	return strings.Join(parts, "  ")
}

// renderCharts stacks the charts vertically, splitting the available height.
func renderCharts(charts []dashboard.Chart, width, height int) string {
	if len(charts) == 0 {
		return ""
	}
	each := height / len(charts)
	views := make([]string, 0, len(charts))
	for _, c := range charts {
		views = append(views, renderChart(c, width, each))
	}
	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

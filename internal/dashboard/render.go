package dashboard

import (
	"math"
	"strconv"
	"time"

	"mq-dashboard/internal/domain"
)

// Tile is one summary card: a metric's current value for both sources.
type Tile struct {
	Title    string
	Unit     string
	Kafka    string
	RabbitMQ string
}

func (t Tile) Value(src domain.Source) string {
	if src == domain.SourceRabbitMQ {
		return t.RabbitMQ
	}
	return t.Kafka
}

// Display is the value with its unit, e.g. "5.50 ms".
func (t Tile) Display(src domain.Source) string {
	return t.Value(src) + t.Unit
}

type tileDef struct {
	title  string
	unit   string
	field  func(domain.Sample) *float64
	format func(float64) string
}

var tileDefs = []tileDef{
	{"Messages Processed", "", messageCount, FormatCount},
	{"Throughput", " msg/s", throughput, FormatThroughput},
	{"Latency", " ms", latency, FormatLatency},
	{"CPU Usage", "%", cpuUsage, FormatCPU},
}

func messageCount(s domain.Sample) *float64 { return s.MessageCount }
func throughput(s domain.Sample) *float64   { return s.Throughput }
func latency(s domain.Sample) *float64      { return s.Latency }
func cpuUsage(s domain.Sample) *float64     { return s.CPUUsage }

// Tiles renders the four summary tiles from the current samples.
func Tiles(snap Snapshot) []Tile {
	tiles := make([]Tile, 0, len(tileDefs))
	for _, def := range tileDefs {
		tiles = append(tiles, Tile{
			Title:    def.title,
			Unit:     def.unit,
			Kafka:    formatOrZero(def.field(snap.Kafka.Current), def.format),
			RabbitMQ: formatOrZero(def.field(snap.RabbitMQ.Current), def.format),
		})
	}
	return tiles
}

func formatOrZero(v *float64, format func(float64) string) string {
	if v == nil || math.IsNaN(*v) {
		return "0"
	}
	return format(*v)
}

// FormatCount prints the count as received, without rounding.
func FormatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatThroughput rounds half up, like Math.round in a browser.
func FormatThroughput(v float64) string {
	return strconv.FormatFloat(math.Floor(v+0.5), 'f', 0, 64)
}

func FormatLatency(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func FormatCPU(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

type ChartPoint struct {
	At    time.Time
	Label domain.Label
	Value float64
}

type ChartLine struct {
	Source domain.Source
	Points []ChartPoint
}

type Chart struct {
	Title  string
	Unit   string
	Format func(float64) string
	Lines  []ChartLine
}

// Empty reports whether no line has a point yet.
func (c Chart) Empty() bool {
	for _, l := range c.Lines {
		if len(l.Points) > 0 {
			return false
		}
	}
	return true
}

// Bounds returns the time and value extent across all lines.
func (c Chart) Bounds() (minT, maxT time.Time, minV, maxV float64) {
	first := true
	for _, l := range c.Lines {
		for _, p := range l.Points {
			if first {
				minT, maxT, minV, maxV = p.At, p.At, p.Value, p.Value
				first = false
				continue
			}
			if p.At.Before(minT) {
				minT = p.At
			}
			if p.At.After(maxT) {
				maxT = p.At
			}
			minV = math.Min(minV, p.Value)
			maxV = math.Max(maxV, p.Value)
		}
	}
	return minT, maxT, minV, maxV
}

// Charts builds the throughput and latency time series, one line per source
// on a shared arrival-time axis. Samples without the field are skipped.
func Charts(snap Snapshot) []Chart {
	return []Chart{
		buildChart("Throughput Over Time", " msg/s", FormatThroughput, snap, throughput),
		buildChart("Latency Over Time", " ms", FormatLatency, snap, latency),
	}
}

func buildChart(title, unit string, format func(float64) string, snap Snapshot, field func(domain.Sample) *float64) Chart {
	chart := Chart{Title: title, Unit: unit, Format: format}
	for _, src := range domain.Sources {
		series := snap.Series(src)
		line := ChartLine{Source: src, Points: make([]ChartPoint, 0, len(series.Samples))}
		for _, s := range series.Samples {
			v := field(s)
			if v == nil {
				continue
			}
			line.Points = append(line.Points, ChartPoint{At: s.ReceivedAt, Label: s.Timestamp, Value: *v})
		}
		chart.Lines = append(chart.Lines, line)
	}
	return chart
}

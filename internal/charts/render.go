package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/valeevte/PriceDashboard/internal/prices"
)

// ErrNoData — в ответе нет ни одной точки.
var ErrNoData = errors.New("chart has no data points")

type Renderer interface {
	Render(cfg Config, data prices.ChartData) (*Chart, error)
}

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// GoChartRenderer draws charts with go-chart.
type GoChartRenderer struct {
	Width  int
	Height int
	Format Format
}

func NewGoChartRenderer(width, height int, format Format) *GoChartRenderer {
	if width <= 0 {
		width = 960
	}
	if height <= 0 {
		height = 400
	}
	if format != FormatSVG {
		format = FormatPNG
	}
	return &GoChartRenderer{Width: width, Height: height, Format: format}
}

func (r *GoChartRenderer) provider() (chart.RendererProvider, string) {
	if r.Format == FormatSVG {
		return chart.SVG, "image/svg+xml"
	}
	return chart.PNG, "image/png"
}

func (r *GoChartRenderer) Render(cfg Config, data prices.ChartData) (*Chart, error) {
	if countPoints(data) == 0 {
		return nil, ErrNoData
	}
	switch cfg.Type {
	case TypeLine:
		return r.renderLine(cfg, data)
	case TypeBar:
		return r.renderBar(cfg, data)
	default:
		return nil, fmt.Errorf("unsupported chart type %q", cfg.Type)
	}
}

func (r *GoChartRenderer) renderLine(cfg Config, data prices.ChartData) (*Chart, error) {
	series := make([]chart.Series, 0, len(data.Datasets))
	var ys []float64
	var minT, maxT time.Time

	for i, ds := range data.Datasets {
		xs := make([]time.Time, 0, len(ds.Data))
		vals := make([]float64, 0, len(ds.Data))
		for _, p := range ds.Data {
			if !p.HasX {
				continue
			}
			xs = append(xs, p.X)
			vals = append(vals, p.Y)
			if minT.IsZero() || p.X.Before(minT) {
				minT = p.X
			}
			if maxT.IsZero() || p.X.After(maxT) {
				maxT = p.X
			}
		}
		if len(xs) == 0 {
			continue
		}
		ys = append(ys, vals...)
		col := parseColor(ds.BorderColor, fallbackColor(i))
		series = append(series, chart.TimeSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: vals,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    2,
			},
		})
	}
	if len(series) == 0 {
		return nil, ErrNoData
	}

	// одна временная точка даёт нулевой диапазон, go-chart такое не рисует
	minF := chart.TimeToFloat64(minT)
	maxF := chart.TimeToFloat64(maxT)
	if maxF <= minF {
		minF = chart.TimeToFloat64(minT.Add(-12 * time.Hour))
		maxF = chart.TimeToFloat64(maxT.Add(12 * time.Hour))
	}

	ch := chart.Chart{
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           cfg.XTitle,
			ValueFormatter: chart.TimeValueFormatterWithFormat(dayFormat(cfg.TimeUnit)),
			Range:          &chart.ContinuousRange{Min: minF, Max: maxF},
		},
		YAxis:  r.yAxis(cfg, ys),
		Series: series,
	}
	if cfg.Legend == LegendTop {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	rp, ct := r.provider()
	var buf bytes.Buffer
	if err := ch.Render(rp, &buf); err != nil {
		return nil, fmt.Errorf("render line chart: %w", err)
	}
	return &Chart{
		ContentType: ct,
		Image:       buf.Bytes(),
		Tooltips:    tooltips(cfg, data),
		RenderedAt:  time.Now(),
	}, nil
}

func (r *GoChartRenderer) renderBar(cfg Config, data prices.ChartData) (*Chart, error) {
	if len(data.Datasets) == 0 {
		return nil, ErrNoData
	}
	// Chart.js рисует первый набор, лейблы берутся из labels
	ds := data.Datasets[0]
	if len(ds.Data) == 0 {
		return nil, ErrNoData
	}
	bars := make([]chart.Value, 0, len(ds.Data))
	ys := make([]float64, 0, len(ds.Data))
	for i, p := range ds.Data {
		col := parseColor(ds.BackgroundColor.At(i), fallbackColor(i))
		bars = append(bars, chart.Value{
			Label: labelAt(data.Labels, i),
			Value: p.Y,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
		ys = append(ys, p.Y)
	}

	bc := chart.BarChart{
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth(r.Width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      r.yAxis(cfg, ys),
		Bars:       bars,
	}

	rp, ct := r.provider()
	var buf bytes.Buffer
	if err := bc.Render(rp, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return &Chart{
		ContentType: ct,
		Image:       buf.Bytes(),
		Tooltips:    tooltips(cfg, prices.ChartData{Labels: data.Labels, Datasets: data.Datasets[:1]}),
		RenderedAt:  time.Now(),
	}, nil
}

func (r *GoChartRenderer) yAxis(cfg Config, ys []float64) chart.YAxis {
	lo, hi := valueRange(ys, cfg.BeginAtZero)
	ax := chart.YAxis{
		Name:  cfg.YTitle,
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
	}
	if cfg.YTick != nil {
		tick := cfg.YTick
		ax.ValueFormatter = func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return tick(f)
			}
			return fmt.Sprint(v)
		}
	}
	return ax
}

// valueRange pads [min, max] by 5%; equal values get ±1.
func valueRange(ys []float64, beginAtZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if math.IsInf(lo, 0) {
		return 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	lo, hi = lo-pad, hi+pad
	if beginAtZero || lo < 0 {
		lo = 0
	}
	return lo, hi
}

// tooltips builds the hover labels according to cfg.TooltipMode.
func tooltips(cfg Config, data prices.ChartData) []Tooltip {
	if cfg.TooltipMode == TooltipIndex {
		return indexTooltips(cfg, data)
	}
	return pointTooltips(cfg, data)
}

func indexTooltips(cfg Config, data prices.ChartData) []Tooltip {
	n := 0
	for _, ds := range data.Datasets {
		n = max(n, len(ds.Data))
	}
	out := make([]Tooltip, 0, n)
	for i := 0; i < n; i++ {
		var tt Tooltip
		for _, ds := range data.Datasets {
			if i >= len(ds.Data) {
				continue
			}
			p := ds.Data[i]
			if tt.X == "" && p.HasX {
				tt.X = p.X.Format("2006-01-02 15:04")
			}
			tt.Lines = append(tt.Lines, cfg.Tooltip(ds.Label, p.Y))
		}
		out = append(out, tt)
	}
	return out
}

// pointTooltips — по одной подписи на точку; X берётся из времени точки или из labels.
func pointTooltips(cfg Config, data prices.ChartData) []Tooltip {
	out := make([]Tooltip, 0, countPoints(data))
	for _, ds := range data.Datasets {
		for i, p := range ds.Data {
			x := labelAt(data.Labels, i)
			if p.HasX {
				x = p.X.Format("2006-01-02 15:04")
			}
			out = append(out, Tooltip{X: x, Lines: []string{cfg.Tooltip(ds.Label, p.Y)}})
		}
	}
	return out
}

func countPoints(data prices.ChartData) int {
	n := 0
	for _, ds := range data.Datasets {
		n += len(ds.Data)
	}
	return n
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(i + 1)
}

func dayFormat(unit string) string {
	if unit == "day" {
		return "Jan 02"
	}
	return "2006-01-02 15:04"
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	w := width / (n * 2)
	return min(max(w, 10), 120)
}

var palette = []drawing.Color{
	{R: 255, G: 153, B: 0, A: 255},
	{R: 75, G: 192, B: 192, A: 255},
	{R: 255, G: 99, B: 132, A: 255},
	{R: 54, G: 162, B: 235, A: 255},
}

func fallbackColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// parseColor понимает "rgb(r, g, b)", "rgba(r, g, b, a)" и "#rrggbb".
func parseColor(s string, fallback drawing.Color) drawing.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
	case strings.HasPrefix(s, "rgb"):
		open := strings.IndexByte(s, '(')
		closing := strings.LastIndexByte(s, ')')
		if open < 0 || closing <= open {
			return fallback
		}
		parts := strings.Split(s[open+1:closing], ",")
		if len(parts) < 3 {
			return fallback
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil || v < 0 || v > 255 {
				return fallback
			}
			rgb[i] = uint8(v)
		}
		alpha := uint8(255)
		if len(parts) > 3 {
			a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err != nil {
				return fallback
			}
			alpha = uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
		}
		return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}
	default:
		return fallback
	}
}

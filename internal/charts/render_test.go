package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/valeevte/PriceDashboard/internal/prices"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestGoChartRendersHistory(t *testing.T) {
	r := NewGoChartRenderer(640, 320, FormatPNG)
	c, err := r.Render(HistoryConfig(), sampleHistory())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.ContentType != "image/png" || !bytes.HasPrefix(c.Image, pngMagic) {
		t.Fatalf("expected png output, got %q (%d bytes)", c.ContentType, len(c.Image))
	}
	if len(c.Tooltips) != 3 {
		t.Fatalf("expected 3 index tooltips, got %d", len(c.Tooltips))
	}
	first := c.Tooltips[0]
	if first.X != "2024-05-01 12:00" || len(first.Lines) != 2 {
		t.Fatalf("unexpected first tooltip %+v", first)
	}
	if first.Lines[0] != "eBay: $101.50" || first.Lines[1] != "TCG Republic: $110.00" {
		t.Fatalf("unexpected tooltip lines %v", first.Lines)
	}
}

func TestGoChartRendersComparisonSVG(t *testing.T) {
	r := NewGoChartRenderer(640, 320, FormatSVG)
	c, err := r.Render(ComparisonConfig(), sampleComparison())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.ContentType != "image/svg+xml" || !strings.Contains(string(c.Image), "<svg") {
		t.Fatalf("expected svg output")
	}
	want := []Tooltip{
		{X: "eBay", Lines: []string{"$97.00"}},
		{X: "TCG Republic", Lines: []string{"$108.40"}},
		{X: "Amazon JP", Lines: []string{"$120.55"}},
	}
	if len(c.Tooltips) != len(want) {
		t.Fatalf("tooltips = %+v", c.Tooltips)
	}
	for i := range want {
		if c.Tooltips[i].X != want[i].X || c.Tooltips[i].Lines[0] != want[i].Lines[0] {
			t.Errorf("tooltip %d = %+v, want %+v", i, c.Tooltips[i], want[i])
		}
	}
}

func TestSinglePointHistoryStillRenders(t *testing.T) {
	data := prices.ChartData{Datasets: []prices.Dataset{{
		Label: "eBay",
		Data:  []prices.Point{{X: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Y: 50, HasX: true}},
	}}}
	if _, err := NewGoChartRenderer(400, 200, FormatPNG).Render(HistoryConfig(), data); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestRenderWithoutPoints(t *testing.T) {
	r := NewGoChartRenderer(0, 0, "")
	_, err := r.Render(HistoryConfig(), prices.ChartData{Datasets: []prices.Dataset{{Label: "empty"}}})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestComparisonWithEmptyFirstDataset(t *testing.T) {
	data := prices.ChartData{Datasets: []prices.Dataset{{}, {Data: []prices.Point{{Y: 3}}}}}
	_, err := NewGoChartRenderer(400, 200, FormatPNG).Render(ComparisonConfig(), data)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestTooltipModes(t *testing.T) {
	data := sampleHistory()

	cfg := HistoryConfig()
	if got := len(tooltips(cfg, data)); got != 3 {
		t.Fatalf("index mode: %d tooltips, want 3", got)
	}

	cfg.TooltipMode = TooltipNearest
	tt := tooltips(cfg, data)
	if len(tt) != 5 {
		t.Fatalf("nearest mode: %d tooltips, want 5", len(tt))
	}
	last := tt[4]
	if last.X != "2024-05-02 12:00" || len(last.Lines) != 1 || last.Lines[0] != "TCG Republic: $108.40" {
		t.Fatalf("unexpected tooltip %+v", last)
	}
}

func TestFormatters(t *testing.T) {
	if got := DollarTick(104.6); got != "$105" {
		t.Errorf("DollarTick = %q", got)
	}
	if got := DollarTick(99); got != "$99" {
		t.Errorf("DollarTick = %q", got)
	}
	if got := SeriesTooltip("eBay", 12.345); got != "eBay: $12.35" && got != "eBay: $12.34" {
		t.Errorf("SeriesTooltip = %q", got)
	}
	if got := PriceTooltip("ignored", 7); got != "$7.00" {
		t.Errorf("PriceTooltip = %q", got)
	}
}

func TestParseColor(t *testing.T) {
	fb := drawing.Color{R: 1, G: 2, B: 3, A: 255}
	cases := []struct {
		in   string
		want drawing.Color
	}{
		{"rgb(255, 153, 0)", drawing.Color{R: 255, G: 153, B: 0, A: 255}},
		{"rgba(54, 162, 235, 0.8)", drawing.Color{R: 54, G: 162, B: 235, A: 204}},
		{"rgb(300, 0, 0)", fb},
		{"teal", fb},
		{"", fb},
	}
	for _, tc := range cases {
		if got := parseColor(tc.in, fb); got != tc.want {
			t.Errorf("parseColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestValueRange(t *testing.T) {
	lo, hi := valueRange([]float64{10, 10}, false)
	if lo != 9 || hi != 11 {
		t.Fatalf("flat range = [%v, %v]", lo, hi)
	}
	lo, _ = valueRange([]float64{100, 200}, true)
	if lo != 0 {
		t.Fatalf("beginAtZero ignored: %v", lo)
	}
}

package charts

import (
	"fmt"
	"math"
)

// Canvas ids of the dashboard page.
const (
	CanvasHistory    = "priceHistoryChart"
	CanvasComparison = "comparisonChart"
)

type Type string

const (
	TypeLine Type = "line"
	TypeBar  Type = "bar"
)

type LegendPosition string

const (
	LegendTop    LegendPosition = "top"
	LegendHidden LegendPosition = "hidden"
)

type TooltipMode string

const (
	TooltipIndex   TooltipMode = "index"
	TooltipNearest TooltipMode = "nearest"
)

// Config — параметры отображения графика.
type Config struct {
	Type     Type
	TimeUnit string // только для line, "day"

	XTitle string
	YTitle string

	BeginAtZero bool
	Legend      LegendPosition

	// TooltipIndex — одна подсказка на X со строкой для каждой серии,
	// TooltipNearest — по подсказке на точку.
	TooltipMode TooltipMode

	YTick   func(v float64) string
	Tooltip func(label string, y float64) string
}

func HistoryConfig() Config {
	return Config{
		Type:        TypeLine,
		TimeUnit:    "day",
		XTitle:      "Date",
		YTitle:      "Price (USD)",
		Legend:      LegendTop,
		TooltipMode: TooltipIndex,
		YTick:       DollarTick,
		Tooltip:     SeriesTooltip,
	}
}

func ComparisonConfig() Config {
	return Config{
		Type:        TypeBar,
		YTitle:      "Price (USD)",
		Legend:      LegendHidden,
		TooltipMode: TooltipNearest,
		YTick:       DollarTick,
		Tooltip:     PriceTooltip,
	}
}

// DollarTick — "$" + целая часть (toFixed(0)).
func DollarTick(v float64) string {
	return fmt.Sprintf("$%.0f", math.Round(v))
}

// SeriesTooltip renders "<label>: $<y 2dp>".
func SeriesTooltip(label string, y float64) string {
	return fmt.Sprintf("%s: $%.2f", label, y)
}

// PriceTooltip renders "$<y 2dp>", the label is not shown.
func PriceTooltip(_ string, y float64) string {
	return fmt.Sprintf("$%.2f", y)
}

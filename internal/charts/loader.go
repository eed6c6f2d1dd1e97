package charts

import (
	"context"
	"fmt"

	"github.com/valeevte/PriceDashboard/internal/api"
	"github.com/valeevte/PriceDashboard/internal/logging"
	"github.com/valeevte/PriceDashboard/internal/metrics"
	"github.com/valeevte/PriceDashboard/internal/prices"
)

// Source — откуда берутся данные графиков (api.Client в проде).
type Source interface {
	PriceHistory(ctx context.Context, productID string, days int) (prices.ChartData, error)
	Comparison(ctx context.Context, productID string) (prices.ChartData, error)
}

type LoaderConfig struct {
	HistoryDays int
	Log         *logging.Logger
	Metrics     *metrics.Metrics // optional
}

// Loader owns the two chart slots of the dashboard.
type Loader struct {
	src      Source
	renderer Renderer
	cfg      LoaderConfig

	history    *Slot
	comparison *Slot
}

func NewLoader(src Source, r Renderer, cfg LoaderConfig) *Loader {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = api.DefaultHistoryDays
	}
	return &Loader{
		src:        src,
		renderer:   r,
		cfg:        cfg,
		history:    NewSlot(CanvasHistory),
		comparison: NewSlot(CanvasComparison),
	}
}

func (l *Loader) History() *Slot    { return l.history }
func (l *Loader) Comparison() *Slot { return l.comparison }
func (l *Loader) HistoryDays() int  { return l.cfg.HistoryDays }

// LoadHistory fetches the trailing price series and replaces the history chart.
// On failure the previous chart stays in place.
func (l *Loader) LoadHistory(ctx context.Context, productID string) (*Chart, error) {
	data, err := l.src.PriceHistory(ctx, productID, l.cfg.HistoryDays)
	if err != nil {
		return nil, l.fail("price history", productID, err)
	}
	return l.install(l.history, HistoryConfig(), productID, data)
}

// LoadComparison fetches current prices per retailer and replaces the comparison chart.
func (l *Loader) LoadComparison(ctx context.Context, productID string) (*Chart, error) {
	data, err := l.src.Comparison(ctx, productID)
	if err != nil {
		return nil, l.fail("comparison", productID, err)
	}
	return l.install(l.comparison, ComparisonConfig(), productID, data)
}

func (l *Loader) install(slot *Slot, cfg Config, productID string, data prices.ChartData) (*Chart, error) {
	c, err := l.renderer.Render(cfg, data)
	if err != nil {
		return nil, l.fail(slot.Canvas(), productID, err)
	}
	c.ProductID = productID
	canvas := slot.Canvas()
	prev := c.onDestroy
	c.onDestroy = func() {
		if prev != nil {
			prev()
		}
		l.cfg.Log.Debugf("chart destroyed canvas=%s product=%s", canvas, productID)
	}

	slot.Replace(c)
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.ChartRendered()
	}
	l.cfg.Log.Debugf("chart rendered canvas=%s product=%s bytes=%d", canvas, productID, len(c.Image))
	return c, nil
}

func (l *Loader) fail(what, productID string, err error) error {
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.ChartFailed()
	}
	l.cfg.Log.Errorf("error loading %s chart for product %s: %v", what, productID, err)
	return fmt.Errorf("load %s chart: %w", what, err)
}

package dashboard

import (
	"context"
	"fmt"

	"github.com/valeevte/PriceDashboard/internal/charts"
	"github.com/valeevte/PriceDashboard/internal/logging"
	"github.com/valeevte/PriceDashboard/internal/metrics"
	"github.com/valeevte/PriceDashboard/internal/products"
	"github.com/valeevte/PriceDashboard/internal/table"
)

type Deps struct {
	Catalog products.Catalog
	Updater *table.Updater
	Loader  *charts.Loader
	Metrics *metrics.Metrics // optional
	Log     *logging.Logger
}

// Dashboard — состояние страницы: таблица цен и два графика.
type Dashboard struct {
	deps Deps

	table     *table.Table
	products  []products.Product
	retailers []products.Retailer
}

// New loads the catalog once and builds an empty price table from it.
func New(ctx context.Context, d Deps) (*Dashboard, error) {
	ps, err := d.Catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	rs, err := d.Catalog.Retailers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load retailers: %w", err)
	}
	d.Log.Infof("dashboard: %d products, %d retailers", len(ps), len(rs))

	return &Dashboard{
		deps:      d,
		table:     BuildTable(ps, rs),
		products:  ps,
		retailers: rs,
	}, nil
}

// BuildTable creates one row per product with a price cell per retailer and a best-price cell.
// Cells start with the placeholder until the first refresh.
func BuildTable(ps []products.Product, rs []products.Retailer) *table.Table {
	rows := make([]table.Row, 0, len(ps))
	for _, p := range ps {
		key := p.Key()
		row := table.Row{
			ProductID: key,
			Name:      p.DisplayName(),
			Cells:     make([]table.PriceCell, 0, len(rs)),
			Best:      &table.BestPriceCell{ProductID: key, Text: table.Placeholder},
		}
		for _, r := range rs {
			row.Cells = append(row.Cells, table.PriceCell{
				ProductID:  key,
				RetailerID: r.ID,
				Text:       table.Placeholder,
				Muted:      true,
			})
		}
		rows = append(rows, row)
	}
	return table.New(rows)
}

// Refresh runs the table updater over every product of the table.
func (d *Dashboard) Refresh(ctx context.Context) table.Report {
	return d.deps.Updater.Update(ctx, d.table)
}

func (d *Dashboard) Table() *table.Table { return d.table }

func (d *Dashboard) Loader() *charts.Loader { return d.deps.Loader }

// Product looks up a catalog product by its key.
func (d *Dashboard) Product(key string) (products.Product, bool) {
	for _, p := range d.products {
		if p.Key() == key {
			return p, true
		}
	}
	return products.Product{}, false
}

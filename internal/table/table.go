package table

import (
	"sync"

	"github.com/valeevte/PriceDashboard/internal/prices"
)

// Placeholder is shown when a retailer has no price for the product.
const Placeholder = "-"

// PriceCell — ячейка .price-cell[data-product][data-retailer].
type PriceCell struct {
	ProductID  string `json:"product"`
	RetailerID int    `json:"retailer"`
	Text       string `json:"text"`
	Muted      bool   `json:"muted"`
	OOS        bool   `json:"oos"`
	Highlight  bool   `json:"highlight"`
}

// BestPriceCell — ячейка .best-price[data-product].
type BestPriceCell struct {
	ProductID string `json:"product"`
	Text      string `json:"text"`
	Title     string `json:"title"`
}

type Row struct {
	ProductID string         `json:"product"`
	Name      string         `json:"name"`
	Cells     []PriceCell    `json:"cells"`
	Best      *BestPriceCell `json:"best,omitempty"`
}

// Table is the typed replacement for the dashboard markup. Safe for concurrent use.
type Table struct {
	mu   sync.RWMutex
	rows []Row
}

func New(rows []Row) *Table {
	return &Table{rows: rows}
}

// ProductIDs returns distinct product ids of all price cells in discovery order.
func (t *Table) ProductIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		for _, c := range r.Cells {
			if _, ok := seen[c.ProductID]; ok {
				continue
			}
			seen[c.ProductID] = struct{}{}
			out = append(out, c.ProductID)
		}
	}
	return out
}

// Snapshot returns a deep copy of the rows.
func (t *Table) Snapshot() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		cp := r
		cp.Cells = append([]PriceCell(nil), r.Cells...)
		if r.Best != nil {
			b := *r.Best
			cp.Best = &b
		}
		out[i] = cp
	}
	return out
}

// Apply fills the cells of one product from its latest prices and then applies the best price.
// Returns the selected best record, if any.
func (t *Table) Apply(productID string, latest prices.LatestPrices) (prices.PriceRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ri := range t.rows {
		cells := t.rows[ri].Cells
		for ci := range cells {
			c := &cells[ci]
			if c.ProductID != productID {
				continue
			}
			fillCell(c, latest)
		}
	}
	return t.applyBest(productID, latest.Prices)
}

func fillCell(c *PriceCell, latest prices.LatestPrices) {
	p, ok := latest.Find(c.RetailerID)
	if !ok {
		c.Text = Placeholder
		c.Muted = true
		c.OOS = false
		return
	}
	c.Text = prices.FormatUSD(p.Price)
	c.OOS = !p.InStock
	c.Muted = !p.InStock
	if c.OOS {
		c.Text += " (OOS)"
	}
}

// applyBest пишет лучшую цену и подсвечивает ячейку ритейлера в той же строке.
// Пустой список или отсутствие ячейки best-price — ничего не делаем.
func (t *Table) applyBest(productID string, records []prices.PriceRecord) (prices.PriceRecord, bool) {
	best, ok := prices.SelectBest(records)
	if !ok {
		return prices.PriceRecord{}, false
	}

	row := t.bestRow(productID)
	if row == nil {
		return best, true
	}

	row.Best.Text = prices.FormatUSD(best.Price)
	row.Best.Title = "Best from " + best.Retailer

	for ci := range row.Cells {
		row.Cells[ci].Highlight = false
	}
	for ci := range row.Cells {
		if row.Cells[ci].RetailerID == best.RetailerID {
			row.Cells[ci].Highlight = true
			break
		}
	}
	return best, true
}

func (t *Table) bestRow(productID string) *Row {
	for ri := range t.rows {
		if b := t.rows[ri].Best; b != nil && b.ProductID == productID {
			return &t.rows[ri]
		}
	}
	return nil
}

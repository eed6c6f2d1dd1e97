package prices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord — одна цена ритейлера из /api/products/{id}/latest (всё в USD)
type PriceRecord struct {
	RetailerID       int                 `json:"retailer_id"`
	Retailer         string              `json:"retailer"`
	RetailerSlug     string              `json:"retailer_slug,omitempty"`
	Price            decimal.Decimal     `json:"price"`
	PriceOriginal    decimal.NullDecimal `json:"price_original"`
	Currency         string              `json:"currency,omitempty"`
	CurrencyOriginal string              `json:"currency_original,omitempty"`
	InStock          bool                `json:"in_stock"`
	ScrapedAt        string              `json:"scraped_at,omitempty"`
	SourceURL        string              `json:"source_url,omitempty"`
}

type LatestPrices struct {
	Product string        `json:"product"`
	Prices  []PriceRecord `json:"prices"`
}

// Find returns the record of the given retailer, first match wins.
func (l LatestPrices) Find(retailerID int) (PriceRecord, bool) {
	for _, p := range l.Prices {
		if p.RetailerID == retailerID {
			return p, true
		}
	}
	return PriceRecord{}, false
}

// ChartData is the Chart.js compatible payload returned by /api/prices endpoints.
type ChartData struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string  `json:"label"`
	Data            []Point `json:"data"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BackgroundColor Colors  `json:"backgroundColor,omitempty"`
	Fill            bool    `json:"fill,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
}

// Point is either a bare value (bar charts) or an {x, y} pair (time series).
type Point struct {
	X    time.Time
	Y    float64
	HasX bool
}

type pointXY struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

func (p *Point) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = Point{}
		return nil
	}
	if b[0] != '{' {
		var y float64
		if err := json.Unmarshal(b, &y); err != nil {
			return fmt.Errorf("chart point: %w", err)
		}
		*p = Point{Y: y}
		return nil
	}
	var xy pointXY
	if err := json.Unmarshal(b, &xy); err != nil {
		return fmt.Errorf("chart point: %w", err)
	}
	t, err := ParseTimestamp(xy.X)
	if err != nil {
		return fmt.Errorf("chart point: %w", err)
	}
	*p = Point{X: t, Y: xy.Y, HasX: true}
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.HasX {
		return json.Marshal(p.Y)
	}
	return json.Marshal(pointXY{X: p.X.UTC().Format(time.RFC3339Nano), Y: p.Y})
}

// Colors accepts both "rgb(...)" and ["rgb(...)", ...].
type Colors []string

func (c *Colors) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Colors{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// At returns the color for the i-th element, cycling a single color over all of them.
func (c Colors) At(i int) string {
	if len(c) == 0 {
		return ""
	}
	if i < len(c) {
		return c[i]
	}
	return c[len(c)-1]
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses ISO timestamps; values without a zone (python isoformat) are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

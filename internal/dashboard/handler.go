package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/valeevte/PriceDashboard/internal/charts"
	"github.com/valeevte/PriceDashboard/internal/products"
	"github.com/valeevte/PriceDashboard/internal/table"
)

// Register вешает страницы, графики и JSON API дашборда на роутер.
func (d *Dashboard) Register(r *gin.Engine, catalog *products.Handler) {
	r.SetHTMLTemplate(parseTemplates())

	r.GET("/", d.Index)
	r.GET("/products", d.ProductList)
	r.GET("/products/:id", d.ProductPage)
	r.GET("/health", d.Health)

	ch := r.Group("/charts")
	{
		ch.GET("/history/:id", d.HistoryChart)
		ch.GET("/compare/:id", d.CompareChart)
	}

	api := r.Group("/api")
	{
		api.GET("/table", d.TableJSON)
		api.POST("/refresh", d.RefreshNow)
		if catalog != nil {
			api.GET("/catalog/products", catalog.ListProducts)
			api.GET("/catalog/retailers", catalog.ListRetailers)
		}
	}
}

type indexPage struct {
	Retailers []products.Retailer
	Rows      []table.Row
}

// Index — GET /
func (d *Dashboard) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", indexPage{
		Retailers: d.retailers,
		Rows:      d.table.Snapshot(),
	})
}

type productItem struct {
	Key     string
	SetCode string
	Name    string
	Type    string
	Best    string
}

type productsPage struct {
	Type  string
	Items []productItem
}

// ProductList — GET /products?type=box|case
func (d *Dashboard) ProductList(c *gin.Context) {
	typ := strings.ToLower(strings.TrimSpace(c.Query("type")))

	best := make(map[string]string)
	for _, r := range d.table.Snapshot() {
		if r.Best != nil {
			best[r.ProductID] = r.Best.Text
		}
	}

	page := productsPage{Type: typ}
	for _, p := range d.products {
		if typ != "" && !strings.EqualFold(p.ProductType, typ) {
			continue
		}
		page.Items = append(page.Items, productItem{
			Key:     p.Key(),
			SetCode: p.SetCode,
			Name:    p.DisplayName(),
			Type:    p.ProductType,
			Best:    best[p.Key()],
		})
	}
	c.HTML(http.StatusOK, "products.html", page)
}

type productPage struct {
	ProductID  string
	Name       string
	Days       int
	Retailers  []products.Retailer
	Row        *table.Row
	History    *charts.Chart
	Comparison *charts.Chart
	Errors     []string
}

// ProductPage — GET /products/:id. Грузит оба графика по очереди, как при открытии страницы;
// ошибка одного не мешает другому.
func (d *Dashboard) ProductPage(c *gin.Context) {
	id := c.Param("id")
	p, ok := d.Product(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	ctx := c.Request.Context()
	l := d.deps.Loader

	page := productPage{
		ProductID: id,
		Name:      p.DisplayName(),
		Days:      l.HistoryDays(),
		Retailers: d.retailers,
		Row:       d.row(id),
	}

	var err error
	page.History, err = chartOrPrevious(ctx, id, l.LoadHistory, l.History())
	if err != nil {
		page.Errors = append(page.Errors, "Price history unavailable: "+err.Error())
	}
	page.Comparison, err = chartOrPrevious(ctx, id, l.LoadComparison, l.Comparison())
	if err != nil {
		page.Errors = append(page.Errors, "Comparison unavailable: "+err.Error())
	}
	c.HTML(http.StatusOK, "product.html", page)
}

// row returns a copy of the product's table row with its latest prices.
func (d *Dashboard) row(id string) *table.Row {
	for _, r := range d.table.Snapshot() {
		if r.ProductID == id {
			return &r
		}
	}
	return nil
}

// HistoryChart — GET /charts/history/:id
func (d *Dashboard) HistoryChart(c *gin.Context) {
	d.serveChart(c, d.deps.Loader.LoadHistory, d.deps.Loader.History())
}

// CompareChart — GET /charts/compare/:id
func (d *Dashboard) CompareChart(c *gin.Context) {
	d.serveChart(c, d.deps.Loader.LoadComparison, d.deps.Loader.Comparison())
}

type loadFunc func(ctx context.Context, productID string) (*charts.Chart, error)

// chartOrPrevious runs the loader; on failure it falls back to the chart already
// in the slot when that one belongs to the same product.
func chartOrPrevious(ctx context.Context, id string, load loadFunc, slot *charts.Slot) (*charts.Chart, error) {
	ch, err := load(ctx, id)
	if err == nil {
		return ch, nil
	}
	if prev := slot.Current(); prev != nil && prev.ProductID == id {
		return prev, err
	}
	return nil, err
}

func (d *Dashboard) serveChart(c *gin.Context, load loadFunc, slot *charts.Slot) {
	id := c.Param("id")
	ch, err := chartOrPrevious(c.Request.Context(), id, load, slot)
	switch {
	case err == nil:
	case ch != nil:
		c.Header("X-Chart-Stale", "true")
	case errors.Is(err, charts.ErrNoData):
		c.Status(http.StatusNoContent)
		return
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, ch.ContentType, ch.Image)
}

// TableJSON — GET /api/table
func (d *Dashboard) TableJSON(c *gin.Context) {
	c.JSON(http.StatusOK, d.table.Snapshot())
}

// RefreshNow — POST /api/refresh
func (d *Dashboard) RefreshNow(c *gin.Context) {
	rep := d.Refresh(c.Request.Context())
	// форма на главной
	if c.ContentType() == "application/x-www-form-urlencoded" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Health — GET /health
func (d *Dashboard) Health(c *gin.Context) {
	if d.deps.Metrics == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.JSON(http.StatusOK, d.deps.Metrics.Snapshot())
}

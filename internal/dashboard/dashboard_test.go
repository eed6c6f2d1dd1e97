package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valeevte/PriceDashboard/internal/api"
	"github.com/valeevte/PriceDashboard/internal/charts"
	"github.com/valeevte/PriceDashboard/internal/logging"
	"github.com/valeevte/PriceDashboard/internal/metrics"
	"github.com/valeevte/PriceDashboard/internal/products"
	"github.com/valeevte/PriceDashboard/internal/table"
)

const (
	latestJSON = `{"product":"OP-01 Romance Dawn (Box)","prices":[
		{"retailer":"eBay","retailer_slug":"ebay","retailer_id":1,"price":120.5,"price_original":120.5,"currency":"USD","currency_original":"USD","in_stock":true,"scraped_at":"2024-05-03T10:00:00"},
		{"retailer":"TCG Republic","retailer_slug":"tcg-republic","retailer_id":2,"price":99.99,"price_original":null,"currency":"USD","currency_original":"USD","in_stock":true,"scraped_at":"2024-05-03T10:00:00"},
		{"retailer":"Amazon JP","retailer_slug":"amazon-jp","retailer_id":3,"price":80,"price_original":12000,"currency":"USD","currency_original":"JPY","in_stock":false,"scraped_at":"2024-05-03T10:00:00"}
	]}`
	historyJSON = `{"datasets":[{"label":"eBay","data":[
		{"x":"2024-05-01T12:00:00","y":121},{"x":"2024-05-02T12:00:00","y":120.5}],
		"borderColor":"rgb(255, 99, 132)","fill":false,"tension":0.1}]}`
	compareJSON = `{"labels":["eBay","TCG Republic"],"datasets":[{"label":"Current Price (USD)",
		"data":[120.5,99.99],"backgroundColor":["rgba(255, 99, 132, 0.8)","rgba(75, 192, 192, 0.8)"]}]}`
	emptyJSON = `{"datasets":[]}`
)

// backend — фейковый Price API. Продукт из down отвечает 500.
type backend struct {
	mu    sync.Mutex
	down  map[string]bool
	empty bool
}

func (b *backend) setDown(id string, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down[id] = v
}

func (b *backend) setEmpty(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.empty = v
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	down, empty := b.down, b.empty
	id := ""
	switch {
	case r.URL.Path == "/api/prices/compare":
		id = r.URL.Query().Get("product_id")
	case strings.HasPrefix(r.URL.Path, "/api/prices/"):
		id = strings.TrimPrefix(r.URL.Path, "/api/prices/")
	case strings.HasPrefix(r.URL.Path, "/api/products/"):
		id = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/latest")
	}
	isDown := down[id]
	b.mu.Unlock()

	if isDown {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/prices/compare":
		_, _ = w.Write([]byte(compareJSON))
	case strings.HasPrefix(r.URL.Path, "/api/prices/"):
		if empty {
			_, _ = w.Write([]byte(emptyJSON))
			return
		}
		_, _ = w.Write([]byte(historyJSON))
	case strings.HasSuffix(r.URL.Path, "/latest"):
		_, _ = w.Write([]byte(latestJSON))
	default:
		http.NotFound(w, r)
	}
}

type fixture struct {
	backend *backend
	dash    *Dashboard
	router  *gin.Engine
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	be := &backend{down: map[string]bool{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	log := logging.Discard()
	m := metrics.New(time.Now())

	cat := products.NewStaticCatalog(
		[]products.Product{
			{ID: 1, SetCode: "OP-01", SetName: "Romance Dawn", ProductType: "box"},
			{ID: 2, SetCode: "OP-02", SetName: "Paramount War", ProductType: "case"},
		},
		[]products.Retailer{
			{ID: 1, Name: "eBay", Slug: "ebay"},
			{ID: 2, Name: "TCG Republic", Slug: "tcg-republic"},
			{ID: 3, Name: "Amazon JP", Slug: "amazon-jp"},
		},
	)
	renderer := charts.NewGoChartRenderer(480, 240, charts.FormatPNG)
	d, err := New(context.Background(), Deps{
		Catalog: cat,
		Updater: table.NewUpdater(client, table.UpdaterConfig{Concurrency: 2, Log: log, Metrics: m}),
		Loader:  charts.NewLoader(client, renderer, charts.LoaderConfig{Log: log, Metrics: m}),
		Metrics: m,
		Log:     log,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r := gin.New()
	d.Register(r, products.NewHandler(cat, log))
	return &fixture{backend: be, dash: d, router: r, metrics: m}
}

func (f *fixture) do(method, target string, body *strings.Reader, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestBuildTable(t *testing.T) {
	tbl := BuildTable(
		[]products.Product{{ID: 7, SetCode: "OP-05", SetName: "Awakening of the New Era", ProductType: "box"}},
		[]products.Retailer{{ID: 3, Name: "eBay"}, {ID: 5, Name: "Amazon JP"}},
	)
	rows := tbl.Snapshot()
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.ProductID != "7" || r.Name != "OP-05 Awakening of the New Era (Box)" {
		t.Fatalf("unexpected row %+v", r)
	}
	if len(r.Cells) != 2 || r.Cells[1].RetailerID != 5 || r.Cells[0].Text != table.Placeholder {
		t.Fatalf("unexpected cells %+v", r.Cells)
	}
	if r.Best == nil || r.Best.ProductID != "7" {
		t.Fatalf("missing best cell")
	}
	if ids := tbl.ProductIDs(); len(ids) != 1 || ids[0] != "7" {
		t.Fatalf("ProductIDs = %v", ids)
	}
}

func TestRefreshIsolatesFailedProduct(t *testing.T) {
	f := newFixture(t)
	f.backend.setDown("2", true)

	w := f.do(http.MethodPost, "/api/refresh", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var rep table.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(rep.Outcomes) != 2 || rep.Outcomes[0].Error != "" || rep.Outcomes[1].Error == "" {
		t.Fatalf("unexpected outcomes %+v", rep.Outcomes)
	}

	rows := f.dash.Table().Snapshot()
	if rows[0].Best.Text != "$99.99" || rows[0].Best.Title != "Best from TCG Republic" {
		t.Fatalf("best = %+v", rows[0].Best)
	}
	if !rows[0].Cells[1].Highlight || rows[0].Cells[0].Highlight {
		t.Fatalf("highlight on wrong cell: %+v", rows[0].Cells)
	}
	if rows[1].Best.Text != table.Placeholder || rows[1].Cells[0].Text != table.Placeholder {
		t.Fatalf("failed product must stay untouched: %+v", rows[1])
	}
}

func TestIndexMarkup(t *testing.T) {
	f := newFixture(t)
	f.dash.Refresh(context.Background())

	w := f.do(http.MethodGet, "/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`class="price-cell" data-product="1" data-retailer="1">$120.50</td>`,
		`class="price-cell table-success fw-bold" data-product="1" data-retailer="2">$99.99</td>`,
		`class="best-price" data-product="1" title="Best from TCG Republic">$99.99</td>`,
		`OP-02 Paramount War (Case)`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q\n%s", want, body)
		}
	}
}

func TestRefreshFormRedirects(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/refresh", strings.NewReader(url.Values{}.Encode()), "application/x-www-form-urlencoded")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestChartEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/charts/history/1", nil, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("history: status=%d type=%q", w.Code, w.Header().Get("Content-Type"))
	}
	if w.Body.Len() == 0 || w.Header().Get("X-Chart-Stale") != "" {
		t.Fatalf("expected a fresh image")
	}

	w = f.do(http.MethodGet, "/charts/compare/1", nil, "")
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("compare: status=%d", w.Code)
	}

	// тот же продукт: отдаём прошлый график
	f.backend.setDown("1", true)
	w = f.do(http.MethodGet, "/charts/history/1", nil, "")
	if w.Code != http.StatusOK || w.Header().Get("X-Chart-Stale") != "true" {
		t.Fatalf("stale: status=%d stale=%q", w.Code, w.Header().Get("X-Chart-Stale"))
	}

	// другой продукт: прошлого графика нет
	f.backend.setDown("2", true)
	w = f.do(http.MethodGet, "/charts/history/2", nil, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("other product: status=%d", w.Code)
	}
	if c := f.dash.deps.Loader.History().Current(); c == nil || c.ProductID != "1" {
		t.Fatalf("failed load must keep the previous chart, got %+v", c)
	}
}

func TestChartWithoutData(t *testing.T) {
	f := newFixture(t)
	f.backend.setEmpty(true)

	w := f.do(http.MethodGet, "/charts/history/1", nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestProductPage(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/products/1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`id="priceHistoryChart"`,
		`id="comparisonChart"`,
		`src="data:image/png;base64,`,
		`<strong>TCG Republic</strong> &middot; $99.99`,
		`eBay: $121.00`,
		`Price history (30 days)`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("product page missing %q", want)
		}
	}

	if w := f.do(http.MethodGet, "/products/42", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown product: status = %d", w.Code)
	}
}

func TestProductPageShowsErrors(t *testing.T) {
	f := newFixture(t)
	f.backend.setDown("2", true)

	w := f.do(http.MethodGet, "/products/2", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Price history unavailable") || !strings.Contains(body, "Comparison unavailable") {
		t.Fatalf("expected both errors on the page")
	}
}

func TestTableAndHealthJSON(t *testing.T) {
	f := newFixture(t)
	f.dash.Refresh(context.Background())

	w := f.do(http.MethodGet, "/api/table", nil, "")
	var rows []table.Row
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil || len(rows) != 2 {
		t.Fatalf("table json: %v rows=%d", err, len(rows))
	}

	w = f.do(http.MethodGet, "/health", nil, "")
	var snap map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("health json: %v", err)
	}
	if snap["ok"] != true {
		t.Fatalf("health = %v", snap)
	}
	fetch, _ := snap["fetch"].(map[string]any)
	if fetch["succeeded_total"] != float64(2) {
		t.Fatalf("fetch counters = %v", fetch)
	}

	w = f.do(http.MethodGet, "/api/catalog/retailers", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"slug":"tcg-republic"`) {
		t.Fatalf("catalog retailers: %d %s", w.Code, w.Body.String())
	}
}

func TestProductPageShowsLatestPrices(t *testing.T) {
	f := newFixture(t)
	f.dash.Refresh(context.Background())

	w := f.do(http.MethodGet, "/products/1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`<th>Amazon JP</th>`,
		`class="price-cell" data-product="1" data-retailer="1">$120.50</td>`,
		`class="price-cell table-success fw-bold" data-product="1" data-retailer="2">$99.99</td>`,
		`class="price-cell text-muted" data-product="1" data-retailer="3">$80.00 (OOS)</td>`,
		`class="best-price" data-product="1" title="Best from TCG Republic">$99.99</td>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("product page missing %q\n%s", want, body)
		}
	}
	if strings.Contains(body, `data-product="2" data-retailer=`) {
		t.Fatalf("product page must only show its own row")
	}
}

func TestProductListFiltersByType(t *testing.T) {
	f := newFixture(t)
	f.dash.Refresh(context.Background())

	w := f.do(http.MethodGet, "/products", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<tr data-product="1">`) || !strings.Contains(body, `<tr data-product="2">`) {
		t.Fatalf("expected both products\n%s", body)
	}
	if !strings.Contains(body, `<td>$99.99</td>`) {
		t.Fatalf("expected best price in the list\n%s", body)
	}

	w = f.do(http.MethodGet, "/products?type=Case", nil, "")
	body = w.Body.String()
	if strings.Contains(body, `<tr data-product="1">`) || !strings.Contains(body, `OP-02 Paramount War (Case)`) {
		t.Fatalf("type filter not applied\n%s", body)
	}

	w = f.do(http.MethodGet, "/products?type=sleeve", nil, "")
	if !strings.Contains(w.Body.String(), "No products") {
		t.Fatalf("expected empty list")
	}
}

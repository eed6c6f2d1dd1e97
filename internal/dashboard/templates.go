package dashboard

import (
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/valeevte/PriceDashboard/internal/charts"
	"github.com/valeevte/PriceDashboard/internal/table"
)

var funcs = template.FuncMap{
	"cellClass": cellClass,
	"dataURI":   dataURI,
}

func cellClass(c table.PriceCell) string {
	cls := []string{"price-cell"}
	if c.Muted {
		cls = append(cls, "text-muted")
	}
	if c.Highlight {
		cls = append(cls, "table-success", "fw-bold")
	}
	return strings.Join(cls, " ")
}

// dataURI встраивает картинку графика прямо в страницу.
func dataURI(c *charts.Chart) template.URL {
	if c == nil {
		return ""
	}
	ct := c.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return template.URL("data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(c.Image))
}

func parseTemplates() *template.Template {
	t := template.Must(template.New("index.html").Funcs(funcs).Parse(indexHTML))
	template.Must(t.New("cells").Parse(cellsHTML))
	template.Must(t.New("products.html").Parse(productsHTML))
	template.Must(t.New("product.html").Parse(productHTML))
	return t
}

// cellsHTML — ячейки цен и лучшей цены одной строки таблицы.
const cellsHTML = `{{range .Cells}}<td class="{{cellClass .}}" data-product="{{.ProductID}}" data-retailer="{{.RetailerID}}">{{.Text}}</td>
{{end}}{{with .Best}}<td class="best-price" data-product="{{.ProductID}}"{{if .Title}} title="{{.Title}}"{{end}}>{{.Text}}</td>{{else}}<td></td>{{end}}`

const productsHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Products</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
</head>
<body class="container py-4">
<p><a href="/">&larr; Dashboard</a></p>
<h1 class="h3 mb-3">Products</h1>
<div class="btn-group mb-3">
<a class="btn btn-sm btn-outline-secondary{{if eq .Type ""}} active{{end}}" href="/products">All</a>
<a class="btn btn-sm btn-outline-secondary{{if eq .Type "box"}} active{{end}}" href="/products?type=box">Boxes</a>
<a class="btn btn-sm btn-outline-secondary{{if eq .Type "case"}} active{{end}}" href="/products?type=case">Cases</a>
</div>
<table class="table table-sm">
<thead><tr><th>Set</th><th>Name</th><th>Type</th><th>Best</th></tr></thead>
<tbody>
{{range .Items}}<tr data-product="{{.Key}}">
<td>{{.SetCode}}</td>
<td><a href="/products/{{.Key}}">{{.Name}}</a></td>
<td>{{.Type}}</td>
<td>{{.Best}}</td>
</tr>
{{else}}<tr><td colspan="4" class="text-muted">No products</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Price Dashboard</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
</head>
<body class="container py-4">
<h1 class="h3 mb-3">Current prices</h1>
<form method="post" action="/api/refresh" class="mb-3"><button class="btn btn-sm btn-outline-primary">Refresh</button></form>
<table class="table table-sm table-hover">
<thead><tr>
<th>Product</th>
{{range .Retailers}}<th>{{.Name}}</th>{{end}}
<th>Best</th>
</tr></thead>
<tbody>
{{range .Rows}}<tr>
<td><a href="/products/{{.ProductID}}">{{.Name}}</a></td>
{{template "cells" .}}
</tr>
{{end}}</tbody>
</table>
</body>
</html>
`

const productHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
</head>
<body class="container py-4">
<p><a href="/">&larr; All products</a></p>
<h1 class="h3 mb-3">{{.Name}}</h1>
{{range .Errors}}<div class="alert alert-warning">{{.}}</div>
{{end}}
{{with .Row}}<table class="table table-sm mb-4">
<thead><tr>
{{range $.Retailers}}<th>{{.Name}}</th>{{end}}
<th>Best</th>
</tr></thead>
<tbody><tr>
{{template "cells" .}}
</tr></tbody>
</table>
{{end}}
<h2 class="h5">Price history ({{.Days}} days)</h2>
<div id="priceHistoryChart" data-product="{{.ProductID}}">
{{with .History}}<img src="{{dataURI .}}" alt="Price history">
<ul class="list-unstyled small">{{range .Tooltips}}<li><strong>{{.X}}</strong>{{range .Lines}} &middot; {{.}}{{end}}</li>{{end}}</ul>
{{else}}<p class="text-muted">No chart</p>{{end}}
</div>
<h2 class="h5">Retailer comparison</h2>
<div id="comparisonChart" data-product="{{.ProductID}}">
{{with .Comparison}}<img src="{{dataURI .}}" alt="Retailer comparison">
<ul class="list-unstyled small">{{range .Tooltips}}<li><strong>{{.X}}</strong>{{range .Lines}} &middot; {{.}}{{end}}</li>{{end}}</ul>
{{else}}<p class="text-muted">No chart</p>{{end}}
</div>
</body>
</html>
`
